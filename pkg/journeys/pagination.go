package journeys

import (
	"fmt"
	"net/url"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
)

const paginationDateTimeLayout = "20060102T150405"

// BuildPaginationLinks fills the response's first / last / prev / next links
// from the extreme datetimes of the final journey set. The next window starts
// one minute after the latest departure, the previous one ends one minute
// before the earliest arrival
func BuildPaginationLinks(response *tmdf.ResponseSet, request *tmdf.JourneyRequest) {
	if len(response.Journeys) == 0 {
		return
	}

	earliestDeparture, latestArrival := response.ExtremeDateTimes()

	latestDeparture := response.Journeys[0].DepartureTime
	earliestArrival := response.Journeys[0].ArrivalTime
	for _, journey := range response.Journeys[1:] {
		if journey.DepartureTime.After(latestDeparture) {
			latestDeparture = journey.DepartureTime
		}
		if journey.ArrivalTime.Before(earliestArrival) {
			earliestArrival = journey.ArrivalTime
		}
	}

	response.Links = tmdf.PaginationLinks{
		First: paginationLink(request, earliestDeparture, true),
		Last:  paginationLink(request, latestArrival, false),
		Next:  paginationLink(request, latestDeparture.Add(windowShiftStep), true),
		Prev:  paginationLink(request, earliestArrival.Add(-windowShiftStep), false),
	}
}

func paginationLink(request *tmdf.JourneyRequest, dateTime time.Time, clockwise bool) string {
	values := url.Values{}
	values.Set("from", request.Origin)
	if request.Destination != "" {
		values.Set("to", request.Destination)
	}
	values.Set("datetime", dateTime.Format(paginationDateTimeLayout))

	represents := "departure"
	if !clockwise {
		represents = "arrival"
	}
	values.Set("datetime_represents", represents)

	return fmt.Sprintf("journeys?%s", values.Encode())
}
