// Package gtfsrtproxy reads realtime passages out of a GTFS-RT TripUpdates
// feed.
package gtfsrtproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/itinera/itinera/pkg/realtimeproxy"
	"github.com/itinera/itinera/pkg/tmdf"
	"google.golang.org/protobuf/proto"
)

type Client struct {
	name    string
	address string

	httpClient *http.Client
}

func NewClient(name string, address string) *Client {
	return &Client{
		name:       name,
		address:    address,
		httpClient: &http.Client{},
	}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) NextPassages(ctx context.Context, routePoint tmdf.RoutePoint, query realtimeproxy.PassageQuery) ([]tmdf.RealTimePassage, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", c.address, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.name, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	feed := gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	passages := []tmdf.RealTimePassage{}

	for _, entity := range feed.Entity {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		trip := tripUpdate.GetTrip()
		if routePoint.RouteRef != "" && trip.GetRouteId() != routePoint.RouteRef {
			continue
		}

		for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
			if stopTimeUpdate.GetStopId() != routePoint.StopPointRef {
				continue
			}

			departure := stopTimeUpdate.GetDeparture()
			if departure == nil {
				departure = stopTimeUpdate.GetArrival()
			}
			if departure == nil {
				continue
			}

			departureTime := time.Unix(departure.GetTime(), 0)

			if departureTime.Before(query.FromDateTime) {
				continue
			}
			if query.Duration > 0 && departureTime.After(query.FromDateTime.Add(query.Duration)) {
				continue
			}

			passages = append(passages, tmdf.RealTimePassage{
				DateTime:      departureTime,
				DirectionName: trip.GetTripId(),
				IsRealTime:    true,
			})
		}
	}

	sort.Slice(passages, func(i, j int) bool {
		return passages[i].DateTime.Before(passages[j].DateTime)
	})

	if query.Count > 0 && len(passages) > query.Count {
		passages = passages[:query.Count]
	}

	return passages, nil
}
