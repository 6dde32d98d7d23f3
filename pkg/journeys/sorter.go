package journeys

import (
	"sort"

	"github.com/itinera/itinera/pkg/tmdf"
)

// Sort orders journeys with the deterministic comparator used right before
// final selection. Clockwise searches order by arrival ascending, counter
// clockwise by departure descending; ties break on total duration, then
// transfer count, then cumulative non public transport duration
func Sort(journeys []*tmdf.Journey, clockwise bool) {
	sort.SliceStable(journeys, func(i, j int) bool {
		return lessJourney(journeys[i], journeys[j], clockwise)
	})
}

func lessJourney(a *tmdf.Journey, b *tmdf.Journey, clockwise bool) bool {
	if clockwise {
		if !a.ArrivalTime.Equal(b.ArrivalTime) {
			return a.ArrivalTime.Before(b.ArrivalTime)
		}
	} else {
		if !a.DepartureTime.Equal(b.DepartureTime) {
			return a.DepartureTime.After(b.DepartureTime)
		}
	}

	if a.Duration != b.Duration {
		return a.Duration < b.Duration
	}

	if a.NbTransfers != b.NbTransfers {
		return a.NbTransfers < b.NbTransfers
	}

	return a.NonPTDuration() < b.NonPTDuration()
}

// ChooseBest retags the first rapid journey of the sorted set as best. It
// must run exactly once, after every merge, since best is unique in the
// final output
func ChooseBest(response *tmdf.ResponseSet) {
	for _, journey := range response.Journeys {
		if journey.Type == tmdf.JourneyTypeRapid {
			journey.Type = tmdf.JourneyTypeBest
			return
		}
	}
}
