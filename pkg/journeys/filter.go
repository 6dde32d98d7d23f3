package journeys

import (
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/itinera/itinera/pkg/util"
	"golang.org/x/exp/slices"
)

// Filter reduces the merged set to what is returned to the caller. It runs
// as a soft pass after each planner round and a hard pass at the very end
// (finalPass). foundAny reports whether any journey existed at some point in
// the loop, driving the filtered-to-empty error synthesis
func Filter(response *tmdf.ResponseSet, request *tmdf.JourneyRequest, finalPass bool, foundAny bool) {
	// Debug requests and isochrone style requests skip filtering entirely
	if request.Debug || request.IsIsochrone() {
		return
	}

	if hasExplicitTypeFilter(request) {
		// The best tag only exists after the final choose, so a best filter
		// can only be applied on the final pass
		if request.TypeFilter != tmdf.JourneyTypeBest || finalPass {
			util.InPlaceFilter(&response.Journeys, func(journey *tmdf.Journey) bool {
				return matchesTypeFilter(journey.Type, request.TypeFilter)
			})
		}
	} else {
		// Untyped candidates did not survive qualification
		util.InPlaceFilter(&response.Journeys, func(journey *tmdf.Journey) bool {
			return journey.Type != tmdf.JourneyTypeUntyped
		})
	}

	// Only the first of each direct mode family is worth keeping
	seenNonPTTypes := map[tmdf.JourneyType]bool{}
	util.InPlaceFilter(&response.Journeys, func(journey *tmdf.Journey) bool {
		if !slices.Contains(tmdf.NonPTJourneyTypes, journey.Type) {
			return true
		}

		if seenNonPTTypes[journey.Type] {
			return false
		}

		seenNonPTTypes[journey.Type] = true
		return true
	})

	if finalPass && request.MaxNbJourneys > 0 && len(response.Journeys) > request.MaxNbJourneys {
		response.Journeys = response.Journeys[:request.MaxNbJourneys]
	}

	response.PruneTickets()

	if len(response.Journeys) == 0 && foundAny && response.Error == nil {
		response.Error = tmdf.NewFilteredToEmptyError()
	}
}

func hasExplicitTypeFilter(request *tmdf.JourneyRequest) bool {
	return request.TypeFilter != "" && request.TypeFilter != "all"
}

func matchesTypeFilter(journeyType tmdf.JourneyType, filter tmdf.JourneyType) bool {
	if journeyType == filter {
		return true
	}

	// Best descends from rapid, so a rapid filter keeps the best journey too
	if filter == tmdf.JourneyTypeRapid && journeyType == tmdf.JourneyTypeBest {
		return true
	}

	return false
}
