package journeys

import (
	"github.com/itinera/itinera/pkg/tmdf"
)

// Qualify assigns a semantic type to every journey of one raw planner reply.
// It runs once per reply, before merging: exactly one journey gets tagged
// rapid, and direct non public transport itineraries are typed by their
// dominant mode
func Qualify(journeys []*tmdf.Journey) {
	var rapidCandidate *tmdf.Journey

	for _, journey := range journeys {
		if !journey.HasPublicTransport() {
			journey.Type = nonPTType(journey.DominantMode())
			continue
		}

		if rapidCandidate == nil {
			rapidCandidate = journey
			continue
		}

		if journey.Duration < rapidCandidate.Duration ||
			(journey.Duration == rapidCandidate.Duration && journey.ArrivalTime.Before(rapidCandidate.ArrivalTime)) {
			rapidCandidate = journey
		}
	}

	if rapidCandidate != nil {
		rapidCandidate.Type = tmdf.JourneyTypeRapid
	}
}

func nonPTType(mode tmdf.Mode) tmdf.JourneyType {
	switch mode {
	case tmdf.ModeWalking:
		return tmdf.JourneyTypeNonPTWalk
	case tmdf.ModeBike:
		return tmdf.JourneyTypeNonPTBike
	case tmdf.ModeBss:
		return tmdf.JourneyTypeNonPTBss
	case tmdf.ModeCar, tmdf.ModeCarNoPark, tmdf.ModeTaxi:
		return tmdf.JourneyTypeCar
	}

	return tmdf.JourneyTypeUntyped
}
