package journeys

import (
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
)

var testEpoch = time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)

type testSection struct {
	id        string
	kind      tmdf.SectionType
	mode      tmdf.Mode
	ticketRef string
}

func testJourney(departureOffset time.Duration, duration time.Duration, sections ...testSection) *tmdf.Journey {
	if len(sections) == 0 {
		sections = []testSection{{id: "section:1", kind: tmdf.SectionTypePublicTransport}}
	}

	departure := testEpoch.Add(departureOffset)
	arrival := departure.Add(duration)

	journey := &tmdf.Journey{}

	sectionDuration := duration / time.Duration(len(sections))
	cursor := departure

	for index, section := range sections {
		sectionArrival := cursor.Add(sectionDuration)
		if index == len(sections)-1 {
			sectionArrival = arrival
		}

		journey.Sections = append(journey.Sections, &tmdf.Section{
			PrimaryIdentifier: section.id,
			Type:              section.kind,
			Mode:              section.mode,
			DepartureTime:     cursor,
			ArrivalTime:       sectionArrival,
			Duration:          sectionArrival.Sub(cursor),
			TicketRef:         section.ticketRef,
		})

		cursor = sectionArrival
	}

	journey.ComputeAggregates()

	return journey
}

func ptJourney(departureOffset time.Duration, duration time.Duration) *tmdf.Journey {
	return testJourney(departureOffset, duration,
		testSection{id: "section:walk", kind: tmdf.SectionTypeStreetNetwork, mode: tmdf.ModeWalking},
		testSection{id: "section:pt", kind: tmdf.SectionTypePublicTransport},
	)
}

func walkJourney(departureOffset time.Duration, duration time.Duration) *tmdf.Journey {
	return testJourney(departureOffset, duration,
		testSection{id: "section:walk", kind: tmdf.SectionTypeStreetNetwork, mode: tmdf.ModeWalking},
	)
}

func carJourney(departureOffset time.Duration, duration time.Duration) *tmdf.Journey {
	return testJourney(departureOffset, duration,
		testSection{id: "section:car", kind: tmdf.SectionTypeStreetNetwork, mode: tmdf.ModeCar},
	)
}

func journeyRequest() *tmdf.JourneyRequest {
	return &tmdf.JourneyRequest{
		Origin:      "0.1;51.5",
		Destination: "0.2;51.6",
		DateTimes:   []time.Time{testEpoch},
		Clockwise:   true,
	}
}
