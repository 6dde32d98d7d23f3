package tmdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func buildJourney(sections ...*Section) *Journey {
	journey := &Journey{Sections: sections}
	journey.ComputeAggregates()
	return journey
}

func section(kind SectionType, mode Mode, departure time.Time, duration time.Duration) *Section {
	return &Section{
		Type:          kind,
		Mode:          mode,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(duration),
		Duration:      duration,
	}
}

var anchor = time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)

func TestComputeAggregates(t *testing.T) {
	journey := buildJourney(
		section(SectionTypeStreetNetwork, ModeWalking, anchor, 5*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(5*time.Minute), 20*time.Minute),
		section(SectionTypeTransfer, "", anchor.Add(25*time.Minute), 3*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(28*time.Minute), 15*time.Minute),
		section(SectionTypeStreetNetwork, ModeWalking, anchor.Add(43*time.Minute), 2*time.Minute),
	)

	assert.Equal(t, anchor, journey.DepartureTime)
	assert.Equal(t, anchor.Add(45*time.Minute), journey.ArrivalTime)
	assert.Equal(t, 45*time.Minute, journey.Duration)
	assert.Equal(t, 1, journey.NbTransfers)
	assert.Equal(t, 7*time.Minute, journey.Durations.Walking)
}

func TestDominantMode(t *testing.T) {
	journey := buildJourney(
		section(SectionTypeStreetNetwork, ModeWalking, anchor, 5*time.Minute),
		section(SectionTypeStreetNetwork, ModeBike, anchor.Add(5*time.Minute), 20*time.Minute),
	)

	assert.Equal(t, ModeBike, journey.DominantMode())
}

func TestDominantModeBssRentWins(t *testing.T) {
	journey := buildJourney(
		section(SectionTypeBssRent, "", anchor, time.Minute),
		section(SectionTypeStreetNetwork, ModeBike, anchor.Add(time.Minute), 10*time.Minute),
	)

	assert.Equal(t, ModeBss, journey.DominantMode())
}

func TestNonPTDuration(t *testing.T) {
	journey := buildJourney(
		section(SectionTypeStreetNetwork, ModeWalking, anchor, 5*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(5*time.Minute), 20*time.Minute),
		section(SectionTypeWaiting, "", anchor.Add(25*time.Minute), 4*time.Minute),
	)

	assert.Equal(t, 9*time.Minute, journey.NonPTDuration())
}

func TestSameAs(t *testing.T) {
	base := buildJourney(
		section(SectionTypeStreetNetwork, ModeWalking, anchor, 5*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(5*time.Minute), 25*time.Minute),
	)

	identical := buildJourney(
		section(SectionTypeStreetNetwork, ModeWalking, anchor, 5*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(5*time.Minute), 25*time.Minute),
	)
	assert.True(t, base.SameAs(identical))

	shifted := buildJourney(
		section(SectionTypeStreetNetwork, ModeWalking, anchor.Add(time.Minute), 5*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(6*time.Minute), 25*time.Minute),
	)
	assert.False(t, base.SameAs(shifted))

	differentShape := buildJourney(
		section(SectionTypeStreetNetwork, ModeBike, anchor, 5*time.Minute),
		section(SectionTypePublicTransport, "", anchor.Add(5*time.Minute), 25*time.Minute),
	)
	assert.False(t, base.SameAs(differentShape))
}

func TestTags(t *testing.T) {
	journey := &Journey{}

	journey.AddTag(JourneyTagNext)
	journey.AddTag(JourneyTagNext)

	assert.Equal(t, []string{JourneyTagNext}, journey.Tags)
	assert.True(t, journey.HasTag(JourneyTagNext))
	assert.False(t, journey.HasTag(JourneyTagPrev))
}
