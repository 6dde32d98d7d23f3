package tmdf

import (
	"time"

	"golang.org/x/exp/slices"
)

type JourneyType string

const (
	JourneyTypeUntyped   JourneyType = ""
	JourneyTypeBest      JourneyType = "best"
	JourneyTypeRapid     JourneyType = "rapid"
	JourneyTypeNonPTWalk JourneyType = "non_pt_walk"
	JourneyTypeNonPTBike JourneyType = "non_pt_bike"
	JourneyTypeNonPTBss  JourneyType = "non_pt_bss"
	JourneyTypeCar       JourneyType = "car"
)

// NonPTJourneyTypes are the direct mode families the filter keeps only the
// first occurrence of
var NonPTJourneyTypes = []JourneyType{
	JourneyTypeNonPTBss,
	JourneyTypeNonPTWalk,
	JourneyTypeNonPTBike,
	JourneyTypeCar,
}

const (
	JourneyTagNext        = "next"
	JourneyTagPrev        = "prev"
	JourneyTagRidesharing = "ridesharing"
	JourneyTagAlternative = "alternative"
)

type DurationBreakdown struct {
	Total       time.Duration `groups:"basic"`
	Walking     time.Duration `groups:"basic"`
	Bike        time.Duration `groups:"basic"`
	Car         time.Duration `groups:"basic"`
	Taxi        time.Duration `groups:"basic"`
	Ridesharing time.Duration `groups:"basic"`
}

type DistanceBreakdown struct {
	Walking     float64 `groups:"basic"`
	Bike        float64 `groups:"basic"`
	Car         float64 `groups:"basic"`
	Taxi        float64 `groups:"basic"`
	Ridesharing float64 `groups:"basic"`
}

type Fare struct {
	Found      bool     `groups:"basic"`
	TicketRefs []string `groups:"basic" json:",omitempty"`
}

type Journey struct {
	Sections []*Section `groups:"basic"`

	DepartureTime time.Time `groups:"basic"`
	ArrivalTime   time.Time `groups:"basic"`

	Duration    time.Duration `groups:"basic"`
	NbTransfers int           `groups:"basic"`

	Durations DurationBreakdown `groups:"basic"`
	Distances DistanceBreakdown `groups:"basic"`

	Type JourneyType `groups:"basic"`
	Tags []string    `groups:"basic" json:",omitempty"`

	Fare Fare `groups:"basic"`
}

func (j *Journey) HasTag(tag string) bool {
	return slices.Contains(j.Tags, tag)
}

func (j *Journey) AddTag(tag string) {
	if !j.HasTag(tag) {
		j.Tags = append(j.Tags, tag)
	}
}

// HasPublicTransport reports whether any section is a public transport leg
func (j *Journey) HasPublicTransport() bool {
	for _, section := range j.Sections {
		if section.Type == SectionTypePublicTransport {
			return true
		}
	}

	return false
}

// DominantMode returns the fallback mode covering the most time across the
// journey's street network sections
func (j *Journey) DominantMode() Mode {
	modeDurations := map[Mode]time.Duration{}

	for _, section := range j.Sections {
		if section.Type == SectionTypeStreetNetwork || section.Type == SectionTypeCrowFly {
			modeDurations[section.Mode] += section.Duration
		}

		// A rent or put back step implies the journey is a bike share one
		if section.Type == SectionTypeBssRent || section.Type == SectionTypeBssPutBack {
			return ModeBss
		}
	}

	var dominant Mode
	var longest time.Duration
	for mode, duration := range modeDurations {
		if duration > longest {
			dominant = mode
			longest = duration
		}
	}

	return dominant
}

// NonPTDuration is the cumulative duration of every non public transport
// section, the final tie break key of the journey comparator
func (j *Journey) NonPTDuration() time.Duration {
	var total time.Duration

	for _, section := range j.Sections {
		if section.Type != SectionTypePublicTransport {
			total += section.Duration
		}
	}

	return total
}

// ComputeAggregates rederives the journey level summary fields from its
// sections
func (j *Journey) ComputeAggregates() {
	if len(j.Sections) == 0 {
		return
	}

	j.DepartureTime = j.Sections[0].DepartureTime
	j.ArrivalTime = j.Sections[len(j.Sections)-1].ArrivalTime
	j.Duration = j.ArrivalTime.Sub(j.DepartureTime)

	j.NbTransfers = 0
	j.Durations = DurationBreakdown{Total: j.Duration}
	j.Distances = DistanceBreakdown{}

	seenPublicTransport := false

	for _, section := range j.Sections {
		if section.Type == SectionTypePublicTransport {
			if seenPublicTransport {
				j.NbTransfers += 1
			}
			seenPublicTransport = true
		}

		if section.Type != SectionTypeStreetNetwork && section.Type != SectionTypeCrowFly {
			continue
		}

		switch section.Mode {
		case ModeWalking:
			j.Durations.Walking += section.Duration
			j.Distances.Walking += section.Length
		case ModeBike, ModeBss:
			j.Durations.Bike += section.Duration
			j.Distances.Bike += section.Length
		case ModeCar, ModeCarNoPark:
			j.Durations.Car += section.Duration
			j.Distances.Car += section.Length
		case ModeTaxi:
			j.Durations.Taxi += section.Duration
			j.Distances.Taxi += section.Length
		case ModeRidesharing:
			j.Durations.Ridesharing += section.Duration
			j.Distances.Ridesharing += section.Length
		}
	}
}

// SameAs is the structural equality used to spot near duplicate alternatives
// coming back from repeated planner calls with shifted windows. Two journeys
// are the same alternative when they run at the same times, take as long and
// follow the same sequence of section types and modes
func (j *Journey) SameAs(other *Journey) bool {
	if !j.DepartureTime.Equal(other.DepartureTime) || !j.ArrivalTime.Equal(other.ArrivalTime) {
		return false
	}

	if j.Duration != other.Duration {
		return false
	}

	if len(j.Sections) != len(other.Sections) {
		return false
	}

	for index, section := range j.Sections {
		otherSection := other.Sections[index]

		if section.Type != otherSection.Type || section.Mode != otherSection.Mode {
			return false
		}
	}

	return true
}
