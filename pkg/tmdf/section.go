package tmdf

import "time"

type SectionType string

const (
	SectionTypeStreetNetwork   SectionType = "street_network"
	SectionTypePublicTransport SectionType = "public_transport"
	SectionTypeTransfer        SectionType = "transfer"
	SectionTypeCrowFly         SectionType = "crow_fly"
	SectionTypeWaiting         SectionType = "waiting"
	SectionTypeBssRent         SectionType = "bss_rent"
	SectionTypeBssPutBack      SectionType = "bss_put_back"
	SectionTypePark            SectionType = "park"
	SectionTypeLeaveParking    SectionType = "leave_parking"
)

type Mode string

const (
	ModeWalking     Mode = "walking"
	ModeBike        Mode = "bike"
	ModeCar         Mode = "car"
	ModeBss         Mode = "bss"
	ModeCarNoPark   Mode = "car_no_park"
	ModeTaxi        Mode = "taxi"
	ModeRidesharing Mode = "ridesharing"
)

var AllModes = []Mode{ModeWalking, ModeBike, ModeCar, ModeBss, ModeCarNoPark, ModeTaxi, ModeRidesharing}

func ValidMode(m Mode) bool {
	for _, mode := range AllModes {
		if mode == m {
			return true
		}
	}

	return false
}

// PathItem is a single instruction within a street network section
type PathItem struct {
	Name      string  `groups:"detailed" bson:",omitempty"`
	Length    float64 `groups:"detailed"`
	Duration  int64   `groups:"detailed"`
	Direction int     `groups:"detailed"`
}

// StopTime is one timetabled call of a public transport section. The
// predicted fields are overwritten by realtime proxy passages when available
type StopTime struct {
	StopPointRef  string `groups:"basic"`
	StopPointName string `groups:"basic" bson:",omitempty"`

	DepartureTime time.Time `groups:"basic"`
	ArrivalTime   time.Time `groups:"basic"`

	PredictedDepartureTime time.Time `groups:"basic" json:",omitempty" bson:",omitempty"`
	Predicted              bool      `groups:"basic"`
	DirectionName          string    `groups:"detailed" json:",omitempty" bson:",omitempty"`
}

type DisplayInformation struct {
	LineRef      string `groups:"basic" bson:",omitempty"`
	LineName     string `groups:"basic" bson:",omitempty"`
	Network      string `groups:"basic" bson:",omitempty"`
	Headsign     string `groups:"basic" bson:",omitempty"`
	Direction    string `groups:"basic" bson:",omitempty"`
	PhysicalMode string `groups:"basic" bson:",omitempty"`
}

// Section is one typed step of a journey
type Section struct {
	PrimaryIdentifier string `groups:"basic"`

	Type SectionType `groups:"basic"`
	Mode Mode        `groups:"basic" json:",omitempty" bson:",omitempty"`

	Origin      Place `groups:"basic"`
	Destination Place `groups:"basic"`

	DepartureTime time.Time `groups:"basic"`
	ArrivalTime   time.Time `groups:"basic"`

	Duration time.Duration `groups:"basic"`
	Length   float64       `groups:"basic" json:",omitempty"`

	RouteRef string `groups:"internal" json:",omitempty" bson:",omitempty"`

	Path      []PathItem          `groups:"detailed" json:",omitempty" bson:",omitempty"`
	StopTimes []*StopTime         `groups:"basic" json:",omitempty" bson:",omitempty"`
	Display   *DisplayInformation `groups:"basic" json:",omitempty" bson:",omitempty"`

	TicketRef string `groups:"internal" json:",omitempty" bson:",omitempty"`
}

// RoutePoint identifies the (stop point, route) pair a realtime lookup is
// keyed on. It is comparable so repeated lookups for the same pair within one
// request collapse into a single adapter call
type RoutePoint struct {
	StopPointRef string
	RouteRef     string
}

func (s *Section) RoutePoint() RoutePoint {
	if s.Type != SectionTypePublicTransport || len(s.StopTimes) == 0 {
		return RoutePoint{}
	}

	return RoutePoint{
		StopPointRef: s.StopTimes[0].StopPointRef,
		RouteRef:     s.RouteRef,
	}
}

// RealTimePassage is a single upcoming passage reported by a realtime proxy
type RealTimePassage struct {
	DateTime      time.Time `groups:"basic"`
	DirectionName string    `groups:"basic" json:",omitempty"`
	DirectionURI  string    `groups:"detailed" json:",omitempty"`
	IsRealTime    bool      `groups:"basic"`
}
