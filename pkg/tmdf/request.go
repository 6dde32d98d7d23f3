package tmdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
)

// SpeedParams carries the per mode speed and reach limits used both for the
// planner's street network parameters and for the adapter level geodesic
// short circuit
type SpeedParams struct {
	Speed       float64       `json:"speed" yaml:"speed" validate:"gt=0"`
	MaxDistance float64       `json:"max_distance" yaml:"max_distance" validate:"gte=0"`
	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration" validate:"gte=0"`
}

// JourneyRequest is the caller facing request. It is treated as immutable
// once validated - every planner sub call works on a deep copy
type JourneyRequest struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination"`

	DateTimes []time.Time `json:"datetimes" validate:"required,min=1"`
	Clockwise bool        `json:"clockwise"`

	OriginModes      []Mode `json:"origin_modes"`
	DestinationModes []Mode `json:"destination_modes"`

	ModeParams map[Mode]SpeedParams `json:"mode_params"`

	MaxTransfers int           `json:"max_transfers"`
	MaxDuration  time.Duration `json:"max_duration"`

	Wheelchair    bool     `json:"wheelchair"`
	ForbiddenURIs []string `json:"forbidden_uris"`

	MinNbJourneys *int `json:"min_nb_journeys"`
	MaxNbJourneys int  `json:"max_nb_journeys"`

	TypeFilter JourneyType `json:"type"`

	Debug bool `json:"debug"`
}

var requestValidator = validator.New()

// Validate rejects a malformed request before any adapter is called
func (r *JourneyRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return &InvalidRequestError{Reason: err.Error()}
	}

	for _, mode := range append(append([]Mode{}, r.OriginModes...), r.DestinationModes...) {
		if !ValidMode(mode) {
			return &InvalidRequestError{Reason: fmt.Sprintf("unknown fallback mode %s", mode)}
		}
	}

	if r.MinNbJourneys != nil && *r.MinNbJourneys < 0 {
		return &InvalidRequestError{Reason: "min_nb_journeys cannot be negative"}
	}

	return nil
}

// Clone returns a deep copy safe to mutate for a single planner sub call
func (r *JourneyRequest) Clone() *JourneyRequest {
	var copied JourneyRequest

	err := copier.CopyWithOption(&copied, r, copier.Option{DeepCopy: true})
	if err != nil {
		// copier only fails on invalid to/from types, which cannot happen here
		panic(err)
	}

	return &copied
}

// IsIsochrone reports whether this is a destinationless request, which gets a
// single planner call and no window extension loop
func (r *JourneyRequest) IsIsochrone() bool {
	return r.Destination == ""
}

// RequestedDateTime is the reference datetime of the search window
func (r *JourneyRequest) RequestedDateTime() time.Time {
	return r.DateTimes[0]
}

// ParseCoordinate reads a "lon;lat" place identifier, the other identifier
// shape being a named place reference for the resolver
func ParseCoordinate(identifier string) (Place, bool) {
	parts := strings.Split(identifier, ";")
	if len(parts) != 2 {
		return Place{}, false
	}

	lon, lonErr := strconv.ParseFloat(parts[0], 64)
	lat, latErr := strconv.ParseFloat(parts[1], 64)

	if lonErr != nil || latErr != nil {
		return Place{}, false
	}

	return NewCoordinatePlace(lon, lat), true
}
