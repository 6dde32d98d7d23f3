package planner

import (
	"context"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
)

type RequestedAPI string

const (
	RequestedAPIJourneys  RequestedAPI = "JOURNEYS"
	RequestedAPIIsochrone RequestedAPI = "ISOCHRONE"
)

type StreetNetworkParams struct {
	MaxDurationToPT time.Duration         `json:"max_duration_to_pt"`
	ModeSpeeds      map[tmdf.Mode]float64 `json:"mode_speeds"`
	OriginMode      tmdf.Mode             `json:"origin_mode"`
	DestinationMode tmdf.Mode             `json:"destination_mode"`
}

// Request is the structured call into the core trip computation engine. The
// engine behind it owns the actual graph search - this tier only drives it
type Request struct {
	RequestedAPI RequestedAPI `json:"requested_api"`

	Origins      []tmdf.Place `json:"origins"`
	Destinations []tmdf.Place `json:"destinations"`

	DateTimes []time.Time `json:"datetimes"`
	Clockwise bool        `json:"clockwise"`

	StreetNetworkParams StreetNetworkParams `json:"streetnetwork_params"`

	MaxDuration  time.Duration `json:"max_duration"`
	MaxTransfers int           `json:"max_transfers"`

	Wheelchair    bool     `json:"wheelchair"`
	ShowCodes     bool     `json:"show_codes"`
	ForbiddenURIs []string `json:"forbidden_uris"`
}

type Response struct {
	Journeys []*tmdf.Journey     `json:"journeys"`
	Tickets  []tmdf.Ticket       `json:"tickets"`
	Error    *tmdf.ResponseError `json:"error,omitempty"`
}

type Planner interface {
	Plan(ctx context.Context, request *Request) (*Response, error)
}
