package journeys

import (
	"context"
	"errors"
	"time"

	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/fanout"
	"github.com/itinera/itinera/pkg/placeresolver"
	"github.com/itinera/itinera/pkg/planner"
	"github.com/itinera/itinera/pkg/realtimeproxy"
	"github.com/itinera/itinera/pkg/ridesharing"
	"github.com/itinera/itinera/pkg/streetnetwork"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const windowShiftStep = time.Minute

// resolveError maps a place resolution failure onto the response error
// taxonomy. Unknown places are the caller's fault, a broken lookup is ours
func resolveError(err error) *tmdf.ResponseError {
	var invalidRequest *tmdf.InvalidRequestError
	if errors.As(err, &invalidRequest) {
		return tmdf.NewInvalidRequestError(err.Error())
	}

	return tmdf.NewTechnicalFailureError(err.Error())
}

// Engine drives the iterative plan / qualify / merge / extend-window loop and
// the fallback fan out around it. One invocation owns its response set
// exclusively - nothing here is shared across requests
type Engine struct {
	planner  planner.Planner
	resolver *placeresolver.Resolver

	streetNetwork   *streetnetwork.Manager
	realtimeProxies []*realtimeproxy.Proxy
	ridesharing     []*ridesharing.Service

	fanoutConfig config.FanOutConfig
	modeParams   map[tmdf.Mode]tmdf.SpeedParams
}

func NewEngine(plannerClient planner.Planner, resolver *placeresolver.Resolver, streetNetworkManager *streetnetwork.Manager, realtimeProxies []*realtimeproxy.Proxy, ridesharingServices []*ridesharing.Service, fanoutConfig config.FanOutConfig, modeParams map[tmdf.Mode]tmdf.SpeedParams) *Engine {
	return &Engine{
		planner:         plannerClient,
		resolver:        resolver,
		streetNetwork:   streetNetworkManager,
		realtimeProxies: realtimeProxies,
		ridesharing:     ridesharingServices,
		fanoutConfig:    fanoutConfig,
		modeParams:      modeParams,
	}
}

// Run executes one journey request end to end. The returned set always
// either contains journeys or carries an explicit error
func (e *Engine) Run(ctx context.Context, request *tmdf.JourneyRequest) *tmdf.ResponseSet {
	response := &tmdf.ResponseSet{}

	if err := request.Validate(); err != nil {
		response.Error = tmdf.NewInvalidRequestError(err.Error())
		return response
	}

	origin, err := e.resolver.Resolve(ctx, request.Origin)
	if err != nil {
		response.Error = resolveError(err)
		return response
	}

	if request.IsIsochrone() {
		return e.runIsochrone(ctx, request, origin)
	}

	destination, err := e.resolver.Resolve(ctx, request.Destination)
	if err != nil {
		response.Error = resolveError(err)
		return response
	}

	responseIndex := 0
	foundAny := false

	// Direct non public transport paths across the usable fallback modes
	directJourneys, directErr := e.directPaths(ctx, request, *origin, *destination)
	if len(directJourneys) > 0 {
		foundAny = true
		Qualify(directJourneys)
		ChangeIds(directJourneys, nil, responseIndex)
		responseIndex += 1
		Merge(response, directJourneys, nil)
	}

	// The planner loop. Iterations are strictly sequential: each reply
	// determines the next search window
	maxAttempts := 2
	if request.MinNbJourneys != nil && *request.MinNbJourneys*2 > maxAttempts {
		maxAttempts = *request.MinNbJourneys * 2
	}

	subRequest := request.Clone()
	subRequest.DateTimes = []time.Time{request.RequestedDateTime()}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		reply, err := e.planner.Plan(ctx, e.buildPlannerRequest(subRequest, *origin, *destination))
		if err != nil {
			log.Error().Err(err).Int("attempt", attempt).Msg("Planner call failed")
			if response.Error == nil && len(response.Journeys) == 0 {
				response.Error = tmdf.NewTechnicalFailureError("the trip planner is unavailable")
			}
			break
		}

		if reply.Error != nil && response.Error == nil && len(reply.Journeys) == 0 {
			response.Error = reply.Error
		}

		if len(reply.Journeys) > 0 {
			foundAny = true
		}

		Qualify(reply.Journeys)

		if attempt > 0 && len(response.Journeys) > 0 {
			tagAlternatives(reply.Journeys, request.Clockwise)
		}

		nextDateTime, hasWindow := nextWindowDateTime(reply.Journeys, request.Clockwise)

		ChangeIds(reply.Journeys, reply.Tickets, responseIndex)
		responseIndex += 1
		Merge(response, reply.Journeys, reply.Tickets)

		Filter(response, request, false, foundAny)

		if request.Debug {
			log.Debug().Msgf("Merged journey set after attempt %d: %s", attempt, pretty.Sprint(response.Journeys))
		}

		if !e.needMoreJourneys(response, request) {
			break
		}

		if !hasWindow {
			// Nothing to anchor the next window on, a further identical call
			// cannot produce anything new
			break
		}

		subRequest.DateTimes = []time.Time{nextDateTime}
	}

	Sort(response.Journeys, request.Clockwise)
	ChooseBest(response)
	Filter(response, request, true, foundAny)

	// Ridesharing offers enrich the final set after filtering. They are tagged
	// rather than typed, so they never count towards the minimum journey loop
	// and never displace a qualified journey
	ridesharingJourneys, ridesharingTickets := e.ridesharingJourneys(ctx, request, *origin, *destination)
	if len(ridesharingJourneys) > 0 {
		ChangeIds(ridesharingJourneys, ridesharingTickets, responseIndex)
		responseIndex += 1
		Merge(response, ridesharingJourneys, ridesharingTickets)
		Sort(response.Journeys, request.Clockwise)

		response.Error = nil
	}

	if len(response.Journeys) == 0 && response.Error == nil {
		switch {
		case foundAny:
			response.Error = tmdf.NewFilteredToEmptyError()
		case directErr != nil:
			// A street network adapter failed instead of degrading, the empty
			// set is an outage and not a legitimate no solution
			response.Error = tmdf.NewTechnicalFailureError("a street network service is unavailable")
		default:
			response.Error = tmdf.NewNoSolutionError()
		}
	}

	e.enrichRealtime(ctx, response)

	BuildPaginationLinks(response, request)

	return response
}

// runIsochrone issues a single planner call and returns the qualified reply
// directly - no window extension, no filtering
func (e *Engine) runIsochrone(ctx context.Context, request *tmdf.JourneyRequest, origin *tmdf.Place) *tmdf.ResponseSet {
	response := &tmdf.ResponseSet{}

	plannerRequest := e.buildPlannerRequest(request, *origin, tmdf.Place{})
	plannerRequest.RequestedAPI = planner.RequestedAPIIsochrone
	plannerRequest.Destinations = nil

	reply, err := e.planner.Plan(ctx, plannerRequest)
	if err != nil {
		response.Error = tmdf.NewTechnicalFailureError("the trip planner is unavailable")
		return response
	}

	Qualify(reply.Journeys)

	response.Journeys = reply.Journeys
	response.Tickets = reply.Tickets
	response.Error = reply.Error

	if len(response.Journeys) == 0 && response.Error == nil {
		response.Error = tmdf.NewNoSolutionError()
	}

	return response
}

// directPaths fans out direct path requests over every fallback mode allowed
// on both ends of the trip. The returned error is the first adapter failure a
// vendor surfaced instead of degrading to no solution
func (e *Engine) directPaths(ctx context.Context, request *tmdf.JourneyRequest, origin tmdf.Place, destination tmdf.Place) ([]*tmdf.Journey, error) {
	if e.streetNetwork == nil {
		return nil, nil
	}

	var modes []tmdf.Mode
	for _, mode := range request.OriginModes {
		if mode == tmdf.ModeRidesharing {
			continue
		}
		if slices.Contains(request.DestinationModes, mode) {
			modes = append(modes, mode)
		}
	}

	if len(modes) == 0 {
		return nil, nil
	}

	extremity := streetnetwork.TimeExtremity{
		DateTime:  request.RequestedDateTime(),
		Departure: request.Clockwise,
	}

	batch := fanout.NewBatch[tmdf.Mode, *tmdf.Journey](e.fanoutConfig)

	tasks := map[tmdf.Mode]func(context.Context) (*tmdf.Journey, error){}
	for _, mode := range modes {
		mode := mode
		tasks[mode] = func(callCtx context.Context) (*tmdf.Journey, error) {
			return e.streetNetwork.DirectPath(callCtx, mode, origin, destination, extremity, request)
		}
	}

	var journeys []*tmdf.Journey
	var failure error
	for _, result := range batch.Execute(ctx, tasks) {
		if result.Err != nil {
			if tmdf.IsAdapterFailure(result.Err) {
				log.Error().
					Err(result.Err).
					Str("mode", string(result.Key)).
					Msg("Street network direct path failed")

				if failure == nil {
					failure = result.Err
				}
			}
			continue
		}
		if result.Value == nil {
			continue
		}

		journeys = append(journeys, result.Value)
	}

	return journeys, failure
}

func (e *Engine) buildPlannerRequest(request *tmdf.JourneyRequest, origin tmdf.Place, destination tmdf.Place) *planner.Request {
	modeSpeeds := map[tmdf.Mode]float64{}
	maxDurationToPT := time.Duration(0)

	for mode, params := range e.modeParams {
		modeSpeeds[mode] = params.Speed
		if params.MaxDuration > maxDurationToPT {
			maxDurationToPT = params.MaxDuration
		}
	}
	for mode, params := range request.ModeParams {
		modeSpeeds[mode] = params.Speed
	}

	plannerRequest := &planner.Request{
		RequestedAPI: planner.RequestedAPIJourneys,
		Origins:      []tmdf.Place{origin},
		DateTimes:    request.DateTimes,
		Clockwise:    request.Clockwise,
		StreetNetworkParams: planner.StreetNetworkParams{
			MaxDurationToPT: maxDurationToPT,
			ModeSpeeds:      modeSpeeds,
		},
		MaxDuration:   request.MaxDuration,
		MaxTransfers:  request.MaxTransfers,
		Wheelchair:    request.Wheelchair,
		ShowCodes:     true,
		ForbiddenURIs: request.ForbiddenURIs,
	}

	if len(request.OriginModes) > 0 {
		plannerRequest.StreetNetworkParams.OriginMode = request.OriginModes[0]
	}
	if len(request.DestinationModes) > 0 {
		plannerRequest.StreetNetworkParams.DestinationMode = request.DestinationModes[0]
	}

	if destination.PrimaryIdentifier != "" {
		plannerRequest.Destinations = []tmdf.Place{destination}
	}

	return plannerRequest
}

// needMoreJourneys is the loop continuation condition: keep extending the
// window while the typed journey count is below the requested minimum, or
// while nothing typed exists at all when no minimum was requested
func (e *Engine) needMoreJourneys(response *tmdf.ResponseSet, request *tmdf.JourneyRequest) bool {
	typedCount := response.TypedJourneyCount()

	if request.MinNbJourneys != nil {
		return typedCount < *request.MinNbJourneys
	}

	return typedCount == 0
}

// nextWindowDateTime derives the reference datetime of the next planner call
// from the just fetched raw reply: one minute past the rapid journey when one
// exists, otherwise past the extreme journey of the reply
func nextWindowDateTime(journeys []*tmdf.Journey, clockwise bool) (time.Time, bool) {
	if len(journeys) == 0 {
		return time.Time{}, false
	}

	var anchor *tmdf.Journey

	for _, journey := range journeys {
		if journey.Type == tmdf.JourneyTypeRapid {
			anchor = journey
			break
		}
	}

	if anchor == nil {
		anchor = journeys[0]
		for _, journey := range journeys[1:] {
			if clockwise {
				if journey.DepartureTime.After(anchor.DepartureTime) {
					anchor = journey
				}
			} else {
				if journey.ArrivalTime.Before(anchor.ArrivalTime) {
					anchor = journey
				}
			}
		}
	}

	if clockwise {
		return anchor.DepartureTime.Add(windowShiftStep), true
	}

	return anchor.ArrivalTime.Add(-windowShiftStep), true
}

func tagAlternatives(journeys []*tmdf.Journey, clockwise bool) {
	tag := tmdf.JourneyTagNext
	if !clockwise {
		tag = tmdf.JourneyTagPrev
	}

	for _, journey := range journeys {
		journey.AddTag(tag)
	}
}
