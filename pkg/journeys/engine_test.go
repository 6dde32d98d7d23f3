package journeys

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/placeresolver"
	"github.com/itinera/itinera/pkg/planner"
	"github.com/itinera/itinera/pkg/streetnetwork"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlanner replays canned responses and records every request it received
type stubPlanner struct {
	responses []*planner.Response
	err       error

	requests []*planner.Request
}

func (s *stubPlanner) Plan(ctx context.Context, request *planner.Request) (*planner.Response, error) {
	s.requests = append(s.requests, request)

	if s.err != nil {
		return nil, s.err
	}

	index := len(s.requests) - 1
	if index >= len(s.responses) {
		return &planner.Response{}, nil
	}

	return s.responses[index], nil
}

func testEngine(stub *stubPlanner) *Engine {
	return NewEngine(stub, &placeresolver.Resolver{}, nil, nil, nil, config.FanOutConfig{MaxWorkers: 2}, nil)
}

func TestEngineRejectsInvalidRequest(t *testing.T) {
	engine := testEngine(&stubPlanner{})

	response := engine.Run(context.Background(), &tmdf.JourneyRequest{})

	require.NotNil(t, response.Error)
	assert.Equal(t, "invalid_request", response.Error.ID)
	assert.Empty(t, response.Journeys)
}

func TestEngineSingleAttemptWhenEnoughJourneys(t *testing.T) {
	stub := &stubPlanner{
		responses: []*planner.Response{
			{Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)}},
		},
	}
	engine := testEngine(stub)

	response := engine.Run(context.Background(), journeyRequest())

	assert.Nil(t, response.Error)
	require.Len(t, response.Journeys, 1)
	assert.Equal(t, tmdf.JourneyTypeBest, response.Journeys[0].Type)
	assert.Len(t, stub.requests, 1)
}

func TestEngineExtendsWindowUntilMinJourneys(t *testing.T) {
	stub := &stubPlanner{
		responses: []*planner.Response{
			{Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)}},
			{Journeys: []*tmdf.Journey{ptJourney(10*time.Minute, 30*time.Minute)}},
			{Journeys: []*tmdf.Journey{ptJourney(20*time.Minute, 30*time.Minute)}},
		},
	}
	engine := testEngine(stub)

	request := journeyRequest()
	minNbJourneys := 3
	request.MinNbJourneys = &minNbJourneys

	response := engine.Run(context.Background(), request)

	assert.Nil(t, response.Error)
	assert.Len(t, response.Journeys, 3)
	require.Len(t, stub.requests, 3)

	// Each follow up call starts one minute past the previous rapid journey
	firstDeparture := testEpoch
	secondWindow := stub.requests[1].DateTimes[0]
	assert.Equal(t, firstDeparture.Add(time.Minute), secondWindow)

	thirdWindow := stub.requests[2].DateTimes[0]
	assert.Equal(t, testEpoch.Add(10*time.Minute).Add(time.Minute), thirdWindow)
}

func TestEngineStopsAtMaxAttempts(t *testing.T) {
	// The planner keeps returning the same journey, the duplicate is dropped
	// every round and the typed count never grows
	var responses []*planner.Response
	for round := 0; round < 10; round++ {
		responses = append(responses, &planner.Response{
			Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)},
		})
	}

	stub := &stubPlanner{responses: responses}
	engine := testEngine(stub)

	request := journeyRequest()
	minNbJourneys := 3
	request.MinNbJourneys = &minNbJourneys

	response := engine.Run(context.Background(), request)

	// max(2, 3*2) attempts
	assert.Len(t, stub.requests, 6)
	assert.Len(t, response.Journeys, 1)
}

func TestEngineTagsLaterRoundsAsNext(t *testing.T) {
	stub := &stubPlanner{
		responses: []*planner.Response{
			{Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)}},
			{Journeys: []*tmdf.Journey{ptJourney(10*time.Minute, 30*time.Minute)}},
		},
	}
	engine := testEngine(stub)

	request := journeyRequest()
	minNbJourneys := 2
	request.MinNbJourneys = &minNbJourneys

	response := engine.Run(context.Background(), request)

	require.Len(t, response.Journeys, 2)

	Sort(response.Journeys, true)
	assert.False(t, response.Journeys[0].HasTag(tmdf.JourneyTagNext))
	assert.True(t, response.Journeys[1].HasTag(tmdf.JourneyTagNext))
}

func TestEngineNoSolution(t *testing.T) {
	engine := testEngine(&stubPlanner{})

	response := engine.Run(context.Background(), journeyRequest())

	assert.Empty(t, response.Journeys)
	require.NotNil(t, response.Error)
	assert.Equal(t, "no_solution", response.Error.ID)
}

func TestEnginePlannerFailure(t *testing.T) {
	stub := &stubPlanner{err: tmdf.ErrAdapterUnavailable}
	engine := testEngine(stub)

	response := engine.Run(context.Background(), journeyRequest())

	assert.Empty(t, response.Journeys)
	require.NotNil(t, response.Error)
	assert.Equal(t, "technical_failure", response.Error.ID)
	assert.Len(t, stub.requests, 1)
}

func TestEngineIsochroneSingleShot(t *testing.T) {
	stub := &stubPlanner{
		responses: []*planner.Response{
			{Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute), ptJourney(0, 45*time.Minute)}},
		},
	}
	engine := testEngine(stub)

	request := journeyRequest()
	request.Destination = ""

	response := engine.Run(context.Background(), request)

	assert.Nil(t, response.Error)
	assert.Len(t, response.Journeys, 2)
	require.Len(t, stub.requests, 1)
	assert.Equal(t, planner.RequestedAPIIsochrone, stub.requests[0].RequestedAPI)
	assert.Empty(t, stub.requests[0].Destinations)
}

func TestEnginePaginationLinks(t *testing.T) {
	stub := &stubPlanner{
		responses: []*planner.Response{
			{Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)}},
		},
	}
	engine := testEngine(stub)

	response := engine.Run(context.Background(), journeyRequest())

	require.Len(t, response.Journeys, 1)
	assert.Contains(t, response.Links.Next, "datetime_represents=departure")
	assert.Contains(t, response.Links.Prev, "datetime_represents=arrival")
	assert.NotEmpty(t, response.Links.First)
	assert.NotEmpty(t, response.Links.Last)
}

// unreachableRouter fails every call, standing in for a vendor that is down
type unreachableRouter struct{}

func (r *unreachableRouter) Name() string { return "street-router" }

func (r *unreachableRouter) Route(ctx context.Context, mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place) (*streetnetwork.RouteResult, error) {
	return nil, errors.New("connect: connection refused")
}

func (r *unreachableRouter) Matrix(ctx context.Context, mode tmdf.Mode, origins []tmdf.Place, destinations []tmdf.Place) ([][]streetnetwork.MatrixCell, error) {
	return nil, errors.New("connect: connection refused")
}

func TestEngineRequiredVendorFailureSurfaces(t *testing.T) {
	manager := streetnetwork.NewManager()
	manager.RegisterService(streetnetwork.NewService(&unreachableRouter{}, config.StreetNetworkVendorConfig{
		Name:     "street-router",
		Modes:    []tmdf.Mode{tmdf.ModeWalking},
		Required: true,
	}, nil))

	stub := &stubPlanner{}
	engine := NewEngine(stub, &placeresolver.Resolver{}, manager, nil, nil, config.FanOutConfig{MaxWorkers: 2}, nil)

	request := journeyRequest()
	request.OriginModes = []tmdf.Mode{tmdf.ModeWalking}
	request.DestinationModes = []tmdf.Mode{tmdf.ModeWalking}

	response := engine.Run(context.Background(), request)

	assert.Empty(t, response.Journeys)
	require.NotNil(t, response.Error)
	assert.Equal(t, "technical_failure", response.Error.ID)
}

func TestEngineVendorFailureIgnoredWhenPlannerDelivers(t *testing.T) {
	manager := streetnetwork.NewManager()
	manager.RegisterService(streetnetwork.NewService(&unreachableRouter{}, config.StreetNetworkVendorConfig{
		Name:     "street-router",
		Modes:    []tmdf.Mode{tmdf.ModeWalking},
		Required: true,
	}, nil))

	stub := &stubPlanner{
		responses: []*planner.Response{
			{Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)}},
		},
	}
	engine := NewEngine(stub, &placeresolver.Resolver{}, manager, nil, nil, config.FanOutConfig{MaxWorkers: 2}, nil)

	request := journeyRequest()
	request.OriginModes = []tmdf.Mode{tmdf.ModeWalking}
	request.DestinationModes = []tmdf.Mode{tmdf.ModeWalking}

	response := engine.Run(context.Background(), request)

	assert.Len(t, response.Journeys, 1)
	assert.Nil(t, response.Error)
}

func TestResolveErrorClassification(t *testing.T) {
	invalid := resolveError(&tmdf.InvalidRequestError{Reason: "unknown place somewhere"})
	assert.Equal(t, "invalid_request", invalid.ID)

	technical := resolveError(errors.New("place lookup for somewhere failed: server selection timeout"))
	assert.Equal(t, "technical_failure", technical.ID)
}
