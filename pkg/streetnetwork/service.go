package streetnetwork

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itinera/itinera/pkg/breaker"
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Service wraps one vendor client as a full street network adapter: circuit
// breaker isolation, per operation class timeouts, the geodesic short circuit
// and assembly of raw vendor results into journeys. One instance exists per
// (vendor, mode set)
type Service struct {
	client VendorClient

	modes    []tmdf.Mode
	required bool

	breaker *breaker.CircuitBreaker

	fastTimeout time.Duration
	slowTimeout time.Duration

	modeParams map[tmdf.Mode]tmdf.SpeedParams
}

func NewService(client VendorClient, vendorConfig config.StreetNetworkVendorConfig, modeParams map[tmdf.Mode]tmdf.SpeedParams) *Service {
	return &Service{
		client:      client,
		modes:       vendorConfig.Modes,
		required:    vendorConfig.Required,
		breaker:     breaker.NewCircuitBreaker(vendorConfig.Name, vendorConfig.Breaker),
		fastTimeout: vendorConfig.FastTimeout.AsDuration(),
		slowTimeout: vendorConfig.SlowTimeout.AsDuration(),
		modeParams:  modeParams,
	}
}

func (s *Service) Name() string {
	return s.client.Name()
}

func (s *Service) HandlesMode(mode tmdf.Mode) bool {
	return slices.Contains(s.modes, mode)
}

// DirectPath computes a single mode journey between two places. When the
// great circle distance already exceeds what the mode can cover it returns no
// solution without any network call
func (s *Service) DirectPath(ctx context.Context, mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place, extremity TimeExtremity, request *tmdf.JourneyRequest) (*tmdf.Journey, error) {
	if s.exceedsModeLimits(mode, origin, destination, request) {
		log.Debug().
			Str("adapter", s.Name()).
			Str("mode", string(mode)).
			Msg("Direct path over mode reach limit, skipping call")
		return nil, tmdf.ErrNoSolution
	}

	var result *RouteResult

	err := s.call(func(callCtx context.Context) error {
		var routeErr error
		result, routeErr = s.client.Route(callCtx, mode, origin, destination)
		return routeErr
	}, s.fastTimeout)

	if err != nil {
		return nil, s.classify(err)
	}

	return s.assembleJourney(mode, origin, destination, extremity, result), nil
}

// RoutingMatrix computes the travel time table between every origin and
// destination pair. The vendor reply must match the requested dimensions,
// anything else is a malformed response
func (s *Service) RoutingMatrix(ctx context.Context, origins []tmdf.Place, destinations []tmdf.Place, mode tmdf.Mode, maxDuration time.Duration, request *tmdf.JourneyRequest) (*Matrix, error) {
	var cells [][]MatrixCell

	err := s.call(func(callCtx context.Context) error {
		var matrixErr error
		cells, matrixErr = s.client.Matrix(callCtx, mode, origins, destinations)
		return matrixErr
	}, s.slowTimeout)

	if err != nil {
		return nil, s.classify(err)
	}

	if len(cells) != len(origins) {
		return nil, &tmdf.MalformedResponseError{
			Adapter: s.Name(),
			Reason:  fmt.Sprintf("matrix has %d rows, requested %d origins", len(cells), len(origins)),
		}
	}
	for _, row := range cells {
		if len(row) != len(destinations) {
			return nil, &tmdf.MalformedResponseError{
				Adapter: s.Name(),
				Reason:  fmt.Sprintf("matrix row has %d columns, requested %d destinations", len(row), len(destinations)),
			}
		}
	}

	// Durations above the cap count as unreached
	if maxDuration > 0 {
		for rowIndex := range cells {
			for columnIndex := range cells[rowIndex] {
				cell := &cells[rowIndex][columnIndex]
				if cell.Status == MatrixStatusReached && cell.Duration > maxDuration {
					cell.Status = MatrixStatusUnreached
				}
			}
		}
	}

	return &Matrix{
		Origins:      origins,
		Destinations: destinations,
		Cells:        cells,
	}, nil
}

func (s *Service) call(operation func(context.Context) error, timeout time.Duration) error {
	return s.breaker.Execute(func() error {
		callCtx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, timeout)
			defer cancel()
		}

		err := operation(callCtx)

		if errors.Is(err, context.DeadlineExceeded) {
			return tmdf.ErrAdapterTimeout
		}

		return err
	}, tmdf.IsAdapterFailure)
}

// classify applies the degrade policy: breaker open and timeouts become no
// solution for optional vendors but surface as technical errors for a
// required one. Malformed responses always surface
func (s *Service) classify(err error) error {
	if errors.Is(err, tmdf.ErrNoSolution) {
		return tmdf.ErrNoSolution
	}

	if errors.Is(err, breaker.ErrOpen) || errors.Is(err, tmdf.ErrAdapterTimeout) {
		if s.required {
			if errors.Is(err, breaker.ErrOpen) {
				return tmdf.ErrAdapterUnavailable
			}
			return err
		}

		log.Warn().Err(err).Str("adapter", s.Name()).Msg("Street network adapter degraded to no solution")
		return tmdf.ErrNoSolution
	}

	return err
}

// exceedsModeLimits applies the configured max distance and max duration at
// speed for the mode to the great circle distance
func (s *Service) exceedsModeLimits(mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place, request *tmdf.JourneyRequest) bool {
	params, ok := s.modeParams[mode]
	if request != nil {
		if requestParams, hasParams := request.ModeParams[mode]; hasParams {
			params = requestParams
			ok = true
		}
	}

	if !ok {
		return false
	}

	distance := origin.Location.DistanceTo(destination.Location)

	if params.MaxDistance > 0 && distance > params.MaxDistance {
		return true
	}

	if params.MaxDuration > 0 && params.Speed > 0 {
		durationAtSpeed := time.Duration(distance/params.Speed) * time.Second
		if durationAtSpeed > params.MaxDuration {
			return true
		}
	}

	return false
}

func (s *Service) assembleJourney(mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place, extremity TimeExtremity, result *RouteResult) *tmdf.Journey {
	var departureTime, arrivalTime time.Time

	if extremity.Departure {
		departureTime = extremity.DateTime
		arrivalTime = departureTime.Add(result.Duration)
	} else {
		arrivalTime = extremity.DateTime
		departureTime = arrivalTime.Add(-result.Duration)
	}

	section := &tmdf.Section{
		PrimaryIdentifier: fmt.Sprintf("section:%s:%s:0", s.Name(), mode),
		Type:              tmdf.SectionTypeStreetNetwork,
		Mode:              mode,
		Origin:            origin,
		Destination:       destination,
		DepartureTime:     departureTime,
		ArrivalTime:       arrivalTime,
		Duration:          result.Duration,
		Length:            result.Distance,
		Path:              result.Path,
	}

	journey := &tmdf.Journey{
		Sections: []*tmdf.Section{section},
	}
	journey.ComputeAggregates()

	return journey
}
