package ridesharing

import (
	"context"
	"errors"
	"time"

	"github.com/itinera/itinera/pkg/breaker"
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
)

// Offer is a single ridesharing proposal from a vendor
type Offer struct {
	PrimaryIdentifier string
	Network           string
	DriverAlias       string

	Pickup  tmdf.Place
	Dropoff tmdf.Place

	PickupTime  time.Time
	DropoffTime time.Time

	Price          tmdf.TicketCost
	AvailableSeats int
}

// OfferWindow bounds the departure times the caller is interested in
type OfferWindow struct {
	Start time.Time
	End   time.Time
}

// VendorClient is the wire level contract a ridesharing vendor adapter
// satisfies
type VendorClient interface {
	Name() string

	GetOffers(ctx context.Context, origin tmdf.Place, destination tmdf.Place, window OfferWindow) ([]Offer, error)
}

// Service wraps a vendor client with breaker isolation and a timeout. Offer
// lookups are best effort enrichment, so every failure degrades to no offers
type Service struct {
	client VendorClient

	network string

	breaker *breaker.CircuitBreaker
	timeout time.Duration
}

func NewService(client VendorClient, vendorConfig config.RidesharingVendorConfig) *Service {
	return &Service{
		client:  client,
		network: vendorConfig.Network,
		breaker: breaker.NewCircuitBreaker(vendorConfig.Name, vendorConfig.Breaker),
		timeout: vendorConfig.Timeout.AsDuration(),
	}
}

func (s *Service) Name() string {
	return s.client.Name()
}

func (s *Service) Offers(ctx context.Context, origin tmdf.Place, destination tmdf.Place, window OfferWindow) []Offer {
	var offers []Offer

	err := s.breaker.Execute(func() error {
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		var callErr error
		offers, callErr = s.client.GetOffers(callCtx, origin, destination, window)

		if errors.Is(callErr, context.DeadlineExceeded) {
			return tmdf.ErrAdapterTimeout
		}

		return callErr
	}, tmdf.IsAdapterFailure)

	if err != nil {
		log.Warn().Err(err).Str("vendor", s.Name()).Msg("Ridesharing lookup failed")
		return nil
	}

	for index := range offers {
		if offers[index].Network == "" {
			offers[index].Network = s.network
		}
	}

	return offers
}
