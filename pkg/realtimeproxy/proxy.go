package realtimeproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/itinera/itinera/pkg/breaker"
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
)

// Proxy wraps one realtime vendor client with the adapter contract the
// orchestration layer relies on: circuit breaker isolation, per call timeout,
// response caching on rounded windows, and unconditional degrade to nil so
// the caller always falls back to the base schedule on any failure
type Proxy struct {
	client VendorClient

	name          string
	objectCodeTag string

	breaker *breaker.CircuitBreaker
	timeout time.Duration

	windowRounding time.Duration

	cache       *cache.Cache[string]
	cacheExpiry time.Duration

	codeResolver CodeResolver
}

func NewProxy(client VendorClient, vendorConfig config.RealtimeVendorConfig, passageCache *cache.Cache[string], codeResolver CodeResolver) *Proxy {
	windowRounding := vendorConfig.WindowRounding.AsDuration()
	if windowRounding == 0 {
		windowRounding = 60 * time.Second
	}

	return &Proxy{
		client:         client,
		name:           vendorConfig.Name,
		objectCodeTag:  vendorConfig.ObjectCodeTag,
		breaker:        breaker.NewCircuitBreaker(vendorConfig.Name, vendorConfig.Breaker),
		timeout:        vendorConfig.Timeout.AsDuration(),
		windowRounding: windowRounding,
		cache:          passageCache,
		cacheExpiry:    vendorConfig.CacheExpiry.AsDuration(),
		codeResolver:   codeResolver,
	}
}

func (p *Proxy) Name() string {
	return p.name
}

// GetNextRealtimePassages returns the vendor's next passages for the route
// point, or nil when realtime could not be determined. Breaker open, timeout
// and malformed payload conditions never propagate past this boundary
func (p *Proxy) GetNextRealtimePassages(ctx context.Context, routePoint tmdf.RoutePoint, query PassageQuery) []tmdf.RealTimePassage {
	query = query.Rounded(p.windowRounding)

	vendorRoutePoint := p.resolveCodes(ctx, routePoint)
	cacheKey := p.cacheKey(vendorRoutePoint, query)

	if passages, ok := p.cachedPassages(ctx, cacheKey); ok {
		return passages
	}

	var passages []tmdf.RealTimePassage

	err := p.breaker.Execute(func() error {
		callCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		var callErr error
		passages, callErr = p.client.NextPassages(callCtx, vendorRoutePoint, query)

		if errors.Is(callErr, context.DeadlineExceeded) {
			return tmdf.ErrAdapterTimeout
		}

		return callErr
	}, tmdf.IsAdapterFailure)

	if err != nil {
		log.Debug().
			Err(err).
			Str("proxy", p.name).
			Str("stop", routePoint.StopPointRef).
			Msg("Realtime lookup failed, keeping base schedule")
		return nil
	}

	if passages != nil {
		p.storePassages(ctx, cacheKey, passages)
	}

	return passages
}

// resolveCodes swaps the route point identifiers for the vendor's own codes
// when a code tag is configured
func (p *Proxy) resolveCodes(ctx context.Context, routePoint tmdf.RoutePoint) tmdf.RoutePoint {
	if p.objectCodeTag == "" || p.codeResolver == nil {
		return routePoint
	}

	return tmdf.RoutePoint{
		StopPointRef: p.codeResolver.StopCode(ctx, routePoint.StopPointRef, p.objectCodeTag),
		RouteRef:     p.codeResolver.StopCode(ctx, routePoint.RouteRef, p.objectCodeTag),
	}
}

func (p *Proxy) cacheKey(routePoint tmdf.RoutePoint, query PassageQuery) string {
	return fmt.Sprintf(
		"realtime/%s/%s/%s/%d/%d/%d",
		p.name,
		routePoint.StopPointRef,
		routePoint.RouteRef,
		query.FromDateTime.Unix(),
		int64(query.Duration.Seconds()),
		query.Count,
	)
}

func (p *Proxy) cachedPassages(ctx context.Context, cacheKey string) ([]tmdf.RealTimePassage, bool) {
	if p.cache == nil {
		return nil, false
	}

	cached, err := p.cache.Get(ctx, cacheKey)
	if err != nil || cached == "" {
		return nil, false
	}

	var passages []tmdf.RealTimePassage
	if err := json.Unmarshal([]byte(cached), &passages); err != nil {
		return nil, false
	}

	return passages, true
}

func (p *Proxy) storePassages(ctx context.Context, cacheKey string, passages []tmdf.RealTimePassage) {
	if p.cache == nil {
		return
	}

	marshalled, err := json.Marshal(passages)
	if err != nil {
		return
	}

	err = p.cache.Set(ctx, cacheKey, string(marshalled), store.WithExpiration(p.cacheExpiry))
	if err != nil {
		log.Debug().Err(err).Str("proxy", p.name).Msg("Failed caching realtime passages")
	}
}
