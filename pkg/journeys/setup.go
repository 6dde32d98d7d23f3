package journeys

import (
	"fmt"
	"os"
	"strings"

	"github.com/eko/gocache/lib/v4/cache"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/placeresolver"
	"github.com/itinera/itinera/pkg/planner"
	"github.com/itinera/itinera/pkg/realtimeproxy"
	"github.com/itinera/itinera/pkg/realtimeproxy/gtfsrtproxy"
	"github.com/itinera/itinera/pkg/realtimeproxy/siriproxy"
	"github.com/itinera/itinera/pkg/redisclient"
	"github.com/itinera/itinera/pkg/ridesharing"
	"github.com/itinera/itinera/pkg/ridesharing/klaxonride"
	"github.com/itinera/itinera/pkg/streetnetwork"
	"github.com/itinera/itinera/pkg/streetnetwork/osrmrouter"
	"github.com/itinera/itinera/pkg/streetnetwork/valhallarouter"
	"github.com/rs/zerolog/log"
)

// NewEngineFromConfig assembles the full engine from the loaded
// configuration: the place resolver and every configured street network,
// realtime and ridesharing vendor around the given planner client
func NewEngineFromConfig(cfg *config.Config, plannerClient planner.Planner) (*Engine, error) {
	resolver := &placeresolver.Resolver{}
	modeParams := cfg.ModeSpeedParams()

	streetNetworkManager := streetnetwork.NewManager()
	for _, vendorConfig := range cfg.StreetNetwork {
		client, err := streetNetworkClient(vendorConfig)
		if err != nil {
			return nil, err
		}

		streetNetworkManager.RegisterService(streetnetwork.NewService(client, vendorConfig, modeParams))
	}

	var passageCache *cache.Cache[string]
	if redisclient.Client != nil {
		passageCache = cache.New[string](redisstore.NewRedis(redisclient.Client))
	}

	var realtimeProxies []*realtimeproxy.Proxy
	for _, vendorConfig := range cfg.Realtime {
		client, err := realtimeClient(vendorConfig)
		if err != nil {
			return nil, err
		}

		realtimeProxies = append(realtimeProxies, realtimeproxy.NewProxy(client, vendorConfig, passageCache, resolver))

		log.Info().Str("vendor", vendorConfig.Name).Str("type", vendorConfig.Type).Msg("Registered realtime proxy")
	}

	var ridesharingServices []*ridesharing.Service
	for _, vendorConfig := range cfg.Ridesharing {
		client, err := ridesharingClient(vendorConfig)
		if err != nil {
			return nil, err
		}

		ridesharingServices = append(ridesharingServices, ridesharing.NewService(client, vendorConfig))

		log.Info().Str("vendor", vendorConfig.Name).Str("type", vendorConfig.Type).Msg("Registered ridesharing service")
	}

	engine := NewEngine(
		plannerClient,
		resolver,
		streetNetworkManager,
		realtimeProxies,
		ridesharingServices,
		cfg.FanOut,
		modeParams,
	)

	return engine, nil
}

func streetNetworkClient(vendorConfig config.StreetNetworkVendorConfig) (streetnetwork.VendorClient, error) {
	switch vendorConfig.Type {
	case "osrm":
		return osrmrouter.NewClient(vendorConfig.Name, vendorConfig.Address), nil
	case "valhalla":
		return valhallarouter.NewClient(vendorConfig.Name, vendorConfig.Address), nil
	}

	return nil, fmt.Errorf("unknown street network vendor type %s", vendorConfig.Type)
}

func realtimeClient(vendorConfig config.RealtimeVendorConfig) (realtimeproxy.VendorClient, error) {
	switch vendorConfig.Type {
	case "siri":
		return siriproxy.NewClient(vendorConfig.Name, vendorConfig.Address, vendorAPIKey(vendorConfig.Name)), nil
	case "gtfsrt":
		return gtfsrtproxy.NewClient(vendorConfig.Name, vendorConfig.Address), nil
	}

	return nil, fmt.Errorf("unknown realtime vendor type %s", vendorConfig.Type)
}

func ridesharingClient(vendorConfig config.RidesharingVendorConfig) (ridesharing.VendorClient, error) {
	switch vendorConfig.Type {
	case "klaxon":
		return klaxonride.NewClient(vendorConfig.Name, vendorConfig.Address, vendorAPIKey(vendorConfig.Name)), nil
	}

	return nil, fmt.Errorf("unknown ridesharing vendor type %s", vendorConfig.Type)
}

// vendorAPIKey looks up a vendor credential in the environment, keyed on the
// vendor name, eg ITINERA_VENDOR_KLAXON_API_KEY
func vendorAPIKey(name string) string {
	sanitised := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

	return os.Getenv(fmt.Sprintf("ITINERA_VENDOR_%s_API_KEY", sanitised))
}
