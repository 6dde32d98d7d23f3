package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/itinera/itinera/pkg/breaker"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/itinera/itinera/pkg/util"
	iso8601 "github.com/senseyeio/duration"
	"gopkg.in/yaml.v3"
)

// Duration accepts Go duration strings ("30s", "2m") in YAML
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// ISODuration accepts ISO8601 durations ("PT2H", "PT30M") in YAML, the shape
// transit feeds publish run times in
type ISODuration time.Duration

func (d *ISODuration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := iso8601.ParseISO8601(value.Value)
	if err != nil {
		return fmt.Errorf("invalid ISO8601 duration %q: %w", value.Value, err)
	}

	epoch := time.Unix(0, 0).UTC()
	*d = ISODuration(parsed.Shift(epoch).Sub(epoch))
	return nil
}

func (d ISODuration) AsDuration() time.Duration {
	return time.Duration(d)
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type MongoConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Database         string `yaml:"database"`
}

type PlannerConfig struct {
	Address    string   `yaml:"address" validate:"required"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
}

type FanOutConfig struct {
	MaxWorkers  int      `yaml:"max_workers" validate:"gt=0"`
	CallTimeout Duration `yaml:"call_timeout"`
}

type ModeConfig struct {
	Speed       float64     `yaml:"speed" validate:"gt=0"`
	MaxDistance float64     `yaml:"max_distance"`
	MaxDuration ISODuration `yaml:"max_duration"`
}

type StreetNetworkVendorConfig struct {
	Name    string      `yaml:"name" validate:"required"`
	Type    string      `yaml:"type" validate:"required,oneof=osrm valhalla"`
	Address string      `yaml:"address" validate:"required"`
	Modes   []tmdf.Mode `yaml:"modes" validate:"required,min=1"`

	// Required vendors surface breaker open and timeouts as technical errors
	// instead of degrading to no solution
	Required bool `yaml:"required"`

	Breaker breaker.Config `yaml:"breaker"`

	// Direct path calls use the fast timeout, matrix calls the slow one
	FastTimeout Duration `yaml:"fast_timeout"`
	SlowTimeout Duration `yaml:"slow_timeout"`
}

type RealtimeVendorConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Type    string `yaml:"type" validate:"required,oneof=siri gtfsrt"`
	Address string `yaml:"address" validate:"required"`

	// ObjectCodeTag selects which per object code carries this vendor's
	// identifiers
	ObjectCodeTag string `yaml:"object_code_tag"`

	// Request windows are floored to this step before building the outbound
	// cache key so near identical calls hit the cache
	WindowRounding Duration `yaml:"window_rounding"`
	CacheExpiry    Duration `yaml:"cache_expiry"`

	Breaker breaker.Config `yaml:"breaker"`
	Timeout Duration       `yaml:"timeout"`
}

type RidesharingVendorConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Type    string `yaml:"type" validate:"required,oneof=klaxon"`
	Address string `yaml:"address" validate:"required"`

	Network string `yaml:"network"`

	Breaker breaker.Config `yaml:"breaker"`
	Timeout Duration       `yaml:"timeout"`
}

type Config struct {
	Listen string `yaml:"listen"`

	Redis RedisConfig `yaml:"redis"`
	Mongo MongoConfig `yaml:"mongo"`

	Planner PlannerConfig `yaml:"planner" validate:"required"`
	FanOut  FanOutConfig  `yaml:"fanout"`

	Modes map[tmdf.Mode]ModeConfig `yaml:"modes"`

	StreetNetwork []StreetNetworkVendorConfig `yaml:"street_network" validate:"dive"`
	Realtime      []RealtimeVendorConfig      `yaml:"realtime" validate:"dive"`
	Ridesharing   []RidesharingVendorConfig   `yaml:"ridesharing" validate:"dive"`
}

var configValidator = validator.New()

// Load reads the YAML config, applies environment overrides and validates
// it. The returned struct is created once at startup and immutable afterwards
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := defaults()

	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(config)

	if err := configValidator.Struct(config); err != nil {
		return nil, err
	}

	for mode := range config.Modes {
		if !tmdf.ValidMode(mode) {
			return nil, fmt.Errorf("unknown mode %s in config", mode)
		}
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Listen: ":8080",
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Mongo: MongoConfig{
			ConnectionString: "mongodb://localhost:27017/",
			Database:         "itinera",
		},
		Planner: PlannerConfig{
			Timeout:    Duration(10 * time.Second),
			MaxRetries: 3,
		},
		FanOut: FanOutConfig{
			MaxWorkers:  10,
			CallTimeout: Duration(2 * time.Second),
		},
	}
}

func applyEnvironmentOverrides(config *Config) {
	env := util.GetEnvironmentVariables()

	if env["ITINERA_LISTEN"] != "" {
		config.Listen = env["ITINERA_LISTEN"]
	}

	if env["ITINERA_REDIS_ADDRESS"] != "" {
		config.Redis.Address = env["ITINERA_REDIS_ADDRESS"]
	}

	if env["ITINERA_REDIS_PASSWORD"] != "" {
		config.Redis.Password = env["ITINERA_REDIS_PASSWORD"]
	}

	if env["ITINERA_MONGO_CONNECTION"] != "" {
		config.Mongo.ConnectionString = env["ITINERA_MONGO_CONNECTION"]
	}

	if env["ITINERA_PLANNER_ADDRESS"] != "" {
		config.Planner.Address = env["ITINERA_PLANNER_ADDRESS"]
	}
}

// ModeSpeedParams converts the configured mode table into the request level
// speed parameters handed to adapters and the planner
func (c *Config) ModeSpeedParams() map[tmdf.Mode]tmdf.SpeedParams {
	params := map[tmdf.Mode]tmdf.SpeedParams{}

	for mode, modeConfig := range c.Modes {
		params[mode] = tmdf.SpeedParams{
			Speed:       modeConfig.Speed,
			MaxDistance: modeConfig.MaxDistance,
			MaxDuration: modeConfig.MaxDuration.AsDuration(),
		}
	}

	return params
}
