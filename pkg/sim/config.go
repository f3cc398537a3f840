package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/agvsim/pkg/dispatch"
)

// Config specifies everything a headless run needs: timing constants,
// station capacities, and run parameters. It supports YAML parsing and
// validation, grounded on the teacher's Config/LoadConfig/Validate shape.
type Config struct {
	// Seed is the master seed for deterministic generation. 0 is used as
	// a seed like any other value; it is not replaced by a time-based one.
	Seed uint64 `yaml:"seed" json:"seed"`

	// NumAGVs and NumCarts size the initial fleet, pre-placed on distinct
	// AGV-spawn and parking/pick-station tiles respectively.
	NumAGVs  int `yaml:"numAGVs" json:"numAGVs"`
	NumCarts int `yaml:"numCarts" json:"numCarts"`

	// SimDuration is the total sim-time, in seconds, a headless run
	// advances before returning its metric bundle.
	SimDuration float64 `yaml:"simDuration" json:"simDuration"`

	// TickDT is the fixed per-tick timestep, in seconds.
	TickDT float64 `yaml:"tickDT" json:"tickDT"`

	// Verbose enables a progress log line every 1000 ticks during a
	// headless run.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Timing holds the dispatcher's reference timing constants (§6).
	Timing TimingCfg `yaml:"timing" json:"timing"`

	// StationCapacities overrides individual entries of the reference
	// station capacity table (§6, warehouse.StationCapacities); stations
	// it does not list keep their reference capacity, and a nil/empty map
	// leaves the table unchanged.
	StationCapacities map[string]int `yaml:"stationCapacities,omitempty" json:"stationCapacities,omitempty"`
}

// TimingCfg mirrors dispatch.Config in YAML-friendly form.
type TimingCfg struct {
	BlockTimeout            float64 `yaml:"blockTimeout" json:"blockTimeout"`
	RerouteCooldown         float64 `yaml:"rerouteCooldown" json:"rerouteCooldown"`
	JobCancelTimeout        float64 `yaml:"jobCancelTimeout" json:"jobCancelTimeout"`
	MaxConcurrentDispatches int     `yaml:"maxConcurrentDispatches" json:"maxConcurrentDispatches"`
	BoxDepotTime            float64 `yaml:"boxDepotTime" json:"boxDepotTime"`
	PickTimePerItem         float64 `yaml:"pickTimePerItem" json:"pickTimePerItem"`
	PackoffTime             float64 `yaml:"packoffTime" json:"packoffTime"`
}

// DefaultTimingCfg returns the reference timing constants (§6).
func DefaultTimingCfg() TimingCfg {
	d := dispatch.DefaultConfig()
	return TimingCfg{
		BlockTimeout:            d.BlockTimeout,
		RerouteCooldown:         d.RerouteCooldown,
		JobCancelTimeout:        d.JobCancelTimeout,
		MaxConcurrentDispatches: d.MaxConcurrentDispatches,
		BoxDepotTime:            d.BoxDepotTime,
		PickTimePerItem:         d.PickTimePerItem,
		PackoffTime:             d.PackoffTime,
	}
}

func (t TimingCfg) toDispatchConfig() dispatch.Config {
	return dispatch.Config{
		BlockTimeout:            t.BlockTimeout,
		RerouteCooldown:         t.RerouteCooldown,
		JobCancelTimeout:        t.JobCancelTimeout,
		MaxConcurrentDispatches: t.MaxConcurrentDispatches,
		BoxDepotTime:            t.BoxDepotTime,
		PickTimePerItem:         t.PickTimePerItem,
		PackoffTime:             t.PackoffTime,
	}
}

// DefaultConfig returns a runnable Config with the reference timing
// constants and a modest fleet (4 AGVs, 6 carts, 1 sim-hour at dt=0.1).
func DefaultConfig() Config {
	return Config{
		NumAGVs:     4,
		NumCarts:    6,
		SimDuration: 3600,
		TickDT:      0.1,
		Timing:      DefaultTimingCfg(),
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	if c.NumAGVs <= 0 {
		return fmt.Errorf("numAGVs must be positive, got %d", c.NumAGVs)
	}
	if c.NumCarts <= 0 {
		return fmt.Errorf("numCarts must be positive, got %d", c.NumCarts)
	}
	if c.SimDuration <= 0 {
		return fmt.Errorf("simDuration must be positive, got %f", c.SimDuration)
	}
	if c.TickDT <= 0 {
		return fmt.Errorf("tickDT must be positive, got %f", c.TickDT)
	}
	if c.Timing.BlockTimeout <= 0 {
		return errors.New("timing.blockTimeout must be positive")
	}
	if c.Timing.RerouteCooldown <= 0 {
		return errors.New("timing.rerouteCooldown must be positive")
	}
	if c.Timing.JobCancelTimeout <= 0 {
		return errors.New("timing.jobCancelTimeout must be positive")
	}
	if c.Timing.MaxConcurrentDispatches <= 0 {
		return errors.New("timing.maxConcurrentDispatches must be positive")
	}
	return nil
}

// ToYAML serializes the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
