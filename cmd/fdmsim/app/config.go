package app

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-fdm/dsp/timebase"
	"github.com/cwbudde/algo-fdm/link"
)

// Scenario mirrors the YAML scenario file. Fields omitted in the file
// keep their defaults.
type Scenario struct {
	Clock struct {
		SampleRate float64 `yaml:"sample_rate"`
		Duration   float64 `yaml:"duration"`
	} `yaml:"clock"`

	Channels []ChannelConfig `yaml:"channels"`

	Filter struct {
		CutoffHz float64 `yaml:"cutoff_hz"`
		Order    int     `yaml:"order"`
	} `yaml:"filter"`

	Noise struct {
		Kind   string  `yaml:"kind"`
		StdDev float64 `yaml:"stddev"`
		Seed   int64   `yaml:"seed"`
	} `yaml:"noise"`

	Sweep struct {
		StdDevs []float64 `yaml:"stddevs"`
	} `yaml:"sweep"`

	Workers int `yaml:"workers"`
}

// ChannelConfig pairs one message tone with its carrier.
type ChannelConfig struct {
	MessageHz float64 `yaml:"message_hz"`
	CarrierHz float64 `yaml:"carrier_hz"`
}

// Config carries the scenario plus output options.
type Config struct {
	Scenario Scenario
	OutDir   string
	DBPath   string
	Label    string
	FontPath string
	Verbose  bool
}

// DefaultScenario returns the five-channel bench setup: half a second at
// 50 kHz, carriers every 3 kHz, and a 1 kHz order-4 recovery filter.
func DefaultScenario() Scenario {
	var s Scenario
	s.Clock.SampleRate = 50000
	s.Clock.Duration = 0.5

	messages := []float64{120, 240, 340, 500, 800}
	carriers := []float64{3000, 6000, 9000, 12000, 15000}
	for i := range messages {
		s.Channels = append(s.Channels, ChannelConfig{MessageHz: messages[i], CarrierHz: carriers[i]})
	}

	s.Filter.CutoffHz = 1000
	return s
}

// LoadScenario reads a YAML scenario file on top of the defaults.
func LoadScenario(filename string) (Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Scenario{}, err
	}

	scenario := DefaultScenario()
	if err = yaml.Unmarshal(data, &scenario); err != nil {
		return Scenario{}, err
	}
	return scenario, nil
}

// NewConfigFromCLI builds the configuration from command line flags.
func NewConfigFromCLI() (*Config, error) {
	c := &Config{Scenario: DefaultScenario()}

	var scenarioPath string
	var workers int
	flag.StringVar(&scenarioPath, "c", "", "Path to the scenario YAML file")
	flag.StringVar(&c.OutDir, "o", "", "Directory for rendered PNG panels")
	flag.StringVar(&c.DBPath, "db", "", "Path to the SQLite run archive")
	flag.StringVar(&c.Label, "label", "", "Label stored with archived runs")
	flag.StringVar(&c.FontPath, "font", "", "TrueType font for panel labels")
	flag.IntVar(&workers, "workers", 0, "Demodulation worker goroutines (0 for sequential)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	if scenarioPath != "" {
		scenario, err := LoadScenario(scenarioPath)
		if err != nil {
			return nil, fmt.Errorf("loading scenario: %w", err)
		}
		c.Scenario = scenario
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "workers" {
			c.Scenario.Workers = workers
		}
	})

	return c, nil
}

func noiseKind(name string) (link.NoiseKind, error) {
	switch name {
	case "", "gaussian":
		return link.NoiseGaussian, nil
	case "uniform":
		return link.NoiseUniform, nil
	default:
		return 0, fmt.Errorf("unknown noise kind %q", name)
	}
}

// buildLink translates a scenario into a validated link configuration.
func buildLink(s Scenario) (link.Link, error) {
	kind, err := noiseKind(s.Noise.Kind)
	if err != nil {
		return link.Link{}, err
	}

	channels := make([]link.Channel, len(s.Channels))
	for i, ch := range s.Channels {
		channels[i] = link.Channel{MessageHz: ch.MessageHz, CarrierHz: ch.CarrierHz}
	}

	lk := link.Link{
		Clock: timebase.Clock{
			SampleRate: s.Clock.SampleRate,
			Duration:   s.Clock.Duration,
		},
		Channels: channels,
		Filter:   link.FilterSpec{CutoffHz: s.Filter.CutoffHz, Order: s.Filter.Order},
		Noise:    link.NoiseSpec{Kind: kind, StdDev: s.Noise.StdDev, Seed: s.Noise.Seed},
		Workers:  s.Workers,
	}
	if err := lk.Validate(); err != nil {
		return link.Link{}, err
	}
	return lk, nil
}
