package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/daniacca/stochchem/internal/circuits"
	"github.com/daniacca/stochchem/internal/ssa"
	"github.com/spf13/cobra"
)

// SimConfig holds the settings shared by the simulation commands.
type SimConfig struct {
	LogLevel string

	Network string
	Circuit string
	Seed    uint64
	DT      float64
	Samples int
	Output  string

	MaxEvents uint64
	MaxTime   float64

	Runs     int
	Workers  int
	MeanOnly bool
	Progress time.Duration

	Addr        string
	Rate        float64
	WaitClients int

	Webhook      string
	WebhookToken string

	MaxRuns    int
	MaxSamples int
	Timeout    time.Duration
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*SimConfig, string) error
}

var logLevelResolver = configResolver{
	flagName:    "log-level",
	envVarName:  "STOCHCHEM_LOG_LEVEL",
	defaultVal:  "info",
	description: "Log level: debug, info, warn, error",
	setter:      func(c *SimConfig, v string) error { c.LogLevel = v; return nil },
}

// modelResolvers select the network, the sample grid and the limits.
var modelResolvers = []configResolver{
	{
		flagName:    "network",
		envVarName:  "STOCHCHEM_NETWORK",
		description: "path to a network file (.yaml, .yml or .json)",
		setter:      func(c *SimConfig, v string) error { c.Network = v; return nil },
	},
	{
		flagName:    "circuit",
		envVarName:  "STOCHCHEM_CIRCUIT",
		description: "name of a built-in circuit (see 'circuits')",
		setter:      func(c *SimConfig, v string) error { c.Circuit = v; return nil },
	},
	{
		flagName:    "seed",
		envVarName:  "STOCHCHEM_SEED",
		defaultVal:  "1",
		description: "random seed; ensembles derive one seed per run from it",
		setter: func(c *SimConfig, v string) (err error) {
			c.Seed, err = strconv.ParseUint(v, 10, 64)
			return err
		},
	},
	{
		flagName:    "dt",
		envVarName:  "STOCHCHEM_DT",
		defaultVal:  "1",
		description: "time between samples",
		setter: func(c *SimConfig, v string) (err error) {
			c.DT, err = parsePositiveFloat(v)
			return err
		},
	},
	{
		flagName:    "samples",
		envVarName:  "STOCHCHEM_SAMPLES",
		defaultVal:  "101",
		description: "number of samples, the first one at t=0",
		setter: func(c *SimConfig, v string) (err error) {
			c.Samples, err = parsePositiveInt(v)
			return err
		},
	},
	{
		flagName:    "max-events",
		envVarName:  "STOCHCHEM_MAX_EVENTS",
		defaultVal:  "0",
		description: "stop a run after this many events; 0 means unlimited",
		setter: func(c *SimConfig, v string) (err error) {
			c.MaxEvents, err = strconv.ParseUint(v, 10, 64)
			return err
		},
	},
	{
		flagName:    "max-time",
		envVarName:  "STOCHCHEM_MAX_TIME",
		defaultVal:  "0",
		description: "do not commit events after this simulation time; 0 means unlimited",
		setter: func(c *SimConfig, v string) (err error) {
			c.MaxTime, err = strconv.ParseFloat(v, 64)
			if err == nil && c.MaxTime < 0 {
				err = fmt.Errorf("must not be negative")
			}
			return err
		},
	},
	{
		flagName:    "output",
		envVarName:  "STOCHCHEM_OUTPUT",
		description: "write JSON output to this file instead of stdout",
		setter:      func(c *SimConfig, v string) error { c.Output = v; return nil },
	},
	{
		flagName:    "webhook",
		envVarName:  "STOCHCHEM_WEBHOOK",
		description: "POST a JSON summary to this URL when the simulation finishes",
		setter:      func(c *SimConfig, v string) error { c.Webhook = v; return nil },
	},
	{
		flagName:    "webhook-token",
		envVarName:  "STOCHCHEM_WEBHOOK_TOKEN",
		description: "bearer token sent with the webhook request",
		setter:      func(c *SimConfig, v string) error { c.WebhookToken = v; return nil },
	},
}

var ensembleResolvers = []configResolver{
	{
		flagName:    "runs",
		envVarName:  "STOCHCHEM_RUNS",
		defaultVal:  "100",
		description: "number of independent trajectories",
		setter: func(c *SimConfig, v string) (err error) {
			c.Runs, err = parsePositiveInt(v)
			return err
		},
	},
	{
		flagName:    "workers",
		envVarName:  "STOCHCHEM_WORKERS",
		defaultVal:  "0",
		description: "concurrent runs; 0 means GOMAXPROCS",
		setter: func(c *SimConfig, v string) (err error) {
			c.Workers, err = strconv.Atoi(v)
			return err
		},
	},
	{
		flagName:    "mean-only",
		envVarName:  "STOCHCHEM_MEAN_ONLY",
		defaultVal:  "false",
		description: "print only the mean trajectory and status counts",
		setter: func(c *SimConfig, v string) (err error) {
			c.MeanOnly, err = strconv.ParseBool(v)
			return err
		},
	},
	{
		flagName:    "progress",
		envVarName:  "STOCHCHEM_PROGRESS",
		defaultVal:  "5s",
		description: "minimum time between progress log lines",
		setter: func(c *SimConfig, v string) (err error) {
			c.Progress, err = time.ParseDuration(v)
			return err
		},
	},
}

var streamResolvers = []configResolver{
	{
		flagName:    "addr",
		envVarName:  "STOCHCHEM_ADDR",
		defaultVal:  "127.0.0.1:8090",
		description: "HTTP listen address for the event stream",
		setter:      func(c *SimConfig, v string) error { c.Addr = v; return nil },
	},
	{
		flagName:    "rate",
		envVarName:  "STOCHCHEM_RATE",
		defaultVal:  "50",
		description: "events per second sent to clients; 0 disables pacing",
		setter: func(c *SimConfig, v string) (err error) {
			c.Rate, err = strconv.ParseFloat(v, 64)
			return err
		},
	},
	{
		flagName:    "wait-clients",
		envVarName:  "STOCHCHEM_WAIT_CLIENTS",
		defaultVal:  "0",
		description: "wait for this many clients before starting the run",
		setter: func(c *SimConfig, v string) (err error) {
			c.WaitClients, err = strconv.Atoi(v)
			return err
		},
	},
}

// serveResolvers configure the HTTP API. Workers bounds each ensemble
// request, not the server as a whole.
var serveResolvers = []configResolver{
	{
		flagName:    "addr",
		envVarName:  "STOCHCHEM_SERVE_ADDR",
		defaultVal:  "127.0.0.1:8080",
		description: "HTTP listen address for the API",
		setter:      func(c *SimConfig, v string) error { c.Addr = v; return nil },
	},
	ensembleResolvers[1],
	{
		flagName:    "max-runs",
		envVarName:  "STOCHCHEM_MAX_RUNS",
		defaultVal:  "10000",
		description: "largest ensemble a request may ask for",
		setter: func(c *SimConfig, v string) (err error) {
			c.MaxRuns, err = parsePositiveInt(v)
			return err
		},
	},
	{
		flagName:    "max-samples",
		envVarName:  "STOCHCHEM_MAX_SAMPLES",
		defaultVal:  "100000",
		description: "largest sample grid a request may ask for",
		setter: func(c *SimConfig, v string) (err error) {
			c.MaxSamples, err = parsePositiveInt(v)
			return err
		},
	},
	{
		flagName:    "timeout",
		envVarName:  "STOCHCHEM_TIMEOUT",
		defaultVal:  "60s",
		description: "wall-clock limit for one request",
		setter: func(c *SimConfig, v string) (err error) {
			c.Timeout, err = time.ParseDuration(v)
			if err == nil && c.Timeout <= 0 {
				err = fmt.Errorf("must be positive")
			}
			return err
		},
	},
}

// stringFlags is the part of a flag set the resolvers register on.
type stringFlags interface {
	String(name, value, usage string) *string
}

// registerResolvers adds one string flag per resolver. Flags default to empty
// so an unset flag falls through to the environment.
func registerResolvers(flags stringFlags, resolvers []configResolver) {
	for _, r := range resolvers {
		usage := fmt.Sprintf("%s (env %s", r.description, r.envVarName)
		if r.defaultVal != "" {
			usage += ", default " + r.defaultVal
		}
		flags.String(r.flagName, "", usage+")")
	}
}

// resolveConfig fills cfg from flags, then STOCHCHEM_* environment variables,
// then defaults. An unparsable value is logged and replaced by the default.
func resolveConfig(cmd *cobra.Command, cfg *SimConfig, resolvers ...configResolver) {
	for _, r := range resolvers {
		var value string
		if f := cmd.Flag(r.flagName); f != nil && f.Value.String() != "" {
			value = f.Value.String()
		} else if envValue := os.Getenv(r.envVarName); envValue != "" {
			value = envValue
		} else {
			value = r.defaultVal
		}
		if err := r.setter(cfg, value); err != nil {
			log.Printf("Invalid value for %s: %s, using default %s", r.flagName, value, r.defaultVal)
			_ = r.setter(cfg, r.defaultVal)
		}
	}
}

func parsePositiveFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if !(f > 0) {
		return 0, fmt.Errorf("must be positive")
	}
	return f, nil
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

// Model is a network ready to run: the network, its initial state and the
// engine options derived from the command line.
type Model struct {
	Network *ssa.Network
	Initial ssa.State
	Times   []float64
	Options []ssa.Option
}

// loadModel builds the network named by --network or --circuit and applies
// the --param and --initial overrides.
func loadModel(cfg SimConfig, params, initial map[string]string, logger ssa.Logger) (*Model, error) {
	var (
		net   *ssa.Network
		state ssa.State
		err   error
	)
	switch {
	case cfg.Network != "" && cfg.Circuit != "":
		return nil, fmt.Errorf("--network and --circuit are mutually exclusive")
	case cfg.Network != "":
		net, state, err = ssa.LoadNetwork(cfg.Network)
	case cfg.Circuit != "":
		net, state, err = circuits.Build(cfg.Circuit)
	default:
		return nil, fmt.Errorf("one of --network or --circuit is required")
	}
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(initial))
	for name, v := range initial {
		count, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--initial: invalid count %q for species '%s'", v, name)
		}
		counts[name] = count
	}
	values := make(map[string]float64, len(params))
	for name, v := range params {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("--param: invalid value %q for '%s'", v, name)
		}
		values[name] = f
	}
	return newModel(net, state, cfg, values, counts, logger)
}

// newModel applies initial count and parameter overrides and the limits in
// cfg to a built network.
func newModel(net *ssa.Network, state ssa.State, cfg SimConfig, params map[string]float64, initial map[string]int64, logger ssa.Logger) (*Model, error) {
	for name, count := range initial {
		i, ok := net.SpeciesIndex(ssa.SpeciesName(name))
		if !ok {
			return nil, fmt.Errorf("initial: unknown species '%s'", name)
		}
		if count < 0 {
			return nil, fmt.Errorf("initial: negative count %d for species '%s'", count, name)
		}
		state[i] = count
	}

	for name := range params {
		if _, ok := net.Parameters().Get(name); !ok {
			return nil, fmt.Errorf("parameters: unknown parameter '%s'", name)
		}
	}
	if cfg.MaxTime < 0 || math.IsNaN(cfg.MaxTime) {
		return nil, fmt.Errorf("max-time: invalid time limit %g", cfg.MaxTime)
	}

	m := &Model{
		Network: net,
		Initial: state,
		Times:   ssa.Grid(cfg.DT, cfg.Samples),
		Options: []ssa.Option{ssa.WithLogger(logger)},
	}
	if len(params) > 0 {
		p := net.Parameters()
		for name, v := range params {
			p = p.With(name, v)
		}
		m.Options = append(m.Options, ssa.WithParameters(p))
	}
	if cfg.MaxEvents > 0 || cfg.MaxTime > 0 {
		m.Options = append(m.Options, ssa.WithLimits(ssa.Limits{MaxEvents: cfg.MaxEvents, MaxTime: cfg.MaxTime}))
	}
	return m, nil
}
