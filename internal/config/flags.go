package config

import "flag"

// Flags holds the command-line overrides shared by every animtool command.
type Flags struct {
	config    *string
	debug     *bool
	tolerance *float64
	angle     *float64
	output    *string
	workers   *int
	encoding  *string
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		tolerance: fs.Float64("tolerance", -1, "Default optimizer distance tolerance"),
		angle:     fs.Float64("angle", -1, "Default optimizer angle tolerance in degrees"),
		output:    fs.String("output", "", "Output directory for archives"),
		workers:   fs.Int("workers", -1, "Number of clips processed concurrently (0 = one per CPU)"),
		encoding:  fs.String("encoding", "", "Charset of source files (e.g. euc-kr)"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (fl *Flags) ConfigPath() string {
	if fl == nil {
		return ""
	}
	return *fl.config
}

// apply applies the flag overrides to the config. Negative numeric flags
// mean "not set".
func (fl *Flags) apply(cfg *Config) {
	if fl == nil {
		return
	}
	if *fl.debug {
		cfg.Logging.Level = "debug"
	}
	if *fl.tolerance >= 0 {
		cfg.Optimization.DistanceTolerance = float32(*fl.tolerance)
	}
	if *fl.angle >= 0 {
		cfg.Optimization.AngleToleranceDeg = float32(*fl.angle)
	}
	if *fl.output != "" {
		cfg.Output.Dir = *fl.output
	}
	if *fl.workers >= 0 {
		cfg.Pipeline.Workers = *fl.workers
	}
	if *fl.encoding != "" {
		cfg.Source.Encoding = *fl.encoding
	}
}
