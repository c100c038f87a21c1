// animtool builds, inspects and plays back compressed skeletal animations.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build":
		err = cmdBuild(args)
	case "info":
		err = cmdInfo(args)
	case "sample":
		err = cmdSample(args)
	case "play":
		err = cmdPlay(args)
	case "plot":
		err = cmdPlot(args)
	case "demo":
		err = cmdDemo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`animtool - skeletal animation compression and playback

Usage:
  animtool <command> [options]

Commands:
  build [flags] <source.yaml>            Optimize, compress and write archives
  info <file.skel|file.anim>             Show archive contents
  sample [-t sec] <file.skel> <file.anim> Print model-space joint positions
  play [flags] <file.skel> <file.anim>   Run playback instances and report timing
  plot [-joint name] [-o out.bmp] <file.skel> <file.anim>
                                         Chart a joint's position over time
  demo <source.yaml>                     Write an example source file

Config flags (build, play):
  -config <file>   Config file (default ./animtool.yaml or user config dir)
  -debug           Enable debug logging
  -tolerance <d>   Optimizer distance tolerance
  -angle <deg>     Optimizer angle tolerance in degrees
  -output <dir>    Output directory
  -workers <n>     Clips processed concurrently (0 = one per CPU)
  -encoding <cs>   Charset of source files (e.g. euc-kr)

Examples:
  animtool demo walk.yaml
  animtool build -output out walk.yaml
  animtool info out/walk.anim
  animtool sample -t 0.5 out/walk.skel out/walk.anim
  animtool plot -joint foot_r -o foot.bmp out/walk.skel out/walk.anim`)
}

// setup parses the shared config flags of a command, loads the config and
// initializes logging.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	fl := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(fl)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, nil
}
