package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/beatpulse/constant"
	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/log"
)

const (
	flagConfigFilePath = "config"
	flagDebug          = "debug"
	flagTrack          = "track"
)

func main() {
	logger := log.New(os.Stderr, zerolog.InfoLevel)
	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:     constant.AppName,
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    constant.AppUsage,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagConfigFilePath,
				Aliases: []string{"c"},
				Usage:   "Config file path",
			},
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "Verbose logs and a full error report on failure",
			},
		},
		Commands: commands(),
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			if debugRequested(os.Args) {
				if report, yamlErr := errutil.FlawToYAML(flawErr); nil == yamlErr {
					fmt.Fprintf(os.Stderr, "%s\n", report)
				}
			}
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func debugRequested(args []string) bool {
	for _, a := range args {
		if a == "--"+flagDebug || a == "-"+flagDebug {
			return true
		}
	}
	return false
}
