package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/xeptore/beatpulse/autosave"
	"github.com/xeptore/beatpulse/cache"
	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/config"
	"github.com/xeptore/beatpulse/constant"
	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/log"
	"github.com/xeptore/beatpulse/polish"
	"github.com/xeptore/beatpulse/session"
	"github.com/xeptore/beatpulse/store"
	"github.com/xeptore/beatpulse/tagpack"
)

// runtime is everything a command needs, loaded once per invocation.
type runtime struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	logger  zerolog.Logger

	sessionFile store.File[session.State]
	libraryFile store.File[tagpack.Library]

	saver *autosave.Saver[session.State]
	coord *session.Coordinator
}

type action func(ctx context.Context, cliCtx *cli.Context, rt *runtime) error

// withRuntime wraps a command action with config and session loading. The
// pending snapshot is flushed when the action returns, including after
// SIGINT or SIGTERM.
func withRuntime(fn action) cli.ActionFunc {
	return func(cliCtx *cli.Context) (err error) {
		ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		rt, err := loadRuntime(cliCtx)
		if nil != err {
			return err
		}
		defer rt.saver.Close()
		defer func() {
			if r := recover(); nil != r {
				rt.logger.Error().Func(log.Panic(r)).Msg("Command panicked")
				if rErr, ok := r.(error); ok {
					err = errors.New(errutil.UnknownError(rErr))
				} else {
					err = fmt.Errorf("command panicked: %v", r)
				}
			}
		}()

		return fn(ctx, cliCtx, rt)
	}
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	var (
		cfgEnv      = os.Getenv("CONFIG")
		cfgFilePath = cliCtx.String(flagConfigFilePath)
	)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		c, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return c, nil
	case cfgEnv != "":
		logger.Debug().Msg("Loading config from environment variable")
		c, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return c, nil
	default:
		logger.Debug().Msg("No config given, using defaults")
		cfg := config.Default()
		return &cfg, nil
	}
}

func loadRuntime(cliCtx *cli.Context) (*runtime, error) {
	logger := log.New(os.Stderr, zerolog.InfoLevel)
	if cliCtx.Bool(flagDebug) {
		logger = logger.Level(zerolog.DebugLevel)
	}

	cfg, err := loadConfig(cliCtx, logger)
	if nil != err {
		return nil, err
	}
	if !cliCtx.Bool(flagDebug) {
		logger = logger.Level(log.ParseLevel(cfg.LogLevel))
	}

	cat, err := cfg.Catalog()
	if nil != err {
		return nil, fmt.Errorf("failed to build track catalog: %v", err)
	}

	rt := &runtime{
		cfg:         cfg,
		catalog:     cat,
		logger:      logger,
		sessionFile: store.File[session.State]{Path: cfg.SessionFile},
		libraryFile: store.File[tagpack.Library]{Path: cfg.LibraryFile},
	}

	state, err := rt.sessionFile.Read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Debug().Str("path", cfg.SessionFile).Msg("No saved session, starting a new one")
		s := session.NewState(cat, "")
		state = &s
	case nil != err:
		return nil, err
	default:
		state.EnsureTracks(cat)
	}

	rt.saver = autosave.New(rt.sessionFile.Write, cfg.AutosaveOptions(), logger)
	rt.coord = session.NewCoordinator(*state, rt.saver)
	return rt, nil
}

func (rt *runtime) apply(fn func(*session.State) error) error {
	return rt.coord.Apply(fn)
}

// activeOr resolves the --track flag, defaulting to the active track.
func (rt *runtime) activeOr(cliCtx *cli.Context) (int, error) {
	if id := cliCtx.Int(flagTrack); id > 0 {
		return id, nil
	}
	snap := rt.coord.Snapshot()
	if nil == snap.ActiveTrackID {
		return 0, fmt.Errorf("%w: select a track or pass --%s", session.ErrNoActiveTrack, flagTrack)
	}
	return *snap.ActiveTrackID, nil
}

func (rt *runtime) library() (*tagpack.Library, error) {
	lib, err := rt.libraryFile.Read()
	if errors.Is(err, os.ErrNotExist) {
		return tagpack.NewLibrary(), nil
	}
	return lib, err
}

func (rt *runtime) polishClient() *polish.Client {
	apiKey := os.Getenv(constant.EnvPrefix + "POLISH_API_KEY")
	return polish.NewClient(rt.cfg.PolishConfig(apiKey), cache.New(), rt.logger)
}

func now() time.Time {
	return time.Now()
}
