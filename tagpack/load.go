package tagpack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/log"
)

const maxConcurrentLoads = 4

// LoadPackFiles reads pack files, either single packs or researched
// {"packs": [...]} collections, concurrently and returns their
// packs in path order. Missing files are skipped silently; unreadable or
// malformed files are logged and skipped.
func LoadPackFiles(ctx context.Context, paths []string, logger zerolog.Logger) ([]ImportPack, error) {
	logger = logger.With().Str("module", "tagpack").Logger()

	results := make([][]ImportPack, len(paths))
	wg, ctx := errgroup.WithContext(ctx)
	wg.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		wg.Go(func() error {
			if err := ctx.Err(); nil != err {
				return err
			}
			packs, err := loadPackFile(path)
			if nil != err {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				logger.Warn().Func(log.Flaw(err)).Str("path", path).Msg("Skipping tag pack file")
				return nil
			}
			results[i] = packs
			return nil
		})
	}
	if err := wg.Wait(); nil != err {
		return nil, err
	}

	var out []ImportPack
	for _, packs := range results {
		out = append(out, packs...)
	}
	return out, nil
}

func loadPackFile(path string) ([]ImportPack, error) {
	b, err := os.ReadFile(path)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		flawP := flaw.P{"path": path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to read tag pack file: %v", err)).Append(flawP)
	}
	if !gjson.GetBytes(b, "packs").Exists() {
		res := ParseImport(b)
		if !res.OK {
			flawP := flaw.P{"path": path, "errors": res.Errors}
			return nil, flaw.From(fmt.Errorf("failed to parse tag pack file: %s", strings.Join(res.Errors, "; "))).Append(flawP)
		}
		return []ImportPack{*res.Pack}, nil
	}
	packs, err := ParseResearchedFile(b)
	if nil != err {
		flawP := flaw.P{"path": path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to parse tag pack file: %v", err)).Append(flawP)
	}
	return packs, nil
}
