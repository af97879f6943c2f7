package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/config"
	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/export"
	"github.com/xeptore/beatpulse/lint"
	"github.com/xeptore/beatpulse/phrase"
	"github.com/xeptore/beatpulse/session"
	"github.com/xeptore/beatpulse/tagpack"
)

func exportAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	template, err := os.ReadFile(rt.cfg.TemplateFile)
	if nil != err {
		flawP := flaw.P{"path": rt.cfg.TemplateFile, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to read workbook template: %v", err)).Append(flawP)
	}

	snap := rt.coord.Snapshot()
	records, blocked, err := exportRecords(cliCtx, &snap, rt)
	if nil != err {
		return err
	}
	for _, b := range blocked {
		rt.logger.Warn().Int("track_id", b.TrackID).Int("issues", len(b.Issues)).Msg("Complete track no longer passes validation, not exported")
		printf(cliCtx, "Track %d was edited since completion and is not exported:\n", b.TrackID)
		printLintResult(cliCtx, lint.Result{Issues: b.Issues})
	}
	out, report, err := export.Export(template, records, rt.cfg.Layout, rt.logger)
	if nil != err {
		return err
	}

	path := cliCtx.String("out")
	if path == "" {
		path = filepath.Join(rt.cfg.ExportDir, export.FileName(rt.cfg.ExportPrefix, snap.Annotator, now()))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o0755); nil != err {
		flawP := flaw.P{"path": path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to create export directory: %v", err)).Append(flawP)
	}
	if err := os.WriteFile(path, out, 0o0644); nil != err { //nolint:gosec
		flawP := flaw.P{"path": path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to write export file: %v", err)).Append(flawP)
	}

	rows := [][]string{
		{"Written", strings.Join(report.Written, ", ")},
		{"Missing sheet", strings.Join(report.Missing, ", ")},
		{"Not exported", strings.Join(report.Ignored, ", ")},
	}
	printf(cliCtx, "%s\n", renderTable(path, []string{"Result", "Sheets"}, rows))
	return nil
}

// exportRecords picks what export writes: the --track record when given,
// refused while it has blocking issues, or every record the validator
// still lets through.
func exportRecords(cliCtx *cli.Context, snap *session.State, rt *runtime) ([]*annotation.TrackAnnotation, []*session.BlockedError, error) {
	if id := cliCtx.Int(flagTrack); id > 0 {
		a, err := snap.ExportTrack(id, rt.cfg.Lint)
		if blocked := new(session.BlockedError); errors.As(err, &blocked) {
			printLintResult(cliCtx, lint.Result{Issues: blocked.Issues})
			return nil, nil, err
		}
		if nil != err {
			return nil, nil, err
		}
		return []*annotation.TrackAnnotation{a}, nil, nil
	}
	records, blocked := snap.Exportable(rt.cfg.Lint)
	return records, blocked, nil
}

func saveLibrary(rt *runtime, lib *tagpack.Library) error {
	return rt.libraryFile.Write(*lib)
}

func tagsImportAction(ctx context.Context, cliCtx *cli.Context, rt *runtime) error {
	paths := cliCtx.Args().Slice()
	if len(paths) == 0 {
		paths = rt.cfg.TagPacks
	}
	if len(paths) == 0 {
		return errors.New("no tag pack files given and none configured")
	}

	ctx, cancel := context.WithTimeout(ctx, config.TagPackLoadTimeout)
	defer cancel()
	packs, err := tagpack.LoadPackFiles(ctx, paths, rt.logger)
	if nil != err {
		return err
	}
	if len(packs) == 0 {
		return errors.New("no valid tag packs found")
	}

	lib, err := rt.library()
	if nil != err {
		return err
	}
	rows := lo.Map(packs, func(p tagpack.ImportPack, _ int) []string {
		stats := lib.Import(p)
		return []string{p.PackID, p.Label, strconv.Itoa(stats.Added), strconv.Itoa(stats.Merged)}
	})
	if err := saveLibrary(rt, lib); nil != err {
		return err
	}
	printf(cliCtx, "%s\n", renderTable("Imported", []string{"Pack", "Label", "Added", "Merged"}, rows, alignLeft, alignLeft, alignRight, alignRight))
	return nil
}

func tagsListAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	lib, err := rt.library()
	if nil != err {
		return err
	}

	query := cliCtx.String("query")
	var tags []tagpack.Tag
	switch {
	case cliCtx.Bool("hidden"):
		tags = lib.HiddenBuiltins()
	case cliCtx.Bool("all"):
		tags = lib.LibraryTags(query)
	default:
		id := cliCtx.Int(flagTrack)
		if snap := rt.coord.Snapshot(); id == 0 && nil != snap.ActiveTrackID {
			id = *snap.ActiveTrackID
		}
		tags = lib.SessionTags(id, query)
	}

	for _, g := range tagpack.GroupByCategory(tags) {
		rows := lo.Map(g.Tags, func(t tagpack.Tag, _ int) []string {
			return []string{t.ID, t.Label, string(t.Type), string(t.Source), strings.Join(t.PackIDs, ", ")}
		})
		printf(cliCtx, "%s\n", renderTable(g.Category, []string{"ID", "Label", "Type", "Source", "Packs"}, rows))
	}
	if len(lib.CustomSectionTypes) > 0 {
		printf(cliCtx, "Custom section types: %s\n", strings.Join(lib.CustomSectionTypes, ", "))
	}
	return nil
}

func tagsAddAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	label := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
	if label == "" {
		return errors.New("missing label argument")
	}
	lib, err := rt.library()
	if nil != err {
		return err
	}
	tag := lib.AddCustomTag(label, tagpack.Type(cliCtx.String("type")), cliCtx.String("category"))
	if err := saveLibrary(rt, lib); nil != err {
		return err
	}
	printf(cliCtx, "Tag %s (%s)\n", tag.Label, tag.ID)
	return nil
}

func tagsPackAction(enable bool) action {
	return func(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
		id, err := requireArg(cliCtx, 0, "pack-id")
		if nil != err {
			return err
		}
		lib, err := rt.library()
		if nil != err {
			return err
		}
		if !lo.ContainsBy(lib.Packs, func(p tagpack.Pack) bool { return p.ID == id }) {
			return fmt.Errorf("unknown tag pack %q", id)
		}
		if enable {
			lib.EnablePack(id)
		} else {
			lib.DisablePack(id)
		}
		return saveLibrary(rt, lib)
	}
}

func tagsHideAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := requireArg(cliCtx, 0, "tag-id")
	if nil != err {
		return err
	}
	lib, err := rt.library()
	if nil != err {
		return err
	}
	if trackID := cliCtx.Int(flagTrack); trackID > 0 {
		lib.HideForSession(trackID, id)
	} else {
		lib.HideBuiltin(id)
	}
	return saveLibrary(rt, lib)
}

func tagsRestoreAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := requireArg(cliCtx, 0, "tag-id")
	if nil != err {
		return err
	}
	lib, err := rt.library()
	if nil != err {
		return err
	}
	lib.RestoreBuiltin(id)
	return saveLibrary(rt, lib)
}

func tagsSectionAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	name := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
	if name == "" {
		return errors.New("missing name argument")
	}
	lib, err := rt.library()
	if nil != err {
		return err
	}
	lib.AddCustomSectionType(name)
	return saveLibrary(rt, lib)
}

func phraseAction(cliCtx *cli.Context) error {
	in := phrase.Input{
		Who:   cliCtx.String("who"),
		What:  cliCtx.String("what"),
		Where: cliCtx.String("where"),
		When:  cliCtx.String("when"),
	}
	if cliCtx.Bool("all") {
		for _, s := range phrase.Variants(in) {
			printf(cliCtx, "%s\n", s)
		}
		return nil
	}
	s := phrase.Build(in, cliCtx.Int("variant"))
	if s == "" {
		return errors.New("who and what are required")
	}
	printf(cliCtx, "%s\n", s)
	return nil
}
