package main

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/config"
	"github.com/xeptore/beatpulse/ctxutil"
	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/log"
	"github.com/xeptore/beatpulse/polish"
	"github.com/xeptore/beatpulse/session"
	"github.com/xeptore/beatpulse/timeline"
)

// previousEntry is the entry right before ts in an ordered timeline,
// skipping the entry being edited.
func previousEntry(entries []timeline.Entry, ts, skipID string) *polish.Previous {
	at, ok := timeline.ParseTimestamp(ts)
	if !ok {
		return nil
	}
	var prev *polish.Previous
	for _, e := range timeline.Reorder(entries) {
		secs, ok := timeline.ParseTimestamp(e.Timestamp)
		if !ok || secs >= at || e.ID == skipID {
			continue
		}
		prev = &polish.Previous{SectionType: e.SectionType, Narrative: e.Narrative}
	}
	return prev
}

// polishText runs a cleanup request that, once sent, is given a short grace
// period to return after an interrupt. Failures keep rough and are only
// reported.
func polishText(ctx context.Context, cliCtx *cli.Context, rt *runtime, rough string, pctx polish.Context) (string, bool) {
	ctx, cancel := ctxutil.WithGracePeriod(ctx, config.ShutdownGracePeriod)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, config.PolishCommandTimeout)
	defer cancelTimeout()

	out, err := rt.polishClient().PolishOrKeep(ctx, rough, pctx)
	if nil != err {
		if errutil.IsFlaw(err) {
			rt.logger.Debug().Func(log.Flaw(err)).Msg("Cleanup failed")
		}
		printf(cliCtx, "Cleanup skipped, keeping your text: %v\n", err)
		return out, false
	}
	return out, true
}

func activeTimeline(rt *runtime) ([]timeline.Entry, error) {
	snap := rt.coord.Snapshot()
	a, err := snap.Active()
	if nil != err {
		return nil, err
	}
	if a.Status == annotation.StatusSkipped {
		return nil, session.ErrTrackSkipped
	}
	return a.Timeline, nil
}

func tagsFromIDs(rt *runtime, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	lib, err := rt.library()
	if nil != err {
		return nil, err
	}
	return timeline.SplitTags(lib.IDsToString(ids)), nil
}

func entryAddAction(ctx context.Context, cliCtx *cli.Context, rt *runtime) error {
	var (
		at        = strings.TrimSpace(cliCtx.String("at"))
		section   = strings.TrimSpace(cliCtx.String("section"))
		narrative = strings.TrimSpace(cliCtx.String("narrative"))
	)
	entries, err := activeTimeline(rt)
	if nil != err {
		return err
	}
	libTags, err := tagsFromIDs(rt, cliCtx.StringSlice("tag-id"))
	if nil != err {
		return err
	}

	polished := ""
	if cliCtx.Bool("polish") && narrative != "" {
		out, ok := polishText(ctx, cliCtx, rt, narrative, polish.Context{
			SectionType: section,
			Timestamp:   at,
			Previous:    previousEntry(entries, at, ""),
		})
		if ok {
			polished = out
		}
	}

	err = rt.apply(func(s *session.State) error {
		if err := s.OpenDraft(at, narrative, cliCtx.Bool("dictated")); nil != err {
			return err
		}
		s.Draft.SectionType = section
		for _, tag := range append(cliCtx.StringSlice("tag"), libTags...) {
			s.Draft.AddTag(tag)
		}
		if polished != "" {
			s.Draft.AcceptPolished(polished)
		}
		return s.SaveDraft(now(), nil)
	})
	if nil != err {
		return err
	}
	printf(cliCtx, "Entry added at %s\n", at)
	return nil
}

func entryEditAction(ctx context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := requireArg(cliCtx, 0, "entry-id")
	if nil != err {
		return err
	}
	entries, err := activeTimeline(rt)
	if nil != err {
		return err
	}
	existing, ok := timeline.Find(entries, id)
	if !ok {
		return timeline.ErrEntryNotFound
	}

	polished := ""
	if cliCtx.Bool("polish") {
		narrative := lo.Ternary(cliCtx.IsSet("narrative"), cliCtx.String("narrative"), existing.Narrative)
		section := lo.Ternary(cliCtx.IsSet("section"), cliCtx.String("section"), existing.SectionType)
		ts := lo.Ternary(cliCtx.IsSet("at"), cliCtx.String("at"), existing.Timestamp)
		out, ok := polishText(ctx, cliCtx, rt, narrative, polish.Context{
			SectionType: section,
			Timestamp:   ts,
			Previous:    previousEntry(entries, ts, id),
		})
		if ok {
			polished = out
		}
	}

	err = rt.apply(func(s *session.State) error {
		if err := s.EditEntry(id); nil != err {
			return err
		}
		d := s.Draft
		if cliCtx.IsSet("at") {
			d.Timestamp = strings.TrimSpace(cliCtx.String("at"))
		}
		if n := cliCtx.Int("nudge"); n != 0 {
			d.Nudge(n)
		}
		if cliCtx.IsSet("section") {
			d.SectionType = strings.TrimSpace(cliCtx.String("section"))
		}
		if cliCtx.IsSet("narrative") {
			d.SetNarrative(cliCtx.String("narrative"))
		}
		if cliCtx.IsSet("tag") {
			d.Tags = strings.Join(cliCtx.StringSlice("tag"), ", ")
		}
		for _, tag := range cliCtx.StringSlice("add-tag") {
			d.AddTag(tag)
		}
		if polished != "" {
			d.AcceptPolished(polished)
		}
		return s.SaveDraft(now(), nil)
	})
	if nil != err {
		return err
	}
	printf(cliCtx, "Entry %s updated\n", id)
	return nil
}

func entryRemoveAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := requireArg(cliCtx, 0, "entry-id")
	if nil != err {
		return err
	}
	if err := rt.apply(func(s *session.State) error {
		return s.RemoveEntry(id, now())
	}); nil != err {
		return err
	}
	printf(cliCtx, "Entry %s removed\n", id)
	return nil
}

func globalShowAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	snap := rt.coord.Snapshot()
	a, err := snap.Active()
	if nil != err {
		return err
	}
	rows := lo.Map(annotation.Categories(), func(c annotation.Category, _ int) []string {
		def := c.Def()
		value, _ := a.Global.Get(c)
		return []string{def.Key, def.DisplayLabel, value, def.Guidance}
	})
	printf(cliCtx, "%s\n", renderTable(a.Track.Label(), []string{"Key", "Category", "Value", "Guidance"}, rows))
	return nil
}

func globalSetAction(ctx context.Context, cliCtx *cli.Context, rt *runtime) error {
	key, err := requireArg(cliCtx, 0, "category")
	if nil != err {
		return err
	}
	c, err := annotation.ParseCategory(key)
	if nil != err {
		return err
	}
	value := strings.TrimSpace(strings.Join(cliCtx.Args().Tail(), " "))
	if value == "" {
		return errors.New("missing text argument")
	}
	if _, err := activeTimeline(rt); nil != err {
		return err
	}

	if cliCtx.Bool("polish") {
		value, _ = polishText(ctx, cliCtx, rt, value, polish.Context{Global: true, Category: c})
	}

	if err := rt.apply(func(s *session.State) error {
		return s.SetGlobal(c, value, now())
	}); nil != err {
		return err
	}
	printf(cliCtx, "%s saved\n", c.Def().DisplayLabel)
	return nil
}

func globalNAAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	key, err := requireArg(cliCtx, 0, "category")
	if nil != err {
		return err
	}
	c, err := annotation.ParseCategory(key)
	if nil != err {
		return err
	}
	if err := rt.apply(func(s *session.State) error {
		return s.MarkGlobalNotApplicable(c, now())
	}); nil != err {
		return err
	}
	printf(cliCtx, "%s marked %s\n", c.Def().DisplayLabel, annotation.NotApplicableText)
	return nil
}

func polishAction(ctx context.Context, cliCtx *cli.Context, rt *runtime) error {
	rough := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
	if rough == "" {
		return errors.New("missing text argument")
	}

	var pctx polish.Context
	if key := cliCtx.String("category"); key != "" {
		c, err := annotation.ParseCategory(key)
		if nil != err {
			return err
		}
		pctx = polish.Context{Global: true, Category: c}
	} else {
		pctx = polish.Context{
			SectionType: lo.CoalesceOrEmpty(cliCtx.String("section"), "Unknown"),
			Timestamp:   lo.CoalesceOrEmpty(cliCtx.String("at"), "0:00"),
		}
		if entries, err := activeTimeline(rt); nil == err {
			pctx.Previous = previousEntry(entries, pctx.Timestamp, "")
		}
	}

	out, _ := polishText(ctx, cliCtx, rt, rough, pctx)
	printf(cliCtx, "%s\n", out)
	return nil
}
