package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/lint"
	"github.com/xeptore/beatpulse/phase"
	"github.com/xeptore/beatpulse/session"
	"github.com/xeptore/beatpulse/timeline"
)

func requireArg(cliCtx *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(cliCtx.Args().Get(i))
	if v == "" {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return v, nil
}

func requireIntArg(cliCtx *cli.Context, i int, name string) (int, error) {
	v, err := requireArg(cliCtx, i, name)
	if nil != err {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if nil != err {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, v)
	}
	return n, nil
}

func printf(cliCtx *cli.Context, format string, a ...any) {
	fmt.Fprintf(cliCtx.App.Writer, format, a...)
}

func tracksAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	snap := rt.coord.Snapshot()
	rows := lo.Map(snap.Ordered(), func(a *annotation.TrackAnnotation, _ int) []string {
		active := ""
		if nil != snap.ActiveTrackID && *snap.ActiveTrackID == a.Track.ID {
			active = "*"
		}
		return []string{
			active,
			strconv.Itoa(a.Track.ID),
			a.Track.Label(),
			a.Track.SheetName,
			string(a.Status),
			strconv.Itoa(len(a.Timeline)),
			fmt.Sprintf("%d/%d", a.Global.Filled(), annotation.NumCategories),
			timeline.FormatTimestamp(a.ElapsedSeconds),
		}
	})
	headers := []string{"", "ID", "Track", "Sheet", "Status", "Entries", "Global", "Elapsed"}
	printf(cliCtx, "%s\n", renderTable("", headers, rows, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight))
	return nil
}

func annotatorAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	name := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
	if name == "" {
		return errors.New("missing name argument")
	}
	if err := rt.apply(func(s *session.State) error {
		s.SetAnnotator(name)
		return nil
	}); nil != err {
		return err
	}
	printf(cliCtx, "Annotator set to %s\n", name)
	return nil
}

func selectAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := requireIntArg(cliCtx, 0, "track-id")
	if nil != err {
		return err
	}
	var resumed phase.Phase
	if err := rt.apply(func(s *session.State) error {
		p, err := s.SelectTrack(id)
		resumed = p
		return err
	}); nil != err {
		return err
	}
	track, _ := rt.catalog.ByID(id)
	printf(cliCtx, "Selected %s, phase %s\n", track.Label(), resumed)
	if track.SpotifyURL != "" {
		printf(cliCtx, "Listen: %s\n", track.SpotifyURL)
	}
	return nil
}

func phaseAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	raw, err := requireArg(cliCtx, 0, "phase")
	if nil != err {
		return err
	}
	p, err := phase.Parse(raw)
	if nil != err {
		return err
	}

	var res *lint.Result
	err = rt.apply(func(s *session.State) error {
		switch p {
		case phase.Select:
			s.NextTrack()
			return nil
		case phase.MarkEntry:
			return errors.New("entries are marked with the entry add command")
		case phase.Review:
			r, err := s.EnterReview(rt.cfg.Lint)
			if nil != err {
				return err
			}
			res = &r
			return nil
		default:
			if _, err := s.Active(); nil != err {
				return err
			}
			if nil != s.Draft {
				return session.ErrDraftOpen
			}
			s.SetPhase(p)
			return nil
		}
	})
	if nil != err {
		return err
	}
	printf(cliCtx, "Phase %s\n", p)
	if nil != res {
		printLintResult(cliCtx, *res)
	}
	return nil
}

func nextAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	if err := rt.apply(func(s *session.State) error {
		s.NextTrack()
		return nil
	}); nil != err {
		return err
	}
	printf(cliCtx, "Back to track selection\n")
	return nil
}

func timerAction(running bool) action {
	return func(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
		return rt.apply(func(s *session.State) error {
			if _, err := s.Active(); nil != err {
				return err
			}
			s.SetTimer(running)
			return nil
		})
	}
}

func elapsedAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	seconds, err := requireIntArg(cliCtx, 0, "seconds")
	if nil != err {
		return err
	}
	id, err := rt.activeOr(cliCtx)
	if nil != err {
		return err
	}
	return rt.apply(func(s *session.State) error {
		return s.SetElapsedSeconds(id, seconds)
	})
}

func completeAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := rt.activeOr(cliCtx)
	if nil != err {
		return err
	}
	err = rt.apply(func(s *session.State) error {
		return s.Complete(id, now(), rt.cfg.Lint)
	})
	if blocked := new(session.BlockedError); errors.As(err, &blocked) {
		printLintResult(cliCtx, lint.Result{Issues: blocked.Issues})
		return err
	}
	if nil != err {
		return err
	}
	printf(cliCtx, "Track %d complete\n", id)
	return nil
}

func skipAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := rt.activeOr(cliCtx)
	if nil != err {
		return err
	}
	if err := rt.apply(func(s *session.State) error {
		return s.Skip(id, cliCtx.String("reason"))
	}); nil != err {
		return err
	}
	printf(cliCtx, "Track %d skipped\n", id)
	return nil
}

func resetAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := rt.activeOr(cliCtx)
	if nil != err {
		return err
	}
	if err := rt.apply(func(s *session.State) error {
		return s.Reset(id)
	}); nil != err {
		return err
	}
	printf(cliCtx, "Track %d reset\n", id)
	return nil
}

func lintAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	id, err := rt.activeOr(cliCtx)
	if nil != err {
		return err
	}
	snap := rt.coord.Snapshot()
	a, err := snap.Track(id)
	if nil != err {
		return err
	}
	printLintResult(cliCtx, lint.Lint(a, rt.cfg.Lint))
	return nil
}

func printLintResult(cliCtx *cli.Context, res lint.Result) {
	if len(res.Issues) == 0 {
		printf(cliCtx, "No issues\n")
		return
	}
	rows := lo.Map(res.Issues, func(i lint.Issue, _ int) []string {
		return []string{string(i.Severity), i.Field, i.Message, string(i.Phase)}
	})
	printf(cliCtx, "%s\n", renderTable("", []string{"Severity", "Field", "Message", "Fix in"}, rows))
	if len(res.Errors()) > 0 {
		printf(cliCtx, "%d blocking issue(s), the track cannot be completed yet\n", len(res.Errors()))
	}
}

func sessionShowAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	snap := rt.coord.Snapshot()
	active := "none"
	if a, err := snap.Active(); nil == err {
		active = fmt.Sprintf("%d (%s)", a.Track.ID, a.Track.Label())
	}
	rows := [][]string{
		{"Annotator", lo.Ternary(snap.Annotator == "", "-", snap.Annotator)},
		{"Active track", active},
		{"Phase", string(snap.Phase)},
		{"Timer", lo.Ternary(snap.TimerRunning, "running", "stopped")},
		{"Saved at", rt.cfg.SessionFile},
	}
	if nil != snap.Draft {
		rows = append(rows, []string{"Open draft", fmt.Sprintf("%s %s: %s", snap.Draft.Timestamp, snap.Draft.SectionType, snap.Draft.Narrative)})
	}
	printf(cliCtx, "%s\n", renderTable("Session", []string{"Key", "Value"}, rows))

	a, err := snap.Active()
	if nil != err {
		return nil
	}
	entries := lo.Map(a.Timeline, func(e timeline.Entry, _ int) []string {
		return []string{e.ID, e.Timestamp, e.SectionType, e.Narrative, e.Tags, lo.Ternary(e.WasPolished, "yes", "")}
	})
	printf(cliCtx, "%s\n", renderTable("Timeline", []string{"ID", "At", "Section", "Narrative", "Tags", "Polished"}, entries))
	return nil
}

func sessionDiscardAction(_ context.Context, cliCtx *cli.Context, rt *runtime) error {
	if !cliCtx.Bool("yes") {
		return errors.New("discarding deletes every annotation of the session, pass --yes to confirm")
	}
	rt.saver.Flush()
	if err := rt.sessionFile.Remove(); nil != err {
		return err
	}
	printf(cliCtx, "Session discarded\n")
	return nil
}
