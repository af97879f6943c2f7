package export_test

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/export"
	"github.com/xeptore/beatpulse/timeline"
)

var layout = export.DefaultLayout()

func newTemplate(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Example"))
	require.NoError(t, f.SetCellValue("Example", "A1", "Reference annotation"))
	require.NoError(t, f.SetCellValue("Example", "C6", "Example narrative"))

	for _, tr := range catalog.Default().Tracks() {
		_, err := f.NewSheet(tr.SheetName)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(tr.SheetName, "A1", tr.Label()))
		for i := range layout.TimelineRows {
			for _, col := range []string{"A", "B", "C", "D"} {
				require.NoError(t, f.SetCellValue(tr.SheetName, layout.TimelineCell(col, i), "stale"))
			}
		}
		for _, c := range annotation.Categories() {
			require.NoError(t, f.SetCellValue(tr.SheetName, layout.GuidanceCell(c), c.Def().Guidance))
			require.NoError(t, f.SetCellValue(tr.SheetName, layout.GlobalCell(c), "old "+c.String()))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func record(t *testing.T, trackID int, status annotation.Status) *annotation.TrackAnnotation {
	t.Helper()
	tr, ok := catalog.Default().ByID(trackID)
	require.True(t, ok)
	a := annotation.NewTrackAnnotation(tr, "Jo")
	a.Status = status
	return a
}

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func value(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func rows(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	r, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return r
}

func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("complete_track", func(t *testing.T) {
		t.Parallel()

		tpl := newTemplate(t)
		a := record(t, 1, annotation.StatusComplete)
		a.Timeline = []timeline.Entry{{ID: "1", Timestamp: "0:15", SectionType: "Intro", Narrative: "X", Tags: "a,b"}}
		for _, c := range annotation.Categories() {
			a.Global.Set(c, "value "+c.String())
		}

		out, report, err := export.Export(tpl, []*annotation.TrackAnnotation{a}, layout, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{"Track 1"}, report.Written)

		f := open(t, out)
		serial, err := strconv.ParseFloat(value(t, f, "Track 1", "A6"), 64)
		require.NoError(t, err)
		assert.InDelta(t, 15.0/86400.0, serial, 1e-12)

		styleID, err := f.GetCellStyle("Track 1", "A6")
		require.NoError(t, err)
		style, err := f.GetStyle(styleID)
		require.NoError(t, err)
		require.NotNil(t, style.CustomNumFmt)
		assert.Equal(t, "[m]:ss", *style.CustomNumFmt)

		assert.Equal(t, "Jo", value(t, f, "Track 1", "B2"))
		assert.Equal(t, "Intro", value(t, f, "Track 1", "B6"))
		assert.Equal(t, "X", value(t, f, "Track 1", "C6"))
		assert.Equal(t, "a,b", value(t, f, "Track 1", "D6"))
		for row := 7; row <= 15; row++ {
			for _, col := range []string{"A", "B", "C", "D"} {
				assert.Empty(t, value(t, f, "Track 1", fmt.Sprintf("%s%d", col, row)))
			}
		}
		for _, c := range annotation.Categories() {
			assert.Equal(t, "value "+c.String(), value(t, f, "Track 1", layout.GlobalCell(c)))
			assert.Equal(t, c.Def().Guidance, value(t, f, "Track 1", layout.GuidanceCell(c)))
		}
	})

	t.Run("unset_globals_written_empty", func(t *testing.T) {
		t.Parallel()

		a := record(t, 1, annotation.StatusComplete)
		a.Global.Set(annotation.Genre, "Pop")
		require.NoError(t, a.Global.MarkNotApplicable(annotation.Lyrics))

		out, _, err := export.Export(newTemplate(t), []*annotation.TrackAnnotation{a}, layout, zerolog.Nop())
		require.NoError(t, err)

		f := open(t, out)
		assert.Equal(t, "Pop", value(t, f, "Track 1", "C19"))
		assert.Equal(t, "N/A", value(t, f, "Track 1", "C25"))
		assert.Empty(t, value(t, f, "Track 1", "C27"))
	})

	t.Run("skipped_track", func(t *testing.T) {
		t.Parallel()

		a := record(t, 2, annotation.StatusSkipped)
		a.SkipReason = "explicit content"
		a.Timeline = []timeline.Entry{{ID: "1", Timestamp: "0:15", SectionType: "Intro", Narrative: "X", Tags: "a"}}
		b := record(t, 3, annotation.StatusSkipped)

		out, report, err := export.Export(newTemplate(t), []*annotation.TrackAnnotation{a, b}, layout, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{"Track 2", "Track 3"}, report.Written)

		f := open(t, out)
		assert.Equal(t, "SKIPPED", value(t, f, "Track 2", "C6"))
		assert.Equal(t, "Skipped — explicit content", value(t, f, "Track 2", "C27"))
		assert.Equal(t, "Skipped — annotator elected to skip this track", value(t, f, "Track 3", "C27"))
		assert.Equal(t, "Jo", value(t, f, "Track 2", "B2"))
		for row := 6; row <= 15; row++ {
			for _, col := range []string{"A", "B", "C", "D"} {
				cell := fmt.Sprintf("%s%d", col, row)
				if cell == "C6" {
					continue
				}
				assert.Empty(t, value(t, f, "Track 2", cell), cell)
			}
		}
		assert.Equal(t, "old genre", value(t, f, "Track 2", "C19"))
	})

	t.Run("truncates_to_ten_entries", func(t *testing.T) {
		t.Parallel()

		a := record(t, 1, annotation.StatusComplete)
		for i := range 12 {
			a.Timeline = append(a.Timeline, timeline.Entry{
				ID:          strconv.Itoa(i),
				Timestamp:   timeline.FormatTimestamp(i * 10),
				SectionType: "Section " + strconv.Itoa(i+1),
				Narrative:   "N",
				Tags:        "t",
			})
		}

		out, _, err := export.Export(newTemplate(t), []*annotation.TrackAnnotation{a}, layout, zerolog.Nop())
		require.NoError(t, err)

		f := open(t, out)
		assert.Equal(t, "Section 1", value(t, f, "Track 1", "B6"))
		assert.Equal(t, "Section 10", value(t, f, "Track 1", "B15"))
		assert.Empty(t, value(t, f, "Track 1", "B16"))
		assert.Empty(t, value(t, f, "Track 1", "B17"))
	})

	t.Run("unparseable_timestamp_written_as_text", func(t *testing.T) {
		t.Parallel()

		a := record(t, 1, annotation.StatusComplete)
		a.Timeline = []timeline.Entry{{ID: "1", Timestamp: "intro", SectionType: "Intro", Narrative: "X"}}

		out, _, err := export.Export(newTemplate(t), []*annotation.TrackAnnotation{a}, layout, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "intro", value(t, open(t, out), "Track 1", "A6"))
	})

	t.Run("untouched_sheets", func(t *testing.T) {
		t.Parallel()

		tpl := newTemplate(t)
		original := bytes.Clone(tpl)
		before := open(t, tpl)

		inProgress := record(t, 3, annotation.StatusInProgress)
		inProgress.Annotator = "Someone else"
		out, report, err := export.Export(tpl, []*annotation.TrackAnnotation{record(t, 1, annotation.StatusComplete), inProgress}, layout, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{"Track 3"}, report.Ignored)
		assert.Equal(t, original, tpl)

		after := open(t, out)
		for _, sheet := range []string{"Example", "Track 2", "Track 3"} {
			assert.Equal(t, rows(t, before, sheet), rows(t, after, sheet), sheet)
		}
	})

	t.Run("missing_sheet_is_skipped", func(t *testing.T) {
		t.Parallel()

		ghost := record(t, 1, annotation.StatusComplete)
		ghost.Track.ID = 9
		ghost.Track.SheetName = "Track 9"
		a := record(t, 2, annotation.StatusSkipped)

		out, report, err := export.Export(newTemplate(t), []*annotation.TrackAnnotation{ghost, a}, layout, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{"Track 9"}, report.Missing)
		assert.Equal(t, []string{"Track 2"}, report.Written)
		assert.Equal(t, "SKIPPED", value(t, open(t, out), "Track 2", "C6"))
	})

	t.Run("invalid_template", func(t *testing.T) {
		t.Parallel()

		_, _, err := export.Export([]byte("not a workbook"), nil, layout, zerolog.Nop())
		require.Error(t, err)
	})
}

func TestLayoutValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, export.DefaultLayout().Validate())

	l := export.DefaultLayout()
	l.GlobalFirstRow = 10
	require.Error(t, l.Validate())

	l = export.DefaultLayout()
	l.GuidanceColumn = l.GlobalColumn
	require.Error(t, l.Validate())

	l = export.DefaultLayout()
	l.AnnotatorCell = "2B"
	require.Error(t, l.Validate())
}

func TestFileName(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1760000000123)
	assert.Equal(t, "TuneTag_Jo_Ann_Smith_1760000000123.xlsx", export.FileName("TuneTag", "Jo  Ann\tSmith", now))
	assert.Equal(t, "TuneTag_annotator_1760000000123.xlsx", export.FileName("TuneTag", "  ", now))
}
