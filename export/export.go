// Package export writes annotations into the workbook template.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
	"github.com/xuri/excelize/v2"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/must"
	"github.com/xeptore/beatpulse/timeline"
)

// Report lists what Export did with each annotation, by sheet name.
type Report struct {
	Written []string `json:"written"`
	Missing []string `json:"missing"`
	Ignored []string `json:"ignored"`
}

// Export fills a copy of template with the complete and skipped
// annotations. Missing worksheets are logged and reported, never fatal.
// Only the cells described by layout are written.
func Export(template []byte, annotations []*annotation.TrackAnnotation, layout Layout, logger zerolog.Logger) (out []byte, report Report, err error) {
	logger = logger.With().Str("module", "export").Logger()

	f, err := excelize.OpenReader(bytes.NewReader(template))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, report, flaw.From(fmt.Errorf("failed to open workbook template: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close workbook: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()

	w := writer{f: f, layout: layout, styles: map[int]int{}}
	for _, a := range annotations {
		sheet := a.Track.SheetName
		switch a.Status {
		case annotation.StatusComplete, annotation.StatusSkipped:
		default:
			report.Ignored = append(report.Ignored, sheet)
			continue
		}

		if idx, err := f.GetSheetIndex(sheet); nil != err || idx < 0 {
			logger.Error().Int("track_id", a.Track.ID).Str("sheet", sheet).Msg("Worksheet not found in template, skipping track")
			report.Missing = append(report.Missing, sheet)
			continue
		}

		if err := w.write(sheet, a); nil != err {
			return nil, report, err
		}
		report.Written = append(report.Written, sheet)
		logger.Debug().Int("track_id", a.Track.ID).Str("sheet", sheet).Str("status", string(a.Status)).Msg("Track written")
	}

	buf, err := f.WriteToBuffer()
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, report, flaw.From(fmt.Errorf("failed to serialize workbook: %v", err)).Append(flawP)
	}
	return buf.Bytes(), report, nil
}

type writer struct {
	f      *excelize.File
	layout Layout
	// styles maps a template style id to its copy with the timestamp
	// number format applied.
	styles map[int]int
}

func (w *writer) write(sheet string, a *annotation.TrackAnnotation) error {
	l := w.layout

	for i := range l.TimelineRows {
		for _, col := range l.timelineColumns() {
			if err := w.set(sheet, l.TimelineCell(col, i), nil); nil != err {
				return err
			}
		}
	}
	if err := w.set(sheet, l.AnnotatorCell, a.Annotator); nil != err {
		return err
	}

	switch a.Status {
	case annotation.StatusComplete:
		entries := a.Timeline
		if len(entries) > l.TimelineRows {
			entries = entries[:l.TimelineRows]
		}
		for i, e := range entries {
			if err := w.timestamp(sheet, l.TimelineCell(l.TimestampColumn, i), e.Timestamp); nil != err {
				return err
			}
			if err := w.set(sheet, l.TimelineCell(l.SectionColumn, i), e.SectionType); nil != err {
				return err
			}
			if err := w.set(sheet, l.TimelineCell(l.NarrativeColumn, i), e.Narrative); nil != err {
				return err
			}
			if err := w.set(sheet, l.TimelineCell(l.TagsColumn, i), e.Tags); nil != err {
				return err
			}
		}
		for _, c := range annotation.Categories() {
			v, _ := a.Global.Get(c)
			if err := w.set(sheet, l.GlobalCell(c), v); nil != err {
				return err
			}
		}
	case annotation.StatusSkipped:
		if err := w.set(sheet, l.TimelineCell(l.NarrativeColumn, 0), l.SkippedMarker); nil != err {
			return err
		}
		reason := strings.TrimSpace(a.SkipReason)
		if reason == "" {
			reason = l.DefaultSkipReason
		}
		if err := w.set(sheet, l.GlobalCell(annotation.Wow), "Skipped — "+reason); nil != err {
			return err
		}
	}
	return nil
}

func (w *writer) set(sheet, cell string, v any) error {
	if err := w.f.SetCellValue(sheet, cell, v); nil != err {
		flawP := flaw.P{"sheet": sheet, "cell": cell, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to set cell value: %v", err)).Append(flawP)
	}
	return nil
}

// timestamp writes ts as a day fraction shown as minutes:seconds, or as
// plain text when it does not parse.
func (w *writer) timestamp(sheet, cell, ts string) error {
	serial, ok := timeline.Serial(ts)
	if !ok {
		return w.set(sheet, cell, ts)
	}

	if err := w.f.SetCellFloat(sheet, cell, serial, -1, 64); nil != err {
		flawP := flaw.P{"sheet": sheet, "cell": cell, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to set timestamp cell: %v", err)).Append(flawP)
	}

	styleID, err := w.timestampStyle(sheet, cell)
	if nil != err {
		return err
	}
	if err := w.f.SetCellStyle(sheet, cell, cell, styleID); nil != err {
		flawP := flaw.P{"sheet": sheet, "cell": cell, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to set timestamp cell style: %v", err)).Append(flawP)
	}
	return nil
}

func (w *writer) timestampStyle(sheet, cell string) (int, error) {
	base, err := w.f.GetCellStyle(sheet, cell)
	if nil != err {
		flawP := flaw.P{"sheet": sheet, "cell": cell, "err_debug_tree": errutil.Tree(err).FlawP()}
		return 0, flaw.From(fmt.Errorf("failed to get cell style: %v", err)).Append(flawP)
	}
	if id, ok := w.styles[base]; ok {
		return id, nil
	}

	style, err := w.f.GetStyle(base)
	if nil != err {
		flawP := flaw.P{"style_id": base, "err_debug_tree": errutil.Tree(err).FlawP()}
		return 0, flaw.From(fmt.Errorf("failed to read cell style: %v", err)).Append(flawP)
	}
	format := w.layout.TimestampFormat
	style.NumFmt = 0
	style.CustomNumFmt = &format

	id, err := w.f.NewStyle(style)
	if nil != err {
		flawP := flaw.P{"style_id": base, "err_debug_tree": errutil.Tree(err).FlawP()}
		return 0, flaw.From(fmt.Errorf("failed to create timestamp style: %v", err)).Append(flawP)
	}
	w.styles[base] = id
	return id, nil
}
