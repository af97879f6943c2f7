package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/xeptore/beatpulse/annotation"
)

// Layout holds the cell positions of a track worksheet in the template.
type Layout struct {
	AnnotatorCell string `yaml:"annotator_cell"`

	TimelineFirstRow int    `yaml:"timeline_first_row"`
	TimelineRows     int    `yaml:"timeline_rows"`
	TimestampColumn  string `yaml:"timestamp_column"`
	SectionColumn    string `yaml:"section_column"`
	NarrativeColumn  string `yaml:"narrative_column"`
	TagsColumn       string `yaml:"tags_column"`
	TimestampFormat  string `yaml:"timestamp_format"`

	// Global slots are written top to bottom in category order. The
	// guidance column next to them belongs to the template.
	GlobalColumn   string `yaml:"global_column"`
	GuidanceColumn string `yaml:"guidance_column"`
	GlobalFirstRow int    `yaml:"global_first_row"`

	SkippedMarker     string `yaml:"skipped_marker"`
	DefaultSkipReason string `yaml:"default_skip_reason"`
}

func DefaultLayout() Layout {
	return Layout{
		AnnotatorCell:     "B2",
		TimelineFirstRow:  6,
		TimelineRows:      10,
		TimestampColumn:   "A",
		SectionColumn:     "B",
		NarrativeColumn:   "C",
		TagsColumn:        "D",
		TimestampFormat:   "[m]:ss",
		GlobalColumn:      "C",
		GuidanceColumn:    "B",
		GlobalFirstRow:    19,
		SkippedMarker:     "SKIPPED",
		DefaultSkipReason: "annotator elected to skip this track",
	}
}

func (l Layout) Validate() error {
	if _, _, err := excelize.CellNameToCoordinates(l.AnnotatorCell); nil != err {
		return fmt.Errorf("invalid annotator cell: %v", err)
	}
	if l.TimelineFirstRow < 1 || l.GlobalFirstRow < 1 {
		return fmt.Errorf("rows are 1-based")
	}
	if l.TimelineRows < 1 {
		return fmt.Errorf("timeline rows must be positive")
	}
	for _, col := range []string{l.TimestampColumn, l.SectionColumn, l.NarrativeColumn, l.TagsColumn, l.GlobalColumn, l.GuidanceColumn} {
		if _, err := excelize.ColumnNameToNumber(col); nil != err {
			return fmt.Errorf("invalid column %q: %v", col, err)
		}
	}
	if l.GlobalColumn == l.GuidanceColumn {
		return fmt.Errorf("global and guidance columns must differ")
	}
	lastTimelineRow := l.TimelineFirstRow + l.TimelineRows - 1
	lastGlobalRow := l.GlobalFirstRow + annotation.NumCategories - 1
	if l.TimelineFirstRow <= lastGlobalRow && l.GlobalFirstRow <= lastTimelineRow {
		return fmt.Errorf("timeline block overlaps global block")
	}
	return nil
}

func (l Layout) timelineColumns() []string {
	return []string{l.TimestampColumn, l.SectionColumn, l.NarrativeColumn, l.TagsColumn}
}

// GlobalCell returns the cell a category is written to.
func (l Layout) GlobalCell(c annotation.Category) string {
	return cell(l.GlobalColumn, l.GlobalFirstRow+int(c))
}

// GuidanceCell returns the template's guidance cell of a category.
func (l Layout) GuidanceCell(c annotation.Category) string {
	return cell(l.GuidanceColumn, l.GlobalFirstRow+int(c))
}

// TimelineCell returns the cell of the i-th (0-based) timeline row in col.
func (l Layout) TimelineCell(col string, i int) string {
	return cell(col, l.TimelineFirstRow+i)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
