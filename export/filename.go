package export

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// FileName builds <prefix>_<annotator>_<epoch millis>.xlsx, with runs of
// whitespace in the annotator name replaced by one underscore.
func FileName(prefix, annotator string, now time.Time) string {
	name := strings.TrimSpace(annotator)
	if name == "" {
		name = "annotator"
	}
	name = whitespace.ReplaceAllString(name, "_")
	return prefix + "_" + name + "_" + strconv.FormatInt(now.UnixMilli(), 10) + ".xlsx"
}
