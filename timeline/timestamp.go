package timeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeptore/beatpulse/mathutil"
)

// SecondsPerDay converts seconds into spreadsheet day fractions.
const SecondsPerDay = 86400

// Invalid is the sort key of timestamps that do not parse.
const Invalid = math.MaxInt

// MaxSeconds is what timestamps too large for an int parse to. They sort
// after every smaller timestamp and before unparseable ones.
const MaxSeconds = Invalid - 1

const maxMinutes = (MaxSeconds - 59) / 60

var timestampPattern = regexp.MustCompile(`^(\d+):([0-5]\d)$`)

// ParseTimestamp returns the number of seconds an M:SS timestamp denotes.
// Minutes are unbounded, seconds must be 00-59. Values past MaxSeconds
// saturate there.
func ParseTimestamp(ts string) (int, bool) {
	m := timestampPattern.FindStringSubmatch(ts)
	if nil == m {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[1])
	if nil != err || minutes > maxMinutes {
		// only digits reach here, so err is a range error
		return MaxSeconds, true
	}
	seconds, _ := strconv.Atoi(m[2])
	return minutes*60 + seconds, true
}

func IsValidTimestamp(ts string) bool {
	_, ok := ParseTimestamp(ts)
	return ok
}

func FormatTimestamp(seconds int) string {
	seconds = max(seconds, 0)
	return strconv.Itoa(seconds/60) + ":" + leftPad2(seconds%60)
}

// Nudge moves ts by delta seconds, never below 0:00. Unparseable input is
// returned unchanged.
func Nudge(ts string, delta int) string {
	secs, ok := ParseTimestamp(ts)
	if !ok {
		return ts
	}
	if delta > 0 && secs > MaxSeconds-delta {
		return FormatTimestamp(MaxSeconds)
	}
	return FormatTimestamp(mathutil.Clamp(secs+delta, 0, MaxSeconds))
}

// Serial is the timestamp as a fraction of a day, the way spreadsheets
// store durations. Surrounding whitespace is tolerated here.
func Serial(ts string) (float64, bool) {
	secs, ok := ParseTimestamp(strings.TrimSpace(ts))
	if !ok {
		return 0, false
	}
	return float64(secs) / SecondsPerDay, true
}

func sortKey(ts string) int {
	if secs, ok := ParseTimestamp(ts); ok {
		return secs
	}
	return Invalid
}

func leftPad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
