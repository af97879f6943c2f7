package constant

import (
	_ "embed"
	"fmt"
	"strings"
	"time"
)

const (
	AppName   = "beatpulse"
	AppUsage  = "Music annotation session and workbook exporter"
	EnvPrefix = "BEATPULSE_"
)

var (
	//go:embed version
	version     string
	Version     = strings.TrimSpace(version)
	compileTime = "2026-10-01T00:00:00Z"
	CompileTime time.Time
)

func init() {
	t, err := time.Parse(time.RFC3339, compileTime)
	if nil != err {
		panic(fmt.Errorf("could not parse compile time %q, make sure it is set at build time with -ldflags", compileTime))
	}
	CompileTime = t
}
