package errutil

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/xeptore/flaw/v8"
	"gopkg.in/yaml.v3"
)

func HTTPResponseFlawPayload(res *http.Response) flaw.P {
	headers := make(flaw.P, len(res.Header))
	for k, v := range res.Header {
		headers[k] = v
	}
	return flaw.P{
		"status":         res.Status,
		"status_code":    res.StatusCode,
		"content_length": res.ContentLength,
		"proto":          res.Proto,
		"headers":        headers,
	}
}

// Report is the YAML shape of a flaw written by the --debug flag.
type Report struct {
	Inner        string        `yaml:"inner"`
	Records      []Record      `yaml:"records"`
	JoinedErrors []JoinedError `yaml:"joined_errors"`
	StackTrace   []StackTrace  `yaml:"stack_trace"`
}

type Record struct {
	Function string         `yaml:"function"`
	Payload  map[string]any `yaml:"payload"`
}

type JoinedError struct {
	Message          string      `yaml:"message"`
	CallerStackTrace *StackTrace `yaml:"caller_stack_trace"`
}

type StackTrace struct {
	File     string `yaml:"file"`
	Line     int    `yaml:"line"`
	Function string `yaml:"function"`
}

func FlawToYAML(f *flaw.Flaw) ([]byte, error) {
	report := Report{
		Inner:        f.Inner,
		Records:      make([]Record, 0, len(f.Records)),
		JoinedErrors: make([]JoinedError, 0, len(f.JoinedErrors)),
		StackTrace:   make([]StackTrace, 0, len(f.StackTrace)),
	}
	for _, v := range f.Records {
		report.Records = append(report.Records, Record{Function: v.Function, Payload: v.Payload})
	}
	for _, v := range f.JoinedErrors {
		je := JoinedError{Message: v.Message, CallerStackTrace: nil}
		if st := v.CallerStackTrace; nil != st {
			je.CallerStackTrace = &StackTrace{File: st.File, Line: st.Line, Function: st.Function}
		}
		report.JoinedErrors = append(report.JoinedErrors, je)
	}
	for _, v := range f.StackTrace {
		report.StackTrace = append(report.StackTrace, StackTrace{File: v.File, Line: v.Line, Function: v.Function})
	}

	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf).Encode(report); nil != err {
		flawP := flaw.P{"err_debug_tree": Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to encode flaw to yaml: %v", err)).Append(flawP)
	}

	return buf.Bytes(), nil
}
