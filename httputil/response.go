package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/beatpulse/errutil"
)

func readResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(resp.Body)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
		}
	}
	if len(respBody) == 0 {
		return nil, io.EOF
	}
	return respBody, nil
}

// ReadOptionalResponseBody reads the whole body. An empty body is not an
// error.
func ReadOptionalResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp)
	if nil != err && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return respBody, nil
}

// APIErrorMessage extracts the message of a messages API error body of the
// form {"type":"error","error":{"type":...,"message":...}}. Bodies of any
// other shape are returned trimmed.
func APIErrorMessage(b []byte) string {
	if msg := gjson.GetBytes(b, "error.message"); msg.Type == gjson.String && msg.String() != "" {
		if typ := gjson.GetBytes(b, "error.type").String(); typ != "" {
			return typ + ": " + msg.String()
		}
		return msg.String()
	}
	return strings.TrimSpace(string(b))
}

// IsRetryable reports whether a request that got status may succeed when
// repeated.
func IsRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
