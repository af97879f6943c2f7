// Package polish asks a hosted language model to tidy rough listening
// notes into annotation text.
package polish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"
	"gopkg.in/matryer/try.v1"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/cache"
	"github.com/xeptore/beatpulse/errutil"
	"github.com/xeptore/beatpulse/httputil"
	"github.com/xeptore/beatpulse/log"
	"github.com/xeptore/beatpulse/ratelimit"
)

// ErrUnavailable matches every *UnavailableError.
var ErrUnavailable = errors.New("text cleanup unavailable")

type Reason string

const (
	ReasonNoAPIKey           Reason = "no_api_key"
	ReasonNetwork            Reason = "network"
	ReasonInvalidKey         Reason = "invalid_key"
	ReasonRateLimited        Reason = "rate_limited"
	ReasonAPIError           Reason = "api_error"
	ReasonUnexpectedResponse Reason = "unexpected_response"
)

type UnavailableError struct {
	Reason Reason
	Detail string
}

func (e *UnavailableError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("text cleanup unavailable: %s", e.Reason)
	}
	return fmt.Sprintf("text cleanup unavailable: %s: %s", e.Reason, e.Detail)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func unavailable(reason Reason, detail string) error {
	return &UnavailableError{Reason: reason, Detail: detail}
}

const systemPrompt = `You are a copy editor for music annotation data being used to train AI models.
Your job is to lightly rewrite rough listening notes into clean annotation text.

Apply these rules without exception:
1. Present tense only, never past tense
2. No first person, never I, my, me, we
3. No referential openers, never "In this song", "This track", "The song opens"
4. Specific over vague: "warm lo-fi piano" not "nice piano"
5. Every word earns its place: remove filler and superfluous adjectives
6. Matter-of-fact tone: emotions are fine if concrete, like "haunting" or "triumphant"
7. Use conversational cues: "jazzy chords", "descending melody"
8. Apply Who/What/Where/When when describing performers
9. 1-3 sentences maximum
10. Return ONLY the rewritten text, with no explanation, preamble or quotes`

type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	APIVersion  string
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
	// RetryDelay is the fixed wait between attempts. Zero means a jittered
	// wait that grows with every attempt.
	RetryDelay time.Duration
	Cooldown   time.Duration
	CacheTTL   time.Duration
}

type Client struct {
	cfg      Config
	http     *http.Client
	cache    *cache.Cache
	cooldown *ratelimit.Cooldown
	logger   zerolog.Logger
}

func NewClient(cfg Config, c *cache.Cache, logger zerolog.Logger) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		cache:    c,
		cooldown: ratelimit.NewCooldown(cfg.Cooldown),
		logger:   logger.With().Str("module", "polish").Logger(),
	}
}

// Previous is the entry before the one being cleaned up.
type Previous struct {
	SectionType string
	Narrative   string
}

// Context tells the model what the rough text describes. Exactly one of
// a timeline section (SectionType set) or a global Category is described.
type Context struct {
	SectionType string
	Timestamp   string
	Previous    *Previous

	Global   bool
	Category annotation.Category
}

func UserMessage(rough string, pctx Context) string {
	var sb strings.Builder
	if pctx.Global {
		def := pctx.Category.Def()
		fmt.Fprintf(&sb, "Annotating category: %s\n", def.ExcelLabel)
		fmt.Fprintf(&sb, "Guidance: %s\n", def.Guidance)
	} else {
		fmt.Fprintf(&sb, "Annotating: %s section at %s.\n", pctx.SectionType, pctx.Timestamp)
		if nil != pctx.Previous {
			fmt.Fprintf(&sb, "Previous section (%s): %s\n", pctx.Previous.SectionType, pctx.Previous.Narrative)
		} else {
			sb.WriteString("This is the opening section.\n")
		}
	}
	fmt.Fprintf(&sb, "Rough notes: %s", rough)
	return sb.String()
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

// Polish returns the cleaned up version of rough. Failures to reach or use
// the service are *UnavailableError values.
func (c *Client) Polish(ctx context.Context, rough string, pctx Context) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", unavailable(ReasonNoAPIKey, "no API key set")
	}

	prompt := UserMessage(rough, pctx)
	item, err := c.cache.Polished.Fetch(c.cfg.Model+"\x00"+prompt, c.cfg.CacheTTL, func() (string, error) {
		return c.request(ctx, prompt)
	})
	if nil != err {
		return "", err
	}
	return item.Value(), nil
}

// PolishOrKeep is Polish that falls back to rough. The error, if any, is
// returned for display only; the text is always usable.
func (c *Client) PolishOrKeep(ctx context.Context, rough string, pctx Context) (string, error) {
	out, err := c.Polish(ctx, rough, pctx)
	if nil != err {
		return rough, err
	}
	return out, nil
}

func (c *Client) request(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return "", flaw.From(fmt.Errorf("failed to encode request body: %v", err)).Append(flawP)
	}

	var out string
	err = try.Do(func(attempt int) (retry bool, err error) {
		if attempt > 1 {
			if err := sleep(ctx, c.retryDelay(attempt-1)); nil != err {
				return false, err
			}
		}
		if err := c.cooldown.Wait(ctx); nil != err {
			return false, err
		}

		text, status, err := c.send(ctx, body)
		if nil != err {
			retry = httputil.IsRetryable(status) && attempt < c.cfg.MaxAttempts
			if retry {
				c.logger.Warn().Int("attempt", attempt).Int("status", status).Msg("Cleanup request throttled, retrying")
			}
			return retry, err
		}
		out = text
		return false, nil
	})
	if nil != err {
		if _, known := errutil.IsAny(err, ErrUnavailable, context.Canceled, context.DeadlineExceeded); !known {
			c.logger.Error().Func(log.Flaw(err)).Msg("Cleanup request failed")
		}
		return "", err
	}
	return out, nil
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if c.cfg.RetryDelay > 0 {
		return c.cfg.RetryDelay
	}
	return ratelimit.RetrySleep(attempt)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send performs one request. The returned status is 0 when no response
// was received.
func (c *Client) send(ctx context.Context, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return "", 0, flaw.From(fmt.Errorf("failed to create request: %v", err)).Append(flawP)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", c.cfg.APIVersion)

	resp, err := c.http.Do(req)
	if nil != err {
		if errutil.IsContext(ctx) {
			return "", 0, ctx.Err()
		}
		return "", 0, unavailable(ReasonNetwork, "check your connection")
	}
	defer resp.Body.Close()

	respBody, err := httputil.ReadOptionalResponseBody(ctx, resp)
	if nil != err {
		if errutil.IsContext(ctx) {
			return "", resp.StatusCode, ctx.Err()
		}
		return "", resp.StatusCode, unavailable(ReasonNetwork, "response interrupted")
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		return "", code, unavailable(ReasonInvalidKey, "invalid API key")
	case code == http.StatusTooManyRequests:
		return "", code, unavailable(ReasonRateLimited, "try again in a moment")
	case code < 200 || code > 299:
		c.logger.Warn().Any("response", errutil.HTTPResponseFlawPayload(resp)).Msg("Cleanup request rejected")
		return "", code, unavailable(ReasonAPIError, fmt.Sprintf("status %d: %s", code, httputil.APIErrorMessage(respBody)))
	}

	first := gjson.GetBytes(respBody, "content.0")
	text := strings.TrimSpace(first.Get("text").String())
	if first.Get("type").String() != "text" || text == "" {
		return "", resp.StatusCode, unavailable(ReasonUnexpectedResponse, "unexpected API response format")
	}
	return text, resp.StatusCode, nil
}
