// Package nasa implements the photo source adapters for the journey:
// Mars rover photos, EPIC Earth imagery and the astronomy picture of the day.
// All adapters share one two-phase protocol: list the candidates available on
// a date, then fetch and validate a single randomly drawn candidate.
package nasa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/astralex/spacebot/core/logger"
)

// Place identifies a photo destination.
type Place string

const (
	PlaceMars  Place = "mars"
	PlaceEarth Place = "earth"
	PlaceSpace Place = "space"
)

// Outcome sentinels of the adapter protocol. Everything else coming out of an
// adapter is a transient failure already retried up to the attempt ceiling.
var (
	// ErrQuotaExhausted means the API signalled its request quota is spent.
	ErrQuotaExhausted = errors.New("nasa: request quota exhausted")
	// ErrNoPhotos means the request succeeded but the date has zero photos.
	ErrNoPhotos = errors.New("nasa: no photos for this date")
	// ErrUnavailable means the attempt ceiling was hit on transient failures.
	ErrUnavailable = errors.New("nasa: service unavailable")
	// ErrNoMatch means the drawn candidate failed validation or the
	// candidate list drained without a usable photo.
	ErrNoMatch = errors.New("nasa: no matching photo")
)

// maxAttempts is the hard retry ceiling per network call. No backoff: a call
// either succeeds within three immediate attempts or degrades to ErrUnavailable.
const maxAttempts = 3

type retryNotifyKey struct{}

// WithRetryNotify registers fn to be invoked before every retry of a failed
// network attempt, carrying the number of the attempt that just failed.
// Callers use it to surface a "still searching" notice while the adapters
// burn through their attempt budget.
func WithRetryNotify(ctx context.Context, fn func(attempt int)) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, retryNotifyKey{}, fn)
}

// RetryNotifyFrom returns the registered retry callback, or a no-op.
func RetryNotifyFrom(ctx context.Context) func(attempt int) {
	if ctx != nil {
		if fn, ok := ctx.Value(retryNotifyKey{}).(func(int)); ok {
			return fn
		}
	}
	return func(int) {}
}

// PhotoRef is one not-yet-shown candidate for the current destination and date.
type PhotoRef struct {
	URL string
}

// Photo is a fetched, validated photo ready for delivery.
// Bytes may be nil when the adapter delivers by URL (APOD).
type Photo struct {
	URL   string
	Bytes []byte
}

// Query carries the per-turn parameters an adapter needs.
type Query struct {
	Date time.Time
	// ColorOnly requires a non-grayscale color mode. Only Mars honours it.
	ColorOnly bool
}

// Source is the common adapter contract.
type Source interface {
	Place() Place

	// FetchCandidates lists all photos available on the query date,
	// normalized into opaque references. Returns one of the outcome
	// sentinels or a non-empty list.
	FetchCandidates(ctx context.Context, q Query) ([]PhotoRef, error)

	// FetchOne draws one reference uniformly at random from refs, fetches
	// and validates it, and returns the photo together with the remaining
	// references. The returned list is always exactly one shorter than the
	// input when a reference was consumed.
	FetchOne(ctx context.Context, q Query, refs []PhotoRef) (Photo, []PhotoRef, error)
}

// Client talks to the NASA API and owns the three adapters.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	randIntN func(int) int

	sources map[Place]Source
}

// NewClient builds a Client. httpClient may be nil, in which case a client
// with a 30s timeout is used. Retries are handled by the adapters themselves,
// so the HTTP client must not retry on its own.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		http:     httpClient,
		randIntN: rand.IntN,
	}
	c.sources = map[Place]Source{
		PlaceMars:  &marsSource{c},
		PlaceEarth: &earthSource{c},
		PlaceSpace: &spaceSource{c},
	}
	return c
}

// Source resolves the adapter for a destination.
func (c *Client) Source(p Place) (Source, bool) {
	s, ok := c.sources[p]
	return s, ok
}

// withRetry runs fn up to maxAttempts times. Outcome sentinels pass through
// untouched; only transient failures are retried. After the ceiling the last
// transient error is wrapped into ErrUnavailable.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if isOutcome(lastErr) {
			return lastErr
		}
		logger.NASA.Warn("transient failure",
			slog.String("event", "nasa.retry"),
			slog.String("status", "retry"),
			slog.String("handler", op),
			slog.Int("attempt", attempt),
			slog.String("err", lastErr.Error()),
		)
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt < maxAttempts {
			RetryNotifyFrom(ctx)(attempt)
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, maxAttempts, lastErr)
}

func isOutcome(err error) bool {
	return errors.Is(err, ErrQuotaExhausted) ||
		errors.Is(err, ErrNoPhotos) ||
		errors.Is(err, ErrNoMatch)
}

// popRandom removes a uniformly random reference from refs and returns it
// together with the remaining references.
func (c *Client) popRandom(refs []PhotoRef) (PhotoRef, []PhotoRef) {
	i := c.randIntN(len(refs))
	picked := refs[i]
	rest := make([]PhotoRef, 0, len(refs)-1)
	rest = append(rest, refs[:i]...)
	rest = append(rest, refs[i+1:]...)
	return picked, rest
}

// getBytes downloads a URL body within the retry ceiling.
func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.withRetry(ctx, "nasa.get_bytes", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}

// getJSONBody performs a GET within the retry ceiling and hands the raw body
// to decode. decode runs inside the retried function: a malformed body counts
// as a transient failure, a detected outcome sentinel stops the retries.
func (c *Client) getJSONBody(ctx context.Context, url string, decode func([]byte) error) error {
	return c.withRetry(ctx, "nasa.get_json", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		// Quota refusals come back as 403/429 with an error body; let the
		// decoder see those to classify them instead of retrying blindly.
		if resp.StatusCode >= 500 {
			return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}
		return decode(body)
	})
}
