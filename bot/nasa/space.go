package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/astralex/spacebot/core/logger"
)

// spaceSource serves the astronomy picture of the day. Unlike the planetary
// adapters there is no real candidate list: one date maps to one record, and
// the high-definition URL is delivered as-is without pixel validation.
type spaceSource struct {
	c *Client
}

func (s *spaceSource) Place() Place { return PlaceSpace }

type apodResponse struct {
	HDURL string `json:"hdurl"`
	URL   string `json:"url"`
}

func (s *spaceSource) FetchCandidates(ctx context.Context, q Query) ([]PhotoRef, error) {
	u := fmt.Sprintf("%s/planetary/apod?date=%s&api_key=%s",
		s.c.baseURL, q.Date.Format("2006-01-02"), url.QueryEscape(s.c.apiKey))

	var refs []PhotoRef
	err := s.c.getJSONBody(ctx, u, func(body []byte) error {
		var parsed apodResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("decode apod response: %w", err)
		}
		best := parsed.HDURL
		if best == "" {
			best = parsed.URL
		}
		if best == "" {
			// The record exists for every date; both URLs missing is
			// the quota-refusal shape.
			return ErrQuotaExhausted
		}
		refs = []PhotoRef{{URL: best}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.NASA.Debug("candidates listed",
		slog.String("event", "nasa.candidates"),
		slog.String("place", string(PlaceSpace)),
		slog.String("date", q.Date.Format("2006-01-02")),
		slog.Int("candidates", len(refs)),
	)
	return refs, nil
}

func (s *spaceSource) FetchOne(ctx context.Context, q Query, refs []PhotoRef) (Photo, []PhotoRef, error) {
	if len(refs) == 0 {
		return Photo{}, nil, ErrNoMatch
	}
	picked, rest := s.c.popRandom(refs)
	// Delivery is by URL; a downstream send failure is handled by the
	// caller as a no-match outcome.
	return Photo{URL: picked.URL}, rest, nil
}
