package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/astralex/spacebot/core/logger"
)

// earthSource serves EPIC natural-color imagery of Earth for a given date.
type earthSource struct {
	c *Client
}

func (s *earthSource) Place() Place { return PlaceEarth }

type epicItem struct {
	Image string `json:"image"`
	Date  string `json:"date"`
}

func (s *earthSource) FetchCandidates(ctx context.Context, q Query) ([]PhotoRef, error) {
	u := fmt.Sprintf("%s/EPIC/api/natural/date/%s?api_key=%s",
		s.c.baseURL, q.Date.Format("2006-01-02"), url.QueryEscape(s.c.apiKey))

	var refs []PhotoRef
	err := s.c.getJSONBody(ctx, u, func(body []byte) error {
		var items []epicItem
		if err := json.Unmarshal(body, &items); err != nil {
			// A quota refusal is a JSON object instead of the expected
			// array of records.
			var anyObject map[string]json.RawMessage
			if json.Unmarshal(body, &anyObject) == nil {
				return ErrQuotaExhausted
			}
			return fmt.Errorf("decode epic response: %w", err)
		}
		if len(items) == 0 {
			return ErrNoPhotos
		}
		refs = refs[:0]
		for _, item := range items {
			if archive := s.archiveURL(item); archive != "" {
				refs = append(refs, PhotoRef{URL: archive})
			}
		}
		if len(refs) == 0 {
			return ErrNoPhotos
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.NASA.Debug("candidates listed",
		slog.String("event", "nasa.candidates"),
		slog.String("place", string(PlaceEarth)),
		slog.String("date", q.Date.Format("2006-01-02")),
		slog.Int("candidates", len(refs)),
	)
	return refs, nil
}

// archiveURL maps one EPIC record to its archive image URL. The record date
// comes back as "2015-10-31 00:36:24"; its date part becomes the YYYY/MM/DD
// path segment of the archive layout.
func (s *earthSource) archiveURL(item epicItem) string {
	if item.Image == "" || item.Date == "" {
		return ""
	}
	datePart, _, _ := strings.Cut(item.Date, " ")
	pathDate := strings.ReplaceAll(datePart, "-", "/")
	return fmt.Sprintf("%s/EPIC/archive/natural/%s/png/%s.png?api_key=%s",
		s.c.baseURL, pathDate, item.Image, url.QueryEscape(s.c.apiKey))
}

func (s *earthSource) FetchOne(ctx context.Context, q Query, refs []PhotoRef) (Photo, []PhotoRef, error) {
	if len(refs) == 0 {
		return Photo{}, nil, ErrNoMatch
	}
	picked, rest := s.c.popRandom(refs)
	data, err := s.c.getBytes(ctx, picked.URL)
	if err != nil {
		return Photo{}, rest, err
	}
	// Earth has no color constraint; only the size rule applies.
	if !validatePhoto(data, false) {
		logger.NASA.Debug("candidate rejected",
			slog.String("event", "nasa.validate"),
			slog.String("status", "skip"),
			slog.String("place", string(PlaceEarth)),
			slog.String("url", picked.URL),
		)
		return Photo{}, rest, ErrNoMatch
	}
	return Photo{URL: picked.URL, Bytes: data}, rest, nil
}
