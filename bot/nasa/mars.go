package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/astralex/spacebot/core/logger"
)

// marsSource serves Curiosity rover photos taken on a given Earth date.
type marsSource struct {
	c *Client
}

func (s *marsSource) Place() Place { return PlaceMars }

type marsResponse struct {
	// Photos is a pointer so a response missing the field entirely (the
	// quota-exhausted shape) is distinguishable from an empty day.
	Photos *[]struct {
		ImgSrc string `json:"img_src"`
	} `json:"photos"`
}

func (s *marsSource) FetchCandidates(ctx context.Context, q Query) ([]PhotoRef, error) {
	u := fmt.Sprintf("%s/mars-photos/api/v1/rovers/curiosity/photos?earth_date=%s&api_key=%s",
		s.c.baseURL, q.Date.Format("2006-01-02"), url.QueryEscape(s.c.apiKey))

	var refs []PhotoRef
	err := s.c.getJSONBody(ctx, u, func(body []byte) error {
		var parsed marsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("decode rover response: %w", err)
		}
		if parsed.Photos == nil {
			return ErrQuotaExhausted
		}
		if len(*parsed.Photos) == 0 {
			return ErrNoPhotos
		}
		refs = refs[:0]
		for _, p := range *parsed.Photos {
			if p.ImgSrc != "" {
				refs = append(refs, PhotoRef{URL: p.ImgSrc})
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
		slog.String("place", string(PlaceMars)),
		slog.String("date", q.Date.Format("2006-01-02")),
		slog.Int("candidates", len(refs)),
	)
	return refs, nil
}

func (s *marsSource) FetchOne(ctx context.Context, q Query, refs []PhotoRef) (Photo, []PhotoRef, error) {
	if len(refs) == 0 {
		return Photo{}, nil, ErrNoMatch
	}
	picked, rest := s.c.popRandom(refs)
	data, err := s.c.getBytes(ctx, picked.URL)
	if err != nil {
		return Photo{}, rest, err
	}
	if !validatePhoto(data, q.ColorOnly) {
		logger.NASA.Debug("candidate rejected",
			slog.String("event", "nasa.validate"),
			slog.String("status", "skip"),
			slog.String("place", string(PlaceMars)),
			slog.String("url", picked.URL),
		)
		return Photo{}, rest, ErrNoMatch
	}
	return Photo{URL: picked.URL, Bytes: data}, rest, nil
}
