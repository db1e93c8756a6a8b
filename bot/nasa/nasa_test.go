package nasa

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testDate = time.Date(2021, time.May, 1, 0, 0, 0, 0, time.UTC)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-key", srv.Client())
	return c, srv
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func largeColorPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1024, 1024))
	img.Set(0, 0, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	return encodePNG(t, img)
}

func largeGrayPNG(t *testing.T) []byte {
	return encodePNG(t, image.NewGray(image.Rect(0, 0, 1024, 1024)))
}

func smallPNG(t *testing.T) []byte {
	return encodePNG(t, image.NewRGBA(image.Rect(0, 0, 64, 64)))
}

func TestMarsQuotaExhausted(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"OVER_RATE_LIMIT"}}`))
	}))
	src, _ := c.Source(PlaceMars)
	_, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("want ErrQuotaExhausted, got %v", err)
	}
}

func TestMarsEmptyDay(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"photos":[]}`))
	}))
	src, _ := c.Source(PlaceMars)
	_, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if !errors.Is(err, ErrNoPhotos) {
		t.Fatalf("want ErrNoPhotos, got %v", err)
	}
}

func TestRetryCeilingExactlyThreeAttempts(t *testing.T) {
	var calls int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	src, _ := c.Source(PlaceMars)
	_, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("want exactly 3 attempts, got %d", calls)
	}
}

func TestRetryRecoversWithinCeiling(t *testing.T) {
	var calls int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"photos":[{"img_src":"http://example.test/a.jpg"}]}`))
	}))
	src, _ := c.Source(PlaceMars)
	refs, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 1 || refs[0].URL != "http://example.test/a.jpg" {
		t.Fatalf("unexpected refs: %+v", refs)
	}
	if calls != 3 {
		t.Fatalf("want success on attempt 3, got %d calls", calls)
	}
}

func TestRetryInvokesNotifyPerFailedAttempt(t *testing.T) {
	var calls int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"photos":[{"img_src":"http://example.test/a.jpg"}]}`))
	}))
	var notified []int
	ctx := WithRetryNotify(context.Background(), func(attempt int) {
		notified = append(notified, attempt)
	})
	src, _ := c.Source(PlaceMars)
	if _, err := src.FetchCandidates(ctx, Query{Date: testDate}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notified) != 2 || notified[0] != 1 || notified[1] != 2 {
		t.Fatalf("want notify for attempts [1 2], got %v", notified)
	}
}

func TestRetryNotifySkippedOnOutcome(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"photos":[]}`))
	}))
	var notified []int
	ctx := WithRetryNotify(context.Background(), func(attempt int) {
		notified = append(notified, attempt)
	})
	src, _ := c.Source(PlaceMars)
	if _, err := src.FetchCandidates(ctx, Query{Date: testDate}); !errors.Is(err, ErrNoPhotos) {
		t.Fatalf("want ErrNoPhotos, got %v", err)
	}
	if len(notified) != 0 {
		t.Fatalf("outcome sentinel must not notify, got %v", notified)
	}
}

func TestMarsFetchOneConsumesExactlyOne(t *testing.T) {
	photo := largeColorPNG(t)
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(photo)
	}))
	src, _ := c.Source(PlaceMars)
	refs := []PhotoRef{
		{URL: srv.URL + "/p1.png"},
		{URL: srv.URL + "/p2.png"},
		{URL: srv.URL + "/p3.png"},
	}
	got, rest, err := src.FetchOne(context.Background(), Query{Date: testDate}, refs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != len(refs)-1 {
		t.Fatalf("want %d remaining refs, got %d", len(refs)-1, len(rest))
	}
	if len(got.Bytes) == 0 || got.URL == "" {
		t.Fatalf("photo missing payload: %+v", got)
	}
	for _, r := range rest {
		if r.URL == got.URL {
			t.Fatalf("consumed ref %q still present", got.URL)
		}
	}
}

func TestMarsFetchOneRejectsSmallPhoto(t *testing.T) {
	small := smallPNG(t)
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(small)
	}))
	src, _ := c.Source(PlaceMars)
	_, rest, err := src.FetchOne(context.Background(), Query{Date: testDate}, []PhotoRef{{URL: srv.URL + "/p.png"}})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("rejected ref must still be consumed, rest=%d", len(rest))
	}
}

func TestMarsColorOnlyRejectsGrayscale(t *testing.T) {
	gray := largeGrayPNG(t)
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(gray)
	}))
	src, _ := c.Source(PlaceMars)

	_, _, err := src.FetchOne(context.Background(), Query{Date: testDate, ColorOnly: true},
		[]PhotoRef{{URL: srv.URL + "/g.png"}})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("color-only query must reject grayscale, got %v", err)
	}

	got, _, err := src.FetchOne(context.Background(), Query{Date: testDate, ColorOnly: false},
		[]PhotoRef{{URL: srv.URL + "/g.png"}})
	if err != nil {
		t.Fatalf("black-and-white query must accept grayscale, got %v", err)
	}
	if len(got.Bytes) == 0 {
		t.Fatal("photo bytes missing")
	}
}

func TestMarsFetchOneEmptyRefs(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	src, _ := c.Source(PlaceMars)
	_, _, err := src.FetchOne(context.Background(), Query{Date: testDate}, nil)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch on empty refs, got %v", err)
	}
}

func TestEarthCandidatesArchiveURL(t *testing.T) {
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"image":"epic_1b_20151031","date":"2015-10-31 00:36:24"}]`))
	}))
	src, _ := c.Source(PlaceEarth)
	refs, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := srv.URL + "/EPIC/archive/natural/2015/10/31/png/epic_1b_20151031.png?api_key=test-key"
	if len(refs) != 1 || refs[0].URL != want {
		t.Fatalf("got %+v, want URL %q", refs, want)
	}
}

func TestEarthQuotaObjectResponse(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"OVER_RATE_LIMIT"}}`))
	}))
	src, _ := c.Source(PlaceEarth)
	_, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("want ErrQuotaExhausted, got %v", err)
	}
}

func TestEarthEmptyDay(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	src, _ := c.Source(PlaceEarth)
	_, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if !errors.Is(err, ErrNoPhotos) {
		t.Fatalf("want ErrNoPhotos, got %v", err)
	}
}

func TestSpacePrefersHDURL(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://example.test/low.jpg","hdurl":"http://example.test/hd.jpg"}`))
	}))
	src, _ := c.Source(PlaceSpace)
	refs, err := src.FetchCandidates(context.Background(), Query{Date: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 1 || refs[0].URL != "http://example.test/hd.jpg" {
		t.Fatalf("got %+v, want single hdurl ref", refs)
	}

	photo, rest, err := src.FetchOne(context.Background(), Query{Date: testDate}, refs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if photo.URL != "http://example.test/hd.jpg" || photo.Bytes != nil {
		t.Fatalf("apod must deliver by URL without bytes, got %+v", photo)
	}
	if len(rest) != 0 {
		t.Fatalf("apod ref not consumed, rest=%d", len(rest))
	}
}

func TestPopRandomUniformCoverage(t *testing.T) {
	c := NewClient("http://unused", "k", nil)
	refs := []PhotoRef{{URL: "a"}, {URL: "b"}, {URL: "c"}, {URL: "d"}}
	seen := make(map[string]bool)
	remaining := refs
	for len(remaining) > 0 {
		var picked PhotoRef
		picked, remaining = c.popRandom(remaining)
		if seen[picked.URL] {
			t.Fatalf("ref %q drawn twice", picked.URL)
		}
		seen[picked.URL] = true
	}
	if len(seen) != len(refs) {
		t.Fatalf("draw covered %d of %d refs", len(seen), len(refs))
	}
}
