package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-saju/internal/config"
	"github.com/tartampluch/go-saju/internal/reading"
)

// stubStore lets tests inject content store behavior without a network.
type stubStore struct {
	content *reading.ReadingContent
	err     error
}

func (s *stubStore) FindReading(ctx context.Context, key reading.LookupKey) (*reading.ReadingContent, error) {
	return s.content, s.err
}

func newTestServer(store reading.ContentStore) *SajuServer {
	locator := &reading.Locator{
		Registry: reading.NewStaticRegistry(reading.DefaultCategories()),
		Store:    store,
	}
	return NewSajuServer("0", locator, NewTranslator())
}

func freeReadingURL(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return config.RouteFreeReading + "?" + q.Encode()
}

func validParams() map[string]string {
	return map[string]string{
		config.ParamSlug:      "doha-sal",
		config.ParamBirthDate: "1995-06-01",
		config.ParamGender:    "M",
		config.ParamBirthTime: "자시",
	}
}

func doFreeReading(srv *SajuServer, method string, params map[string]string) *http.Response {
	req := httptest.NewRequest(method, freeReadingURL(params), nil)
	w := httptest.NewRecorder()
	srv.handleFreeReading(w, req)
	return w.Result()
}

// -----------------------------------------------------------------------------
// Unit Tests (White-Box Testing of Handler Logic)
// -----------------------------------------------------------------------------

// TestFreeReading_Success verifies the full response envelope for a valid
// request when no content store is configured.
func TestFreeReading_Success(t *testing.T) {
	srv := newTestServer(nil)

	resp := doFreeReading(srv, http.MethodGet, validParams())
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	pillars, ok := payload["pillars"].(map[string]any)
	require.True(t, ok, "pillars object present")

	year, ok := pillars["year"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "을", year["stem"])
	assert.Equal(t, "해", year["branch"])
	assert.Equal(t, "을", payload["yearStem"])
	assert.Equal(t, "해", payload["yearBranch"])

	assert.NotNil(t, pillars["hour"], "자시 bucket yields an hour pillar")
	assert.Nil(t, payload["content"], "no store configured, content must be null")
}

// TestFreeReading_UnknownHourOmitsPillar: 모름 produces an explicit null hour.
func TestFreeReading_UnknownHourOmitsPillar(t *testing.T) {
	srv := newTestServer(nil)
	params := validParams()
	params[config.ParamBirthTime] = "모름"

	resp := doFreeReading(srv, http.MethodGet, params)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	pillars := payload["pillars"].(map[string]any)
	assert.Nil(t, pillars["hour"])
}

// TestFreeReading_StoreHit attaches the stored payload to the response.
func TestFreeReading_StoreHit(t *testing.T) {
	srv := newTestServer(&stubStore{
		content: &reading.ReadingContent{
			Summary:  "요약",
			Sections: []reading.ReadingSection{{Title: "총평", Body: "본문"}},
		},
	})

	resp := doFreeReading(srv, http.MethodGet, validParams())
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Content *reading.ReadingContent `json:"content"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotNil(t, payload.Content)
	assert.Equal(t, "요약", payload.Content.Summary)
}

// TestFreeReading_StoreFailureStillServes: transport failures degrade to null
// content, not a 5xx.
func TestFreeReading_StoreFailureStillServes(t *testing.T) {
	srv := newTestServer(&stubStore{err: fmt.Errorf("store unreachable")})

	resp := doFreeReading(srv, http.MethodGet, validParams())
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Nil(t, payload["content"])
	assert.NotNil(t, payload["pillars"])
}

// TestFreeReading_MissingParams: every required parameter is enforced.
func TestFreeReading_MissingParams(t *testing.T) {
	srv := newTestServer(nil)

	for _, missing := range []string{config.ParamSlug, config.ParamBirthDate, config.ParamGender, config.ParamBirthTime} {
		params := validParams()
		delete(params, missing)

		resp := doFreeReading(srv, http.MethodGet, params)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing %s", missing)
		_ = resp.Body.Close()
	}
}

// TestFreeReading_BadRequestInputs covers the invalid-input taxonomy.
func TestFreeReading_BadRequestInputs(t *testing.T) {
	tests := []struct {
		name  string
		param string
		value string
	}{
		{"Malformed date", config.ParamBirthDate, "June 1st"},
		{"Nonexistent day", config.ParamBirthDate, "1990-04-31"},
		{"Out-of-range year", config.ParamBirthDate, "1850-05-05"},
		{"Unknown gender code", config.ParamGender, "X"},
		{"Unknown hour token", config.ParamBirthTime, "midnight"},
	}

	srv := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			params[tt.param] = tt.value

			resp := doFreeReading(srv, http.MethodGet, params)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var payload map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

// TestFreeReading_UnknownSlug maps the category gate to 404.
func TestFreeReading_UnknownSlug(t *testing.T) {
	srv := newTestServer(nil)
	params := validParams()
	params[config.ParamSlug] = "unknown-slug"

	resp := doFreeReading(srv, http.MethodGet, params)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestFreeReading_LocalizedErrors: the lang parameter selects the error
// message language.
func TestFreeReading_LocalizedErrors(t *testing.T) {
	srv := newTestServer(nil)
	params := validParams()
	params[config.ParamSlug] = "unknown-slug"
	params[config.ParamLang] = "en"

	resp := doFreeReading(srv, http.MethodGet, params)
	defer func() { _ = resp.Body.Close() }()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Unknown or inactive category.", payload["error"])
}

func TestFreeReading_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)

	resp := doFreeReading(srv, http.MethodPost, validParams())
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get(config.HeaderAllow))
}

// TestTermsHandler_ServingContent verifies headers and body once the feed is
// loaded into the atomic cache.
func TestTermsHandler_ServingContent(t *testing.T) {
	srv := newTestServer(nil)
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.UpdateTerms(expectedICS)

	req := httptest.NewRequest(http.MethodGet, config.RouteTermsFeed, nil)
	w := httptest.NewRecorder()
	srv.handleTermsFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

// TestTermsHandler_Caching verifies If-None-Match handling.
func TestTermsHandler_Caching(t *testing.T) {
	srv := newTestServer(nil)
	srv.UpdateTerms([]byte("DATA_VERSION_1"))

	req1 := httptest.NewRequest(http.MethodGet, config.RouteTermsFeed, nil)
	w1 := httptest.NewRecorder()
	srv.handleTermsFeed(w1, req1)

	etag := w1.Result().Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	req2 := httptest.NewRequest(http.MethodGet, config.RouteTermsFeed, nil)
	req2.Header.Set(config.HeaderIfNoneMatch, etag)
	w2 := httptest.NewRecorder()
	srv.handleTermsFeed(w2, req2)

	resp2 := w2.Result()
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")
}

// TestTermsHandler_HeadOmitsBody: HEAD gets headers only.
func TestTermsHandler_HeadOmitsBody(t *testing.T) {
	srv := newTestServer(nil)
	srv.UpdateTerms([]byte("FEED"))

	req := httptest.NewRequest(http.MethodHead, config.RouteTermsFeed, nil)
	w := httptest.NewRecorder()
	srv.handleTermsFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestTermsHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, config.RouteTermsFeed, nil)
	w := httptest.NewRecorder()
	srv.handleTermsFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderAllow))
}

// TestTermsHandler_Initializing verifies the 503 behavior before the first
// feed build completes.
func TestTermsHandler_Initializing(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, config.RouteTermsFeed, nil)
	w := httptest.NewRecorder()
	srv.handleTermsFeed(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition validates the thread-safety of atomic.Pointer usage.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer(nil)
	var wg sync.WaitGroup

	duration := 500 * time.Millisecond
	end := time.Now().Add(duration)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				srv.UpdateTerms([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				i++
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req := httptest.NewRequest(http.MethodGet, config.RouteTermsFeed, nil)
				w := httptest.NewRecorder()
				srv.handleTermsFeed(w, req)

				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle spins up the actual TCP listener to verify network
// binding, routing, and graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := newTestServer(nil)
	srv.Port = port
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	baseURL := "http://127.0.0.1:" + port
	termsURL := baseURL + config.RouteTermsFeed

	require.Eventually(t, func() bool {
		resp, err := http.Get(termsURL)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	// 1. Feed not built yet (503)
	resp, err := http.Get(termsURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	// 2. Load the feed and fetch it
	srv.UpdateTerms([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(termsURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")
	_ = resp.Body.Close()

	// 3. The reading endpoint is routed on the same listener
	resp, err = http.Get(baseURL + freeReadingURL(validParams()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// 4. Graceful shutdown
	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRequiresPort(t *testing.T) {
	srv := newTestServer(nil)
	srv.Port = ""
	err := srv.Start(context.Background())
	require.Error(t, err)
}
