package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-saju/internal/config"
	"github.com/tartampluch/go-saju/internal/reading"
	"github.com/tartampluch/go-saju/internal/saju"
)

// cacheItem stores the rendered term feed and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// SajuServer exposes the free-reading API and the solar-term calendar feed.
type SajuServer struct {
	// termsCache uses atomic.Pointer for lock-free reads. The feed is read
	// frequently by calendar clients but rebuilt rarely, so this avoids
	// RWMutex contention on the hot path.
	termsCache atomic.Pointer[cacheItem]

	Port       string
	Locator    *reading.Locator
	Translator *Translator
}

// NewSajuServer creates a new instance of the server.
func NewSajuServer(port string, locator *reading.Locator, tr *Translator) *SajuServer {
	return &SajuServer{
		Port:       port,
		Locator:    locator,
		Translator: tr,
	}
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *SajuServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteFreeReading, s.handleFreeReading)
	mux.HandleFunc(config.RouteTermsFeed, s.handleTermsFeed)

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateTerms atomically replaces the served term feed.
func (s *SajuServer) UpdateTerms(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
	lastMod := time.Now().UTC().Format(http.TimeFormat)

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: lastMod,
	}

	// Atomic store: concurrent readers see either the old or the new complete
	// item, never a partial state.
	s.termsCache.Store(item)

	slog.Debug(config.MsgTermsUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// errorResponse is the JSON error envelope of the API.
type errorResponse struct {
	Error string `json:"error"`
}

// handleFreeReading serves GET /api/saju/free.
//
// Query surface: slug, birthDate (YYYY-MM-DD), gender (M|F), birthTime (one
// of the 13 bucket tokens); optional lang for localized error messages.
func (s *SajuServer) handleFreeReading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set(config.HeaderAllow, http.MethodGet)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	slug := q.Get(config.ParamSlug)
	birthDate := q.Get(config.ParamBirthDate)
	genderCode := q.Get(config.ParamGender)
	birthTime := q.Get(config.ParamBirthTime)
	lang := q.Get(config.ParamLang)
	if lang == "" {
		lang = config.DefaultLanguage
	}

	if slug == "" || birthDate == "" || genderCode == "" || birthTime == "" {
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrMissingParams)
		return
	}

	year, month, day, err := saju.ParseBirthDate(birthDate)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrInvalidInput)
		return
	}
	bucket, err := saju.ParseHourBucket(birthTime)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrInvalidInput)
		return
	}
	gender, err := reading.ParseGender(genderCode)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrInvalidInput)
		return
	}
	input, err := saju.NewBirthInput(year, month, day, bucket)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrInvalidInput)
		return
	}

	result, err := s.Locator.LocateFreeReading(r.Context(), slug, input, gender)
	switch {
	case errors.Is(err, reading.ErrCategoryNotFound):
		s.writeError(w, http.StatusNotFound, lang, config.TKeyErrCategory)
		return
	case errors.Is(err, saju.ErrUnsupportedDateRange):
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrUnsupported)
		return
	case errors.Is(err, saju.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, lang, config.TKeyErrInvalidInput)
		return
	case err != nil:
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		s.writeError(w, http.StatusInternalServerError, lang, config.TKeyErrInternal)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *SajuServer) writeError(w http.ResponseWriter, status int, lang, key string) {
	msg := key
	if s.Translator != nil {
		msg = s.Translator.Msg(lang, key)
	}
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *SajuServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNone)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleTermsFeed serves the ICS content with HTTP caching support.
func (s *SajuServer) handleTermsFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.termsCache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
