package reading

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-saju/internal/config"
	"github.com/tartampluch/go-saju/internal/saju"
)

// Gender of the birth input, as the lookup surface encodes it.
type Gender int

const (
	Male Gender = iota
	Female
)

var genderCodes = [...]string{config.GenderCodeMale, config.GenderCodeFemale}
var genderLabels = [...]string{"남", "여"} // the content store's column values

// ParseGender resolves the input surface tokens "M" and "F".
func ParseGender(code string) (Gender, error) {
	switch code {
	case config.GenderCodeMale:
		return Male, nil
	case config.GenderCodeFemale:
		return Female, nil
	}
	return Male, fmt.Errorf("%w: %s %q", saju.ErrInvalidInput, config.ParamGender, code)
}

func (g Gender) String() string { return genderCodes[g] }

// Label returns the Korean value the content store keys readings on.
func (g Gender) Label() string { return genderLabels[g] }

// LookupKey addresses exactly one pre-authored reading: the birth year's
// pillar plus gender within a category. Derived per request, never stored.
type LookupKey struct {
	CategoryID string
	YearStem   saju.Stem
	YearBranch saju.Branch
	Gender     Gender
}

// ReadingSection is one titled block of a pre-authored reading.
type ReadingSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ReadingContent is the payload stored per lookup key.
type ReadingContent struct {
	Summary  string           `json:"summary"`
	Sections []ReadingSection `json:"sections"`
}

// ContentStore is the external free-readings collaborator. A miss is
// (nil, nil); errors represent transport-level failures only.
type ContentStore interface {
	FindReading(ctx context.Context, key LookupKey) (*ReadingContent, error)
}

// HTTPContentStore queries a PostgREST-style endpoint by exact match on
// (category_id, heavenly_stem, earthly_branch, gender).
type HTTPContentStore struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPContentStore creates a store client with configured timeouts.
func NewHTTPContentStore(baseURL, apiKey string) *HTTPContentStore {
	return &HTTPContentStore{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// storeRow mirrors one row of the free_readings relation.
type storeRow struct {
	Content ReadingContent `json:"content"`
}

// FindReading implements ContentStore. It sanitizes the URL for logging to
// avoid leaking the API key and limits the response size.
func (s *HTTPContentStore) FindReading(ctx context.Context, key LookupKey) (*ReadingContent, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if base.Scheme != config.SchemeHTTP && base.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, base.Scheme)
	}

	endpoint := *base
	endpoint.Path += config.StoreReadingsPath
	q := url.Values{}
	q.Set(config.StoreColSelect, config.StoreSelectContent)
	q.Set(config.StoreColCategoryID, config.StoreFilterEq+key.CategoryID)
	q.Set(config.StoreColStem, config.StoreFilterEq+key.YearStem.Korean())
	q.Set(config.StoreColBranch, config.StoreFilterEq+key.YearBranch.Korean())
	q.Set(config.StoreColGender, config.StoreFilterEq+key.Gender.Label())
	endpoint.RawQuery = q.Encode()

	// Query parameters stay out of the logs: they encode the lookup key only,
	// but the host/path form is all that is actionable.
	safeURL := base.Scheme + "://" + base.Host + endpoint.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompStore),
		slog.String(config.LogKeyURL, safeURL),
	)
	log.Debug(config.MsgStoreQuery,
		config.LogKeyStem, key.YearStem.Korean(),
		config.LogKeyBranch, key.YearBranch.Korean(),
		config.LogKeyGender, key.Gender.String(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if s.APIKey != "" {
		req.Header.Set(config.HeaderAPIKey, s.APIKey)
		req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn(config.ErrStoreStatus,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		return nil, fmt.Errorf("%s: %d %s", config.ErrStoreStatus, resp.StatusCode, resp.Status)
	}

	var rows []storeRow
	limited := io.LimitReader(resp.Body, config.MaxStoreBytes)
	if err := json.NewDecoder(limited).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreDecode, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].Content, nil
}
