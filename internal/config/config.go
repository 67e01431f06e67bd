package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Saju/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Saju"
	AppID             = "com.github.tartampluch.go-saju"
	KeyringService    = "com.github.tartampluch.go-saju"
	KeyringStoreUser  = "content_store_api_key"
	EnvStoreAPIKey    = "SAJU_STORE_KEY"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagPort         = "port"
	FlagStoreURL     = "store-url"
	FlagVCF          = "vcf"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescPort     = "Port for the HTTP API server"
	FlagDescStoreURL = "Base URL of the free-readings content store (empty disables lookups)"
	FlagDescVCF      = "Compute pillars for every contact in a .vcf file and exit"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18090"
	DefaultLanguage = "ko"
	DefaultLeapYear = 2000 // Leap year fallback for truncated dates like --02-29

	// Supported birth-date range. The solar-term table covers exactly these
	// years; dates outside fail with the unsupported-range error.
	MinSupportedYear = 1901
	MaxSupportedYear = 2099
)

// SupportedLanguages defines the list of available response languages (ISO 639-1).
var SupportedLanguages = []string{"en", "ko"}

// -----------------------------------------------------------------------------
// HTTP API Surface
// -----------------------------------------------------------------------------

const (
	RouteFreeReading = "/api/saju/free"
	RouteTermsFeed   = "/terms.ics"

	ParamSlug      = "slug"
	ParamBirthDate = "birthDate"
	ParamGender    = "gender"
	ParamBirthTime = "birthTime"
	ParamLang      = "lang"

	GenderCodeMale   = "M"
	GenderCodeFemale = "F"
)

// -----------------------------------------------------------------------------
// Content Store (PostgREST-style collaborator)
// -----------------------------------------------------------------------------

const (
	StoreReadingsPath = "/rest/v1/free_readings"

	StoreColCategoryID = "category_id"
	StoreColStem       = "heavenly_stem"
	StoreColBranch     = "earthly_branch"
	StoreColGender     = "gender"
	StoreColSelect     = "select"
	StoreSelectContent = "content"
	StoreFilterEq      = "eq."

	HeaderAPIKey  = "apikey"
	BearerPrefix  = "Bearer "
	MaxStoreBytes = 1 * 1024 * 1024 // 1MB; reading payloads are small JSON
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Saju//Engine//EN"
	ICalCalName = "Solar Terms"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gosaju"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	FormatUID         = "%s-%d@%s"
	FormatTermUIDBase = "term%02d"
	FormatTermSummary = "%s (%s)"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing birth dates and vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	MinPort = 1
	MaxPort = 65535

	FallbackName = "Unknown"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 10 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	SchemeHTTP         = "http"
	SchemeHTTPS        = "https"
	AddrSeparator      = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAuthorization   = "Authorization"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNone    = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidInput     = "invalid birth input"
	ErrUnsupportedRange = "birth date outside supported solar-term range"
	ErrCategoryNotFound = "category not found or inactive"
	ErrStoreStatus      = "content store returned unexpected status"
	ErrStoreDecode      = "failed to decode content store response"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrRosterOpen       = "failed to open roster file"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Term feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyErrMissingParams = "err_missing_params"
	TKeyErrInvalidInput  = "err_invalid_input"
	TKeyErrUnsupported   = "err_unsupported_range"
	TKeyErrCategory      = "err_category_not_found"
	TKeyErrInternal      = "err_internal"

	// Node term names, keyed term_01 (소한) through term_12 (대설).
	TKeyTermFormat = "term_%02d"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgTermsUpdated   = "Solar term feed cache updated"
	MsgStoreDowngrade = "Content store failure downgraded to absent content"
	MsgReadingMiss    = "No pre-authored reading for lookup key"
	MsgReadingFound   = "Free reading located"
	MsgStoreQuery     = "Querying content store"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgRosterDone     = "Roster processing finished"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgKeyringMiss    = "Store API key not found in keyring, falling back to environment"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeySlug      = "slug"
	LogKeyGender    = "gender"
	LogKeyBirthDate = "birth_date"
	LogKeyStem      = "year_stem"
	LogKeyBranch    = "year_branch"
	LogKeyYear      = "year"
	LogKeyName      = "name"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "pillars_computed"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompSaju    = "saju"
	CompReading = "reading"
	CompStore   = "store"
	CompServer  = "server"
	CompRoster  = "roster"
	CompMain    = "main"
	CompI18n    = "i18n"
)
