package docsession

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName matches aiohttp-session's default so mixed Go/Python
// deployments read each other's cookies.
const DefaultCookieName = "AIOHTTP_SESSION"

// KeyFactory produces a new opaque session key. Implementations must be
// stateless and safe for concurrent use.
type KeyFactory func() string

// EncodeFunc serializes the session payload for the document's data field.
type EncodeFunc func(v any) (string, error)

// DecodeFunc deserializes a document's data field. The decoded value is
// expected to be a map with "created" and "session" entries; anything else is
// treated as a corrupt record.
type DecodeFunc func(s string) (any, error)

// CookieConfig controls the attributes of the session cookie.
//
// CookieConfig instances are supplied at construction time and treated as
// immutable afterwards.
type CookieConfig struct {
	Name     string // default DefaultCookieName
	Domain   string
	Path     string // default "/"
	Secure   bool
	HTTPOnly bool // default on (see DefaultConfig)
	SameSite http.SameSite
}

// Config is the construction-time configuration for a [Storage].
//
// Config instances are supplied at construction time and treated as immutable
// afterwards. Start from [DefaultConfig] and override fields as needed.
type Config struct {
	Cookie CookieConfig

	// MaxAge bounds the session lifetime. Zero means sessions never expire:
	// no expire field is written and the store's TTL reaper leaves their
	// documents alone.
	MaxAge time.Duration

	KeyFactory KeyFactory
	Encoder    EncodeFunc
	Decoder    DecodeFunc

	Metrics MetricsConfig
}

// MetricsConfig controls the in-process load/save outcome counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration used by a bare Builder: cookie
// AIOHTTP_SESSION on "/", http-only, no expiry, random 128-bit hex keys, and
// JSON payload encoding.
func DefaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			Name:     DefaultCookieName,
			Path:     "/",
			HTTPOnly: true,
		},
		KeyFactory: DefaultKeyFactory,
		Encoder:    DefaultEncoder,
		Decoder:    DefaultDecoder,
	}
}

// normalized fills zero values that have no sensible zero meaning. Boolean
// cookie attributes are left as given.
func (c Config) normalized() Config {
	if c.Cookie.Name == "" {
		c.Cookie.Name = DefaultCookieName
	}
	if c.Cookie.Path == "" {
		c.Cookie.Path = "/"
	}
	if c.MaxAge < 0 {
		c.MaxAge = 0
	}
	if c.KeyFactory == nil {
		c.KeyFactory = DefaultKeyFactory
	}
	if c.Encoder == nil {
		c.Encoder = DefaultEncoder
	}
	if c.Decoder == nil {
		c.Decoder = DefaultDecoder
	}
	return c
}

// DefaultKeyFactory returns a random 128-bit key as 32 hex characters, the
// same shape as Python's uuid4().hex.
func DefaultKeyFactory() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// DefaultEncoder serializes the payload as JSON.
func DefaultEncoder(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DefaultDecoder deserializes a JSON payload.
func DefaultDecoder(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
