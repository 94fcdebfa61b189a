package docsession

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hlynes/docsession/docstore"
)

// Builder assembles a [Storage]. Configure it with the With* methods and call
// [Builder.Build] once; a Builder is single-use and not safe for concurrent
// configuration.
type Builder struct {
	config Config
	store  docstore.Store
	logger zerolog.Logger

	built bool
}

// New returns a Builder preloaded with [DefaultConfig] and a no-op logger.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithStore sets the document store sessions are persisted in. Required.
func (b *Builder) WithStore(store docstore.Store) *Builder {
	b.store = store
	return b
}

// WithConfig replaces the entire configuration. Zero-valued fields other than
// the cookie's boolean attributes are filled with defaults at Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCookie replaces the cookie attributes.
func (b *Builder) WithCookie(cookie CookieConfig) *Builder {
	b.config.Cookie = cookie
	return b
}

// WithMaxAge sets the session lifetime. Zero disables expiry.
func (b *Builder) WithMaxAge(d time.Duration) *Builder {
	b.config.MaxAge = d
	return b
}

// WithKeyFactory overrides the session key generator.
func (b *Builder) WithKeyFactory(f KeyFactory) *Builder {
	b.config.KeyFactory = f
	return b
}

// WithCodec overrides the payload encoder/decoder pair.
func (b *Builder) WithCodec(enc EncodeFunc, dec DecodeFunc) *Builder {
	b.config.Encoder = enc
	b.config.Decoder = dec
	return b
}

// WithLogger sets the logger used for degraded-load diagnostics. The default
// logger discards everything.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles the outcome counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns the Storage. A missing store
// fails here, at construction, never on first request.
func (b *Builder) Build() (*Storage, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.store == nil {
		return nil, fmt.Errorf("%w: expected a docstore.Store", ErrNilStore)
	}

	cfg := b.config.normalized()

	return &Storage{
		store:      b.store,
		cookie:     cfg.Cookie,
		maxAge:     cfg.MaxAge,
		keyFactory: cfg.KeyFactory,
		encode:     cfg.Encoder,
		decode:     cfg.Decoder,
		metrics:    NewMetrics(cfg.Metrics),
		log:        b.logger,
	}, nil
}
