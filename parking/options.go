package parking

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout applies to login and data calls when Config.Timeout is zero
const DefaultTimeout = 20 * time.Second

// Config holds the credentials and endpoint for one parking account
type Config struct {
	Username string
	Password string
	BaseURL  string
	// Timeout is per request; zero selects DefaultTimeout.
	Timeout time.Duration
	// PermitMediaTypeID skips the permit-media type lookup before login.
	PermitMediaTypeID *int64
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Password) == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be greater than zero", ErrInvalidConfig)
	}
	return nil
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

func defaultOptions() clientOptions {
	return clientOptions{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
}

// WithHTTPClient sets the HTTP client used for all calls. Its Timeout is
// replaced by the configured per-request timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request and session events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithClock overrides the clock used for "today" and default reservation start.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// MediaOption overrides the permit-media defaults for a single mutation.
type MediaOption func(*mediaOverride)

type mediaOverride struct {
	typeID *int64
	code   *string
}

// WithPermitMediaTypeID uses id instead of the session's default type id.
func WithPermitMediaTypeID(id int64) MediaOption {
	return func(m *mediaOverride) {
		m.typeID = &id
	}
}

// WithPermitMediaCode uses code instead of the session's default code.
func WithPermitMediaCode(code string) MediaOption {
	return func(m *mediaOverride) {
		m.code = &code
	}
}
