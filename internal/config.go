package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host       string `env:"HOST,default=0.0.0.0"`
	Port       int    `env:"PORT,required=true"`
	HealthPort int    `env:"HEALTH_PORT,default=0"`
	DebugPort  int    `env:"DEBUG_PORT,default=0"`
	LogLevel   string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	JWTIssuer         string        `env:"JWT_ISSUER,default=chat-desk"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	PublishTimeout       time.Duration `env:"PUBLISH_TIMEOUT,default=2s"`
	IdleTimeout          time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	MaxFrameSize         int           `env:"MAX_FRAME_SIZE,default=65536"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=1000"`
	PageSize             int           `env:"PAGE_SIZE,default=50"`
	MaxPageSize          int           `env:"MAX_PAGE_SIZE,default=100"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,default=5s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*"`
}

// Validate catches values the env decoder accepts but the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0:
		return fmt.Errorf("PORT must be positive, got %d", c.Port)
	case len(c.JWTSecret) < 16:
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	case c.MaxContentLength <= 0:
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", c.MaxContentLength)
	case c.PageSize <= 0 || c.MaxPageSize < c.PageSize:
		return fmt.Errorf("PAGE_SIZE must be positive and not above MAX_PAGE_SIZE")
	case c.IdleTimeout <= 0 || c.WriteTimeout <= 0:
		return fmt.Errorf("IDLE_TIMEOUT and WRITE_TIMEOUT must be positive")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	case c.SinkTimeout <= 0 || c.PublishTimeout <= 0:
		return fmt.Errorf("SINK_TIMEOUT and PUBLISH_TIMEOUT must be positive")
	case c.BufferSize <= 0 || c.ConnectionBufferSize <= 0:
		return fmt.Errorf("BUFFER_SIZE and CONNECTION_BUFFER_SIZE must be positive")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas. An empty list allows every origin.
func (c Config) Origins() []string {
	origins := lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
