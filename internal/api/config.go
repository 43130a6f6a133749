package api

import (
	"fmt"
	"os"
	"time"

	"github.com/FocuswithJustin/furigana/core/errors"
	"github.com/FocuswithJustin/furigana/core/furigana"
)

// Defaults applied to zero Config fields.
const (
	DefaultPort         = 8080
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheSize    = 1024
	DefaultMaxBodyBytes = 1 << 20
)

// Config holds server configuration.
type Config struct {
	Port           int
	LessonsDir     string        // empty disables the lesson endpoints
	AllowedOrigins []string      // CORS allowed origins (empty = allow all)
	CacheTTL       time.Duration // render cache entry lifetime (negative = no cache)
	CacheSize      int           // render cache capacity
	MaxBodyBytes   int64         // request body limit
	Version        string
	Engine         *furigana.Engine // nil = default delimiters
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.Engine == nil {
		c.Engine = furigana.MustNew()
	}
	return c
}

// Validate checks a configuration after defaults are applied.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.NewValidation("port", fmt.Sprintf("%d is out of range", c.Port))
	}
	if c.MaxBodyBytes < 0 {
		return errors.NewValidation("max_body_bytes", "must not be negative")
	}
	if c.CacheSize < 0 {
		return errors.NewValidation("cache_size", "must not be negative")
	}
	if c.LessonsDir != "" {
		fi, err := os.Stat(c.LessonsDir)
		if err != nil {
			return errors.NewNotFound("lessons directory", c.LessonsDir)
		}
		if !fi.IsDir() {
			return errors.NewValidation("lessons_dir", c.LessonsDir+" is not a directory")
		}
	}
	return nil
}
