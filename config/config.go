// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the settings of the ggedit binary.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// file, a .env file and GGEDIT_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full binary configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Canvas CanvasConfig `yaml:"canvas"`
	Drafts DraftsConfig `yaml:"drafts"`
	AI     AIConfig     `yaml:"ai"`
	Export ExportConfig `yaml:"export"`
	Images ImagesConfig `yaml:"images"`
	Fonts  FontsConfig  `yaml:"fonts"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	CORSOrigins  []string      `yaml:"corsOrigins"`
	// RateLimit is the per-client request rate in requests per second.
	// Zero disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`
	// MaxSessions bounds the live editor sessions.
	MaxSessions int `yaml:"maxSessions"`
}

// CanvasConfig is the default logical canvas size of new sessions.
type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DraftsConfig selects the draft store. URL is passed to kv.Open; empty
// disables drafts.
type DraftsConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// AIConfig configures the AI edit collaborator. Empty Endpoint disables it.
type AIConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Rate     float64       `yaml:"rate"`
	Burst    int           `yaml:"burst"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ExportConfig configures raster export.
type ExportConfig struct {
	Multiplier float64 `yaml:"multiplier"`
}

// ImagesConfig configures image loading.
type ImagesConfig struct {
	// BaseDir resolves relative file references.
	BaseDir  string `yaml:"baseDir"`
	MaxBytes int64  `yaml:"maxBytes"`
}

// FontsConfig configures font resolution.
type FontsConfig struct {
	// System enables lookup of installed fonts by family name.
	System   bool          `yaml:"system"`
	CacheDir string        `yaml:"cacheDir"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":3333",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
			CORSOrigins:  []string{"*"},
			RateLimit:    5,
			RateBurst:    30,
			MaxSessions:  64,
		},
		Canvas: CanvasConfig{Width: 800, Height: 600},
		Drafts: DraftsConfig{URL: "memory:"},
		AI:     AIConfig{Rate: 1, Burst: 3, Timeout: 2 * time.Minute},
		Export: ExportConfig{Multiplier: 2},
		Images: ImagesConfig{MaxBytes: 64 << 20},
		Fonts:  FontsConfig{System: true, Timeout: 3 * time.Second},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// dotenv files and the process environment, and validates the result. An
// empty path skips the YAML step. With no envFiles, ".env" is read when it
// exists.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	optional := len(envFiles) == 0
	if optional {
		envFiles = []string{".env"}
	}
	dotenv := map[string]string{}
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: %w", err)
		}
		for k, v := range vals {
			dotenv[k] = v
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides fields from GGEDIT_* variables. PORT sets the listen
// port when GGEDIT_ADDR is absent.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var err error
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && err == nil {
			f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && err == nil {
			n, perr := strconv.Atoi(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && err == nil {
			b, perr := strconv.ParseBool(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = b
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("GGEDIT_ADDR", &c.Server.Addr)
	if v, ok := lookup("GGEDIT_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	float("GGEDIT_RATE_LIMIT", &c.Server.RateLimit)
	integer("GGEDIT_MAX_SESSIONS", &c.Server.MaxSessions)
	float("GGEDIT_CANVAS_WIDTH", &c.Canvas.Width)
	float("GGEDIT_CANVAS_HEIGHT", &c.Canvas.Height)
	str("GGEDIT_DRAFTS_URL", &c.Drafts.URL)
	str("GGEDIT_AI_ENDPOINT", &c.AI.Endpoint)
	str("GGEDIT_AI_TOKEN", &c.AI.Token)
	float("GGEDIT_AI_RATE", &c.AI.Rate)
	float("GGEDIT_EXPORT_MULTIPLIER", &c.Export.Multiplier)
	str("GGEDIT_IMAGE_DIR", &c.Images.BaseDir)
	boolean("GGEDIT_SYSTEM_FONTS", &c.Fonts.System)
	str("GGEDIT_FONT_CACHE_DIR", &c.Fonts.CacheDir)
	str("GGEDIT_LOG_LEVEL", &c.Log.Level)
	str("GGEDIT_LOG_FORMAT", &c.Log.Format)
	return err
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	case c.Server.RateLimit < 0:
		return fmt.Errorf("%w: server.rateLimit %v < 0", ErrInvalid, c.Server.RateLimit)
	case c.Server.RateLimit > 0 && c.Server.RateBurst < 1:
		return fmt.Errorf("%w: server.rateBurst must be at least 1", ErrInvalid)
	case c.Server.MaxSessions < 1:
		return fmt.Errorf("%w: server.maxSessions must be at least 1", ErrInvalid)
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas %vx%v", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	case c.Export.Multiplier < 1:
		return fmt.Errorf("%w: export.multiplier %v < 1", ErrInvalid, c.Export.Multiplier)
	case c.AI.Rate < 0:
		return fmt.Errorf("%w: ai.rate %v < 0", ErrInvalid, c.AI.Rate)
	case c.Drafts.URL != "" && !strings.Contains(c.Drafts.URL, ":"):
		return fmt.Errorf("%w: drafts.url %q has no scheme", ErrInvalid, c.Drafts.URL)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// NewLogger returns a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
