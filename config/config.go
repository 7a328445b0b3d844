package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults and must come from config.json or the environment.
type AppConfig struct {
	AppPort        string
	JWTSecret      string
	JWTTTLHours    int
	AllowedOrigins []string
	MaxBodyBytes   int64
	SanitizeHTML   bool
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Post list cache
	CacheBackend    string
	CacheTTLSeconds int
	CacheCapacity   int
	// Redis, used when CacheBackend is "redis"
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// JWTTTL returns the configured token lifetime.
func (c AppConfig) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// CacheTTL returns the configured lifetime of a cached post list.
func (c AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// setting binds one AppConfig field to its JSON key, environment variable
// and default. field returns a pointer into c.
type setting struct {
	key   string
	env   string
	def   any
	field func(c *AppConfig) any
}

var settings = []setting{
	{"AppPort", "APP_PORT", "8080", func(c *AppConfig) any { return &c.AppPort }},
	{"JWTSecret", "JWT_SECRET", nil, func(c *AppConfig) any { return &c.JWTSecret }},
	{"JWTTTLHours", "JWT_TTL_HOURS", 72, func(c *AppConfig) any { return &c.JWTTTLHours }},
	{"AllowedOrigins", "CORS_ALLOWED_ORIGINS", []string{"*"}, func(c *AppConfig) any { return &c.AllowedOrigins }},
	{"MaxBodyBytes", "MAX_BODY_BYTES", int64(8 << 20), func(c *AppConfig) any { return &c.MaxBodyBytes }},
	{"SanitizeHTML", "SANITIZE_HTML", nil, func(c *AppConfig) any { return &c.SanitizeHTML }},

	{"DBDriver", "DB_DRIVER", "mysql", func(c *AppConfig) any { return &c.DBDriver }},
	{"DatabaseURI", "DATABASE_URI", nil, func(c *AppConfig) any { return &c.DatabaseURI }},
	{"DBHost", "DB_HOST", "127.0.0.1", func(c *AppConfig) any { return &c.DBHost }},
	{"DBPort", "DB_PORT", "3306", func(c *AppConfig) any { return &c.DBPort }},
	{"DBUser", "DB_USER", "root", func(c *AppConfig) any { return &c.DBUser }},
	{"DBPassword", "DB_PASSWORD", nil, func(c *AppConfig) any { return &c.DBPassword }},
	{"DBName", "DB_NAME", "minipost", func(c *AppConfig) any { return &c.DBName }},

	{"GinMode", "GIN_MODE", "release", func(c *AppConfig) any { return &c.GinMode }},
	{"GinPath", "GIN_PATH", "logs/go_gin.log", func(c *AppConfig) any { return &c.GinPath }},

	{"CacheBackend", "CACHE_BACKEND", "memory", func(c *AppConfig) any { return &c.CacheBackend }},
	{"CacheTTLSeconds", "CACHE_TTL_SECONDS", 300, func(c *AppConfig) any { return &c.CacheTTLSeconds }},
	{"CacheCapacity", "CACHE_CAPACITY", 1024, func(c *AppConfig) any { return &c.CacheCapacity }},

	{"RedisHost", "REDIS_HOST", "127.0.0.1", func(c *AppConfig) any { return &c.RedisHost }},
	{"RedisPort", "REDIS_PORT", 6379, func(c *AppConfig) any { return &c.RedisPort }},
	{"RedisDB", "REDIS_DB", nil, func(c *AppConfig) any { return &c.RedisDB }},
	{"RedisPassword", "REDIS_PASSWORD", nil, func(c *AppConfig) any { return &c.RedisPassword }},

	{"LogLevel", "LOG_LEVEL", "info", func(c *AppConfig) any { return &c.LogLevel }},
	{"LogPath", "LOG_PATH", nil, func(c *AppConfig) any { return &c.LogPath }},
	{"LogMaxSizeMB", "LOG_MAX_SIZE_MB", 100, func(c *AppConfig) any { return &c.LogMaxSizeMB }},
	{"LogMaxBackups", "LOG_MAX_BACKUPS", 3, func(c *AppConfig) any { return &c.LogMaxBackups }},
	{"LogMaxAgeDays", "LOG_MAX_AGE_DAYS", 7, func(c *AppConfig) any { return &c.LogMaxAgeDays }},
	{"LogCompress", "LOG_COMPRESS", nil, func(c *AppConfig) any { return &c.LogCompress }},
}

// JSON sections whose keys are merged on top of the flat object.
var sectionNames = []string{"app", "database", "cache", "redis", "log"}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// config/config.json, then defaults for what it left empty, then the environment
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Fatalf("invalid config/config.json: %v", err)
	}
	ApplyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads a JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	sections := []map[string]any{raw}
	for _, name := range sectionNames {
		if m, ok := raw[name].(map[string]any); ok {
			sections = append(sections, m)
		}
	}
	for _, m := range sections {
		for _, s := range settings {
			if v, ok := m[s.key]; ok {
				setFromJSON(s.field(out), v)
			}
		}
	}
	return nil
}

// setFromJSON assigns v when it has the field's type and is not empty.
func setFromJSON(dst any, v any) {
	switch p := dst.(type) {
	case *string:
		if s, ok := v.(string); ok && s != "" {
			*p = s
		}
	case *int:
		if n, ok := v.(float64); ok && n != 0 {
			*p = int(n)
		}
	case *int64:
		if n, ok := v.(float64); ok && n != 0 {
			*p = int64(n)
		}
	case *bool:
		if b, ok := v.(bool); ok {
			*p = b
		}
	case *[]string:
		arr, ok := v.([]any)
		if !ok {
			return
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		if len(res) > 0 {
			*p = res
		}
	}
}

// ApplyDefaults sets sane defaults for zero-value fields.
func ApplyDefaults(c *AppConfig) {
	for _, s := range settings {
		if s.def == nil {
			continue
		}
		switch p := s.field(c).(type) {
		case *string:
			if *p == "" {
				*p = s.def.(string)
			}
		case *int:
			if *p == 0 {
				*p = s.def.(int)
			}
		case *int64:
			if *p == 0 {
				*p = s.def.(int64)
			}
		case *[]string:
			if len(*p) == 0 {
				*p = append([]string(nil), s.def.([]string)...)
			}
		}
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	for _, s := range settings {
		v := os.Getenv(s.env)
		if v == "" {
			continue
		}
		if err := setFromEnv(s.field(c), v); err != nil {
			return fmt.Errorf("%s: %w", s.env, err)
		}
	}
	return nil
}

func setFromEnv(dst any, v string) error {
	switch p := dst.(type) {
	case *string:
		*p = v
	case *int:
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = i
	case *int64:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*p = i
	case *bool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p = b
	case *[]string:
		*p = splitAndTrim(v)
	}
	return nil
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
