package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"fleximart-catalog/internal/logger"

	"github.com/joho/godotenv"
)

const (
	DefaultDBName     = "fleximart_nosql"
	DefaultCollection = "products"
	DefaultSeedFile   = "data/products_catalog.json"
	DefaultTimeout    = 10 * time.Second
)

type Config struct {
	AppPort                string
	AppName                string
	MongoURI               string
	MongoDBName            string
	MongoCollection        string
	MongoTimeout           time.Duration
	SeedFile               string
	TraceStdout            bool
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
}

// SafeConfig is what gets logged: no credentials, so MongoURI is left out.
type SafeConfig struct {
	AppPort                string `json:"app_port"`
	AppName                string `json:"app_name"`
	MongoDBName            string `json:"mongo_db_name"`
	MongoCollection        string `json:"mongo_collection"`
	MongoTimeoutMs         int64  `json:"mongo_timeout_ms"`
	SeedFile               string `json:"seed_file"`
	TraceStdout            bool   `json:"trace_stdout"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_name", "catalog-loader"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

// jsonKey prefers the `json:"..."` tag name and falls back to snake_case.
func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppPort:                c.AppPort,
		AppName:                c.AppName,
		MongoDBName:            c.MongoDBName,
		MongoCollection:        c.MongoCollection,
		MongoTimeoutMs:         c.MongoTimeout.Milliseconds(),
		SeedFile:               c.SeedFile,
		TraceStdout:            c.TraceStdout,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

var log = logger.Instance()
var (
	configInstance *Config
	configOnce     sync.Once
)

func withDefault(getenv func(string) string, varName, fallback string) string {
	if val := getenv(varName); val != "" {
		return val
	}
	return fallback
}

func durationMs(getenv func(string) string, varName string, fallback time.Duration) time.Duration {
	val := getenv(varName)
	if val == "" {
		return fallback
	}

	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil || num <= 0 {
		log.Warn("Invalid duration; using default",
			slog.String("var", varName),
			slog.String("value", val),
			slog.Duration("default", fallback),
		)
		return fallback
	}

	return time.Duration(num) * time.Millisecond
}

// Load builds a Config from getenv. Only MONGO_URI is mandatory; everything
// else has a default matching the FlexiMart catalog layout.
func Load(getenv func(string) string) (*Config, error) {
	traceStdout, _ := strconv.ParseBool(getenv("TRACE_STDOUT"))

	cfg := &Config{
		AppPort:                withDefault(getenv, "APP_PORT", "8080"),
		AppName:                withDefault(getenv, "APP_NAME", "fleximart-catalog"),
		MongoURI:               getenv("MONGO_URI"),
		MongoDBName:            withDefault(getenv, "MONGO_DB_NAME", DefaultDBName),
		MongoCollection:        withDefault(getenv, "MONGO_COLLECTION", DefaultCollection),
		MongoTimeout:           durationMs(getenv, "MONGO_TIMEOUT_MS", DefaultTimeout),
		SeedFile:               withDefault(getenv, "SEED_FILE", DefaultSeedFile),
		TraceStdout:            traceStdout,
		RemoteLogHttpURI:       getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: getenv("REMOTE_PROFILING_HTTP_URI"),
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func Instance() *Config {
	configOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Warn("No .env file found, using system environment variables")
		}

		cfg, err := Load(os.Getenv)
		if err != nil {
			log.Error("Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" && !cfg.TraceStdout {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)

		configInstance = cfg
	})

	return configInstance
}
