package config

import (
	"os"
	"strconv"
)

// FromEnv overlays XSTREAM_* environment variables onto cfg. Unparseable
// values are ignored.
func FromEnv(cfg *Config) {
	if v := os.Getenv("XSTREAM_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("XSTREAM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("XSTREAM_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("XSTREAM_DEFAULT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultCount = n
		}
	}
	if v := os.Getenv("XSTREAM_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxCount = n
		}
	}
	if v := os.Getenv("XSTREAM_MAX_STREAM_NAME_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxStreamNameBytes = n
		}
	}
	if v := os.Getenv("XSTREAM_ENABLE_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableMetrics = b
		}
	}
	if v := os.Getenv("XSTREAM_ENABLE_TRACING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableTracing = b
		}
	}
	if v := os.Getenv("XSTREAM_TRACING_ENDPOINT"); v != "" {
		cfg.TracingEndpoint = v
	}
	if v := os.Getenv("XSTREAM_TRACING_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TracingSampleRate = f
		}
	}
}
