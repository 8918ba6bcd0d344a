// Package config loads preview server configuration from environment
// variables, with an optional YAML tenant profile layer on top.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server configuration.
type Config struct {
	Port        string
	LogLevel    string
	AuthSecret  string
	CORSOrigins []string

	// Tenant profile selection
	ProfilesDir string
	Tenant      string

	// Content source settings
	S3Region    string
	S3Endpoint  string
	GCSEnabled  bool
	FetchRPS    float64
	SourceToken string

	// Rate limiting
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LimitRPM      int
	LimitBurst    int

	// Media leases
	MediaTTL time.Duration

	// Tracing
	OTLPEndpoint string
}

// Load loads configuration from environment variables.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	fetchRPS := 10.0
	if v := os.Getenv("PREVIEW_FETCH_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			fetchRPS = parsed
		}
	}

	limitRPM := 300
	if v := os.Getenv("PREVIEW_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limitRPM = parsed
		}
	}

	limitBurst := 50
	if v := os.Getenv("PREVIEW_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limitBurst = parsed
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			redisDB = parsed
		}
	}

	mediaTTL := 15 * time.Minute
	if v := os.Getenv("PREVIEW_MEDIA_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			mediaTTL = parsed
		}
	}

	region := os.Getenv("PREVIEW_S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	var corsOrigins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
		for i := range corsOrigins {
			corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
		}
	}

	return &Config{
		Port:          port,
		LogLevel:      logLevel,
		AuthSecret:    os.Getenv("PREVIEW_AUTH_SECRET"),
		CORSOrigins:   corsOrigins,
		ProfilesDir:   os.Getenv("PREVIEW_PROFILES_DIR"),
		Tenant:        os.Getenv("PREVIEW_TENANT"),
		S3Region:      region,
		S3Endpoint:    os.Getenv("PREVIEW_S3_ENDPOINT"),
		GCSEnabled:    os.Getenv("PREVIEW_GCS_ENABLED") == "true",
		FetchRPS:      fetchRPS,
		SourceToken:   os.Getenv("PREVIEW_SOURCE_TOKEN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		LimitRPM:      limitRPM,
		LimitBurst:    limitBurst,
		MediaTTL:      mediaTTL,
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}
