// Package config resolves the marketplace home directory and the
// environment-driven runtime settings.
package config

import (
	"os"
	"strings"
)

// Settings is the environment-driven runtime configuration. Flags on
// the serve command override the corresponding fields.
type Settings struct {
	// DataSource selects the store backend: "csv" (default) or "postgres".
	DataSource  string
	DatabaseURL string

	// APIKey guards the API when set; /api/health and /metrics stay open.
	APIKey string
	// Dev enables permissive CORS for local frontends.
	Dev bool

	LLM LLMSettings
	S3  S3Settings
}

// LLMSettings configures the OpenAI-compatible chat endpoint.
type LLMSettings struct {
	APIKey  string
	BaseURL string
	Model   string
}

// S3Settings configures the media object store. Uploads are disabled
// when Bucket is empty.
type S3Settings struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicBaseURL, when set, is used for returned object URLs instead
	// of the endpoint.
	PublicBaseURL string
}

// FromEnv reads Settings from the environment.
func FromEnv() Settings {
	s := Settings{
		DataSource:  strings.ToLower(envOr("DATA_SOURCE", "csv")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("AGENTS_STORE_API_KEY"),
		Dev:         os.Getenv("AGENTS_STORE_DEV") == "1",
		LLM: LLMSettings{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
		},
		S3: S3Settings{
			Endpoint:      envOr("S3_ENDPOINT", "s3.amazonaws.com"),
			Region:        envOr("S3_REGION", "us-east-1"),
			Bucket:        os.Getenv("S3_BUCKET"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			UseSSL:        os.Getenv("S3_DISABLE_SSL") != "1",
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
	}
	if s.DataSource != "postgres" {
		s.DataSource = "csv"
	}
	return s
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
