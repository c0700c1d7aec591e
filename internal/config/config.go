package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	Port        string
	AppURL      string
	FrontendURL string

	NotionToken             string
	NotionOrganizationsDBID string
	NotionContactsDBID      string
	NotionTagSystemDBID     string

	GoogleClientID     string
	GoogleClientSecret string

	CircleAPIToken     string
	CircleClientID     string
	CircleClientSecret string

	RedisURL string

	AWSRegion   string
	AWSS3Bucket string

	// SessionSigningKey enables HMAC signing of session tokens when set.
	SessionSigningKey string
	// ReportFromEmail is the SES sender address. Empty disables email
	// delivery; the affected flows log instead.
	ReportFromEmail string
}

// Load reads the configuration from the environment and fails with every
// missing required variable named, not just the first.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getenv("PORT", "8080"),
		AppURL:                  getenv("APP_URL", "http://localhost:8080"),
		FrontendURL:             os.Getenv("FRONTEND_URL"),
		NotionToken:             os.Getenv("NOTION_TOKEN"),
		NotionOrganizationsDBID: os.Getenv("NOTION_ORGANIZATIONS_DB_ID"),
		NotionContactsDBID:      os.Getenv("NOTION_CONTACTS_DB_ID"),
		NotionTagSystemDBID:     os.Getenv("NOTION_TAG_SYSTEM_DB_ID"),
		GoogleClientID:          os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:      os.Getenv("GOOGLE_CLIENT_SECRET"),
		CircleAPIToken:          os.Getenv("CIRCLE_API_TOKEN"),
		CircleClientID:          os.Getenv("CIRCLE_CLIENT_ID"),
		CircleClientSecret:      os.Getenv("CIRCLE_CLIENT_SECRET"),
		RedisURL:                os.Getenv("REDIS_URL"),
		AWSRegion:               getenv("AWS_REGION", "ca-central-1"),
		AWSS3Bucket:             os.Getenv("AWS_S3_BUCKET"),
		SessionSigningKey:       os.Getenv("SESSION_SIGNING_KEY"),
		ReportFromEmail:         os.Getenv("REPORT_FROM_EMAIL"),
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = cfg.AppURL
	}

	var missing []string
	required := map[string]string{
		"NOTION_TOKEN":               cfg.NotionToken,
		"NOTION_ORGANIZATIONS_DB_ID": cfg.NotionOrganizationsDBID,
		"NOTION_CONTACTS_DB_ID":      cfg.NotionContactsDBID,
		"NOTION_TAG_SYSTEM_DB_ID":    cfg.NotionTagSystemDBID,
		"GOOGLE_CLIENT_ID":           cfg.GoogleClientID,
		"GOOGLE_CLIENT_SECRET":       cfg.GoogleClientSecret,
		"CIRCLE_API_TOKEN":           cfg.CircleAPIToken,
		"CIRCLE_CLIENT_ID":           cfg.CircleClientID,
		"CIRCLE_CLIENT_SECRET":       cfg.CircleClientSecret,
		"REDIS_URL":                  cfg.RedisURL,
		"AWS_S3_BUCKET":              cfg.AWSS3Bucket,
	}
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
