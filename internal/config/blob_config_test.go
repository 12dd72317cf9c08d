package config

import (
	"strings"
	"testing"
)

func exportBucket() S3Config {
	return S3Config{
		Endpoint:          "https://s3.eu-central-1.amazonaws.com",
		Region:            "eu-central-1",
		Bucket:            "meal-exports",
		AccessKeyID:       "key",
		SecretAccessKey:   "sk-export-42",
		PublicBaseURL:     "https://meal-exports.s3.eu-central-1.amazonaws.com",
		PresignTTLSeconds: 600,
	}
}

func TestS3ConfigMissingRequired(t *testing.T) {
	if missing := exportBucket().MissingRequired(); len(missing) != 0 {
		t.Fatalf("expected complete config, missing %v", missing)
	}
	if !exportBucket().IsConfigured() {
		t.Fatal("expected IsConfigured=true for complete config")
	}

	cfg := S3Config{Endpoint: "https://minio.local:9000", Bucket: "  "}
	want := []string{"S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL"}
	missing := cfg.MissingRequired()
	if strings.Join(missing, ",") != strings.Join(want, ",") {
		t.Fatalf("expected missing %v, got %v", want, missing)
	}
	if cfg.IsConfigured() {
		t.Fatal("expected IsConfigured=false for blank bucket")
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		cfg   S3Config
		level string
		code  string
	}{
		{"empty", S3Config{}, "INFO", "s3_not_configured"},
		{"only endpoint", S3Config{Endpoint: "https://minio.local:9000"}, "WARN", "s3_partial_config"},
		{"no public url", func() S3Config {
			c := exportBucket()
			c.PublicBaseURL = ""
			return c
		}(), "WARN", "s3_partial_config"},
		{"ready", exportBucket(), "INFO", "s3_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, code, _ := tt.cfg.Diagnostics()
			if level != tt.level || code != tt.code {
				t.Fatalf("expected %s/%s, got %s/%s", tt.level, tt.code, level, code)
			}
		})
	}
}

func TestS3ConfigDiagnosticsSummaryHidesSecrets(t *testing.T) {
	summary := exportBucket().DiagnosticsSummary()

	if strings.Contains(summary, "sk-export-42") {
		t.Fatalf("summary leaks the secret: %s", summary)
	}
	for _, want := range []string{"bucket=meal-exports", "presign_ttl=600s", "access_key_id=set"} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected %q in summary %s", want, summary)
		}
	}

	if got := (S3Config{}).DiagnosticsSummary(); !strings.Contains(got, "endpoint=-") {
		t.Errorf("expected dash for empty endpoint, got %s", got)
	}
}

func TestParseBlobMode(t *testing.T) {
	for raw, want := range map[string]string{
		"":      BlobModeLocal,
		" S3 ":  BlobModeS3,
		"auto":  BlobModeAuto,
		"gcs":   BlobModeLocal,
		"local": BlobModeLocal,
	} {
		t.Setenv("BLOB_MODE", raw)
		if got := parseBlobMode("BLOB_MODE", BlobModeLocal); got != want {
			t.Errorf("BLOB_MODE=%q: expected %s, got %s", raw, want, got)
		}
	}
}
