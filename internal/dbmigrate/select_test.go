package dbmigrate

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/fdg312/meal-planner/internal/config"
)

func TestSelectTarget(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantURL     string
		wantSource  string
		wantWarning bool
	}{
		{
			name: "direct wins",
			cfg: config.Config{
				DatabaseURLDirect: "postgres://direct",
				DatabaseURLRaw:    "postgres://url",
				DatabaseURLPooled: "postgres://pooled",
			},
			wantURL:    "postgres://direct",
			wantSource: "DATABASE_URL_DIRECT",
		},
		{
			name: "database url before pooled",
			cfg: config.Config{
				DatabaseURLRaw:    "postgres://url",
				DatabaseURLPooled: "postgres://pooled",
			},
			wantURL:    "postgres://url",
			wantSource: "DATABASE_URL",
		},
		{
			name:        "pooled with warning",
			cfg:         config.Config{DatabaseURLPooled: "postgres://pooled"},
			wantURL:     "postgres://pooled",
			wantSource:  "DATABASE_URL_POOLED",
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := SelectTarget(&tt.cfg, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.URL != tt.wantURL || target.Source != tt.wantSource {
				t.Fatalf("expected %s from %s, got %+v", tt.wantURL, tt.wantSource, target)
			}
			if (target.Warning != "") != tt.wantWarning {
				t.Fatalf("unexpected warning state: %q", target.Warning)
			}
		})
	}
}

func TestSelectTarget_Errors(t *testing.T) {
	if _, err := SelectTarget(&config.Config{}, false); !errors.Is(err, ErrNoDatabaseURL) {
		t.Fatalf("expected ErrNoDatabaseURL, got %v", err)
	}

	cfg := &config.Config{
		DatabaseURLRaw:    "postgres://url",
		DatabaseURLPooled: "postgres://pooled",
	}
	if _, err := SelectTarget(cfg, true); !errors.Is(err, ErrDirectURLRequired) {
		t.Fatalf("expected ErrDirectURLRequired, got %v", err)
	}

	cfg.DatabaseURLDirect = "postgres://direct"
	target, err := SelectTarget(cfg, true)
	if err != nil || target.URL != "postgres://direct" {
		t.Fatalf("expected direct target, got %+v err=%v", target, err)
	}
}

func TestResolveSource_Embedded(t *testing.T) {
	fsys, dir, err := resolveSource("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "." {
		t.Fatalf("expected root dir, got %q", dir)
	}

	entries, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(entries) < 3 {
		t.Fatalf("expected embedded migrations, got %v", entries)
	}
}

func TestResolveSource_MissingDir(t *testing.T) {
	if _, _, err := resolveSource(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing migrations dir")
	}
}
