package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *Catalog)
	}{
		{
			name: "valid config",
			yamlContent: `
version: "1.0"
default_sequence: lung1
frame_pattern: "scans/{sequence}/{frame}.png"
preload_concurrency: 4
sequences:
  - name: body
    frames: 73
  - name: lung1
    frames: 34
`,
			validate: func(t *testing.T, c *Catalog) {
				if n, err := c.FrameCount(SequenceLung1); err != nil || n != 34 {
					t.Errorf("expected lung1 = 34, got %d (%v)", n, err)
				}
				if c.DefaultSequence() != SequenceLung1 {
					t.Errorf("expected default lung1, got %s", c.DefaultSequence())
				}
				if c.FramePattern() != "scans/{sequence}/{frame}.png" {
					t.Errorf("unexpected frame pattern %q", c.FramePattern())
				}
				if c.PreloadConcurrency() != 4 {
					t.Errorf("expected concurrency 4, got %d", c.PreloadConcurrency())
				}
				if !c.AccessGranted() {
					t.Error("expected access granted by default")
				}
				got := c.Sequences()
				if len(got) != 2 || got[0] != SequenceBody || got[1] != SequenceLung1 {
					t.Errorf("unexpected sequence order %v", got)
				}
			},
		},
		{
			name: "defaults applied",
			yamlContent: `
sequences:
  - name: coronal
    frames: 40
`,
			validate: func(t *testing.T, c *Catalog) {
				if c.DefaultSequence() != SequenceCoronal {
					t.Errorf("expected default coronal, got %s", c.DefaultSequence())
				}
				if c.FramePattern() != DefaultFramePattern {
					t.Errorf("expected default pattern, got %q", c.FramePattern())
				}
				if c.PreloadConcurrency() != DefaultPreloadConcurrency {
					t.Errorf("expected default concurrency, got %d", c.PreloadConcurrency())
				}
			},
		},
		{
			name:        "empty sequences",
			yamlContent: `version: "1.0"`,
			wantErr:     true,
			errContains: "sequences cannot be empty",
		},
		{
			name: "unknown sequence name",
			yamlContent: `
sequences:
  - name: skull
    frames: 10
`,
			wantErr:     true,
			errContains: "skull",
		},
		{
			name: "zero frames",
			yamlContent: `
sequences:
  - name: body
    frames: 0
`,
			wantErr:     true,
			errContains: "frame count must be >= 1",
		},
		{
			name: "duplicate sequence",
			yamlContent: `
sequences:
  - name: body
    frames: 3
  - name: body
    frames: 4
`,
			wantErr:     true,
			errContains: "declared more than once",
		},
		{
			name: "default not in catalog",
			yamlContent: `
default_sequence: lung2
sequences:
  - name: body
    frames: 3
`,
			wantErr:     true,
			errContains: "default_sequence",
		},
		{
			name: "bad access value",
			yamlContent: `
access: maybe
sequences:
  - name: body
    frames: 3
`,
			wantErr:     true,
			errContains: "access must be",
		},
		{
			name:        "malformed yaml",
			yamlContent: "sequences: [",
			wantErr:     true,
			errContains: "failed to parse catalog YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCatalog([]byte(tt.yamlContent))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, c)
			}
		})
	}
}

func TestCatalogUnknownSequenceIsConfigurationError(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.FrameCount("skull")
	if err == nil {
		t.Fatal("expected error for unknown sequence")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if cfgErr.Sequence != "skull" {
		t.Errorf("expected sequence skull in error, got %q", cfgErr.Sequence)
	}
	if !strings.Contains(err.Error(), `"skull"`) {
		t.Errorf("error message should name the identifier: %q", err.Error())
	}
}

func TestDefaultCatalogFrameCounts(t *testing.T) {
	c := DefaultCatalog()
	want := map[SequenceName]int{
		SequenceBody:     73,
		SequenceLung1:    34,
		SequenceLung2:    66,
		SequenceCoronal:  40,
		SequenceSaggital: 63,
	}
	for name, frames := range want {
		got, err := c.FrameCount(name)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		if got != frames {
			t.Errorf("%s: got %d frames, want %d", name, got, frames)
		}
	}
	if c.DefaultSequence() != SequenceBody {
		t.Errorf("expected default body, got %s", c.DefaultSequence())
	}
}

func TestCatalogSequencesReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	seqs := c.Sequences()
	seqs[0] = "mutated"
	if c.Sequences()[0] != SequenceBody {
		t.Error("Sequences() must not expose internal slice")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := "sequences:\n  - name: saggital\n    frames: 63\naccess: denied\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if c.AccessGranted() {
		t.Error("expected access denied")
	}

	if _, err := LoadCatalog(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
