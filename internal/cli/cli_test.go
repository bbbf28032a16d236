package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/pipeline"
)

const water = `water
  test

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 O   0  0
    0.9572    0.0000    0.0000 H   0  0
   -0.2400    0.9266    0.0000 H   0  0
  1  2  1  0
  1  3  1  0
M  END
`

// newTestCLI returns a CLI reading a config file that disables caching and
// uses the memory store.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "molview.toml")
	cfg := "[cache]\nbackend = \"none\"\n\n[store]\nbackend = \"memory\"\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c := New(io.Discard, LogInfo)
	c.configPath = path
	return c
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"render", "info", "view", "db", "elements", "serve", "cache", "version", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConfigIsLoadedOnce(t *testing.T) {
	c := newTestCLI(t)
	first, err := c.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if first.Cache.Backend != "none" {
		t.Errorf("cache backend = %q, want none", first.Cache.Backend)
	}
	second, _ := c.config()
	if first != second {
		t.Error("config() should return the cached configuration")
	}
}

func TestLoadElementsMergesUserTable(t *testing.T) {
	c := newTestCLI(t)
	cfg, err := c.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Elements.Path = writeFixture(t, "elements.toml", `[[element]]
number = 34
code = "Se"
name = "Selenium"
colours = ["FFA100", "B07000", "603C00"]
radius = 45
`)

	tbl, err := loadElements(cfg)
	if err != nil {
		t.Fatalf("loadElements: %v", err)
	}
	if _, ok := tbl.Get("Se"); !ok {
		t.Error("user element Se missing")
	}
	if _, ok := tbl.Get("C"); !ok {
		t.Error("built-in element C missing")
	}
	if tbl.Len() != elements.Default().Len()+1 {
		t.Errorf("Len = %d, want %d", tbl.Len(), elements.Default().Len()+1)
	}
}

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"caffeine.sdf", "caffeine"},
		{"data/water.mol", "water"},
		{"benzene", "benzene"},
		{"-", ""},
	}
	for _, tt := range tests {
		if got := nameFromPath(tt.path); got != tt.want {
			t.Errorf("nameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{pipeline.FormatSVG}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,json", []string{"svg", "pdf", "json"}},
		{"spaces trimmed", "svg, dot", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
