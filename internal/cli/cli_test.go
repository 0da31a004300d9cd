package cli

import (
	"io"
	"reflect"
	"testing"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"layout", "consolidate", "render", "show", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png", []string{"svg", "png"}},
		{"dot,json", []string{"dot", "json"}},
	}

	for _, tt := range tests {
		if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, out, suffix string
		want               string
	}{
		{"tree.json", "", ".layout.json", "tree.layout.json"},
		{"tree.json", "custom.json", ".layout.json", "custom.json"},
		{"dir/tree.json", "", ".consolidated.json", "dir/tree.consolidated.json"},
		{"noext", "", ".layout.json", "noext.layout.json"},
	}

	for _, tt := range tests {
		if got := outputPath(tt.input, tt.out, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.input, tt.out, tt.suffix, got, tt.want)
		}
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != "/tmp/xdg-cache/idhist" {
		t.Errorf("cacheDir = %q, want /tmp/xdg-cache/idhist", dir)
	}
}
