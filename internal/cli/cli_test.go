package cli

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/lattice/pkg/buildinfo"
	"github.com/matzehuels/lattice/pkg/errors"
)

const toolbar = "../../pkg/scene/testdata/toolbar.toml"

// execute runs the root command with args against an isolated config and
// cache directory, and returns what the command wrote to its output.
func execute(t *testing.T, cacheHome string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != buildinfo.String() {
		t.Errorf("version = %q, want %q", out, buildinfo.String())
	}
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, t.TempDir(), "run", toolbar, "--json")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, `"scene": "toolbar"`) {
		t.Errorf("run --json output does not name the scene:\n%s", out)
	}
}

func TestRunTable(t *testing.T) {
	out, err := execute(t, t.TempDir(), "run", toolbar, "--no-cache", "--ops")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	for _, want := range []string{"toolbar", "longer title", "add icon", "icon first", "5 nodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q:\n%s", want, out)
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"run", "does-not-exist.toml"}, errors.ErrCodeFileNotFound},
		{"unknown extension", []string{"run", "scene.ini"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, t.TempDir(), tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderDOT(t *testing.T) {
	out := filepath.Join(t.TempDir(), "toolbar.dot")
	if _, err := execute(t, t.TempDir(), "render", toolbar, "-f", "dot", "-o", out); err != nil {
		t.Fatalf("render error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("render wrote %q, want DOT source", data)
	}
	if !strings.Contains(string(data), "button") {
		t.Error("DOT source is missing the button node")
	}
}

func TestCachePath(t *testing.T) {
	home := t.TempDir()
	out, err := execute(t, home, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	if want := filepath.Join(home, appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClear(t *testing.T) {
	home := t.TempDir()
	if _, err := execute(t, home, "run", toolbar, "--json"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if n := countFiles(t, filepath.Join(home, appName)); n == 0 {
		t.Fatal("run did not write any cache entries")
	}

	if _, err := execute(t, home, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if n := countFiles(t, filepath.Join(home, appName)); n != 0 {
		t.Errorf("%d cache entries left after clear", n)
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "completion", "bash")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the program")
	}
	if _, err := execute(t, t.TempDir(), "completion", "tcsh"); err == nil {
		t.Error("completion tcsh succeeded, want an error")
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return n
}
