package command

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/delicious2fluid/internal/app"
	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/deps"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

const export = `<posts user="alice">
  <post href="http://a" description="A" tag="go web"/>
  <post href="http://b" description="B" tag="go" shared="no"/>
</posts>`

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// setupEnv points every command at a fresh sandbox and export file.
func setupEnv(t *testing.T) (*memstore.MemoryStore, string) {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, "D2F_") {
			t.Setenv(key, "")
		}
	}

	store := memstore.NewMemoryStore("alice")
	srv := sandbox.New("", logger.NewNop(), deps.Deps{
		Store: store,
		Users: map[string]string{"alice": "pw"},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	file := filepath.Join(dir, "posts.xml")
	if err := os.WriteFile(file, []byte(export), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	t.Setenv("D2F_FLUIDDB_URL", ts.URL)
	t.Setenv("D2F_FLUIDDB_USERNAME", "alice")
	t.Setenv("D2F_FLUIDDB_PASSWORD", "pw")
	t.Setenv("D2F_LOG_LEVEL", "error")
	t.Setenv("D2F_LOG_FILE", filepath.Join(dir, "d2f.log"))
	return store, file
}

func TestRootCommandVersion(t *testing.T) {
	output, err := executeCommand(NewRootCmd("test"), "--version")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(output, "delicious2fluid version test") {
		t.Errorf("unexpected output %q", output)
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(NewRootCmd("test"), "version")
	if err != nil {
		t.Fatalf("version command: %v", err)
	}
	if !strings.HasPrefix(output, AppName+" ") || !strings.Contains(output, "commit=") {
		t.Errorf("unexpected output %q", output)
	}
}

func TestImportCommand(t *testing.T) {
	store, file := setupEnv(t)

	output, err := executeCommand(NewRootCmd("test"), "import", "--file", file)
	if err != nil {
		t.Fatalf("import command: %v\n%s", err, output)
	}
	if !strings.Contains(output, "records:  1 (1 private skipped)") {
		t.Errorf("missing record summary in %q", output)
	}
	if store.ObjectCount() != 1 {
		t.Errorf("ObjectCount() = %d, want 1", store.ObjectCount())
	}
}

func TestImportCommandFlags(t *testing.T) {
	store, file := setupEnv(t)

	output, err := executeCommand(NewRootCmd("test"), "import",
		"--file", file, "--include-private", "--tag-layout", "nested", "--json")
	if err != nil {
		t.Fatalf("import command: %v\n%s", err, output)
	}

	var got struct {
		Format  string `json:"format"`
		Records int    `json:"records"`
		Report  struct {
			TagLayout string            `json:"tag_layout"`
			Objects   map[string]string `json:"objects"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if got.Format != "xml" || got.Records != 2 || got.Report.TagLayout != "nested" || len(got.Report.Objects) != 2 {
		t.Errorf("unexpected result %+v", got)
	}
	if _, ok := store.GetTag("alice/delicious/tags/web"); !ok {
		t.Error("nested layout should put tag names under delicious/tags")
	}
}

func TestImportCommandDryRun(t *testing.T) {
	store, file := setupEnv(t)

	output, err := executeCommand(NewRootCmd("test"), "import", "--file", file, "--dry-run")
	if err != nil {
		t.Fatalf("import command: %v", err)
	}
	if !strings.Contains(output, "dry run") {
		t.Errorf("unexpected output %q", output)
	}
	if store.ObjectCount() != 0 {
		t.Error("dry run wrote objects")
	}
}

func TestImportCommandErrors(t *testing.T) {
	_, file := setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unexpected argument", args: []string{"import", "extra"}},
		{name: "bad tag layout", args: []string{"import", "--file", file, "--tag-layout", "flat"}},
		{name: "missing file", args: []string{"import", "--file", filepath.Join(t.TempDir(), "none.xml")}},
		{name: "negative interval", args: []string{"import", "--file", file, "--every", "-1s"}},
		{name: "watch without file", args: []string{"import", "--watch"}},
		{name: "bad log level", args: []string{"import", "--file", file, "--log-level", "loud"}},
		{name: "missing config", args: []string{"import", "--config", filepath.Join(t.TempDir(), "none.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(NewRootCmd("test"), tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestStatusCommandWithoutJournal(t *testing.T) {
	setupEnv(t)

	_, err := executeCommand(NewRootCmd("test"), "status")
	if err == nil || !strings.Contains(err.Error(), "journal") {
		t.Errorf("status without journal error = %v", err)
	}
}

func TestPrintStatus(t *testing.T) {
	tests := []struct {
		name   string
		result *app.StatusResult
		want   []string
	}{
		{
			name:   "nothing journaled",
			result: &app.StatusResult{Root: "alice"},
			want:   []string{`no import journaled for "alice"`},
		},
		{
			name:   "known url",
			result: &app.StatusResult{Root: "alice", URL: "http://a", ObjectID: "id-a", Roots: []string{"alice"}},
			want:   []string{"object:    http://a -> id-a", "known roots: alice"},
		},
		{
			name:   "unknown url",
			result: &app.StatusResult{Root: "alice", URL: "http://zzz"},
			want:   []string{"object:    http://zzz not journaled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printStatus(&buf, tt.result, false); err != nil {
				t.Fatalf("printStatus() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}
