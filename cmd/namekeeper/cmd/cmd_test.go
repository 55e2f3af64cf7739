package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/solatis/namekeeper/internal/report"
)

const testRules = `rules:
  - selector: default
    format: [camelCase]
  - selector: typeLike
    format: [PascalCase]
`

// execute runs the root command with args after restoring every flag to
// its default, since cobra commands are package globals.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLint_Violations(t *testing.T) {
	root := writeProject(t, map[string]string{
		"rules.yaml": testRules,
		"src/a.ts":   "const BadName = 1;\nclass Widget {}\n",
	})

	out, err := execute(t, "lint", "--rules", filepath.Join(root, "rules.yaml"), filepath.Join(root, "src"))
	if !errors.Is(err, ErrViolations) {
		t.Fatalf("lint error = %v, want %v", err, ErrViolations)
	}
	if !strings.Contains(out, filepath.Join(root, "src", "a.ts")+":1:") {
		t.Errorf("output missing location of BadName:\n%s", out)
	}
	if !strings.Contains(out, "BadName") || strings.Contains(out, "Widget") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLint_Clean(t *testing.T) {
	root := writeProject(t, map[string]string{
		"rules.yaml": testRules,
		"a.ts":       "const goodName = 1;\n",
	})

	out, err := execute(t, "lint", "--rules", filepath.Join(root, "rules.yaml"), filepath.Join(root, "a.ts"))
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestLint_JSON(t *testing.T) {
	root := writeProject(t, map[string]string{
		"rules.yaml": testRules,
		"a.ts":       "let snake_case = 1;\n",
	})

	out, err := execute(t, "lint", "--format", "json", "--rules", filepath.Join(root, "rules.yaml"), filepath.Join(root, "a.ts"))
	if !errors.Is(err, ErrViolations) {
		t.Fatalf("lint error = %v, want %v", err, ErrViolations)
	}
	var diags []report.Diagnostic
	if err := json.Unmarshal([]byte(out), &diags); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(diags) != 1 || diags[0].Name != "snake_case" {
		t.Errorf("diagnostics = %+v, want one for snake_case", diags)
	}
}

func TestLint_RulesFileRelativeToConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		"conf/namekeeper.yaml": "policy_api:\n  rules_file: naming.yaml\n",
		"conf/naming.yaml":     testRules,
		"a.ts":                 "let snake_case = 1;\n",
	})
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := execute(t, "lint", "--config", filepath.Join(root, "conf", "namekeeper.yaml"), "a.ts")
	if !errors.Is(err, ErrViolations) {
		t.Fatalf("lint error = %v, want %v", err, ErrViolations)
	}
	if !strings.Contains(out, "snake_case") {
		t.Errorf("output missing snake_case violation:\n%s", out)
	}
}

func TestConfigRelative(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	configFile = filepath.Join("etc", "nk", "config.yaml")
	abs := filepath.Join(string(filepath.Separator), "srv", "rules.yaml")
	for in, want := range map[string]string{
		"":           "",
		"rules.yaml": filepath.Join("etc", "nk", "rules.yaml"),
		abs:          abs,
	} {
		if got := configRelative(in); got != want {
			t.Errorf("configRelative(%q) = %q, want %q", in, got, want)
		}
	}

	configFile = ""
	if got := configRelative("rules.yaml"); got != "rules.yaml" {
		t.Errorf("configRelative without config = %q, want rules.yaml", got)
	}
}

func TestLint_BadFlags(t *testing.T) {
	root := writeProject(t, map[string]string{"rules.yaml": testRules})

	if _, err := execute(t, "lint", "--format", "xml", "--rules", filepath.Join(root, "rules.yaml")); err == nil {
		t.Error("lint --format xml succeeded, want error")
	}
	if _, err := execute(t, "lint", "--rules", filepath.Join(root, "missing.yaml")); err == nil {
		t.Error("lint with missing rule file succeeded, want error")
	}
}

func TestRecordedRuns(t *testing.T) {
	root := writeProject(t, map[string]string{
		"rules.yaml": testRules,
		"a.ts":       "const BadName = 1;\n",
	})
	dbArg := "--db-url=sqlite://" + filepath.Join(root, "history.db")

	if _, err := execute(t, "lint", dbArg, "--rules", filepath.Join(root, "rules.yaml"), filepath.Join(root, "a.ts")); err == nil || errors.Is(err, ErrViolations) {
		t.Fatalf("lint before migrate error = %v, want migration error", err)
	}

	out, err := execute(t, "migrate", "up", dbArg)
	if err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if !strings.Contains(out, "applied 001_initial_schema.sql") {
		t.Errorf("migrate up output = %q", out)
	}

	out, err = execute(t, "migrate", "status", dbArg)
	if err != nil {
		t.Fatalf("migrate status failed: %v", err)
	}
	if strings.Contains(out, "pending") {
		t.Errorf("migrate status reports pending migrations:\n%s", out)
	}

	if _, err := execute(t, "lint", dbArg, "--rules", filepath.Join(root, "rules.yaml"), filepath.Join(root, "a.ts")); !errors.Is(err, ErrViolations) {
		t.Fatalf("lint error = %v, want %v", err, ErrViolations)
	}

	out, err = execute(t, "runs", "list", dbArg)
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("runs list printed %d lines, want header plus one run:\n%s", len(lines), out)
	}
	fields := strings.Fields(lines[1])
	if fields[1] != "cli" || fields[len(fields)-1] != "1" {
		t.Errorf("run row = %q, want client cli with 1 violation", lines[1])
	}

	out, err = execute(t, "runs", "show", fields[0], dbArg)
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	if !strings.Contains(out, "BadName") {
		t.Errorf("runs show output missing violation:\n%s", out)
	}

	if _, err := execute(t, "runs", "show", "not-a-uuid", dbArg); err == nil {
		t.Error("runs show with bad id succeeded, want error")
	}
}

func TestAPIKeys(t *testing.T) {
	t.Setenv("NK_HMAC_SECRET", "0123456789abcdef0123456789abcdef:"+strings.Repeat("A", 44))
	root := t.TempDir()
	dbArg := "--db-url=sqlite://" + filepath.Join(root, "keys.db")

	if _, err := execute(t, "migrate", "up", dbArg); err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}

	out, err := execute(t, "apikey", "create", "--name", "ci", dbArg)
	if err != nil {
		t.Fatalf("apikey create failed: %v", err)
	}
	if !strings.Contains(out, "nk-v1-0123456789abcdef0123456789abcdef-") {
		t.Errorf("apikey create output = %q, want a key for the configured secret", out)
	}
	var id string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "api key id: "); ok {
			id = rest
		}
	}
	if id == "" {
		t.Fatalf("no key id in output:\n%s", out)
	}

	if _, err := execute(t, "apikey", "create", "--name", "ci", dbArg); err == nil {
		t.Error("duplicate key name accepted, want error")
	}

	if _, err := execute(t, "apikey", "revoke", id, dbArg); err != nil {
		t.Fatalf("apikey revoke failed: %v", err)
	}
	if _, err := execute(t, "apikey", "revoke", id, dbArg); err == nil {
		t.Error("second revoke succeeded, want error")
	}

	out, err = execute(t, "apikey", "list", dbArg)
	if err != nil {
		t.Fatalf("apikey list failed: %v", err)
	}
	if !strings.Contains(out, id) || strings.Count(out, "\n") != 2 {
		t.Errorf("apikey list output:\n%s", out)
	}
}

func TestNewLogger(t *testing.T) {
	for _, tc := range []struct {
		level, format string
		ok            bool
	}{
		{"info", "text", true},
		{"debug", "json", true},
		{"WARN", "JSON", true},
		{"loud", "text", false},
		{"info", "xml", false},
	} {
		_, err := newLogger(tc.level, tc.format)
		if (err == nil) != tc.ok {
			t.Errorf("newLogger(%q, %q) error = %v, want ok=%v", tc.level, tc.format, err, tc.ok)
		}
	}
}
