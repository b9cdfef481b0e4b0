package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// testEnv isolates one test's configuration and data directories.
type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{"CONFIG_DIR", "DATA_DIR", "DB_FILE", "CATALOG_FILE", "LOG_LEVEL", "LISTEN"} {
		t.Setenv(envPrefix+"_"+key, "")
	}
	dir := t.TempDir()
	return &testEnv{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command in-process with the env's directories.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (e *testEnv) mustRun(t *testing.T, args ...string) result {
	t.Helper()
	r := e.run(t, "", args...)
	require.NoError(t, r.err, "stderr: %s", r.stderr)
	return r
}

func (e *testEnv) listEntries(t *testing.T) []types.BikeEntry {
	t.Helper()
	r := e.mustRun(t, "list", "--json")
	var rows []types.BikeEntry
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rows))
	return rows
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun(t, "version")

	assert.Contains(t, r.stdout, "bikeledger v"+Version)
	assert.Contains(t, r.stdout, modulePath)
	assert.NoDirExists(t, env.configDir, "version does not load configuration")
}

func TestInitCreatesConfigAndDatabase(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun(t, "init")

	assert.Contains(t, r.stdout, "bikeledger initialized")
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(env.dataDir, types.DefaultDBFile))

	// A second init keeps the existing config and data.
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("log_level: error\n"), 0o644))
	env.mustRun(t, "init")
	got, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "log_level: error\n", string(got))
}

func TestModels(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun(t, "models")
	assert.Contains(t, r.stdout, "MODEL")
	assert.Contains(t, r.stdout, "Interceptor 650")

	r = env.mustRun(t, "models", "--json")
	var entries []types.CatalogEntry
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &entries))
	require.Len(t, entries, 19)
	assert.Equal(t, types.CatalogEntry{Model: "Classic 350", Brand: "Royal Enfield", Price: 190000, BuiltYear: 2009}, entries[0])
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  form.Fields
	}{
		{
			name:  "catalog model",
			model: "R15",
			want:  form.Fields{Model: "R15", Brand: "Yamaha", BuiltYear: "2008", Price: "180000"},
		},
		{
			name:  "model with spaces",
			model: "Pulsar NS400Z",
			want:  form.Fields{Model: "Pulsar NS400Z", Brand: "Bajaj", BuiltYear: "2022", Price: "192328"},
		},
		{
			name:  "unknown model",
			model: "Scout",
			want:  form.Fields{Model: "Scout"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.mustRun(t, "select", tt.model, "--json")

			var got form.Fields
			require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectTextOutput(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun(t, "select", "Duke 390")

	assert.Contains(t, r.stdout, "Brand:      KTM")
	assert.Contains(t, r.stdout, "Built Year: 2013")
	assert.Contains(t, r.stdout, "Price:      295000")
}

func TestAddAndList(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun(t, "add", "R15", "--year", "2023")
	assert.Contains(t, r.stdout, "[info] Success: Bike added successfully.")
	assert.Contains(t, r.stdout, "R15")
	assert.Contains(t, r.stdout, "Total: 1 bike(s)")

	env.mustRun(t, "add", "Classic 350", "--year", "2021", "--price", "185000.50")

	rows := env.listEntries(t)
	require.Len(t, rows, 2)
	assert.Equal(t, types.BikeEntry{ID: rows[0].ID, Model: "R15", Brand: "Yamaha", BuiltYear: 2008, Year: 2023, Price: 180000}, rows[0])
	assert.Equal(t, "Classic 350", rows[1].Model)
	assert.Equal(t, 185000.5, rows[1].Price)
	assert.Greater(t, rows[1].ID, rows[0].ID)

	r = env.mustRun(t, "list")
	assert.Contains(t, r.stdout, "ID  MODEL")
	assert.Contains(t, r.stdout, "185000.5")
	assert.Contains(t, r.stdout, "Total: 2 bike(s)")
}

func TestAddModelOutsideCatalog(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "add", "Scout", "--brand", "Indian", "--built-year", "2022", "--year", "2024", "--price", "1500000")

	rows := env.listEntries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Indian", rows[0].Brand)
	assert.Equal(t, 2022, rows[0].BuiltYear)
}

func TestAddJSON(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun(t, "add", "R15", "--year", "2023", "--json")

	assert.NotContains(t, r.stdout, "[info]", "JSON output carries the notice itself")

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &out))
	notice := out["notice"].(map[string]any)
	assert.Equal(t, "info", notice["level"])
	assert.Equal(t, "Bike added successfully.", notice["message"])

	fields := out["form"].(map[string]any)
	assert.Equal(t, "", fields["year"])
	assert.Equal(t, "180000", fields["price"])
}

func TestAddRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "non-numeric year",
			args:    []string{"add", "R15", "--year", "abc"},
			message: "Years must be numbers",
		},
		{
			name:    "non-numeric price",
			args:    []string{"add", "R15", "--year", "2023", "--price", "cheap"},
			message: "Price must be a number",
		},
		{
			name:    "unknown model without details",
			args:    []string{"add", "Scout", "--year", "2023"},
			message: "Please fill all fields",
		},
		{
			name:    "blank year",
			args:    []string{"add", "R15", "--year", "   "},
			message: "Please fill all fields",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.run(t, "", tt.args...)

			require.Error(t, r.err)
			assert.ErrorIs(t, r.err, types.ErrInvalidInput)
			assert.Equal(t, exitUserError, exitCode(r.err))
			assert.Contains(t, r.stderr, "[warning] Input Error: "+tt.message)

			var shown *reportedError
			assert.True(t, errors.As(r.err, &shown), "the notification already reported the error")

			assert.Empty(t, env.listEntries(t))
		})
	}
}

func TestAddRequiresYearFlag(t *testing.T) {
	env := newTestEnv(t)
	r := env.run(t, "", "add", "R15")

	require.Error(t, r.err)
	assert.Equal(t, exitUserError, exitCode(r.err))
}

func TestEntriesPersistAcrossRuns(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "R15", "--year", "2023")
	env.mustRun(t, "add", "FZ", "--year", "2019")

	assert.Len(t, env.listEntries(t), 2)
}

func TestResetFlagDiscardsEntries(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "R15", "--year", "2023")

	r := env.mustRun(t, "--reset", "list", "--json")
	var rows []types.BikeEntry
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rows))
	assert.Empty(t, rows)
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun(t, "list")
	assert.Contains(t, r.stdout, "No bikes recorded.")

	r = env.mustRun(t, "list", "--json")
	assert.Equal(t, "[]\n", r.stdout)
}

func TestFormSession(t *testing.T) {
	env := newTestEnv(t)
	input := strings.Join([]string{
		"select Duke 390",
		"year 2021",
		"price 280000",
		"add",
		"show",
		"quit",
		"year 1999",
	}, "\n")

	r := env.run(t, input, "form")
	require.NoError(t, r.err, r.stderr)

	assert.Contains(t, r.stdout, "Model:      Classic 350", "the first catalog model starts selected")
	assert.Contains(t, r.stdout, "[info] Success: Bike added successfully.")
	assert.Contains(t, r.stdout, "Total: 1 bike(s)")

	// After the add the year is cleared and the price is the catalog price.
	idx := strings.LastIndex(r.stdout, "Model:      Duke 390")
	require.GreaterOrEqual(t, idx, 0)
	shown := r.stdout[idx:]
	assert.Contains(t, shown, "Your Year:  \n")
	assert.Contains(t, shown, "Price:      295000")

	rows := env.listEntries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, 2021, rows[0].Year)
	assert.Equal(t, float64(280000), rows[0].Price)
}

func TestFormSessionKeepsInputOnRejection(t *testing.T) {
	env := newTestEnv(t)
	input := "select R15\nyear twenty\nadd\nshow\nlist\nbogus\n"

	r := env.run(t, input, "form")
	require.NoError(t, r.err, "the session survives rejected input and ends at EOF")

	assert.Contains(t, r.stderr, "[warning] Input Error: Years must be numbers")
	assert.Contains(t, r.stdout, "Your Year:  twenty")
	assert.Contains(t, r.stdout, "No bikes recorded.")
	assert.Contains(t, r.stdout, `unknown command "bogus"`)
}

func TestFormSessionModelOutsideCatalog(t *testing.T) {
	env := newTestEnv(t)
	input := "select Scout\nbrand Indian\nbuilt 2022\nyear 2024\nprice 1500000\nadd\nexit\n"

	r := env.run(t, input, "form")
	require.NoError(t, r.err, r.stderr)

	rows := env.listEntries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, types.BikeEntry{ID: rows[0].ID, Model: "Scout", Brand: "Indian", BuiltYear: 2022, Year: 2024, Price: 1500000}, rows[0])
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "R15", "--year", "2023")
	env.mustRun(t, "add", "Himalayan", "--year", "2020")

	path := filepath.Join(t.TempDir(), "bikes.jsonl")
	r := env.mustRun(t, "export", path)
	assert.Contains(t, r.stdout, "Exported 2 bike(s)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first types.BikeEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "R15", first.Model)
}

func TestExportToMissingDirectory(t *testing.T) {
	env := newTestEnv(t)
	r := env.run(t, "", "export", filepath.Join(t.TempDir(), "missing", "bikes.jsonl"))

	require.Error(t, r.err)
	assert.Equal(t, exitSysError, exitCode(r.err))
}

func TestConfigFileSetsDatabaseName(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("db_file: garage.db\n"), 0o644))

	env.mustRun(t, "init")
	assert.FileExists(t, filepath.Join(env.dataDir, "garage.db"))
	assert.NoFileExists(t, filepath.Join(env.dataDir, types.DefaultDBFile))
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("db_file: garage.db\n"), 0o644))
	t.Setenv("BIKELEDGER_DB_FILE", "env.db")

	env.mustRun(t, "init")
	assert.FileExists(t, filepath.Join(env.dataDir, "env.db"))
}

func TestCatalogFileReplacesBuiltinCatalog(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "garage.yaml"), []byte(`models:
  - {model: "Scout", brand: "Indian", price: 1500000, built_year: 2022}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("catalog_file: garage.yaml\n"), 0o644))

	r := env.mustRun(t, "models", "--json")
	var entries []types.CatalogEntry
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &entries))
	assert.Equal(t, []types.CatalogEntry{{Model: "Scout", Brand: "Indian", Price: 1500000, BuiltYear: 2022}}, entries)

	env.mustRun(t, "add", "Scout", "--year", "2024")
	rows := env.listEntries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Indian", rows[0].Brand)
}

func TestConfigErrorsAreSystemErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
	}{
		{name: "unknown log level flag", args: []string{"--log-level", "loud", "list"}},
		{name: "unknown log level in file", config: "log_level: chatty\n", args: []string{"list"}},
		{name: "db_file with directory", config: "db_file: sub/bikes.db\n", args: []string{"list"}},
		{name: "missing catalog file", config: "catalog_file: nowhere.yaml\n", args: []string{"models"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.config != "" {
				require.NoError(t, os.MkdirAll(env.configDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte(tt.config), 0o644))
			}
			r := env.run(t, "", tt.args...)

			require.Error(t, r.err)
			assert.ErrorIs(t, r.err, errConfig)
			assert.Equal(t, exitSysError, exitCode(r.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "validation", err: &types.ValidationError{Field: "year", Reason: types.ReasonNonNumericYear}, want: exitUserError},
		{name: "persistence", err: &types.PersistenceError{Op: "insert", Err: errors.New("disk full")}, want: exitSysError},
		{name: "reported persistence", err: reported(&types.PersistenceError{Op: "list", Err: errors.New("locked")}), want: exitSysError},
		{name: "closed store", err: &types.PersistenceError{Op: "insert", Err: types.ErrStoreClosed}, want: exitSysError},
		{name: "config", err: fmt.Errorf("%w: bad", errConfig), want: exitSysError},
		{name: "other", err: errors.New("accepts 1 arg(s)"), want: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestReportedNil(t *testing.T) {
	assert.NoError(t, reported(nil))
}

func TestServeHTTPStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := serveHTTP(ctx, "127.0.0.1:0", http.NotFoundHandler(), zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Serving on http://127.0.0.1:")
}

func TestServeHTTPListenError(t *testing.T) {
	err := serveHTTP(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), zap.NewNop(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
