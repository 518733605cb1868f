package cli

// Test Plan for the CLI:
// - extract reads a local file, writes CSV with vocabulary columns and
//   prints the report
// - extract honors --format/--columns and stores the run with --sqlite
// - extract fails with ErrEmptyResult when no table yields records
// - extract fetches by --page through --endpoint and by --url
// - tables lists every table with its identifier column
// - runs lists, exports and deletes stored runs
// - content prints the main content of a fetched page

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wikimelt"
)

const testPage = `<html><body>
<h2>Transporte</h2>
<table class="wikitable">
<tr><th>País</th><th>Autobús</th><th>Computadora</th></tr>
<tr><td>México</td><td>camión</td><td>computadora</td></tr>
<tr><td>España</td><td>autobús</td><td>ordenador</td></tr>
<tr><td>Artículo de Wikipedia</td><td>—</td><td>—</td></tr>
</table>
<h2>Notas</h2>
<table class="wikitable"><tr><th>N</th></tr><tr><td>1</td></tr></table>
</body></html>`

// execute runs the command tree with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePage(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_LocalFile(t *testing.T) {
	dir := t.TempDir()
	input := writePage(t, dir, testPage)
	output := filepath.Join(dir, "out", "vocab.csv")

	stdout, _, err := execute(t, "extract", "-q", "-i", input, "-o", output)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Tables discovered: 2")
	assert.Contains(t, stdout, "Tables with records: 1")
	assert.Contains(t, stdout, "  México: 2")
	assert.Contains(t, stdout, "Saved csv: "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Country,Concept,LocalTerm,table_index,table_heading", lines[0])
	assert.Equal(t, "México,Autobús,camión,0,Transporte", lines[1])
	assert.Equal(t, "España,Computadora,ordenador,0,Transporte", lines[4])
}

func TestExtract_WarningsAndProgress(t *testing.T) {
	dir := t.TempDir()
	input := writePage(t, dir, testPage)

	stdout, stderr, err := execute(t, "extract", "-i", input, "-o", filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Warnings:")
	assert.Contains(t, stdout, "table 1 (Notas)")
	assert.Contains(t, stderr, "skipping table")
}

func TestExtract_JSONLAndStore(t *testing.T) {
	dir := t.TempDir()
	input := writePage(t, dir, testPage)
	output := filepath.Join(dir, "out.jsonl")
	db := filepath.Join(dir, "runs.db")

	stdout, _, err := execute(t, "extract", "-q", "-i", input, "-o", output,
		"--format", "jsonl", "--columns", "default", "--targets", "España", "--sqlite", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Run: ")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "España", first["Identifier"])
	assert.Equal(t, "Autobús", first["Attribute"])

	stdout, _, err = execute(t, "runs", "--sqlite", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, input)
	assert.Contains(t, stdout, "1/2")
}

func TestExtract_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	input := writePage(t, dir, testPage)
	output := filepath.Join(dir, "out.csv")

	stdout, _, err := execute(t, "extract", "-q", "-i", input, "-o", output, "--targets", "Chile")
	require.ErrorIs(t, err, wikimelt.ErrEmptyResult)
	assert.Contains(t, stdout, "Records: 0")
	assert.NoFileExists(t, output)
}

func TestExtract_InvalidFlags(t *testing.T) {
	input := writePage(t, t.TempDir(), testPage)

	_, _, err := execute(t, "extract", "-q", "-i", input, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")

	_, _, err = execute(t, "extract", "-q", "-i", filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}

func TestExtract_FromPage(t *testing.T) {
	var gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		json.NewEncoder(w).Encode(map[string]any{
			"parse": map[string]any{"title": gotPage, "text": testPage},
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	output := filepath.Join(dir, "out.csv")
	stdout, _, err := execute(t, "extract", "-q", "--endpoint", srv.URL, "--page", "Anexo:Prueba", "-o", output)
	require.NoError(t, err)
	assert.Equal(t, "Anexo:Prueba", gotPage)
	assert.Contains(t, stdout, "Records: 4")
	assert.FileExists(t, output)
}

func TestExtract_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	dir := t.TempDir()
	stdout, _, err := execute(t, "extract", "-q", "--url", srv.URL, "-o", filepath.Join(dir, "out.tsv"), "--format", "tsv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved tsv")
}

func TestExtract_RetrievalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, _, err := execute(t, "extract", "-q", "--url", srv.URL, "-o", filepath.Join(t.TempDir(), "out.csv"))
	var re *wikimelt.RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusGone, re.StatusCode)
}

func TestTables(t *testing.T) {
	input := writePage(t, t.TempDir(), testPage)

	stdout, _, err := execute(t, "tables", "-q", "-i", input)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "IDENTIFIER COLUMN")
	assert.Contains(t, lines[1], "Transporte")
	assert.Contains(t, lines[1], "0 (País)")
	assert.Contains(t, lines[2], "Notas")
	assert.Contains(t, lines[2], " - ")
}

func TestRuns_ExportAndDelete(t *testing.T) {
	dir := t.TempDir()
	input := writePage(t, dir, testPage)
	db := filepath.Join(dir, "runs.db")

	stdout, _, err := execute(t, "extract", "-q", "-i", input, "-o", filepath.Join(dir, "a.csv"), "--sqlite", db)
	require.NoError(t, err)

	var runID string
	for _, line := range strings.Split(stdout, "\n") {
		if id, ok := strings.CutPrefix(line, "Run: "); ok {
			runID = id
		}
	}
	require.NotEmpty(t, runID)

	exported := filepath.Join(dir, "b.json")
	stdout, _, err = execute(t, "runs", "export", runID, "--sqlite", db, "-o", exported, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved 4 records")

	var records []map[string]any
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 4)
	assert.Equal(t, "México", records[0]["Country"])

	_, _, err = execute(t, "runs", "delete", runID, "--sqlite", db)
	require.NoError(t, err)

	_, _, err = execute(t, "runs", "delete", runID, "--sqlite", db)
	require.Error(t, err)
}

func TestRuns_NoDatabase(t *testing.T) {
	_, _, err := execute(t, "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run database")
}

func TestContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><nav>Menú principal</nav>
<div id="mw-content-text"><p>Diferencias de vocabulario.</p>` + testPage + `</div></body></html>`))
	}))
	defer srv.Close()

	stdout, _, err := execute(t, "content", "-q", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Diferencias de vocabulario.")
	assert.Contains(t, stdout, "México")
	assert.NotContains(t, stdout, "Menú principal")
}

func TestContent_RequiresURL(t *testing.T) {
	_, _, err := execute(t, "content")
	require.Error(t, err)
}
