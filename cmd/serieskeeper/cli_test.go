package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const bookOneJSON = `{
  "title": "The Spark",
  "book_number": 1,
  "characters": [
    {"name": "Aria", "status": "alive", "location": "Keep", "relationships": {"Bren": "brother"}, "knowledge": ["the ember is alive"]}
  ],
  "outline": {"subplots": ["Bren hides a letter"]}
}`

func TestCLI_InitIngestAndRead(t *testing.T) {
	root := t.TempDir()
	cfg := filepath.Join(root, "serieskeeper.yaml")
	stateDir := filepath.Join(root, "series")
	dbPath := filepath.Join(root, "mirror.db")

	_, err := execute(t, "--config", cfg, "init", "--name", "Ember", "--dir", stateDir, "--total-books", "3", "--dsn", "sqlite://"+dbPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(stateDir, "series_state.json"))

	_, err = execute(t, "--config", cfg, "init", "--name", "Ember")
	assert.Error(t, err, "init must refuse an existing config")

	book := filepath.Join(root, "book1.json")
	require.NoError(t, os.WriteFile(book, []byte(bookOneJSON), 0o600))

	out, err := execute(t, "--config", cfg, "ingest", book)
	require.NoError(t, err)
	assert.Contains(t, out, "Book 1 ingested.")
	assert.Contains(t, out, "Characters updated: 1")
	assert.Contains(t, out, "Plot threads added: 1")

	out, err = execute(t, "--config", cfg, "summary", "--book", "2", "--json")
	require.NoError(t, err)
	var summary struct {
		SeriesTitle      string `json:"series_title"`
		ForBookNumber    int    `json:"for_book_number"`
		ActiveCharacters []struct {
			Name string `json:"name"`
		} `json:"active_characters"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Ember", summary.SeriesTitle)
	assert.Equal(t, 2, summary.ForBookNumber)
	require.Len(t, summary.ActiveCharacters, 1)
	assert.Equal(t, "Aria", summary.ActiveCharacters[0].Name)

	out, err = execute(t, "--config", cfg, "context", "--book", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Established Characters:")
	assert.Contains(t, out, "Aria")

	out, err = execute(t, "--config", cfg, "notes", "Aria")
	require.NoError(t, err)
	assert.Contains(t, out, "Bren (brother)")

	_, err = execute(t, "--config", cfg, "notes", "Nobody")
	assert.Error(t, err)

	out, err = execute(t, "--config", cfg, "query", "threads", "--status", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "book_1_subplot_0")

	_, err = execute(t, "--config", cfg, "query", "threads", "--status", "finished")
	assert.Error(t, err)

	out, err = execute(t, "--config", cfg, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "no issues found")

	_, err = execute(t, "--config", cfg, "start-book", "2")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfg, "start-book", "1")
	assert.Error(t, err, "books must not go backwards")

	out, err = execute(t, "--config", cfg, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "1 characters")

	out, err = execute(t, "--config", cfg, "query", "sql", "SELECT name FROM characters WHERE series = ?", "--param", "1=Ember")
	require.NoError(t, err)
	assert.Contains(t, out, `"Aria"`)

	out, err = execute(t, "--config", cfg, "query", "sql", "SELECT name FROM characters WHERE name = ?", "--param", "1=Nobody")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = execute(t, "--config", cfg, "query", "sql", "SELECT 1", "--param", "novalue")
	assert.Error(t, err)
}

func TestCLI_IngestNeedsBookNumber(t *testing.T) {
	root := t.TempDir()
	cfg := filepath.Join(root, "serieskeeper.yaml")
	_, err := execute(t, "--config", cfg, "init", "--name", "Ember", "--dir", filepath.Join(root, "series"))
	require.NoError(t, err)

	book := filepath.Join(root, "untitled.json")
	require.NoError(t, os.WriteFile(book, []byte(`{"characters": []}`), 0o600))

	_, err = execute(t, "--config", cfg, "ingest", book)
	assert.Error(t, err)

	out, err := execute(t, "--config", cfg, "ingest", book, "--book", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Book 1 ingested.")
}
