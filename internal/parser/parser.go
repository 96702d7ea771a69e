// Package parser reads book-data files handed over by the generation step:
// JSON, YAML, or markdown with YAML frontmatter.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BookData is one parsed book-data file.
type BookData struct {
	Fields     map[string]any
	Title      string
	BookNumber int
	// HasBookNumber is false when the file does not say which book it describes.
	HasBookNumber bool
	Tags          []string
	Body          string
	SourceFile    string
}

var (
	ErrNoFrontmatter     = errors.New("no frontmatter found")
	ErrInvalidYAML       = errors.New("invalid YAML in book data")
	ErrInvalidJSON       = errors.New("invalid JSON in book data")
	ErrUnsupportedFormat = errors.New("unsupported book data format")
	ErrInvalidBookNumber = errors.New("book_number must be a non-negative integer")
)

func ParseFile(path string) (*BookData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var book *BookData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		book, err = ParseJSON(data)
	case ".yaml", ".yml":
		book, err = ParseYAML(data)
	case ".md", ".markdown":
		book, err = ParseMarkdown(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	book.SourceFile = path
	return book, nil
}

func ParseJSON(content []byte) (*BookData, error) {
	var fields map[string]any
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, ErrInvalidJSON
	}
	return newBookData(fields, "")
}

func ParseYAML(content []byte) (*BookData, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(content, &fields); err != nil {
		return nil, ErrInvalidYAML
	}
	return newBookData(fields, "")
}

// ParseMarkdown reads YAML frontmatter between "---" lines. The body
// becomes the summary when the frontmatter has none.
func ParseMarkdown(content []byte) (*BookData, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := strings.TrimSpace(string(rest[end+len("---\n"):]))

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}
	if _, ok := frontmatter["summary"]; !ok && body != "" {
		frontmatter["summary"] = body
	}
	return newBookData(frontmatter, body)
}

func newBookData(fields map[string]any, body string) (*BookData, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	book := &BookData{Fields: fields, Body: body}

	if title, ok := fields["title"].(string); ok {
		book.Title = strings.TrimSpace(title)
	}

	if raw, ok := fields["book_number"]; ok && raw != nil {
		n, ok := bookNumber(raw)
		if !ok || n < 0 {
			return nil, ErrInvalidBookNumber
		}
		book.BookNumber = n
		book.HasBookNumber = true
	}

	tags, err := parseTags(fields["tags"])
	if err != nil {
		return nil, err
	}
	book.Tags = tags
	return book, nil
}

func bookNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func parseTags(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			tags = append(tags, s)
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("tags must be string or list of strings")
	}
}
