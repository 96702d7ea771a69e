package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"serieskeeper/internal/config"
	apperrors "serieskeeper/internal/errors"
)

func TestEntity_EnumViolation(t *testing.T) {
	schema := defaultSchema(t)
	report := Entity(schema, config.KindPlotThread, map[string]any{
		"thread_id":       "t1",
		"name":            "Quest",
		"description":     "Find it",
		"status":          "ghost",
		"introduced_book": float64(1),
	})
	if !hasIssueCode(report.Issues, codeEnumInvalid) {
		t.Fatalf("expected enum violation issue, got %+v", report.Issues)
	}
	if report.Issues[0].Entity != "t1" {
		t.Fatalf("expected issue to name the thread, got %+v", report.Issues[0])
	}
}

func TestEntity_MissingRequiredProperty(t *testing.T) {
	schema := defaultSchema(t)
	report := Entity(schema, config.KindCharacter, map[string]any{
		"name":           "Aria",
		"current_status": "alive",
		"location":       "  ",
	})
	if !hasIssueCode(report.Issues, codeMissingRequired) {
		t.Fatalf("expected missing required property issue")
	}
	if !errors.Is(report.Err(), apperrors.ErrValidationFailure) {
		t.Fatalf("expected validation failure, got %v", report.Err())
	}
}

func TestEntity_TypesAndBookNumbers(t *testing.T) {
	schema := defaultSchema(t)
	tests := []struct {
		name   string
		record map[string]any
		code   string
	}{
		{
			name:   "non-integral book",
			record: map[string]any{"name": "A", "current_status": "alive", "location": "X", "last_appearance_book": 1.5},
			code:   codeWrongType,
		},
		{
			name:   "negative book",
			record: map[string]any{"name": "A", "current_status": "alive", "location": "X", "last_appearance_book": float64(-2)},
			code:   codeNegativeBook,
		},
		{
			name:   "abilities not a list",
			record: map[string]any{"name": "A", "current_status": "alive", "location": "X", "abilities": "fire"},
			code:   codeWrongType,
		},
		{
			name:   "relationships not a mapping",
			record: map[string]any{"name": "A", "current_status": "alive", "location": "X", "relationships": []any{"x"}},
			code:   codeWrongType,
		},
		{
			name:   "name not a string",
			record: map[string]any{"name": float64(3), "current_status": "alive", "location": "X"},
			code:   codeWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Entity(schema, config.KindCharacter, tt.record)
			if !hasIssueCode(report.Issues, tt.code) {
				t.Fatalf("expected %s, got %+v", tt.code, report.Issues)
			}
		})
	}
}

func TestEntity_UnknownKind(t *testing.T) {
	report := Entity(defaultSchema(t), "dragon", map[string]any{})
	if !hasIssueCode(report.Issues, codeUnknownKind) {
		t.Fatalf("expected unknown kind issue")
	}
}

func TestEntity_CustomSchema(t *testing.T) {
	schema := loadSchema(t, `version: 1
entity_types:
  - name: character
    key: name
    properties:
      - { name: name, type: string, required: true }
      - { name: mood, type: enum, values: [calm, angry] }
      - { name: mortal, type: bool }
`)
	report := Entity(schema, config.KindCharacter, map[string]any{"name": "Aria", "mood": "sad", "mortal": "yes"})
	if !hasIssueCode(report.Issues, codeEnumInvalid) || !hasIssueCode(report.Issues, codeWrongType) {
		t.Fatalf("expected enum and type issues, got %+v", report.Issues)
	}
}

func TestDocument(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"series_title":        "Ember",
			"current_book_number": float64(2),
			"total_books_planned": float64(5),
		}
	}

	t.Run("minimal document", func(t *testing.T) {
		if err := Document(valid()).Err(); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing title", func(m map[string]any) { delete(m, "series_title") }},
		{"title not string", func(m map[string]any) { m["series_title"] = float64(1) }},
		{"negative book", func(m map[string]any) { m["current_book_number"] = float64(-1) }},
		{"book not integer", func(m map[string]any) { m["total_books_planned"] = "five" }},
		{"characters not list", func(m map[string]any) { m["characters"] = map[string]any{} }},
		{"timeline not mapping", func(m map[string]any) { m["timeline"] = []any{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			if !errors.Is(Document(doc).Err(), apperrors.ErrValidationFailure) {
				t.Fatalf("expected validation failure")
			}
		})
	}

	t.Run("nil document", func(t *testing.T) {
		if Document(nil).Err() == nil {
			t.Fatalf("expected error for nil document")
		}
	})
}

func TestState_ChecksEntities(t *testing.T) {
	schema := defaultSchema(t)
	doc := map[string]any{
		"series_title":        "Ember",
		"current_book_number": float64(1),
		"total_books_planned": float64(3),
		"characters": []any{
			map[string]any{"name": "Aria", "current_status": "alive", "location": "Keep"},
			map[string]any{"name": "Aria", "current_status": "alive", "location": "Keep"},
			"not a record",
		},
		"timeline": map[string]any{"events": []any{}},
	}

	report := State(schema, doc)
	if !hasIssueCode(report.Issues, codeDuplicateKey) {
		t.Fatalf("expected duplicate key warning")
	}
	if !hasIssueCode(report.Issues, codeWrongShape) {
		t.Fatalf("expected shape error for non-mapping entry")
	}
}

func hasIssueCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func defaultSchema(t *testing.T) *config.Schema {
	t.Helper()
	schema, err := config.DefaultSchema()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}
	return schema
}

func loadSchema(t *testing.T, contents string) *config.Schema {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	schema, err := config.LoadSchema(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return schema
}
