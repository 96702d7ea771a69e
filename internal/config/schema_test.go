package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSchema(t *testing.T) {
	t.Run("valid schema loads", func(t *testing.T) {
		schema, err := LoadSchema(filepath.Join("testdata", "valid_schema.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !schema.IsValidEntityType("character") {
			t.Fatalf("expected character entity type to be valid")
		}
	})

	t.Run("missing entity types", func(t *testing.T) {
		path := writeTempSchema(t, "version: 1\nentity_types: []\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate entity type names", func(t *testing.T) {
		path := writeTempSchema(t, "version: 1\nentity_types:\n  - name: character\n  - name: Character\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("enum property without values", func(t *testing.T) {
		path := writeTempSchema(t, "version: 1\nentity_types:\n  - name: plot_thread\n    properties:\n      - { name: status, type: enum }\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown property type", func(t *testing.T) {
		path := writeTempSchema(t, "version: 1\nentity_types:\n  - name: character\n    properties:\n      - { name: name, type: text }\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("key not declared", func(t *testing.T) {
		path := writeTempSchema(t, "version: 1\nentity_types:\n  - name: character\n    key: name\n    properties:\n      - { name: location, type: string }\n")
		if _, err := LoadSchema(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDefaultSchema(t *testing.T) {
	schema, err := DefaultSchema()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}

	for _, kind := range []string{KindCharacter, KindPlotThread, KindWorldElement, KindTimeline} {
		if !schema.IsValidEntityType(kind) {
			t.Fatalf("expected %s in built-in schema", kind)
		}
	}

	t.Run("mandatory fields", func(t *testing.T) {
		entity, _ := schema.EntityTypeByName(KindPlotThread)
		want := []string{"thread_id", "name", "description", "status", "introduced_book"}
		got := entity.RequiredFields()
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("defaults are fresh containers", func(t *testing.T) {
		first := schema.Defaults(KindCharacter)
		abilities, ok := first["abilities"].([]any)
		if !ok {
			t.Fatalf("expected list default, got %T", first["abilities"])
		}
		first["abilities"] = append(abilities, "fire")
		rels, ok := first["relationships"].(map[string]any)
		if !ok {
			t.Fatalf("expected map default, got %T", first["relationships"])
		}
		rels["Bren"] = "ally"

		second := schema.Defaults(KindCharacter)
		if len(second["abilities"].([]any)) != 0 || len(second["relationships"].(map[string]any)) != 0 {
			t.Fatalf("defaults leaked between calls: %v", second)
		}
		if second["character_arc_stage"] != "beginning" {
			t.Fatalf("expected beginning arc stage default, got %v", second["character_arc_stage"])
		}
	})

	t.Run("enum values", func(t *testing.T) {
		entity, _ := schema.EntityTypeByName("PLOT_THREAD")
		prop, ok := entity.Property("importance_level")
		if !ok {
			t.Fatalf("expected importance_level property")
		}
		if !prop.Allows("subplot") || prop.Allows("epic") {
			t.Fatalf("unexpected enum check for %v", prop.Values)
		}
		if schema.Defaults(KindPlotThread)["importance_level"] != "minor" {
			t.Fatalf("expected minor importance default")
		}
	})

	t.Run("unknown kind has no defaults", func(t *testing.T) {
		if len(schema.Defaults("dragon")) != 0 {
			t.Fatalf("expected empty defaults")
		}
	})
}

func writeTempSchema(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp schema: %v", err)
	}
	return path
}
