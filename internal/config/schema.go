package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity kinds declared by the built-in schema.
const (
	KindCharacter    = "character"
	KindPlotThread   = "plot_thread"
	KindWorldElement = "world_element"
	KindTimeline     = "timeline"
)

// Property types understood by the validators.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBool   = "bool"
	TypeEnum   = "enum"
	TypeList   = "list"
	TypeMap    = "map"
)

var knownTypes = []string{TypeString, TypeInt, TypeBool, TypeEnum, TypeList, TypeMap}

//go:embed entity_schema.yaml
var builtinSchema []byte

type Schema struct {
	Version     int          `yaml:"version"`
	EntityTypes []EntityType `yaml:"entity_types"`

	entityIndex map[string]*EntityType
}

type EntityType struct {
	Name       string     `yaml:"name"`
	Key        string     `yaml:"key"`
	Properties []Property `yaml:"properties"`

	propIndex map[string]*Property
}

type Property struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Values   []string `yaml:"values"`
	Default  any      `yaml:"default"`
	Required bool     `yaml:"required"`
}

// DefaultSchema parses the schema compiled into the binary.
func DefaultSchema() (*Schema, error) {
	schema, err := parseSchema(builtinSchema)
	if err != nil {
		return nil, fmt.Errorf("loading built-in schema: %w", err)
	}
	return schema, nil
}

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	schema, err := parseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return schema, nil
}

func parseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, err
	}

	if err := validateSchema(&schema); err != nil {
		return nil, err
	}

	schema.entityIndex = make(map[string]*EntityType)
	for i := range schema.EntityTypes {
		entity := &schema.EntityTypes[i]
		entity.propIndex = make(map[string]*Property)
		for j := range entity.Properties {
			prop := &entity.Properties[j]
			entity.propIndex[strings.ToLower(prop.Name)] = prop
		}
		schema.entityIndex[strings.ToLower(entity.Name)] = entity
	}

	return &schema, nil
}

func validateSchema(s *Schema) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.EntityTypes) == 0 {
		return fmt.Errorf("at least one entity type is required")
	}

	entityNames := make(map[string]struct{})
	for i, entity := range s.EntityTypes {
		if strings.TrimSpace(entity.Name) == "" {
			return fmt.Errorf("entity type %d name is required", i)
		}
		key := strings.ToLower(entity.Name)
		if _, exists := entityNames[key]; exists {
			return fmt.Errorf("duplicate entity type name: %s", entity.Name)
		}
		entityNames[key] = struct{}{}

		propNames := make(map[string]struct{})
		for _, prop := range entity.Properties {
			name := strings.ToLower(strings.TrimSpace(prop.Name))
			if name == "" {
				return fmt.Errorf("entity type %s has property with empty name", entity.Name)
			}
			if _, exists := propNames[name]; exists {
				return fmt.Errorf("entity type %s has duplicate property: %s", entity.Name, prop.Name)
			}
			propNames[name] = struct{}{}
			if !slices.Contains(knownTypes, strings.ToLower(prop.Type)) {
				return fmt.Errorf("entity type %s property %s has unknown type %q", entity.Name, prop.Name, prop.Type)
			}
			if strings.EqualFold(prop.Type, TypeEnum) && len(prop.Values) == 0 {
				return fmt.Errorf("entity type %s property %s enum has no values", entity.Name, prop.Name)
			}
		}
		if entity.Key != "" {
			if _, ok := propNames[strings.ToLower(entity.Key)]; !ok {
				return fmt.Errorf("entity type %s key %s is not a declared property", entity.Name, entity.Key)
			}
		}
	}

	return nil
}

func (s *Schema) EntityTypeByName(name string) (*EntityType, bool) {
	if s == nil {
		return nil, false
	}
	entity, ok := s.entityIndex[strings.ToLower(name)]
	return entity, ok
}

func (s *Schema) IsValidEntityType(name string) bool {
	_, ok := s.EntityTypeByName(name)
	return ok
}

// Property looks up a declared property by name, case-insensitively.
func (e *EntityType) Property(name string) (*Property, bool) {
	if e == nil {
		return nil, false
	}
	prop, ok := e.propIndex[strings.ToLower(name)]
	return prop, ok
}

// RequiredFields lists the mandatory property names in declaration order.
func (e *EntityType) RequiredFields() []string {
	var fields []string
	for _, prop := range e.Properties {
		if prop.Required {
			fields = append(fields, prop.Name)
		}
	}
	return fields
}

// Defaults returns a fresh default table for the entity kind. Container
// defaults are new values on every call.
func (s *Schema) Defaults(kind string) map[string]any {
	out := map[string]any{}
	entity, ok := s.EntityTypeByName(kind)
	if !ok {
		return out
	}
	for _, prop := range entity.Properties {
		if prop.Default == nil {
			continue
		}
		out[prop.Name] = copyDefault(prop.Default)
	}
	return out
}

func copyDefault(v any) any {
	switch d := v.(type) {
	case []any:
		return slices.Clone(d)
	case map[string]any:
		out := maps.Clone(d)
		if out == nil {
			out = map[string]any{}
		}
		return out
	default:
		return v
	}
}

// Allows reports whether value is a declared enum value. Non-enum
// properties allow everything.
func (p *Property) Allows(value string) bool {
	if !strings.EqualFold(p.Type, TypeEnum) {
		return true
	}
	for _, allowed := range p.Values {
		if allowed == value {
			return true
		}
	}
	return false
}
