package validate

import (
	"fmt"
	"strings"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
	apperrors "serieskeeper/internal/errors"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeEnumInvalid     = "enum_value_invalid"
	codeMissingRequired = "missing_required_property"
	codeWrongType       = "wrong_property_type"
	codeNegativeBook    = "negative_book_number"
	codeWrongShape      = "wrong_document_shape"
	codeDuplicateKey    = "duplicate_key"
	codeUnknownKind     = "unknown_entity_kind"
	codeUnreadable      = "unreadable_document"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Kind     string
	Entity   string
	Field    string
}

type Report struct {
	Issues []Issue
}

func (r *Report) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

func (r *Report) merge(other *Report) {
	if other != nil {
		r.Issues = append(r.Issues, other.Issues...)
	}
}

// Unreadable reports a document that could not be parsed at all.
func Unreadable(err error) *Report {
	return &Report{Issues: []Issue{{
		Severity: SeverityError,
		Code:     codeUnreadable,
		Message:  err.Error(),
	}}}
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err folds error-level issues into a single ValidationFailure, or returns
// nil when there are none.
func (r *Report) Err() error {
	var messages []string
	for _, issue := range r.Issues {
		if issue.Severity != SeverityError {
			continue
		}
		msg := issue.Message
		if issue.Entity != "" {
			msg = fmt.Sprintf("%s %q: %s", issue.Kind, issue.Entity, issue.Message)
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil
	}
	return apperrors.New(apperrors.CodeValidationFailure, strings.Join(messages, "; "))
}

// Entity checks one raw entity record against the schema's declaration of
// kind: required fields present, primitive types, enum values and
// non-negative book numbers.
func Entity(schema *config.Schema, kind string, record map[string]any) *Report {
	report := &Report{}
	entityType, ok := schema.EntityTypeByName(kind)
	if !ok {
		report.add(Issue{
			Severity: SeverityError,
			Code:     codeUnknownKind,
			Message:  fmt.Sprintf("unknown entity kind: %s", kind),
			Kind:     kind,
		})
		return report
	}

	entityName := ""
	if entityType.Key != "" {
		entityName, _ = continuity.AsString(record[entityType.Key])
	}
	issue := func(code, field, message string) {
		report.add(Issue{
			Severity: SeverityError,
			Code:     code,
			Message:  message,
			Kind:     kind,
			Entity:   entityName,
			Field:    field,
		})
	}

	for _, prop := range entityType.Properties {
		value, present := record[prop.Name]
		if !present || value == nil {
			if prop.Required {
				issue(codeMissingRequired, prop.Name, fmt.Sprintf("missing required property: %s", prop.Name))
			}
			continue
		}

		switch strings.ToLower(prop.Type) {
		case config.TypeString, config.TypeEnum:
			s, ok := value.(string)
			if !ok {
				issue(codeWrongType, prop.Name, fmt.Sprintf("%s must be a string, got %T", prop.Name, value))
				continue
			}
			if prop.Required && strings.TrimSpace(s) == "" {
				issue(codeMissingRequired, prop.Name, fmt.Sprintf("missing required property: %s", prop.Name))
				continue
			}
			if !prop.Allows(s) {
				issue(codeEnumInvalid, prop.Name, fmt.Sprintf("invalid enum value for %s: %s", prop.Name, s))
			}
		case config.TypeInt:
			n, ok := continuity.AsInt(value)
			if !ok {
				issue(codeWrongType, prop.Name, fmt.Sprintf("%s must be an integer, got %T", prop.Name, value))
				continue
			}
			if n < 0 && isBookField(prop.Name) {
				issue(codeNegativeBook, prop.Name, fmt.Sprintf("%s must be non-negative, got %d", prop.Name, n))
			}
		case config.TypeBool:
			if _, ok := value.(bool); !ok {
				issue(codeWrongType, prop.Name, fmt.Sprintf("%s must be a boolean, got %T", prop.Name, value))
			}
		case config.TypeList:
			if !isList(value) {
				issue(codeWrongType, prop.Name, fmt.Sprintf("%s must be a list, got %T", prop.Name, value))
			}
		case config.TypeMap:
			if !isMap(value) {
				issue(codeWrongType, prop.Name, fmt.Sprintf("%s must be a mapping, got %T", prop.Name, value))
			}
		}
	}

	return report
}

func isBookField(name string) bool {
	return strings.HasSuffix(name, "_book") || strings.HasSuffix(name, "book_number")
}

func isList(v any) bool {
	switch v.(type) {
	case []any, []string, []map[string]any:
		return true
	}
	return false
}

func isMap(v any) bool {
	switch v.(type) {
	case map[string]any, map[string]string:
		return true
	}
	return false
}
