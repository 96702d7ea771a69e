package logging

import "log/slog"

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for the logged event.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what the failure means for the series.
	FieldImpact = "impact"
	// FieldSeries is the series title.
	FieldSeries = "series"
	// FieldBook is a book number.
	FieldBook = "book_number"
	// FieldEntityKind is the entity kind (character, plot_thread, world_element).
	FieldEntityKind = "entity_kind"
	// FieldEntityKey is the entity's unique key.
	FieldEntityKey = "entity_key"
	// FieldPath is a filesystem path.
	FieldPath = "path"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attributes into the variadic form slog's level methods accept.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// Warn logs a warning carrying the standard event type field.
func Warn(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = append([]Attr{String(FieldEventType, eventType)}, attrs...)
	logger.Warn(msg, Args(attrs...)...)
}
