// Package logging assembles the structured slog loggers used across
// serieskeeper.
//
// Components take a *slog.Logger, tag it with NewComponentLogger, and emit
// warnings with an event type, an error hint and an impact so that skipped
// entities and recovery decisions are easy to find in the output. NewNop is
// the default for library callers and tests that do not care about logs.
package logging
