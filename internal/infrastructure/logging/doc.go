// Package logging provides structured logging for solshade.
//
// It wraps log/slog with level filtering, a configurable handler (JSON or
// text), and default service/version fields. Components receive a *Logger
// scoped with a "component" attribute via With().
package logging
