// Package logging provides structured logging for Gray Logic Assistant.
//
// It wraps log/slog with configuration-driven output format and level
// selection, plus default fields identifying the service. All components
// receive a *Logger (or a narrower interface they define themselves) rather
// than using a global.
package logging
