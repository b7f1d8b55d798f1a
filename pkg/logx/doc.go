// Package logx is a thin structured-logging facade over zerolog.
//
// It exists so the rest of the codebase can log with a small, stable API
// (Logger + Field helpers) while the sink wiring (console, JSON file)
// stays in one place. A zero-value Logger is a safe no-op, which keeps
// constructors tolerant of missing loggers in tests.
package logx
