// Package transport defines the notification surface the watcher presents
// alerts on, decoupled from any concrete messenger.
package transport

import "context"

// Notification is one alert to present.
type Notification struct {
	Title string
	Body  string
	// Tag groups related notifications; presenters may use it to collapse
	// or thread them.
	Tag string
	// URL is opened when the notification is acted on. Empty means no link.
	URL string
}

// Notifier is the presentation surface.
//
// CheckAccess verifies the surface is usable (credentials valid, target
// reachable); a failure means alerts will likely not be seen, but callers
// are expected to degrade gracefully rather than stop polling.
type Notifier interface {
	CheckAccess(ctx context.Context) error
	Present(ctx context.Context, n Notification) error
}
