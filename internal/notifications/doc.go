// Package notifications announces finished pipeline runs over ntfy.
//
// NewService returns a no-op Service when no topic is configured, so the
// pipeline can always call it. Delivery failures are returned to the caller,
// which logs them; a notice never changes a run's outcome.
package notifications
