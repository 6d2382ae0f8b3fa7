// Package notify provides monitor.Notifier implementations: desktop
// notifications over the freedesktop Notifications D-Bus API, plain text
// lines for terminals and a Hub that fans out to several notifiers.
//
// Notifiers never return errors; failures are logged and the event is
// dropped.
package notify
