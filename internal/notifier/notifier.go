// Package notifier delivers outbound email and SMS on a best-effort
// basis. Delivery failures are reported to the caller for logging only;
// they must never abort the state transition that triggered them.
package notifier

import "context"

// Notifier sends external notifications.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, message string) error
}
