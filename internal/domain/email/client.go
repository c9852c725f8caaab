package email

// Client defines the outbound email channel for camp lifecycle events.
// Sends are best-effort: callers log failures and never propagate them, so
// implementations should not retry internally.
type Client interface {
	SendCampStartedEmail(to, username, campName string, campID int64) error
	SendCampFinishedEmail(to, username, campName string, campID int64) error
}
