package notification

import "context"

// Ledger is the persisted record of dispatched notifications and the
// de-duplication source of truth.
type Ledger interface {
	// HasAlreadyNotified reports whether a notification of this type
	// matching the given criteria was already recorded for the
	// (user, camp) pair.
	HasAlreadyNotified(ctx context.Context, userID, campID int64, t Type, match MatchSpec) (bool, error)

	// Record appends an event. When the event carries a dedup key and an
	// equal-keyed row already exists, Record returns created=false and no
	// error: the duplicate insert is the no-op success path.
	Record(ctx context.Context, ev *Event) (created bool, err error)

	// SupportsType probes whether the storage schema accepts the given
	// notification type. Used once at startup to resolve the
	// daily_message compatibility shim.
	SupportsType(ctx context.Context, t Type) (bool, error)
}
