package app

import (
	"context"
	"fmt"
)

// Summary counts the per-item outcomes of one runner pass. Failures are
// isolated per candidate; a non-zero Failed never aborts a pass.
type Summary struct {
	Sent    int
	Skipped int
	Failed  int
}

func (s Summary) String() string {
	return fmt.Sprintf("sent=%d skipped=%d failed=%d", s.Sent, s.Skipped, s.Failed)
}

// Job is one schedulable runner. Run executes a single linear pass and is
// also the manual "run once now" entry point used for operational testing.
type Job interface {
	Name() string
	Run(ctx context.Context) Summary
}
