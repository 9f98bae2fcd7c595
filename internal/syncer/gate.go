package syncer

import (
	"fmt"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
)

// Thresholds guards a destructive import against an empty or truncated local
// directory: if fewer records than the configured minimum are about to be
// imported, the whole run aborts before any mutating call. Zero disables a
// threshold.
type Thresholds struct {
	MinWorkflows   int
	MinCredentials int
}

// Enabled reports whether any threshold is configured.
func (t Thresholds) Enabled() bool {
	return t.MinWorkflows > 0 || t.MinCredentials > 0
}

// Check compares each plan's size against its minimum. The first unmet
// threshold aborts; nothing has been mutated at this point.
func (t Thresholds) Check(workflows, credentials Plan) error {
	if err := checkKind(workflows, t.MinWorkflows); err != nil {
		return err
	}
	return checkKind(credentials, t.MinCredentials)
}

func checkKind(p Plan, min int) error {
	if min <= 0 {
		return nil
	}
	if p.Size() < min {
		return fmt.Errorf("discovered only %d %s record(s), need at least %d: %w",
			p.Size(), p.Kind, min, syncerrors.ErrThresholdNotMet)
	}
	return nil
}
