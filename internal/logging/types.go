package logging

import "time"

// #region entry
// Entry is a single row in the decision_log table: one gate, publish, or
// feedback decision with its reason, for audit and replay.
type Entry struct {
	Kind       string // "gate" | "publish" | "feedback"
	SubjectID  string // brand/profile the decision belongs to
	TargetID   string // content or unit id
	Action     string // "schedule" | "publish" | "manual_post" | "validate"
	Allowed    bool
	Code       string // gate/publish code when blocked or failed
	Reason     string
	DetailJSON string // full decision snapshot for replay
	CreatedAt  time.Time
}
// #endregion entry
