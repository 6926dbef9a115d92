package types

// SyncState reports how far a locally applied mutation made it into durable
// storage. The session view is updated before the database write, and a
// failed write never rolls the view back; callers use this to warn the user
// that persistence lags reality.
type SyncState struct {
	Durable  bool     `json:"durable"`
	Warnings []string `json:"warnings,omitempty"`
}

func DurableState() SyncState {
	return SyncState{Durable: true}
}

func LaggingState(warnings ...string) SyncState {
	return SyncState{Durable: false, Warnings: warnings}
}
