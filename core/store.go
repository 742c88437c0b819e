package core

// SyncOutcome reports where a completed write ended up. A write that could
// not reach the remote store still persists locally; callers surface the
// difference instead of silently claiming remote durability.
type SyncOutcome struct {
	RemoteSynced bool `json:"remoteSynced"`
	// Version tags the stored revision: a short remote revision hash,
	// "local-save" or "static-json".
	Version string `json:"version"`
}
