package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names routed through the asynq mux.
const (
	// TypeRosterRefresh re-reads one classroom from the store and
	// re-primes its cache entry.
	TypeRosterRefresh = "roster:refresh"
	// TypeRosterReconcile sweeps the cache and evicts entries whose
	// classroom no longer exists. Registered on the periodic scheduler.
	TypeRosterReconcile = "roster:reconcile"
)

// RosterRefreshPayload carries the join code of the classroom whose cache
// entry should be rebuilt.
type RosterRefreshPayload struct {
	Code string `json:"code"`
}

// NewRosterRefreshTask creates a roster refresh task for the given code.
func NewRosterRefreshTask(code string) (*asynq.Task, error) {
	payload, err := json.Marshal(RosterRefreshPayload{Code: code})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRosterRefresh, payload), nil
}

// NewRosterReconcileTask creates the periodic cache reconcile task. It
// carries no payload.
func NewRosterReconcileTask() *asynq.Task {
	return asynq.NewTask(TypeRosterReconcile, nil)
}
