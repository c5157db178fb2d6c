package domain

import "context"

// Keys of the four persisted partitions. Each slot holds one JSON document.
const (
	KeyScenarios       = "agriprofit.scenarios"
	KeyHistory         = "agriprofit.history"
	KeySettings        = "agriprofit.settings"
	KeyLastCalculation = "agriprofit.lastCalculation"
)

// Medium is a text key-value storage medium backing the persistent store.
// It may be capacity-bounded or unavailable altogether; implementations
// report those conditions as errors and the store degrades accordingly.
type Medium interface {
	// Get returns the value stored under key. The bool reports whether the
	// key was present; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
