// Package fulfiller provides order progression functionality.
package fulfiller

import (
	"context"

	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
)

// Fulfiller defines a set of methods for types implementing order
// fulfillment. ProcessOne advances at most one of the user's pending orders
// and returns nil without error when nothing is pending. Implementations may
// later be backed by a real job processor without changing this contract.
type Fulfiller interface {
	ProcessOne(ctx context.Context, userID string) (*modelstorage.OrderStorageEntry, error)
}
