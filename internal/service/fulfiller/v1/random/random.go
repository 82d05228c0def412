// Package random implements a fulfillment simulator that completes one
// randomly chosen pending order per call.
package random

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1"
	storageErrors "github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/errors"
	"github.com/rs/zerolog"
)

// Fulfiller picks one of the user's pending orders uniformly at random and
// transitions it to completed.
type Fulfiller struct {
	storage storage.Orders
	log     *zerolog.Logger
	mu      sync.Mutex
	rnd     *rand.Rand
}

// InitFulfiller initializes a fulfillment simulator.
func InitFulfiller(st storage.Orders, log *zerolog.Logger) (*Fulfiller, error) {
	if st == nil {
		return nil, errors.New("nil storage was passed to fulfiller initializer")
	}
	return &Fulfiller{
		storage: st,
		log:     log,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// ProcessOne completes one randomly selected pending order for a user. A nil
// order without an error means the user has no pending orders.
func (f *Fulfiller) ProcessOne(ctx context.Context, userID string) (*modelstorage.OrderStorageEntry, error) {
	for {
		pending, err := f.storage.GetPendingOrders(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			return nil, nil
		}
		f.mu.Lock()
		idx := f.rnd.Intn(len(pending))
		f.mu.Unlock()
		order, err := f.storage.CompletePendingOrder(ctx, pending[idx].OrderID)
		if err != nil {
			// the picked order may have left the pending state since the
			// listing; retry against a fresh pending set
			var notFoundError *storageErrors.NotFoundError
			if errors.As(err, &notFoundError) {
				continue
			}
			return nil, err
		}
		f.log.Info().Msg(fmt.Sprintf("simulated completion of order %s", order.OrderID))
		return order, nil
	}
}
