package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"whodunnit/internal/game"
)

const readyProbeInterval = 500 * time.Millisecond

// WaitReady pings the store until it responds or ctx expires. Callers bound
// the wait with a context deadline; no session can be created before the
// store answers a ping.
func WaitReady(ctx context.Context, client *mongo.Client) error {
	for {
		pingCtx, cancel := context.WithTimeout(ctx, readyProbeInterval)
		err := client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: store not ready: %v", game.ErrPersistence, err)
		case <-time.After(readyProbeInterval):
		}
	}
}
