// Package deadlinewatcher is the external scheduler the engine itself refuses
// to be: it reacts to the expiry of the auction timer keys and calls the same
// Activate/Close operations an operator would.
package deadlinewatcher

import (
	"context"
	"errors"
	"strings"

	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/services/auction"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run must be started once at service boot.
func Run(ctx context.Context, rdb *redis.Client, svc auction.IAuctionService) {
	_ = rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
	ps := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ps.Channel():
			if !ok {
				return
			}
			switch {
			case strings.HasPrefix(m.Payload, auction.StartTimerPrefix):
				activate(ctx, svc, strings.TrimPrefix(m.Payload, auction.StartTimerPrefix))
			case strings.HasPrefix(m.Payload, auction.EndTimerPrefix):
				settle(ctx, svc, strings.TrimPrefix(m.Payload, auction.EndTimerPrefix))
			}
		}
	}
}

func activate(ctx context.Context, svc auction.IAuctionService, id string) {
	if _, err := svc.Activate(ctx, id); err != nil {
		// invalid_state just means an operator beat us to it.
		if models.KindOf(err) != models.KindInvalidState {
			zap.L().Warn("deadlinewatcher.activate", zap.String("id", id), zap.Error(err))
		}
	}
}

func settle(ctx context.Context, svc auction.IAuctionService, id string) {
	_, err := svc.Close(ctx, id)
	switch {
	case err == nil:
		return
	case errors.Is(err, auction.ErrNoBids):
		// Expired with nothing on the ledger: cancel, returning the disposal
		// request to listed.
		if _, err := svc.Cancel(ctx, id); err != nil {
			zap.L().Warn("deadlinewatcher.cancel", zap.String("id", id), zap.Error(err))
		}
	case models.KindOf(err) == models.KindBusinessRule:
		// Reserve not met. The auction stays active; extending or cancelling
		// is an operator decision.
		zap.L().Warn("deadlinewatcher.reserve_not_met", zap.String("id", id), zap.Error(err))
	default:
		zap.L().Warn("deadlinewatcher.close", zap.String("id", id), zap.Error(err))
	}
}
