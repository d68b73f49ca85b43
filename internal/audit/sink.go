// Package audit is the notification boundary: one event per state transition,
// best effort. A failed emit is logged and dropped; it never rolls back or
// delays the transition that produced it.
package audit

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Stream carries the durable audit trail; the archiver tails it into
	// Postgres.
	Stream = "audit:events"

	channelPrefix = "auction:"
	channelSuffix = ":events"

	emitTimeout = 2 * time.Second
)

// ChannelFor is the pub/sub channel carrying live events for one auction.
func ChannelFor(auctionID string) string {
	return channelPrefix + auctionID + channelSuffix
}

type Sink interface {
	Emit(ctx context.Context, event string, payload map[string]any)
}

// RedisSink XAdds every event to the audit stream and, when the payload names
// an auction, publishes it for the live websocket feed.
type RedisSink struct {
	rdc *redis.Client
}

func NewRedisSink(rdc *redis.Client) *RedisSink {
	return &RedisSink{rdc: rdc}
}

func (s *RedisSink) Emit(ctx context.Context, event string, payload map[string]any) {
	// Detach from the caller's deadline: the primary operation has already
	// committed by the time we get here.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
	defer cancel()

	values := make(map[string]any, len(payload)+1)
	values["event"] = event
	for k, v := range payload {
		values[k] = v
	}
	// Flatten with sorted keys so entries are byte-stable across emits.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	flat := make([]any, 0, len(values)*2)
	for _, k := range keys {
		flat = append(flat, k, values[k])
	}
	if err := s.rdc.XAdd(ctx, &redis.XAddArgs{Stream: Stream, Values: flat}).Err(); err != nil {
		zap.L().Warn("audit.xadd", zap.String("event", event), zap.Error(err))
	}

	auctionID, _ := payload["auction_id"].(string)
	if auctionID == "" {
		return
	}
	msg, err := json.Marshal(values)
	if err != nil {
		zap.L().Warn("audit.marshal", zap.String("event", event), zap.Error(err))
		return
	}
	if err := s.rdc.Publish(ctx, ChannelFor(auctionID), msg).Err(); err != nil {
		zap.L().Warn("audit.publish", zap.String("event", event), zap.Error(err))
	}
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Emit(context.Context, string, map[string]any) {}
