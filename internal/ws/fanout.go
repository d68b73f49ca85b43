package ws

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// SubscribeAuctionEvents forwards events published by any engine instance to
// the in-process hub. Channel format: "auction:<id>:events".
func SubscribeAuctionEvents(ctx context.Context, rdc *redis.Client, hub *Hub) {
	pubsub := rdc.PSubscribe(ctx, "auction:*:events")
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			parts := strings.Split(m.Channel, ":")
			if len(parts) != 3 {
				continue
			}
			hub.Broadcast(parts[1], []byte(m.Payload))
		}
	}
}
