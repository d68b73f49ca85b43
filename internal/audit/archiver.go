package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RunArchiver tails the audit stream and persists every event into the
// audit_events table. Inserts are idempotent on the stream entry id, so a
// restart that re-reads old entries is harmless.
func RunArchiver(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			res, err := rdc.XRead(ctx, &redis.XReadArgs{
				Streams: []string{Stream, lastID},
				Count:   100,
				Block:   2 * time.Second,
			}).Result()
			if err != nil && err != redis.Nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Warn("audit.archiver.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if len(res) == 0 || len(res[0].Messages) == 0 {
				continue
			}
			entries := res[0].Messages
			if err := persist(ctx, db, entries); err != nil {
				zap.L().Warn("audit.archiver.persist", zap.Error(err))
				continue
			}
			lastID = entries[len(entries)-1].ID
		}
	}()
}

func persist(ctx context.Context, db *sql.DB, msgs []redis.XMessage) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const ins = `INSERT INTO audit_events (stream_id, event, payload)
	             VALUES ($1, $2, $3)
	             ON CONFLICT (stream_id) DO NOTHING`
	for _, m := range msgs {
		event, _ := m.Values["event"].(string)
		payload := make(map[string]any, len(m.Values))
		for k, v := range m.Values {
			if k == "event" {
				continue
			}
			payload[k] = v
		}
		body, err := json.Marshal(payload)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, ins, m.ID, event, body); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
