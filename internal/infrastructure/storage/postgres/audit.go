package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/id"
	"vibooks/internal/domain/audit"
)

var _ audit.Sink = (*LockAuditSink)(nil)

// CompressionAlgo specifies how an event payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// LockAuditSink persists lock events. The event fields are stored as
// columns for querying; the full serialized event rides along as a payload,
// compressed when it grows past the threshold. Writes join the transaction
// carried by ctx, so an event can never outlive a failed transition.
type LockAuditSink struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	compressThreshold int
}

func NewLockAuditSink(txManager *TxManager) (*LockAuditSink, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &LockAuditSink{
		txManager:         txManager,
		encoder:           encoder,
		compressThreshold: 10 * 1024,
	}, nil
}

func (s *LockAuditSink) RecordLockEvent(ctx context.Context, event audit.LockEvent) error {
	if id.IsNil(event.ID) {
		event.ID = id.New()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lock event: %w", err)
	}
	algo := CompressionNone
	if len(payload) > s.compressThreshold {
		payload = s.encoder.EncodeAll(payload, nil)
		algo = CompressionZstd
	}

	const query = `
		INSERT INTO period_lock_events (
			id, period, before_status, after_status,
			actor_id, actor_name, reason,
			payload, compression_algo, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, query,
		event.ID, event.Period, event.Before, event.After,
		event.ActorID, event.ActorName, event.Reason,
		payload, algo, event.At,
	)
	if err != nil {
		return apperror.NewDatabase("record lock event", err)
	}
	return nil
}
