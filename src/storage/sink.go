package storage

import (
	"context"

	"github.com/cadenzr/turnpike/src/analytics"
)

// SaveUsageRecord implements analytics.Sink, persisting each committed
// usage event as a row.
func (d *DB) SaveUsageRecord(ctx context.Context, rec analytics.UsageRecord) error {
	return CreateUsageRow(ctx, d.db, &UsageRow{
		Timestamp: rec.Timestamp,
		Tokens:    rec.Tokens,
		BackendID: rec.BackendID,
		ModelID:   rec.ModelID,
	})
}

var _ analytics.Sink = (*DB)(nil)
