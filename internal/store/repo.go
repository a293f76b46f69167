package store

import (
	"context"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

// Snapshot is the whole persisted table: every user's DoseState and the registered set.
type Snapshot struct {
	States     map[int64]domain.DoseState
	Registered []int64 // ascending
}

// Repo is a durable StateStore. Save rewrites the full table.
type Repo interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}
