package models

import (
	"context"

	"github.com/zkaiera/last30days-skill/internal/domain/model"
)

// Cache persists resolved model ids across runs.
// Get returns an error on a miss (db.ErrKeyNotFound for the shipped backends).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Catalog lists the models an OpenAI-compatible endpoint serves.
type Catalog interface {
	ListModels(ctx context.Context) ([]model.CatalogEntry, error)
}
