package pipeline

import (
	"context"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/usecase/models"
	"github.com/zkaiera/last30days-skill/internal/usecase/research"
)

type modelResolver interface {
	ResolveAll(ctx context.Context, opts models.Options) models.Selections
}

type researcher interface {
	Run(ctx context.Context, p research.Params) domain.Result
}
