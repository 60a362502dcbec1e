// Package resolver performs the arbitration step: it reconciles a page's
// pipeline context into one validated product record.
package resolver

import (
	"context"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// Resolver turns a pipeline context into a product. Implementations return
// *models.SchemaValidationError for malformed output and *models.ResolveError
// for transport or provider failures.
type Resolver interface {
	Resolve(ctx context.Context, pc models.PipelineContext) (models.Product, error)
}

// Func adapts a plain function to Resolver.
type Func func(ctx context.Context, pc models.PipelineContext) (models.Product, error)

func (f Func) Resolve(ctx context.Context, pc models.PipelineContext) (models.Product, error) {
	return f(ctx, pc)
}
