// Package checkout turns a user's cart into priced, stock-reserved order
// inputs and assembles them into an order aggregate.
package checkout

import (
	"context"
	"time"

	"storefront/internal/repositories"

	"github.com/rs/zerolog/log"
)

// StageFunc is one step of the pipeline. Returning an error aborts every
// following stage.
type StageFunc func(ctx context.Context, pc *ProcessingContext) error

// Stage names a StageFunc for logging.
type Stage struct {
	Name string
	Run  StageFunc
}

// Pipeline runs its stages strictly in order over a single ProcessingContext.
type Pipeline struct {
	stages []Stage
	clock  func() time.Time
}

// DefaultStages is the standard checkout order.
func DefaultStages() []Stage {
	return []Stage{
		{Name: "cart_validation", Run: ValidateCart},
		{Name: "stock_validation", Run: ValidateStock},
		{Name: "discount_pricing", Run: ApplyDiscounts},
		{Name: "promo_allocation", Run: ApplyPromocode},
		{Name: "stock_reservation", Run: ReserveCartStock},
	}
}

// NewPipeline builds a pipeline over stages, or DefaultStages when none are given.
func NewPipeline(stages ...Stage) *Pipeline {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Pipeline{stages: stages, clock: time.Now}
}

// WithClock overrides the time source used to evaluate discount windows.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Process runs every stage against store, which must already be bound to
// the caller's transaction. A stage error is returned as is.
func (p *Pipeline) Process(ctx context.Context, store repositories.Store, userID, promocodeCode string) (*ProcessingContext, error) {
	pc := NewProcessingContext(store, userID, promocodeCode, p.clock())
	for _, stage := range p.stages {
		if err := stage.Run(ctx, pc); err != nil {
			log.Debug().Str("user_id", userID).Str("stage", stage.Name).Err(err).Msg("checkout stage failed")
			return nil, err
		}
	}
	return pc, nil
}
