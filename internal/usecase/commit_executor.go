package usecase

import (
	"context"
	"errors"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
)

// commitExecutor issues the gateway calls of a CommitPlan in plan order.
type commitExecutor struct {
	gateway   domain.CatalogGateway
	txManager domain.TransactionManager // nil: every call stands alone
}

// Execute runs the plan. Inside a transaction a failure leaves nothing
// applied and surfaces as a *domain.GatewayError. Without one, a failure
// after at least one applied call surfaces as a *domain.PartialCommitError.
func (e *commitExecutor) Execute(ctx context.Context, plan domain.CommitPlan) ([]domain.CommitStep, error) {
	if e.txManager == nil {
		steps, err := e.run(ctx, plan)
		if err != nil && len(steps) > 0 {
			logger.WithContext(ctx).Error().
				Err(err).
				Int64("product_id", plan.ProductID).
				Interface("completed", steps).
				Msg("Partial commit, catalog needs manual reconciliation")
			return steps, &domain.PartialCommitError{Completed: steps, Err: err}
		}
		return steps, err
	}

	var steps []domain.CommitStep
	err := e.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		steps, err = e.run(ctx, plan)
		return err
	})
	if err != nil {
		var gwErr *domain.GatewayError
		if !errors.As(err, &gwErr) {
			err = &domain.GatewayError{Op: domain.OpCommit, Entity: domain.EntityProduct, ID: plan.ProductID, Err: err}
		}
		return nil, err
	}
	return steps, nil
}

func (e *commitExecutor) run(ctx context.Context, plan domain.CommitPlan) ([]domain.CommitStep, error) {
	var steps []domain.CommitStep
	done := func(op, entity string, id int64) {
		step := domain.CommitStep{Op: op, Entity: entity, ID: id}
		steps = append(steps, step)
		logger.CommitStep(ctx, plan.ProductID, step.String())
	}
	fail := func(op, entity string, id int64, err error) ([]domain.CommitStep, error) {
		return steps, &domain.GatewayError{Op: op, Entity: entity, ID: id, Err: err}
	}

	for _, v := range plan.DeleteVariants {
		if err := e.gateway.DeleteVariant(ctx, v.ID); err != nil {
			return fail(domain.OpDelete, domain.EntityVariant, v.ID, err)
		}
		done(domain.OpDelete, domain.EntityVariant, v.ID)
	}
	for _, d := range plan.CreateVariants {
		id, err := e.gateway.CreateVariant(ctx, plan.ProductID, d.Denomination, d.Price)
		if err != nil {
			return fail(domain.OpCreate, domain.EntityVariant, 0, err)
		}
		done(domain.OpCreate, domain.EntityVariant, id)
	}

	for _, img := range plan.Gallery.ToDelete {
		if err := e.gateway.DeleteImage(ctx, img.ID); err != nil {
			return fail(domain.OpDelete, domain.EntityImage, img.ID, err)
		}
		done(domain.OpDelete, domain.EntityImage, img.ID)
	}
	for _, img := range plan.Gallery.ToCreate {
		id, err := e.gateway.CreateImage(ctx, plan.ProductID, img.URL, img.DisplayOrder, img.IsPrimary)
		if err != nil {
			return fail(domain.OpCreate, domain.EntityImage, 0, err)
		}
		done(domain.OpCreate, domain.EntityImage, id)
	}
	for _, img := range plan.Gallery.ToUpdate {
		if err := e.gateway.UpdateImage(ctx, img.ID, img.DisplayOrder, img.IsPrimary); err != nil {
			return fail(domain.OpUpdate, domain.EntityImage, img.ID, err)
		}
		done(domain.OpUpdate, domain.EntityImage, img.ID)
	}
	if plan.PrimaryImage != nil {
		if err := e.gateway.SetProductImage(ctx, plan.ProductID, *plan.PrimaryImage); err != nil {
			return fail(domain.OpUpdate, domain.EntityProduct, plan.ProductID, err)
		}
		done(domain.OpUpdate, domain.EntityProduct, plan.ProductID)
	}
	return steps, nil
}
