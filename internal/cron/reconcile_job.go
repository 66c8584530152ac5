package cron

import (
	"context"
	"fmt"

	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

type unassignedReconciler interface {
	ReconcileUnassigned(ctx context.Context) (int, error)
}

// ReconcileJobParams configures the unassigned-order sweep.
type ReconcileJobParams struct {
	Logger      *logger.Logger
	Fulfillment unassignedReconciler
}

type reconcileJob struct {
	logg        *logger.Logger
	fulfillment unassignedReconciler
}

// NewReconcileJob builds the cron job that retries agent assignment for
// orders that committed without one.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Fulfillment == nil {
		return nil, fmt.Errorf("fulfillment service required")
	}
	return &reconcileJob{
		logg:        params.Logger,
		fulfillment: params.Fulfillment,
	}, nil
}

func (j *reconcileJob) Name() string { return "reconcile_unassigned_orders" }

func (j *reconcileJob) Run(ctx context.Context) error {
	assigned, err := j.fulfillment.ReconcileUnassigned(ctx)
	if assigned > 0 {
		j.logg.Info(j.logg.WithField(ctx, "assigned", assigned), "reconcile sweep assigned orders")
	}
	if err != nil {
		return fmt.Errorf("reconcile unassigned: %w", err)
	}
	return nil
}
