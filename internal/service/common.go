// Package service implements one manager per screen. Every manager owns the
// screen's local mirror of view records, its edit session, and a snapshot of
// the reference collections it joins against; all mutations go through the
// table gateways and the mirror is only patched after the remote call
// succeeded.
package service

import (
	"context"

	"go.uber.org/zap"

	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
)

func gatewayFailure(logger *zap.Logger, op string, err error) error {
	logger.Warn("gateway call failed", zap.String("op", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, op+" failed")
}

// liveness guards the gap between a successful remote call and the local
// reconcile: a cancelled context means the screen is gone, so its state must
// not be touched.
func liveness(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "screen torn down before reconcile")
	}
	return nil
}
