package draft

import (
	"context"
	"errors"
)

var ErrInvalidDate = errors.New("invalid date")

type Repository interface {
	Get(ctx context.Context, userID int64, variant string) (Draft, error)
	Save(ctx context.Context, d Draft) error
	Delete(ctx context.Context, userID int64, variant string) error

	GetShared(ctx context.Context, userID int64) (Shared, error)
	SaveShared(ctx context.Context, s Shared) error
}
