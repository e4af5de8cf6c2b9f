package healthlogs

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, log *Log) (*Log, error)
	List(ctx context.Context) ([]*Log, error)
	Delete(ctx context.Context, id string) error
}
