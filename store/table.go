package store

import (
	"context"
	"errors"

	"prakriti-darpan/models"
)

// ErrRowNotFound is returned by a Table when no row has the requested id.
var ErrRowNotFound = errors.New("store: row not found")

// Table is a hosted, table-like report store keyed by report id.
//
// Implementations return rows ordered by timestamp, newest first. Update
// and Delete on an unknown id succeed without touching anything.
type Table interface {
	List(ctx context.Context) ([]models.Report, error)
	Get(ctx context.Context, id string) (models.Report, error)
	Insert(ctx context.Context, report models.Report) error
	InsertMany(ctx context.Context, reports []models.Report) error
	Update(ctx context.Context, report models.Report) error
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}
