// Package store holds the persistence backends of the contacts service. The service only talks to
// the ContactStore and ImageStore interfaces; which implementation sits behind them is decided
// when the application is composed.
package store

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/model"
)

// ErrNotFound is returned when a requested row does not exist, or when an update or delete did
// not affect any row.
var ErrNotFound = errors.New("record not found")

// ContactStore persists contact rows.
type ContactStore interface {
	GetByID(ctx context.Context, id string) (*model.ContactRow, error)
	GetAll(ctx context.Context) ([]model.ContactRow, error)
	Insert(ctx context.Context, row model.ContactRow) error
	Update(ctx context.Context, id string, patch model.ContactRowPatch) error
	Delete(ctx context.Context, id string) error
}

// ImageStore persists profile images.
type ImageStore interface {
	InsertImage(ctx context.Context, image model.Image) error
	GetImage(ctx context.Context, id string) (*model.Image, error)
}
