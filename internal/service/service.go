// Package service implements the contact operations on top of the stores. It is the only place
// that writes to a store; requests reaching it have already been validated.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/apperr"
	internal "gitlab.com/dirk.krummacker/contactbook/internal/model"
	"gitlab.com/dirk.krummacker/contactbook/internal/store"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
	"go.uber.org/zap"
)

const (
	contactResource = "Contact"
	imageResource   = "Image"
)

// Service provides the contact operations.
type Service struct {
	contacts store.ContactStore
	images   store.ImageStore
	log      *zap.Logger
	newID    func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithIDGenerator replaces the UUID generator, e.g. to get predictable ids in tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New creates the service. Contacts and images may live in different stores.
func New(contacts store.ContactStore, images store.ImageStore, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		contacts: contacts,
		images:   images,
		log:      log.Named("service"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListContacts returns all contacts. The result is never nil.
func (s *Service) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.contacts.GetAll(ctx)
	if err != nil {
		return nil, apperr.Persistence("list contacts", err)
	}
	contacts := make([]model.Contact, 0, len(rows))
	for _, row := range rows {
		c, err := fromRow(row)
		if err != nil {
			return nil, apperr.Persistence("list contacts", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// GetContact returns the contact with the given id.
func (s *Service) GetContact(ctx context.Context, id string) (model.Contact, error) {
	return s.find(ctx, "get contact", id)
}

// CreateContact stores a new contact under a freshly minted id and returns it.
func (s *Service) CreateContact(ctx context.Context, request model.CreateContactRequest) (model.Contact, error) {
	c := model.Contact{
		Id:             s.newID(),
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		Email:          request.Email,
		ProfileImageId: copyString(request.ProfileImageId),
	}
	if request.PhoneNumber != nil {
		c.PhoneNumber = *request.PhoneNumber
	}
	if request.Address != nil {
		c.Address = *request.Address
	}
	row, err := toRow(c)
	if err != nil {
		return model.Contact{}, apperr.Persistence("create contact", err)
	}
	if err := s.contacts.Insert(ctx, row); err != nil {
		return model.Contact{}, apperr.Persistence("create contact", err)
	}
	s.log.Debug("contact created", zap.String("id", c.Id))
	return c, nil
}

// UpdateContact merges the present fields of the patch into the stored contact and returns the
// result. Only the changed columns are written; an empty patch writes nothing.
func (s *Service) UpdateContact(ctx context.Context, id string, patch model.ContactPatch) (model.Contact, error) {
	existing, err := s.find(ctx, "update contact", id)
	if err != nil {
		return model.Contact{}, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}
	rowPatch, err := toRowPatch(patch)
	if err != nil {
		return model.Contact{}, apperr.Persistence("update contact", err)
	}
	if err := s.contacts.Update(ctx, id, rowPatch); err != nil {
		return model.Contact{}, storeError("update contact", contactResource, id, err)
	}
	s.log.Debug("contact updated", zap.String("id", id))
	return patch.Apply(existing), nil
}

// DeleteContact removes the contact and returns it as it was before the deletion. A referenced
// profile image is kept.
func (s *Service) DeleteContact(ctx context.Context, id string) (model.Contact, error) {
	existing, err := s.find(ctx, "delete contact", id)
	if err != nil {
		return model.Contact{}, err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return model.Contact{}, storeError("delete contact", contactResource, id, err)
	}
	s.log.Debug("contact deleted", zap.String("id", id))
	return existing, nil
}

// UploadImage stores a profile image and returns its new id.
func (s *Service) UploadImage(ctx context.Context, data []byte) (string, error) {
	id := s.newID()
	if err := s.images.InsertImage(ctx, internal.Image{Id: id, Data: data}); err != nil {
		return "", apperr.Persistence("upload image", err)
	}
	s.log.Debug("image uploaded", zap.String("id", id), zap.Int("bytes", len(data)))
	return id, nil
}

// GetImage returns the profile image with the given id.
func (s *Service) GetImage(ctx context.Context, id string) (*internal.Image, error) {
	image, err := s.images.GetImage(ctx, id)
	if err != nil {
		return nil, storeError("get image", imageResource, id, err)
	}
	return image, nil
}

func (s *Service) find(ctx context.Context, op string, id string) (model.Contact, error) {
	row, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return model.Contact{}, storeError(op, contactResource, id, err)
	}
	c, err := fromRow(*row)
	if err != nil {
		return model.Contact{}, apperr.Persistence(op, err)
	}
	return c, nil
}

// storeError turns store.ErrNotFound into a NotFoundError and everything else into a
// PersistenceError.
func storeError(op string, resource string, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(resource, id)
	}
	return apperr.Persistence(op, err)
}
