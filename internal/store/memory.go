package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/model"
)

// MemoryStore keeps contacts and images in process memory. It is meant for tests and for running
// the service without a database; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]model.ContactRow
	order    []string
	images   map[string]model.Image
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts: make(map[string]model.ContactRow),
		images:   make(map[string]model.Image),
	}
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*model.ContactRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	row = copyRow(row)
	return &row, nil
}

// GetAll returns the rows in insertion order.
func (m *MemoryStore) GetAll(_ context.Context) ([]model.ContactRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]model.ContactRow, 0, len(m.order))
	for _, id := range m.order {
		rows = append(rows, copyRow(m.contacts[id]))
	}
	return rows, nil
}

func (m *MemoryStore) Insert(_ context.Context, row model.ContactRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.contacts[row.Id]; exists {
		return errors.Errorf("contact %s already exists", row.Id)
	}
	m.contacts[row.Id] = copyRow(row)
	m.order = append(m.order, row.Id)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, id string, patch model.ContactRowPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.contacts[id]
	if !ok {
		return ErrNotFound
	}
	if patch.FirstName != nil {
		row.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		row.LastName = *patch.LastName
	}
	if patch.Email != nil {
		row.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		row.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Address != nil {
		row.Address = *patch.Address
	}
	if patch.ProfileImageId != nil {
		imageId := *patch.ProfileImageId
		row.ProfileImageId = &imageId
	}
	m.contacts[id] = row
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(m.contacts, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) InsertImage(_ context.Context, image model.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.images[image.Id]; exists {
		return errors.Errorf("image %s already exists", image.Id)
	}
	m.images[image.Id] = model.Image{Id: image.Id, Data: append([]byte(nil), image.Data...)}
	return nil
}

func (m *MemoryStore) GetImage(_ context.Context, id string) (*model.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	image, ok := m.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &model.Image{Id: image.Id, Data: append([]byte(nil), image.Data...)}, nil
}

// copyRow detaches the optional image reference so callers cannot modify stored rows.
func copyRow(row model.ContactRow) model.ContactRow {
	if row.ProfileImageId != nil {
		imageId := *row.ProfileImageId
		row.ProfileImageId = &imageId
	}
	return row
}
