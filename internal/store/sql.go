package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/model"
)

// SQLStore keeps contacts and images in a relational database. It works with every driver that
// uses '?' placeholders, i.e. SQLite and MySQL.
type SQLStore struct {
	// db is a handle to the database.
	db *sqlx.DB

	// insertContact is a prepared statement for creating a contact.
	insertContact *sqlx.NamedStmt

	// selectAll is a prepared statement for selecting all contacts.
	selectAll *sqlx.Stmt

	// selectWhereId is a prepared statement for selecting the contact with a given id.
	selectWhereId *sqlx.Stmt

	// deleteWhereId is a prepared statement for deleting the contact with a given id.
	deleteWhereId *sqlx.Stmt

	// insertImage is a prepared statement for storing a profile image.
	insertImage *sqlx.NamedStmt

	// selectImageWhereId is a prepared statement for selecting the image with a given id.
	selectImageWhereId *sqlx.Stmt
}

// NewSQLStore prepares all statements on the specified database. The database can be a real
// database for production use or a mock database within unit tests.
func NewSQLStore(db *sqlx.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	var err error

	// Prepared statements offer a significant speed increase if executed many times.
	s.insertContact, err = db.PrepareNamed(`
		INSERT INTO contacts (id, firstName, lastName, email, phoneNumber, address, profileImageId)
		VALUES (:id, :firstName, :lastName, :email, :phoneNumber, :address, :profileImageId)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare contact insert")
	}
	s.selectAll, err = db.Preparex(`
		SELECT * FROM contacts
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare contact select")
	}
	s.selectWhereId, err = db.Preparex(`
		SELECT * FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare contact select by id")
	}
	s.deleteWhereId, err = db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare contact delete")
	}
	s.insertImage, err = db.PrepareNamed(`
		INSERT INTO images (id, data) VALUES (:id, :data)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare image insert")
	}
	s.selectImageWhereId, err = db.Preparex(`
		SELECT * FROM images WHERE id = ?
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare image select by id")
	}
	return s, nil
}

// GetByID returns the contact row with the given id or ErrNotFound.
func (s *SQLStore) GetByID(ctx context.Context, id string) (*model.ContactRow, error) {
	var row model.ContactRow
	err := s.selectWhereId.GetContext(ctx, &row, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not select contact %s", id)
	}
	return &row, nil
}

// GetAll returns all contact rows. The result is empty but not nil for an empty table.
func (s *SQLStore) GetAll(ctx context.Context) ([]model.ContactRow, error) {
	rows := []model.ContactRow{}
	if err := s.selectAll.SelectContext(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "could not select contacts")
	}
	return rows, nil
}

// Insert stores a new contact row.
func (s *SQLStore) Insert(ctx context.Context, row model.ContactRow) error {
	if _, err := s.insertContact.ExecContext(ctx, &row); err != nil {
		return errors.Wrapf(err, "could not insert contact %s", row.Id)
	}
	return nil
}

// Update writes the non-nil columns of the patch, and only those. It returns ErrNotFound if no
// row has the given id. An empty patch does not touch the database.
func (s *SQLStore) Update(ctx context.Context, id string, patch model.ContactRowPatch) error {
	var args []interface{}
	query := "UPDATE contacts SET "
	if patch.FirstName != nil {
		args = append(args, *patch.FirstName)
		query += "firstName=?, "
	}
	if patch.LastName != nil {
		args = append(args, *patch.LastName)
		query += "lastName=?, "
	}
	if patch.Email != nil {
		args = append(args, *patch.Email)
		query += "email=?, "
	}
	if patch.PhoneNumber != nil {
		args = append(args, *patch.PhoneNumber)
		query += "phoneNumber=?, "
	}
	if patch.Address != nil {
		args = append(args, *patch.Address)
		query += "address=?, "
	}
	if patch.ProfileImageId != nil {
		args = append(args, *patch.ProfileImageId)
		query += "profileImageId=?, "
	}
	if len(args) == 0 {
		return nil
	}

	query = query[:len(query)-2]
	query += " WHERE id=?"
	args = append(args, id)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "could not update contact %s", id)
	}
	return expectAffectedRow(result, id)
}

// Delete removes the contact row with the given id or returns ErrNotFound.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "could not delete contact %s", id)
	}
	return expectAffectedRow(result, id)
}

// InsertImage stores a new profile image.
func (s *SQLStore) InsertImage(ctx context.Context, image model.Image) error {
	if _, err := s.insertImage.ExecContext(ctx, &image); err != nil {
		return errors.Wrapf(err, "could not insert image %s", image.Id)
	}
	return nil
}

// GetImage returns the profile image with the given id or ErrNotFound.
func (s *SQLStore) GetImage(ctx context.Context, id string) (*model.Image, error) {
	var image model.Image
	err := s.selectImageWhereId.GetContext(ctx, &image, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not select image %s", id)
	}
	return &image, nil
}

// Close releases the prepared statements. The database handle itself stays open.
func (s *SQLStore) Close() error {
	var firstErr error
	for _, stmt := range []interface{ Close() error }{
		s.insertContact, s.selectAll, s.selectWhereId, s.deleteWhereId, s.insertImage, s.selectImageWhereId,
	} {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func expectAffectedRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "could not count affected rows for contact %s", id)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
