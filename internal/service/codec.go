package service

import (
	"encoding/json"

	"github.com/pkg/errors"
	internal "gitlab.com/dirk.krummacker/contactbook/internal/model"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
)

// toRow serializes the nested phone number and address of a contact into text columns.
func toRow(c model.Contact) (internal.ContactRow, error) {
	phoneNumber, err := encode(c.PhoneNumber)
	if err != nil {
		return internal.ContactRow{}, err
	}
	address, err := encode(c.Address)
	if err != nil {
		return internal.ContactRow{}, err
	}
	return internal.ContactRow{
		Id:             c.Id,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		PhoneNumber:    phoneNumber,
		Address:        address,
		ProfileImageId: copyString(c.ProfileImageId),
	}, nil
}

// fromRow restores the structured contact from a table row.
func fromRow(row internal.ContactRow) (model.Contact, error) {
	c := model.Contact{
		Id:             row.Id,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		ProfileImageId: copyString(row.ProfileImageId),
	}
	if err := json.Unmarshal([]byte(row.PhoneNumber), &c.PhoneNumber); err != nil {
		return model.Contact{}, errors.Wrapf(err, "invalid phone number of contact %s", row.Id)
	}
	if err := json.Unmarshal([]byte(row.Address), &c.Address); err != nil {
		return model.Contact{}, errors.Wrapf(err, "invalid address of contact %s", row.Id)
	}
	return c, nil
}

// toRowPatch converts the present fields of a patch into the columns to be written.
func toRowPatch(p model.ContactPatch) (internal.ContactRowPatch, error) {
	rowPatch := internal.ContactRowPatch{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		ProfileImageId: p.ProfileImageId,
	}
	if p.PhoneNumber != nil {
		phoneNumber, err := encode(p.PhoneNumber)
		if err != nil {
			return internal.ContactRowPatch{}, err
		}
		rowPatch.PhoneNumber = &phoneNumber
	}
	if p.Address != nil {
		address, err := encode(p.Address)
		if err != nil {
			return internal.ContactRowPatch{}, err
		}
		rowPatch.Address = &address
	}
	return rowPatch, nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "could not serialize contact")
	}
	return string(b), nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
