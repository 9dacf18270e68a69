package main

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/service"
	"gitlab.com/dirk.krummacker/contactbook/internal/validation"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
)

func coordinate(f float64) *float64 {
	return &f
}

// demoContacts is the initial test data.
var demoContacts = []model.CreateContactRequest{
	{
		FirstName:   "Dirk",
		LastName:    "Krummacker",
		Email:       "dirk@krummacker.example",
		PhoneNumber: &model.PhoneNumber{CountryCode: "+420", Number: "123 456 789"},
		Address: &model.Address{
			Street:  "Vodičkova 12",
			State:   "Praha",
			Country: "CZ",
			ZipCode: "110 00",
			Geocode: &model.Geocode{Longitude: coordinate(14.4241), Latitude: coordinate(50.0812)},
		},
	},
	{
		FirstName:   "Pavla",
		LastName:    "Krummackerova",
		Email:       "pavla@krummacker.example",
		PhoneNumber: &model.PhoneNumber{CountryCode: "+420", Number: "023 454 244"},
		Address: &model.Address{
			Street:  "Vodičkova 12",
			State:   "Praha",
			Country: "CZ",
			ZipCode: "110 00",
			Geocode: &model.Geocode{Longitude: coordinate(14.4241), Latitude: coordinate(50.0812)},
		},
	},
	{
		FirstName:   "Adam",
		LastName:    "Krummacker",
		Email:       "adam@krummacker.example",
		PhoneNumber: &model.PhoneNumber{CountryCode: "+420", Number: "333 555 777"},
		Address: &model.Address{
			Street:  "Masarykova 3",
			State:   "Jihomoravský kraj",
			Country: "CZ",
			ZipCode: "602 00",
			Geocode: &model.Geocode{Longitude: coordinate(16.6068), Latitude: coordinate(49.1951)},
		},
	},
	{
		FirstName:   "David",
		LastName:    "Krummacker",
		Email:       "david@krummacker.example",
		PhoneNumber: &model.PhoneNumber{CountryCode: "+420", Number: "333 555 777"},
		Address: &model.Address{
			Street:  "Masarykova 3",
			State:   "Jihomoravský kraj",
			Country: "CZ",
			ZipCode: "602 00",
			Geocode: &model.Geocode{Longitude: coordinate(16.6068), Latitude: coordinate(49.1951)},
		},
	},
}

// seed enters the demo contacts. If a contact with the same name is already present then it is
// not added again. It returns the number of inserted contacts.
func seed(ctx context.Context, svc *service.Service) (int, error) {
	existing, err := svc.ListContacts(ctx)
	if err != nil {
		return 0, err
	}
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		names[c.FirstName+" "+c.LastName] = true
	}

	created := 0
	for _, request := range demoContacts {
		if names[request.FirstName+" "+request.LastName] {
			continue
		}
		if err := validation.ValidateCreate(&request); err != nil {
			return created, errors.Wrapf(err, "invalid demo contact %s %s", request.FirstName, request.LastName)
		}
		if _, err := svc.CreateContact(ctx, request); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
