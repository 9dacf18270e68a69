package model

// Contact is the data structure for a person that we know.
type Contact struct {
	Id             string      `json:"id"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Email          string      `json:"email"`
	PhoneNumber    PhoneNumber `json:"phoneNumber"`
	Address        Address     `json:"address"`
	ProfileImageId *string     `json:"profileImageId"`
}

// PhoneNumber is stored as one serialized value in the contacts table.
type PhoneNumber struct {
	CountryCode string `json:"countryCode" validate:"required"`
	Number      string `json:"number"      validate:"required"`
}

// Address is stored as one serialized value in the contacts table.
type Address struct {
	Street  string   `json:"street"  validate:"required"`
	State   string   `json:"state"   validate:"required"`
	Country string   `json:"country" validate:"required"`
	ZipCode string   `json:"zipCode" validate:"required"`
	Geocode *Geocode `json:"geocode" validate:"required"`
}

// Geocode uses pointers so that a missing coordinate can be told apart from 0.
type Geocode struct {
	Longitude *float64 `json:"longitude" validate:"required"`
	Latitude  *float64 `json:"latitude"  validate:"required"`
}

// CreateContactRequest is the JSON body for creating a contact. Only the profile image is
// optional.
type CreateContactRequest struct {
	FirstName      string       `json:"firstName"      validate:"required"`
	LastName       string       `json:"lastName"       validate:"required"`
	Email          string       `json:"email"          validate:"required,email"`
	PhoneNumber    *PhoneNumber `json:"phoneNumber"    validate:"required"`
	Address        *Address     `json:"address"        validate:"required"`
	ProfileImageId *string      `json:"profileImageId" validate:"omitempty,min=1"`
}

// ContactPatch is the JSON body for updating a contact. All fields are optional, a nil field
// leaves the stored value untouched. A present phone number or address replaces the stored one
// as a whole and therefore has to be complete.
type ContactPatch struct {
	FirstName      *string      `json:"firstName,omitempty"      validate:"omitempty,min=1"`
	LastName       *string      `json:"lastName,omitempty"       validate:"omitempty,min=1"`
	Email          *string      `json:"email,omitempty"          validate:"omitempty,email"`
	PhoneNumber    *PhoneNumber `json:"phoneNumber,omitempty"    validate:"omitempty"`
	Address        *Address     `json:"address,omitempty"        validate:"omitempty"`
	ProfileImageId *string      `json:"profileImageId,omitempty" validate:"omitempty,min=1"`
}

// IsEmpty reports whether the patch does not change anything.
func (p ContactPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.PhoneNumber == nil && p.Address == nil && p.ProfileImageId == nil
}

// Apply returns a copy of the contact with all fields of the patch merged in.
func (p ContactPatch) Apply(c Contact) Contact {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.ProfileImageId != nil {
		id := *p.ProfileImageId
		c.ProfileImageId = &id
	}
	return c
}

// Response is the envelope of every API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}
