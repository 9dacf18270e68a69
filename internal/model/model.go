package model

// ContactRow is one row of the contacts table. The phone number and the address are kept as
// serialized JSON text.
type ContactRow struct {
	Id             string  `db:"id"`
	FirstName      string  `db:"firstName"`
	LastName       string  `db:"lastName"`
	Email          string  `db:"email"`
	PhoneNumber    string  `db:"phoneNumber"`
	Address        string  `db:"address"`
	ProfileImageId *string `db:"profileImageId"`
}

// ContactRowPatch holds the columns of a partial update. Nil fields are not written.
type ContactRowPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Address        *string
	ProfileImageId *string
}

// IsEmpty reports whether no column would be written.
func (p ContactRowPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.PhoneNumber == nil && p.Address == nil && p.ProfileImageId == nil
}

// Image is one row of the images table.
type Image struct {
	Id   string `db:"id"`
	Data []byte `db:"data"`
}
