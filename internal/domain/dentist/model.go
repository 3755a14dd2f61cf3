package dentist

import "time"

// Dentist maps to the dentist table. Name and email are stored encrypted;
// logins match on email_hash.
type Dentist struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PIIFields implements hipaa.Record.
func (d *Dentist) PIIFields() map[string]*string {
	return map[string]*string{
		"name":  &d.Name,
		"email": &d.Email,
	}
}
