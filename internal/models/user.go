package models

// User is an account allowed to sign in to the admin panel.
type User struct {
	ID           int64  `db:"usuarioid" json:"id"`
	Name         string `db:"nombre" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Active       bool   `db:"activo" json:"active"`
}
