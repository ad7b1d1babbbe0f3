package models

// Role is a catalog entry referenced by teachers and students.
type Role struct {
	ID   int64  `db:"rolid" json:"id"`
	Name string `db:"nombrerol" json:"name"`
}
