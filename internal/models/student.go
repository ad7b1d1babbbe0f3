package models

// Student mirrors Teacher: a named person holding a required role reference.
type Student struct {
	ID     int64  `db:"estudianteid" json:"id"`
	Name   string `db:"nombre" json:"name"`
	RoleID int64  `db:"rolid" json:"role_id"`
}

// StudentView enriches a student with its role name for display.
type StudentView struct {
	Student
	RoleName string `json:"role_name"`
}
