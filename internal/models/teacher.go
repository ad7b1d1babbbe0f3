package models

// Teacher is an instructor row; RoleID must resolve to a Role at display time.
type Teacher struct {
	ID     int64  `db:"docenteid" json:"id"`
	Name   string `db:"nombre" json:"name"`
	RoleID int64  `db:"rolid" json:"role_id"`
}

// TeacherView enriches a teacher with its role name for display.
type TeacherView struct {
	Teacher
	RoleName string `json:"role_name"`
}
