package models

// Grade scores a student on an activity. Both references are required.
type Grade struct {
	ID         int64   `db:"calificacionid" json:"id"`
	StudentID  int64   `db:"estudianteid" json:"student_id"`
	ActivityID int64   `db:"actividadid" json:"activity_id"`
	Score      float64 `db:"puntuacion" json:"score"`
}

// GradeView joins both references into display fields.
type GradeView struct {
	Grade
	StudentName         string `json:"student_name"`
	ActivityDescription string `json:"activity_description"`
}
