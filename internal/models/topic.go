package models

// Topic is a course topic taught by a teacher.
type Topic struct {
	ID        int64  `db:"temaid" json:"id"`
	Title     string `db:"titulo" json:"title"`
	TeacherID int64  `db:"docenteid" json:"teacher_id"`
}

// TopicView carries the teacher's name alongside the foreign key.
type TopicView struct {
	Topic
	TeacherName string `json:"teacher_name"`
}
