package models

// Task records class/homework follow-up notes against a topic.
type Task struct {
	ID              int64  `db:"tareaid" json:"id"`
	Notes           string `db:"observaciones" json:"notes"`
	ClassTaught     bool   `db:"claseimpartida" json:"class_taught"`
	ActivityPending bool   `db:"actividadpendiente" json:"activity_pending"`
	TopicID         int64  `db:"temaid" json:"topic_id"`
}

// TaskView carries the owning topic's title for display.
type TaskView struct {
	Task
	TopicTitle string `json:"topic_title"`
}
