package models

// ActivityState enumerates the two states an activity can be in.
type ActivityState string

const (
	ActivityPending ActivityState = "Pending"
	ActivityDone    ActivityState = "Done"
)

// Activity is a graded piece of work attached to a topic.
type Activity struct {
	ID          int64         `db:"actividadid" json:"id"`
	Description string        `db:"descripcion" json:"description"`
	State       ActivityState `db:"estado" json:"state"`
	TopicID     int64         `db:"temaid" json:"topic_id"`
}

// ActivityView carries the owning topic's title for display.
type ActivityView struct {
	Activity
	TopicTitle string `json:"topic_title"`
}
