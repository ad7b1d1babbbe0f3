package screen

// Session tracks whether the screen's single form targets creation of a new
// record or an update of an existing one. A screen owns exactly one session;
// starting an edit while another is active simply retargets it.
type Session struct {
	editing bool
	target  int64
}

// StartEdit switches the session to Editing(id), replacing any current target.
func (s *Session) StartEdit(id int64) {
	s.editing = true
	s.target = id
}

// Editing returns the current edit target, if any.
func (s *Session) Editing() (int64, bool) {
	if !s.editing {
		return 0, false
	}
	return s.target, true
}

// Finish returns the session to Idle after a successful submission.
func (s *Session) Finish() {
	s.editing = false
	s.target = 0
}

// Cancel abandons the current edit without submitting.
func (s *Session) Cancel() {
	s.Finish()
}
