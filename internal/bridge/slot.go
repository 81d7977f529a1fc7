package bridge

// connSlot owns at most one pending connection attempt plus the connection
// it most recently produced. Arming a new attempt abandons the previous one
// in place; the established value survives until a later attempt resolves
// successfully.
type connSlot[C any] struct {
	pending *Task[C]
	value   C
	ok      bool
}

// arm replaces the pending attempt with t.
func (s *connSlot[C]) arm(t *Task[C]) {
	s.pending = t
}

// poll advances the pending attempt by one non-blocking check. When the
// attempt resolves, the handle is consumed: a success is stored as the
// slot's value and a failure is returned for the caller to classify. The
// attempt is never re-armed after resolution.
func (s *connSlot[C]) poll() (resolved bool, err error) {
	if s.pending == nil {
		return false, nil
	}
	value, err, done := s.pending.Poll()
	if !done {
		return false, nil
	}
	s.pending = nil
	if err != nil {
		return true, err
	}
	s.value = value
	s.ok = true
	return true, nil
}

// get returns the established connection, if any.
func (s *connSlot[C]) get() (C, bool) {
	return s.value, s.ok
}
