package countdown

// Slot holds at most one live Producer.
//
// Replace releases the current occupant before installing the next one, so
// two producers are never live at once. The zero value is an empty slot.
// Slot is not safe for concurrent use; guard it with the same lock that
// serialises producer deliveries.
type Slot struct {
	current *Producer
}

// Replace releases the current producer, if any, and installs p.
// A nil p leaves the slot empty.
func (s *Slot) Replace(p *Producer) {
	if s.current != nil {
		s.current.Release()
	}
	s.current = p
}

// Release empties the slot.
func (s *Slot) Release() {
	s.Replace(nil)
}

// Holds reports whether p is the current occupant.
func (s *Slot) Holds(p *Producer) bool {
	return p != nil && s.current == p
}

// Active reports whether a producer that has neither finished nor been
// released occupies the slot.
func (s *Slot) Active() bool {
	return s.current != nil && !s.current.released && !s.current.finished
}
