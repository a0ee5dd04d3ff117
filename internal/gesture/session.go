package gesture

// Session is the per-pan state captured when a pan begins.
type Session struct {
	active  bool
	originY float64
}

// Begin starts a session anchored at the surface's current vertical offset.
func (s *Session) Begin(originY float64) {
	s.active = true
	s.originY = originY
}

// Active reports whether a pan is in progress.
func (s *Session) Active() bool {
	return s.active
}

// OriginY returns the offset captured at Begin.
func (s *Session) OriginY() float64 {
	return s.originY
}

// Offset converts a translation since Begin into an absolute offset.
func (s *Session) Offset(translationY float64) float64 {
	return s.originY + translationY
}

// End discards the session.
func (s *Session) End() {
	s.active = false
	s.originY = 0
}
