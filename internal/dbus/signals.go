package dbus

import (
	"fmt"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
	"github.com/jmylchreest/winstack/internal/stack"
)

// StackServer is also a stack.Delegate: removals and finished transitions are
// broadcast as signals.
var _ stack.Delegate = (*StackServer)(nil)

func (s *StackServer) OnPan(any, gesture.WindowType, geometry.Frame) {}

func (s *StackServer) OnWillAnimate(any, gesture.WindowType, animation.Style, geometry.Frame) {}

// OnDidAnimate emits WindowAnimated. It also fires for a transition that was
// superseded, so y is where the transition was headed, not where the window is.
func (s *StackServer) OnDidAnimate(content any, _ gesture.WindowType, style animation.Style, frame geometry.Frame) {
	id, _ := cardIdentity(content)
	if err := s.emit("WindowAnimated", id, style.String(), frame.Origin.Y); err != nil {
		s.logger.Debug("failed to emit WindowAnimated signal", "id", id, "error", err)
	}
}

// OnDidRemove emits WindowRemoved.
func (s *StackServer) OnDidRemove(content any, t gesture.WindowType) {
	id, title := cardIdentity(content)
	if err := s.emit("WindowRemoved", id, title, t.String()); err != nil {
		s.logger.Debug("failed to emit WindowRemoved signal", "id", id, "error", err)
		return
	}
	s.logger.Debug("emitted WindowRemoved signal", "id", id, "title", title)
}

func (s *StackServer) emitOnBus(name string, args ...any) error {
	s.mu.Lock()
	conn, running := s.conn, s.running
	s.mu.Unlock()
	if !running {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := conn.Emit(DBusPath, DBusInterface+"."+name, args...); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", name, err)
	}
	return nil
}

func cardIdentity(content any) (id, title string) {
	switch c := content.(type) {
	case *journal.Card:
		return c.ID, c.Title
	case fmt.Stringer:
		return "", c.String()
	default:
		return "", fmt.Sprint(content)
	}
}
