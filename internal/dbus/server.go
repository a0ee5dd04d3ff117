package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
)

const (
	// DBusInterface is the stack control interface name.
	DBusInterface = "io.github.jmylchreest.Winstack"
	// DBusPath is the stack object path.
	DBusPath = dbus.ObjectPath("/io/github/jmylchreest/Winstack")
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.Winstack"
)

// Controller applies remote requests to a stack. Calls arrive on the bus
// goroutine, so implementations hand them to whatever owns the stack.
type Controller interface {
	Push(card *journal.Card, t gesture.WindowType, style animation.Style)
	Pop(animated bool)
	SetOffset(y float64, style animation.Style)
}

// StackServer implements the io.github.jmylchreest.Winstack interface.
type StackServer struct {
	conn       *dbus.Conn
	logger     *slog.Logger
	controller Controller

	mu      sync.Mutex
	running bool

	// emit sends a signal; replaced in tests.
	emit func(name string, args ...any) error
}

// NewStackServer creates a StackServer forwarding requests to controller.
func NewStackServer(controller Controller, logger *slog.Logger) *StackServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StackServer{
		logger:     logger,
		controller: controller,
	}
	s.emit = s.emitOnBus
	return s
}

// Start connects to the session bus and exports the stack object.
func (s *StackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(DBusPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: stackMethods(),
				Signals: stackSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus stack server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name and unexports the object.
func (s *StackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, DBusPath, DBusInterface)
	// Don't close the connection as it's shared (SessionBus)

	s.logger.Info("D-Bus stack server stopped")
	return nil
}

// Push adds a window and returns its ID.
// D-Bus method: Push(ssssb) -> s
func (s *StackServer) Push(title, body, windowType, style string, locked bool) (string, *dbus.Error) {
	t, err := gesture.ParseWindowType(windowType)
	if err != nil {
		return "", invalidArgs(err)
	}
	st, err := animation.ParseStyle(style)
	if err != nil {
		return "", invalidArgs(err)
	}
	if title == "" {
		return "", invalidArgs(fmt.Errorf("title is required"))
	}

	card := journal.NewCard(title, body)
	card.Locked = locked
	s.logger.Debug("Push called", "id", card.ID, "title", title, "type", t, "style", st)
	s.controller.Push(card, t, st)
	return card.ID, nil
}

// Pop removes the top window.
// D-Bus method: Pop(b) -> nothing
func (s *StackServer) Pop(animated bool) *dbus.Error {
	s.logger.Debug("Pop called", "animated", animated)
	s.controller.Pop(animated)
	return nil
}

// SetOffset moves the top window.
// D-Bus method: SetOffset(ds) -> nothing
func (s *StackServer) SetOffset(y float64, style string) *dbus.Error {
	st, err := animation.ParseStyle(style)
	if err != nil {
		return invalidArgs(err)
	}
	if y < 0 {
		return invalidArgs(fmt.Errorf("offset must not be negative, got %v", y))
	}
	s.logger.Debug("SetOffset called", "y", y, "style", st)
	s.controller.SetOffset(y, st)
	return nil
}

func invalidArgs(err error) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", []any{err.Error()})
}

// stackMethods returns the D-Bus method introspection data.
func stackMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Push",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "window_type", Type: "s", Direction: "in"},
				{Name: "style", Type: "s", Direction: "in"},
				{Name: "locked", Type: "b", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Pop",
			Args: []introspect.Arg{
				{Name: "animated", Type: "b", Direction: "in"},
			},
		},
		{
			Name: "SetOffset",
			Args: []introspect.Arg{
				{Name: "y", Type: "d", Direction: "in"},
				{Name: "style", Type: "s", Direction: "in"},
			},
		},
	}
}

// stackSignals returns the D-Bus signal introspection data.
func stackSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "WindowRemoved",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "title", Type: "s"},
				{Name: "window_type", Type: "s"},
			},
		},
		{
			Name: "WindowAnimated",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "style", Type: "s"},
				{Name: "y", Type: "d"},
			},
		},
	}
}
