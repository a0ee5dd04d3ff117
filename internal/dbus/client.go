package dbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls a running stack server.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{conn: conn, obj: conn.Object(DBusBusName, DBusPath)}, nil
}

// Push adds a window and returns its ID.
func (c *Client) Push(ctx context.Context, title, body, windowType, style string, locked bool) (string, error) {
	var id string
	call := c.obj.CallWithContext(ctx, DBusInterface+".Push", 0, title, body, windowType, style, locked)
	if err := call.Store(&id); err != nil {
		return "", callError("Push", err)
	}
	return id, nil
}

// Pop removes the top window.
func (c *Client) Pop(ctx context.Context, animated bool) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+".Pop", 0, animated).Err; err != nil {
		return callError("Pop", err)
	}
	return nil
}

// SetOffset moves the top window.
func (c *Client) SetOffset(ctx context.Context, y float64, style string) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+".SetOffset", 0, y, style).Err; err != nil {
		return callError("SetOffset", err)
	}
	return nil
}

// Removed is a WindowRemoved signal.
type Removed struct {
	ID         string
	Title      string
	WindowType string
}

// WatchRemovals delivers WindowRemoved signals until ctx is done.
func (c *Client) WatchRemovals(ctx context.Context, fn func(Removed)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("WindowRemoved"),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return fmt.Errorf("failed to add signal match: %w", err)
	}
	defer c.conn.RemoveMatchSignal(opts...) //nolint:errcheck

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-signals:
			if r, ok := parseRemoved(sig); ok {
				fn(r)
			}
		}
	}
}

func parseRemoved(sig *dbus.Signal) (Removed, bool) {
	if sig == nil || sig.Name != DBusInterface+".WindowRemoved" || len(sig.Body) != 3 {
		return Removed{}, false
	}
	var r Removed
	var ok1, ok2, ok3 bool
	r.ID, ok1 = sig.Body[0].(string)
	r.Title, ok2 = sig.Body[1].(string)
	r.WindowType, ok3 = sig.Body[2].(string)
	return r, ok1 && ok2 && ok3
}

func callError(method string, err error) error {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
		return fmt.Errorf("no winstack TUI is running with --dbus")
	}
	return fmt.Errorf("%s failed: %w", method, err)
}
