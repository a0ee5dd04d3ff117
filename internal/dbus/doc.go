// Package dbus exposes a running window stack on the session bus, so scripts
// and keybindings can push and pop windows and follow removals.
package dbus
