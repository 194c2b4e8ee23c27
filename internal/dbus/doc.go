// Package dbus exposes notext on the session bus.
// It serves org.freedesktop.Notifications for producers and a control
// interface for the operator, emits the NotificationClosed and ActionInvoked
// signals, and provides the clients the notext CLI uses.
package dbus
