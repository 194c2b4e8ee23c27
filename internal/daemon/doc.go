// Package daemon provides the main orchestration for notextd.
// It serves both bus surfaces from one coordinator: producers submit and
// close notifications, the operator navigates, dismisses and invokes the
// selected one, and per-notification timers expire the rest. Every change is
// published to the registry's change stream for the renderer.
package daemon
