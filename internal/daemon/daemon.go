package daemon

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/notext/internal/model"
	"github.com/jmylchreest/notext/internal/registry"
)

// DefaultExpireTimeout is used for the -1 sentinel when no config overrides it.
const DefaultExpireTimeout = 5 * time.Second

// expiredReason is the close reason reported when a timer removes a
// notification. Clients of notext observe expiry as reason 3.
const expiredReason = model.CloseReasonClosed

// Emitter delivers the notification service's signals.
type Emitter interface {
	NotificationClosed(id uint32, reason model.CloseReason) error
	ActionInvoked(id uint32, actionKey string) error
}

// Options configures a Daemon.
type Options struct {
	DefaultTimeout time.Duration // Used for expire_timeout -1
	MaxTimeout     time.Duration // Clamp for explicit timeouts, 0 = none
	Logger         *slog.Logger
}

// Daemon coordinates the registry, the expiry timers and the change stream.
// It implements both the submission surface (Notify, CloseNotification) and
// the control surface (CloseCurrent, ExpandCurrent, Next, Prev, Invoke).
type Daemon struct {
	registry *registry.Registry
	changes  *registry.Changes
	expiry   *Scheduler
	emitter  Emitter
	logger   *slog.Logger

	defaultTimeout atomic.Int64
	maxTimeout     atomic.Int64

	now func() time.Time
}

// New creates a Daemon over an existing registry and change stream.
func New(reg *registry.Registry, changes *registry.Changes, emitter Emitter, opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Daemon{
		registry: reg,
		changes:  changes,
		emitter:  emitter,
		logger:   logger,
		now:      time.Now,
	}
	d.expiry = NewScheduler(d.expire, logger)

	def := opts.DefaultTimeout
	if def <= 0 {
		def = DefaultExpireTimeout
	}
	d.SetTimeouts(def, opts.MaxTimeout)
	return d
}

// SetTimeouts changes the default and maximum expire timeouts. Timers that
// are already armed keep their duration.
func (d *Daemon) SetTimeouts(def, limit time.Duration) {
	d.defaultTimeout.Store(int64(def))
	d.maxTimeout.Store(int64(limit))
}

// Timeouts returns the current default and maximum expire timeouts.
func (d *Daemon) Timeouts() (def, limit time.Duration) {
	return time.Duration(d.defaultTimeout.Load()), time.Duration(d.maxTimeout.Load())
}

// Notify creates or replaces a notification and returns its id.
//
// Any submission that lands in the registry re-arms the id's timer from its
// own expire_timeout, so a replacement restarts the countdown and a
// replacement with timeout 0 stops it.
func (d *Daemon) Notify(s model.Submission) (uint32, error) {
	if err := s.Validate(); err != nil {
		return 0, fmt.Errorf("invalid notification from %q: %w", s.AppName, err)
	}

	res := d.registry.Submit(s, d.now())

	def, limit := d.Timeouts()
	if after, ok := model.Expiry(s.ExpireTimeout, def, limit); ok {
		d.expiry.Schedule(res.ID, res.Revision, after)
	} else {
		d.expiry.Cancel(res.ID)
	}

	kind := registry.EventSubmitted
	if res.Replaced {
		kind = registry.EventReplaced
	}
	d.changes.Publish(registry.Event{Kind: kind, ID: res.ID})

	d.logger.Debug("notification stored",
		"id", res.ID,
		"app_name", s.AppName,
		"replaced", res.Replaced,
		"index", res.Index,
		"expire_timeout", s.ExpireTimeout,
	)
	return res.ID, nil
}

// CloseNotification removes a notification on its producer's request.
// Closing an id that is not active is a no-op.
func (d *Daemon) CloseNotification(id uint32) error {
	_, err := d.close(registry.ByID(id), model.CloseReasonClosed)
	return err
}

// CloseCurrent dismisses the selected notification.
func (d *Daemon) CloseCurrent() error {
	_, err := d.close(registry.Selected(), model.CloseReasonDismissed)
	return err
}

// ExpandCurrent asks the renderer for the full view of the selected notification.
func (d *Daemon) ExpandCurrent() error {
	var id uint32
	if n, _, ok := d.registry.Current(); ok {
		id = n.ID
	}
	d.changes.Publish(registry.Event{Kind: registry.EventExpanded, ID: id})
	return nil
}

// Next selects the following notification, wrapping around.
func (d *Daemon) Next() error {
	d.navigate(d.registry.Next)
	return nil
}

// Prev selects the preceding notification, wrapping around.
func (d *Daemon) Prev() error {
	d.navigate(d.registry.Prev)
	return nil
}

func (d *Daemon) navigate(step func() bool) {
	if !step() {
		return
	}
	var id uint32
	if n, _, ok := d.registry.Current(); ok {
		id = n.ID
	}
	d.changes.Publish(registry.Event{Kind: registry.EventNavigated, ID: id})
}

// Invoke emits the default action for the selected notification.
func (d *Daemon) Invoke() error {
	n, _, ok := d.registry.Current()
	if !ok {
		return nil
	}
	if err := d.emitter.ActionInvoked(n.ID, model.DefaultActionKey); err != nil {
		return fmt.Errorf("failed to invoke action on %d: %w", n.ID, err)
	}
	d.logger.Debug("action invoked", "id", n.ID, "action_key", model.DefaultActionKey)
	return nil
}

// List returns the active notifications in display order.
func (d *Daemon) List() []model.Notification {
	return d.registry.List()
}

// Status returns what the renderer currently shows.
func (d *Daemon) Status() registry.View {
	return d.registry.Snapshot()
}

// Changes returns the stream the renderer drains.
func (d *Daemon) Changes() *registry.Changes {
	return d.changes
}

// Stop cancels pending timers and closes the change stream.
func (d *Daemon) Stop() {
	d.expiry.Stop()
	d.changes.Close()
}

// expire is the timer callback. The notification may already be gone, or
// replaced after the timer fired; only the submission it was armed for is removed.
func (d *Daemon) expire(id uint32, rev uint64) {
	closed, err := d.close(registry.ByRevision(id, rev), expiredReason)
	if err != nil {
		d.logger.Warn("failed to report expired notification", "id", id, "error", err)
		return
	}
	if !closed {
		d.logger.Debug("expiry for inactive notification ignored", "id", id)
	}
}

// close is the single removal path: remove, cancel the timer, signal, publish.
func (d *Daemon) close(loc registry.Locator, reason model.CloseReason) (bool, error) {
	n, ok := d.registry.Remove(loc)
	if !ok {
		return false, nil
	}
	d.expiry.Cancel(n.ID)

	err := d.emitter.NotificationClosed(n.ID, reason)
	d.changes.Publish(registry.Event{Kind: registry.EventClosed, ID: n.ID})

	d.logger.Debug("notification closed", "id", n.ID, "locator", loc, "reason", reason.String())
	if err != nil {
		return true, fmt.Errorf("failed to report close of %d: %w", n.ID, err)
	}
	return true, nil
}
