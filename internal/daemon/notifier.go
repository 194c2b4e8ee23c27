package daemon

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/notext/internal/model"
)

// internalAppName is the app_name of notifications notextd posts about itself.
const internalAppName = "notextd"

// internalTimeout keeps internal notices on screen for 5 seconds.
const internalTimeout int32 = 5000

// SubmitFunc stores a notification and returns its id.
type SubmitFunc func(s model.Submission) (uint32, error)

// InternalNotifier posts notifications about notextd's own events through the
// normal submission path. Each key is rate limited so a flapping config file
// cannot flood the registry.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	submit SubmitFunc

	limiters    map[string]*rate.Limiter
	minInterval time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(submit SubmitFunc, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:      logger,
		submit:      submit,
		limiters:    make(map[string]*rate.Limiter),
		minInterval: 5 * time.Second,
		enabled:     true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if interval == n.minInterval {
		return
	}
	n.minInterval = interval
	n.limiters = make(map[string]*rate.Limiter)
}

// Notify posts a notification unless disabled or rate limited.
// It reports whether a notification was posted.
func (n *InternalNotifier) Notify(key, summary, body string) bool {
	n.mu.Lock()
	if !n.enabled || n.submit == nil {
		n.mu.Unlock()
		return false
	}
	lim, ok := n.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(n.minInterval), 1)
		n.limiters[key] = lim
	}
	allowed := lim.Allow()
	submit := n.submit
	n.mu.Unlock()

	if !allowed {
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return false
	}

	id, err := submit(model.Submission{
		AppName:       internalAppName,
		Summary:       summary,
		Body:          body,
		ExpireTimeout: internalTimeout,
	})
	if err != nil {
		n.logger.Warn("failed to post internal notification", "key", key, "error", err)
		return false
	}
	n.logger.Debug("sent internal notification", "key", key, "id", id, "summary", summary)
	return true
}

// NotifyConfigReloaded sends a notification about config being reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() bool {
	return n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"notextd configuration has been successfully reloaded.",
	)
}

// NotifyConfigError sends a notification about a config that failed validation.
func (n *InternalNotifier) NotifyConfigError(err error) bool {
	return n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
	)
}
