package systemd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier reports service state to the service manager. Outside of a
// systemd unit every call is a silent no-op.
type Notifier struct {
	notify   func(state string) (bool, error)
	interval func() (time.Duration, error)
}

// NewNotifier creates a notifier talking to $NOTIFY_SOCKET
func NewNotifier() *Notifier {
	return &Notifier{
		notify: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
		interval: func() (time.Duration, error) {
			return daemon.SdWatchdogEnabled(false)
		},
	}
}

// Ready signals that startup finished
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping signals that shutdown began
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// Status publishes a free-form status line
func (n *Notifier) Status(format string, args ...any) {
	n.send("STATUS=" + fmt.Sprintf(format, args...))
}

// Watchdog pings the service manager at half the configured watchdog
// interval until ctx ends. It returns at once when no watchdog is set up.
func (n *Notifier) Watchdog(ctx context.Context) {
	interval, err := n.interval()
	if err != nil {
		log.Printf("[systemd] watchdog: %v", err)
		return
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}

func (n *Notifier) send(state string) {
	if _, err := n.notify(state); err != nil {
		log.Printf("[systemd] notify %q: %v", state, err)
	}
}
