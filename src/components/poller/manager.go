package poller

import (
	"context"
	"sync"
	"time"
)

// Manager runs the polling loops on their timers. The discovery and queue
// loops share the short queue interval; the availability loop runs on its
// own longer one. A loop never re-enters itself: the next tick only fires
// after the previous body finished.
type Manager struct {
	poller               *Poller
	queueInterval        time.Duration
	availabilityInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(p *Poller, queueInterval, availabilityInterval time.Duration) *Manager {
	return &Manager{
		poller:               p,
		queueInterval:        queueInterval,
		availabilityInterval: availabilityInterval,
	}
}

func (m *Manager) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	m.cancel = cancel

	// Discovery runs once immediately so requests created while the bot was
	// down are picked up without waiting a full interval.
	m.poller.PollRequests(ctx)

	m.wg.Add(3)
	go m.run(ctx, m.queueInterval, "request poll", m.poller.PollRequests)
	go m.run(ctx, m.queueInterval, "queue poll", m.poller.PollQueues)
	go m.run(ctx, m.availabilityInterval, "availability check", m.poller.CheckAvailability)
}

func (m *Manager) run(ctx context.Context, interval time.Duration, name string, fn func(context.Context)) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.poller.logger.Printf("poller: stopping %s loop", name)
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// Stop cancels the loops and waits for in-flight cycles to finish. No hard
// abort: whatever a loop started it gets to complete.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
