package autosaveController

import (
	"context"
	"server/internal/logger"
	"sync"
	"time"
)

// SaveState is the autosave lifecycle of one wizard session.
type SaveState string

const (
	StateClean  SaveState = "clean"
	StateDirty  SaveState = "dirty"
	StateSaving SaveState = "saving"
)

// Status is pushed to the client after every transition so the UI can
// render the saved/saving/offline indicator.
type Status struct {
	State     SaveState `json:"state"`
	Online    bool      `json:"online"`
	LastSaved time.Time `json:"lastSaved,omitzero"`
	LastError string    `json:"lastError,omitempty"`
}

// SaveFunc persists the session's current snapshot.
type SaveFunc func(ctx context.Context) error

// Controller drives when a wizard session's form state is pushed into the
// draft store: a periodic timer while dirty, plus immediate attempts on
// step transitions, tab hide, and the offline-to-online edge. There is one
// controller per session and it is the session's only writer; a failed
// save leaves the state dirty so the next trigger retries.
type Controller struct {
	mu        sync.Mutex
	state     SaveState
	online    bool
	lastSaved time.Time
	lastError string

	interval time.Duration
	save     SaveFunc
	onStatus func(Status)
	stop     chan struct{}
	stopOnce sync.Once
	log      logger.Logger
}

func New(interval time.Duration, save SaveFunc, onStatus func(Status)) *Controller {
	return &Controller{
		state:    StateClean,
		online:   true,
		interval: interval,
		save:     save,
		onStatus: onStatus,
		stop:     make(chan struct{}),
		log:      logger.New("AutosaveController"),
	}
}

// Start runs the periodic save loop until Stop.
func (c *Controller) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.trySave(context.Background())
			case <-c.stop:
				return
			}
		}
	}()
}

func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// MarkDirty records a form field change.
func (c *Controller) MarkDirty() {
	c.mu.Lock()
	// A change while a save is in flight re-dirties the session so the
	// completing save cannot mark it clean.
	c.state = StateDirty
	c.mu.Unlock()
	c.notify()
}

// StepChanged saves immediately on a wizard step transition, independent
// of the timer phase.
func (c *Controller) StepChanged(ctx context.Context) {
	c.MarkDirty()
	c.trySave(ctx)
}

// VisibilityHidden attempts a silent save when the tab goes hidden.
func (c *Controller) VisibilityHidden(ctx context.Context) {
	c.trySave(ctx)
}

// SetOnline records connectivity. While offline saves are suppressed
// entirely; the offline-to-online edge with pending changes reattempts the
// save.
func (c *Controller) SetOnline(ctx context.Context, online bool) {
	c.mu.Lock()
	wasOnline := c.online
	c.online = online
	pending := c.state == StateDirty
	c.mu.Unlock()

	c.notify()

	if online && !wasOnline && pending {
		c.trySave(ctx)
	}
}

// Flush is the explicit user save action.
func (c *Controller) Flush(ctx context.Context) {
	c.trySave(ctx)
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.state,
		Online:    c.online,
		LastSaved: c.lastSaved,
		LastError: c.lastError,
	}
}

func (c *Controller) trySave(ctx context.Context) {
	c.mu.Lock()
	if !c.online || c.state != StateDirty {
		c.mu.Unlock()
		return
	}
	c.state = StateSaving
	c.mu.Unlock()
	c.notify()

	err := c.save(ctx)

	c.mu.Lock()
	if err != nil {
		// Never mark clean on failure; a later trigger retries.
		c.state = StateDirty
		c.lastError = err.Error()
	} else {
		if c.state == StateSaving {
			c.state = StateClean
		}
		c.lastSaved = time.Now()
		c.lastError = ""
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Function("trySave").Er("autosave failed", err)
	}
	c.notify()
}

func (c *Controller) notify() {
	if c.onStatus == nil {
		return
	}
	c.onStatus(c.Status())
}
