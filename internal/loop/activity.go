package loop

import (
	"sync"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

const defaultActivityCapacity = 50

// ActivityFeed is a bounded, newest-evicts-oldest ring of recent controller
// events: pure observability sugar over the control loop's own steps. It
// never feeds back into a decision.
type ActivityFeed struct {
	mu       sync.RWMutex
	capacity int
	events   []models.ActivityEvent
}

func NewActivityFeed(capacity int) *ActivityFeed {
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityFeed{capacity: capacity}
}

func (f *ActivityFeed) Record(event models.ActivityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
	if len(f.events) > f.capacity {
		f.events = f.events[len(f.events)-f.capacity:]
	}
}

// Recent returns the events currently held, oldest first.
func (f *ActivityFeed) Recent() []models.ActivityEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.ActivityEvent, len(f.events))
	copy(out, f.events)
	return out
}
