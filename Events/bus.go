package Events

import (
	"sync"
	"time"
)

// Change operations, mirroring what the store reports after a write.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Table names used as subscription keys.
const (
	TablePatients      = "patients"
	TableProfessionals = "professionals"
	TableSessions      = "sessions"
	TableInstallments  = "installments"
	TableTransactions  = "transactions"
	TableAppointments  = "appointments"
	TableNotifications = "notifications"
	TableFeedbacks     = "feedbacks"
)

// Tables lists every collection the cache mirrors.
var Tables = []string{
	TablePatients,
	TableProfessionals,
	TableSessions,
	TableInstallments,
	TableTransactions,
	TableAppointments,
	TableNotifications,
	TableFeedbacks,
}

// ChangeEvent tells subscribers that a row of Table was written. Row holds the
// post-write model value for inserts and updates; for deletes only ID is set.
type ChangeEvent struct {
	Op    string
	Table string
	ID    uint
	Row   interface{}
}

// Bus fans change events out to per-table subscribers. Writers publish after
// the store write succeeded, never before.
type Bus struct {
	subscribers map[string]map[chan ChangeEvent]bool
	mu          sync.Mutex
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[chan ChangeEvent]bool),
	}
}

// Subscribe returns a channel receiving every event published for table.
func (b *Bus) Subscribe(table string) chan ChangeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[table] == nil {
		b.subscribers[table] = make(map[chan ChangeEvent]bool)
	}
	ch := make(chan ChangeEvent, 16)
	b.subscribers[table][ch] = true
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(table string, ch chan ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.subscribers[table]; ok {
		if subs[ch] {
			delete(subs, ch)
			close(ch)
		}
	}
}

// Publish delivers the event to every subscriber of its table. A subscriber
// that stays full past the grace period is dropped, the same way the SSE
// broadcaster sheds unresponsive clients.
func (b *Bus) Publish(event ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[event.Table] {
		select {
		case ch <- event:
		case <-time.After(1 * time.Second):
			delete(b.subscribers[event.Table], ch)
			close(ch)
		}
	}
}

// Default is the process-wide bus the HTTP handlers publish to.
var Default = NewBus()
