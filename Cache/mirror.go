package Cache

import (
	"errors"
	"log"
	"sync"

	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"gorm.io/gorm"
)

// ErrNotReady is returned for reads issued before every bulk load finished or
// after Stop.
var ErrNotReady = errors.New("cache mirror is not ready")

// Mirror keeps an in-memory copy of every collection, populated by one bulk
// load per table and kept fresh by change events from the bus. All mutations
// happen on the single consumer goroutine; reads copy under a read lock.
//
// Sessions carry a denormalized patient name, so session and patient events
// trigger a full re-fetch of the sessions collection instead of a row patch.
type Mirror struct {
	db  *gorm.DB
	bus *Events.Bus

	mu            sync.RWMutex
	ready         bool
	patients      []Models.Patient
	professionals []Models.Professional
	sessions      []Models.Session
	installments  []Models.Installment
	transactions  []Models.Transaction
	appointments  []Models.Appointment
	notifications []Models.Notification
	feedbacks     []Models.Feedback

	channels map[string]chan Events.ChangeEvent
	events   chan Events.ChangeEvent
	done     chan struct{}
	stopped  sync.Once
}

func NewMirror(db *gorm.DB, bus *Events.Bus) *Mirror {
	return &Mirror{
		db:       db,
		bus:      bus,
		channels: make(map[string]chan Events.ChangeEvent),
		events:   make(chan Events.ChangeEvent, 64),
		done:     make(chan struct{}),
	}
}

// Start bulk-loads every collection in parallel, then subscribes to the bus
// and begins applying change events. The mirror is unreadable until Start
// returns nil.
func (m *Mirror) Start() error {
	loads := []func() error{
		func() error { return m.db.Find(&m.patients).Error },
		func() error { return m.db.Find(&m.professionals).Error },
		func() error { return m.loadSessions() },
		func() error { return m.db.Find(&m.installments).Error },
		func() error { return m.db.Find(&m.transactions).Error },
		func() error { return m.db.Find(&m.appointments).Error },
		func() error { return m.db.Find(&m.notifications).Error },
		func() error { return m.db.Find(&m.feedbacks).Error },
	}

	var wg sync.WaitGroup
	errs := make([]error, len(loads))
	for i, load := range loads {
		wg.Add(1)
		go func(i int, load func() error) {
			defer wg.Done()
			errs[i] = load()
		}(i, load)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for _, table := range Events.Tables {
		ch := m.bus.Subscribe(table)
		m.channels[table] = ch
		go m.forward(table, ch)
	}
	go m.consume()

	m.mu.Lock()
	m.ready = true
	m.mu.Unlock()
	return nil
}

// Stop unsubscribes from the bus and marks the mirror unreadable.
func (m *Mirror) Stop() {
	m.stopped.Do(func() {
		close(m.done)
		m.mu.Lock()
		for table, ch := range m.channels {
			m.bus.Unsubscribe(table, ch)
		}
		m.ready = false
		m.mu.Unlock()
	})
}

// forward funnels one subscription into the single consumer channel, so cache
// mutations keep a single logical writer. If the bus sheds the subscription as
// stalled and closes it, the table would go silently stale; forward resubscribes
// and re-fetches the collection to catch up on whatever was missed.
func (m *Mirror) forward(table string, ch chan Events.ChangeEvent) {
	for {
		event, open := <-ch
		if !open {
			select {
			case <-m.done:
				return
			default:
			}
			log.Printf("cache: %s subscription dropped, resubscribing", table)
			ch = m.bus.Subscribe(table)
			m.mu.Lock()
			m.channels[table] = ch
			m.mu.Unlock()
			m.refetch(table)
			continue
		}
		select {
		case m.events <- event:
		case <-m.done:
			return
		}
	}
}

// refetch reloads one collection from the store after a dropped subscription.
// A failed reload flips ready off rather than serving data known to be stale.
func (m *Mirror) refetch(table string) {
	var err error
	switch table {
	case Events.TablePatients, Events.TableSessions:
		var patients []Models.Patient
		var sessions []Models.Session
		if err = m.db.Find(&patients).Error; err == nil {
			if err = m.db.Find(&sessions).Error; err == nil {
				fillPatientNames(sessions, patients)
				m.mu.Lock()
				m.patients = patients
				m.sessions = sessions
				m.mu.Unlock()
			}
		}
	case Events.TableProfessionals:
		var professionals []Models.Professional
		if err = m.db.Find(&professionals).Error; err == nil {
			m.mu.Lock()
			m.professionals = professionals
			m.mu.Unlock()
		}
	case Events.TableInstallments:
		var installments []Models.Installment
		if err = m.db.Find(&installments).Error; err == nil {
			m.mu.Lock()
			m.installments = installments
			m.mu.Unlock()
		}
	case Events.TableTransactions:
		var transactions []Models.Transaction
		if err = m.db.Find(&transactions).Error; err == nil {
			m.mu.Lock()
			m.transactions = transactions
			m.mu.Unlock()
		}
	case Events.TableAppointments:
		var appointments []Models.Appointment
		if err = m.db.Find(&appointments).Error; err == nil {
			m.mu.Lock()
			m.appointments = appointments
			m.mu.Unlock()
		}
	case Events.TableNotifications:
		var notifications []Models.Notification
		if err = m.db.Find(&notifications).Error; err == nil {
			m.mu.Lock()
			m.notifications = notifications
			m.mu.Unlock()
		}
	case Events.TableFeedbacks:
		var feedbacks []Models.Feedback
		if err = m.db.Find(&feedbacks).Error; err == nil {
			m.mu.Lock()
			m.feedbacks = feedbacks
			m.mu.Unlock()
		}
	}
	if err != nil {
		log.Printf("cache: %s re-fetch failed: %v", table, err)
		m.mu.Lock()
		m.ready = false
		m.mu.Unlock()
	}
}

func (m *Mirror) consume() {
	for {
		select {
		case event := <-m.events:
			m.apply(event)
		case <-m.done:
			return
		}
	}
}

func (m *Mirror) apply(event Events.ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event.Table {
	case Events.TableSessions, Events.TablePatients:
		// Denormalized patient names on sessions go stale on either table.
		if event.Table == Events.TablePatients {
			m.patients = patch(m.patients, event, func(p Models.Patient) uint { return p.ID })
		}
		var sessions []Models.Session
		if err := m.db.Find(&sessions).Error; err != nil {
			log.Printf("cache: sessions re-fetch failed: %v", err)
			return
		}
		fillPatientNames(sessions, m.patients)
		m.sessions = sessions
	case Events.TableProfessionals:
		m.professionals = patch(m.professionals, event, func(p Models.Professional) uint { return p.ID })
	case Events.TableInstallments:
		m.installments = patch(m.installments, event, func(i Models.Installment) uint { return i.ID })
	case Events.TableTransactions:
		m.transactions = patch(m.transactions, event, func(t Models.Transaction) uint { return t.ID })
	case Events.TableAppointments:
		m.appointments = patch(m.appointments, event, func(a Models.Appointment) uint { return a.ID })
	case Events.TableNotifications:
		m.notifications = patch(m.notifications, event, func(n Models.Notification) uint { return n.ID })
	case Events.TableFeedbacks:
		m.feedbacks = patch(m.feedbacks, event, func(f Models.Feedback) uint { return f.ID })
	default:
		log.Printf("cache: event for unknown table %q dropped", event.Table)
	}
}

// patch applies the minimal change for one event: append, replace-by-id or
// remove-by-id. A row of the wrong concrete type is a programming error and
// is logged loudly rather than silently coerced.
func patch[M any](list []M, event Events.ChangeEvent, idOf func(M) uint) []M {
	if event.Op == Events.OpDelete {
		out := list[:0]
		for _, item := range list {
			if idOf(item) != event.ID {
				out = append(out, item)
			}
		}
		return out
	}

	row, ok := event.Row.(M)
	if !ok {
		log.Printf("cache: %s event for %s carried %T, row dropped", event.Op, event.Table, event.Row)
		return list
	}

	switch event.Op {
	case Events.OpInsert, Events.OpUpdate:
		// A re-fetch after a dropped subscription can race events still in
		// flight, so an insert for a row already present replaces it instead
		// of duplicating; an update for a row never seen is added.
		for i := range list {
			if idOf(list[i]) == event.ID {
				list[i] = row
				return list
			}
		}
		return append(list, row)
	}
	return list
}

func (m *Mirror) loadSessions() error {
	if err := m.db.Find(&m.sessions).Error; err != nil {
		return err
	}
	var patients []Models.Patient
	if err := m.db.Find(&patients).Error; err != nil {
		return err
	}
	fillPatientNames(m.sessions, patients)
	return nil
}

func fillPatientNames(sessions []Models.Session, patients []Models.Patient) {
	names := make(map[uint]string, len(patients))
	for _, patient := range patients {
		names[patient.ID] = patient.Name
	}
	for i := range sessions {
		sessions[i].PatientName = names[sessions[i].PatientID]
	}
}
