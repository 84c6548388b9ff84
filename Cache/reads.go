package Cache

import (
	"github.com/ArthurLima05/app.renatalyra/Models"
)

func (m *Mirror) Patients() ([]Models.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Patient(nil), m.patients...), nil
}

func (m *Mirror) Professionals() ([]Models.Professional, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Professional(nil), m.professionals...), nil
}

func (m *Mirror) Sessions() ([]Models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Session(nil), m.sessions...), nil
}

func (m *Mirror) Installments() ([]Models.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Installment(nil), m.installments...), nil
}

func (m *Mirror) Transactions() ([]Models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Transaction(nil), m.transactions...), nil
}

func (m *Mirror) Appointments() ([]Models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Appointment(nil), m.appointments...), nil
}

func (m *Mirror) Notifications() ([]Models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Notification(nil), m.notifications...), nil
}

func (m *Mirror) Feedbacks() ([]Models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, ErrNotReady
	}
	return append([]Models.Feedback(nil), m.feedbacks...), nil
}
