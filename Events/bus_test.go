package Events

import (
	"testing"
	"time"
)

func TestPublishReachesTableSubscribers(t *testing.T) {
	bus := NewBus()
	sessions := bus.Subscribe(TableSessions)
	patients := bus.Subscribe(TablePatients)

	bus.Publish(ChangeEvent{Op: OpInsert, Table: TableSessions, ID: 7})

	select {
	case event := <-sessions:
		if event.ID != 7 || event.Op != OpInsert {
			t.Errorf("got event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("session subscriber never received the event")
	}

	select {
	case event := <-patients:
		t.Errorf("patient subscriber received a session event: %+v", event)
	default:
	}
}

func TestPublishFansOut(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe(TableTransactions)
	second := bus.Subscribe(TableTransactions)

	bus.Publish(ChangeEvent{Op: OpUpdate, Table: TableTransactions, ID: 3})

	for _, ch := range []chan ChangeEvent{first, second} {
		select {
		case event := <-ch:
			if event.ID != 3 {
				t.Errorf("got id %d, want 3", event.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(TableAppointments)
	bus.Unsubscribe(TableAppointments, ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}

	// Double unsubscribe must not panic on the already closed channel.
	bus.Unsubscribe(TableAppointments, ch)

	bus.Publish(ChangeEvent{Op: OpInsert, Table: TableAppointments, ID: 1})
}

func TestPublishDropsStalledSubscriber(t *testing.T) {
	bus := NewBus()
	stalled := bus.Subscribe(TableNotifications)

	// Fill the buffer and never drain it.
	for i := 0; i < cap(stalled); i++ {
		bus.Publish(ChangeEvent{Op: OpInsert, Table: TableNotifications, ID: uint(i)})
	}

	done := make(chan struct{})
	go func() {
		bus.Publish(ChangeEvent{Op: OpInsert, Table: TableNotifications, ID: 999})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Publish blocked on a stalled subscriber")
	}

	// The stalled channel was closed; draining it ends.
	for range stalled {
	}
}
