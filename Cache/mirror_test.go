package Cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	Models.Migrate(db)
	return db
}

// waitFor polls until the condition holds or the deadline passes; event
// application is asynchronous.
func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestMirrorBulkLoadFillsPatientNames(t *testing.T) {
	db := openTestDB(t)
	patient := Models.Patient{Name: "Ana", Phone: "5511999990000"}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	session := Models.Session{PatientID: patient.ID, Date: "2025-01-05", Amount: 100}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}

	mirror := NewMirror(db, Events.NewBus())
	if err := mirror.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mirror.Stop()

	sessions, err := mirror.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0].PatientName != "Ana" {
		t.Errorf("patient name = %q, want Ana", sessions[0].PatientName)
	}
}

func TestMirrorNotReadyBeforeStartAndAfterStop(t *testing.T) {
	db := openTestDB(t)
	mirror := NewMirror(db, Events.NewBus())

	if _, err := mirror.Patients(); !errors.Is(err, ErrNotReady) {
		t.Errorf("before Start: err = %v, want ErrNotReady", err)
	}

	if err := mirror.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := mirror.Patients(); err != nil {
		t.Errorf("after Start: err = %v", err)
	}

	mirror.Stop()
	if _, err := mirror.Patients(); !errors.Is(err, ErrNotReady) {
		t.Errorf("after Stop: err = %v, want ErrNotReady", err)
	}
}

func TestMirrorAppliesRowPatches(t *testing.T) {
	db := openTestDB(t)
	bus := Events.NewBus()
	mirror := NewMirror(db, bus)
	if err := mirror.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mirror.Stop()

	transaction := Models.Transaction{Type: "income", Description: "Session", Amount: 100, Date: "2025-01-02"}
	if err := db.Create(&transaction).Error; err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	bus.Publish(Events.ChangeEvent{Op: Events.OpInsert, Table: Events.TableTransactions, ID: transaction.ID, Row: transaction})

	waitFor(t, func() bool {
		transactions, err := mirror.Transactions()
		return err == nil && len(transactions) == 1
	})

	transaction.Amount = 150
	db.Save(&transaction)
	bus.Publish(Events.ChangeEvent{Op: Events.OpUpdate, Table: Events.TableTransactions, ID: transaction.ID, Row: transaction})

	waitFor(t, func() bool {
		transactions, err := mirror.Transactions()
		return err == nil && len(transactions) == 1 && transactions[0].Amount == 150
	})

	db.Unscoped().Delete(&transaction)
	bus.Publish(Events.ChangeEvent{Op: Events.OpDelete, Table: Events.TableTransactions, ID: transaction.ID})

	waitFor(t, func() bool {
		transactions, err := mirror.Transactions()
		return err == nil && len(transactions) == 0
	})
}

func TestMirrorRefetchesSessionsOnPatientRename(t *testing.T) {
	db := openTestDB(t)
	patient := Models.Patient{Name: "Ana", Phone: "5511999990000"}
	db.Create(&patient)
	session := Models.Session{PatientID: patient.ID, Date: "2025-01-05", Amount: 100}
	db.Create(&session)

	bus := Events.NewBus()
	mirror := NewMirror(db, bus)
	if err := mirror.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mirror.Stop()

	patient.Name = "Ana Paula"
	db.Save(&patient)
	bus.Publish(Events.ChangeEvent{Op: Events.OpUpdate, Table: Events.TablePatients, ID: patient.ID, Row: patient})

	waitFor(t, func() bool {
		sessions, err := mirror.Sessions()
		return err == nil && len(sessions) == 1 && sessions[0].PatientName == "Ana Paula"
	})
}

func TestMirrorResubscribesAfterShedSubscription(t *testing.T) {
	db := openTestDB(t)
	bus := Events.NewBus()
	mirror := NewMirror(db, bus)
	if err := mirror.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mirror.Stop()

	// Hold the write lock so the consumer cannot apply events; the forward
	// channel backs up until the bus sheds the subscription as stalled.
	mirror.mu.Lock()
	for i := 0; i < 100; i++ {
		transaction := Models.Transaction{Type: "income", Amount: 10, Date: "2025-01-02"}
		if err := db.Create(&transaction).Error; err != nil {
			mirror.mu.Unlock()
			t.Fatalf("create transaction: %v", err)
		}
		bus.Publish(Events.ChangeEvent{Op: Events.OpInsert, Table: Events.TableTransactions, ID: transaction.ID, Row: transaction})
	}
	mirror.mu.Unlock()

	// The re-fetch after resubscribing recovers the rows the shed window lost.
	waitFor(t, func() bool {
		transactions, err := mirror.Transactions()
		return err == nil && len(transactions) == 100
	})

	// And events published after the recovery flow through the new subscription.
	late := Models.Transaction{Type: "expense", Amount: 5, Date: "2025-01-03"}
	if err := db.Create(&late).Error; err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	bus.Publish(Events.ChangeEvent{Op: Events.OpInsert, Table: Events.TableTransactions, ID: late.ID, Row: late})

	waitFor(t, func() bool {
		transactions, err := mirror.Transactions()
		return err == nil && len(transactions) == 101
	})
}

func TestMirrorReadsReturnCopies(t *testing.T) {
	db := openTestDB(t)
	db.Create(&Models.Patient{Name: "Ana", Phone: "5511999990000"})

	mirror := NewMirror(db, Events.NewBus())
	if err := mirror.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mirror.Stop()

	first, _ := mirror.Patients()
	first[0].Name = "mutated"

	second, _ := mirror.Patients()
	if second[0].Name != "Ana" {
		t.Error("mutating a returned slice leaked into the cache")
	}
}
