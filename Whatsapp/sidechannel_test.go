package Whatsapp

import (
	"fmt"
	"testing"

	"github.com/ArthurLima05/app.renatalyra/Constants"
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

func seedPatientWithAppointments(t *testing.T, db *gorm.DB) (Models.Patient, []Models.Appointment) {
	t.Helper()
	patient := Models.Patient{Name: "Ana", Phone: "5511999990000"}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	appointments := []Models.Appointment{
		{PatientID: patient.ID, PatientName: patient.Name, Date: "2025-09-10", Time: "14:00", Status: Constants.StatusScheduled},
		{PatientID: patient.ID, PatientName: patient.Name, Date: "2025-09-03", Time: "09:00", Status: Constants.StatusScheduled},
		{PatientID: patient.ID, PatientName: patient.Name, Date: "2025-09-01", Time: "10:00", Status: Constants.StatusConfirmed},
	}
	for i := range appointments {
		if err := db.Create(&appointments[i]).Error; err != nil {
			t.Fatalf("seed appointment: %v", err)
		}
	}
	return patient, appointments
}

func TestProcessResponseConfirmsEarliestScheduled(t *testing.T) {
	db := openTestDB(t)
	_, appointments := seedPatientWithAppointments(t, db)

	appointment, err := ProcessResponse(db, ButtonConfirm, "5511999990000")
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}

	// The already confirmed one is skipped; of the two scheduled ones the
	// earlier date wins.
	if appointment.ID != appointments[1].ID {
		t.Errorf("confirmed appointment %d, want %d", appointment.ID, appointments[1].ID)
	}
	if appointment.Status != Constants.StatusConfirmed {
		t.Errorf("status = %q, want confirmed", appointment.Status)
	}

	var notifications int64
	db.Model(&Models.Notification{}).Where("type = ?", Constants.NotificationBooking).Count(&notifications)
	if notifications != 1 {
		t.Errorf("booking notifications = %d, want 1", notifications)
	}
}

func TestProcessResponseCancel(t *testing.T) {
	db := openTestDB(t)
	seedPatientWithAppointments(t, db)

	appointment, err := ProcessResponse(db, ButtonCancel, "5511999990000")
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if appointment.Status != Constants.StatusCanceled {
		t.Errorf("status = %q, want canceled", appointment.Status)
	}

	var notification Models.Notification
	if err := db.Where("type = ?", Constants.NotificationCancellation).First(&notification).Error; err != nil {
		t.Fatalf("expected cancellation notification: %v", err)
	}
	if notification.AppointmentID == nil || *notification.AppointmentID != appointment.ID {
		t.Error("notification not linked to the canceled appointment")
	}
}

func TestProcessResponseUnknownPhone(t *testing.T) {
	db := openTestDB(t)
	if _, err := ProcessResponse(db, ButtonConfirm, "550000000000"); err == nil {
		t.Fatal("expected an error for an unknown phone number")
	}
}

func TestRequestRescheduleWithStrippedNinthDigit(t *testing.T) {
	db := openTestDB(t)
	patient, appointments := seedPatientWithAppointments(t, db)

	notification, err := RequestReschedule(db, "551199990000", appointments[0].ID, "prefer mornings")
	if err != nil {
		t.Fatalf("RequestReschedule: %v", err)
	}
	if notification.PatientID == nil || *notification.PatientID != patient.ID {
		t.Error("notification not linked to the patient")
	}
	if notification.AppointmentID == nil || *notification.AppointmentID != appointments[0].ID {
		t.Error("notification not linked to the named appointment")
	}
	if notification.Title != "Reschedule requested" {
		t.Errorf("title = %q", notification.Title)
	}
}

func TestRequestRescheduleFallsBackToLastCanceled(t *testing.T) {
	db := openTestDB(t)
	patient, _ := seedPatientWithAppointments(t, db)

	canceled := Models.Appointment{PatientID: patient.ID, PatientName: patient.Name, Date: "2025-08-20", Time: "11:00", Status: Constants.StatusCanceled}
	if err := db.Create(&canceled).Error; err != nil {
		t.Fatalf("seed canceled appointment: %v", err)
	}

	notification, err := RequestReschedule(db, "5511999990000", 0, "")
	if err != nil {
		t.Fatalf("RequestReschedule: %v", err)
	}
	if notification.AppointmentID == nil || *notification.AppointmentID != canceled.ID {
		t.Error("notification should reference the most recently canceled appointment")
	}
}
