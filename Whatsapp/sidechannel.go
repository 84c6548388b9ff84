package Whatsapp

import (
	"fmt"
	"log"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"gorm.io/gorm"
)

// Button ids the confirmation message offers the patient.
const (
	ButtonConfirm    = "confirm"
	ButtonCancel     = "cancel"
	ButtonReschedule = "reschedule"
)

// ProcessResponse resolves an inbound confirm/cancel button reply: the phone
// number identifies the patient, whose earliest still-scheduled appointment
// has its status flipped, and the staff gets a notification about the answer.
func ProcessResponse(db *gorm.DB, buttonID, phone string) (Models.Appointment, error) {
	patient, err := Models.FindPatientByPhone(db, phone)
	if err != nil {
		return Models.Appointment{}, fmt.Errorf("no patient for phone %s: %w", phone, err)
	}

	var appointment Models.Appointment
	err = db.Model(&Models.Appointment{}).
		Where("patient_id = ? AND status = ?", patient.ID, Constants.StatusScheduled).
		Order("date asc, time asc").
		First(&appointment).Error
	if err != nil {
		return Models.Appointment{}, fmt.Errorf("no pending appointment for %s: %w", patient.Name, err)
	}

	newStatus := Constants.StatusConfirmed
	notificationType := Constants.NotificationBooking
	title := "Appointment confirmed"
	if buttonID == ButtonCancel {
		newStatus = Constants.StatusCanceled
		notificationType = Constants.NotificationCancellation
		title = "Appointment canceled"
	}

	appointment.Status = newStatus
	if err := db.Save(&appointment).Error; err != nil {
		return Models.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
	Events.Default.Publish(Events.ChangeEvent{Op: Events.OpUpdate, Table: Events.TableAppointments, ID: appointment.ID, Row: appointment})

	patientID := patient.ID
	appointmentID := appointment.ID
	notification := Models.Notification{
		Type:          notificationType,
		Title:         title,
		Message:       fmt.Sprintf("%s replied %s for the appointment on %s at %s", patient.Name, buttonID, appointment.Date, appointment.Time),
		Date:          time.Now().Format("2006-01-02"),
		Read:          false,
		PatientID:     &patientID,
		AppointmentID: &appointmentID,
	}
	if err := db.Create(&notification).Error; err != nil {
		// The status change already happened; the missing notification is not
		// worth failing the reply over.
		log.Printf("whatsapp: could not record notification: %v", err)
	} else {
		Events.Default.Publish(Events.ChangeEvent{Op: Events.OpInsert, Table: Events.TableNotifications, ID: notification.ID, Row: notification})
	}

	return appointment, nil
}

// RequestReschedule registers an urgent reschedule request coming from the
// patient's phone. The lookup tolerates the gateway's 12 digit number format;
// when no appointment id is given the patient's most recently canceled one is
// referenced, if any.
func RequestReschedule(db *gorm.DB, phone string, appointmentID uint, message string) (Models.Notification, error) {
	patient, err := Models.FindPatientByPhoneLenient(db, phone)
	if err != nil {
		return Models.Notification{}, fmt.Errorf("no patient for phone %s: %w", phone, err)
	}

	var appointment Models.Appointment
	found := false
	if appointmentID != 0 {
		if err := db.Where("id = ? AND patient_id = ?", appointmentID, patient.ID).First(&appointment).Error; err == nil {
			found = true
		}
	} else {
		if err := db.Model(&Models.Appointment{}).
			Where("patient_id = ? AND status = ?", patient.ID, Constants.StatusCanceled).
			Order("date desc").
			First(&appointment).Error; err == nil {
			found = true
		}
	}

	text := fmt.Sprintf("%s wants to reschedule", patient.Name)
	if found {
		text = fmt.Sprintf("%s wants to reschedule the appointment of %s at %s", patient.Name, appointment.Date, appointment.Time)
	}
	if message != "" {
		text = fmt.Sprintf("%s. Message: %s", text, message)
	}

	patientID := patient.ID
	notification := Models.Notification{
		Type:      Constants.NotificationBooking,
		Title:     "Reschedule requested",
		Message:   text,
		Date:      time.Now().Format("2006-01-02"),
		Read:      false,
		PatientID: &patientID,
	}
	if found {
		id := appointment.ID
		notification.AppointmentID = &id
	}

	if err := db.Create(&notification).Error; err != nil {
		return Models.Notification{}, fmt.Errorf("record reschedule notification: %w", err)
	}
	Events.Default.Publish(Events.ChangeEvent{Op: Events.OpInsert, Table: Events.TableNotifications, ID: notification.ID, Row: notification})

	return notification, nil
}
