package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/ArthurLima05/app.renatalyra/Whatsapp"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Reminders sends the day-before appointment confirmations and the payment
// reminders for installments about to fall due.
type Reminders struct {
	DB *gorm.DB
}

func NewReminders(db *gorm.DB) *Reminders {
	return &Reminders{DB: db}
}

// Start schedules both jobs: confirmations hourly, payment reminders once a
// morning.
func (r *Reminders) Start() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Hour().Do(func() {
		if err := r.SendAppointmentConfirmations(); err != nil {
			log.Printf("Error sending appointment confirmations: %v", err)
		}
	})

	scheduler.Every(1).Day().At("08:00").Do(func() {
		if err := r.SendPaymentReminders(); err != nil {
			log.Printf("Error sending payment reminders: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Reminder cron jobs started")

	return scheduler
}

// SendAppointmentConfirmations messages every patient whose appointment is
// tomorrow and still merely scheduled, offering the confirm/cancel/reschedule
// replies the WhatsApp listener understands.
func (r *Reminders) SendAppointmentConfirmations() error {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(dateLayout)

	var appointments []Models.Appointment
	err := r.DB.Model(&Models.Appointment{}).
		Where("date = ? AND status = ?", tomorrow, Constants.StatusScheduled).
		Find(&appointments).Error
	if err != nil {
		return fmt.Errorf("query tomorrow's appointments: %w", err)
	}

	for _, appointment := range appointments {
		var patient Models.Patient
		if err := r.DB.First(&patient, appointment.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for appointment ID %d: %v", appointment.ID, err)
			continue
		}
		if patient.Phone == "" {
			continue
		}

		message := fmt.Sprintf(
			"Hello %s! You have an appointment tomorrow (%s) at %s. "+
				"Reply 1 to confirm, 2 to cancel or 3 to reschedule.",
			patient.Name, appointment.Date, appointment.Time,
		)

		if err := Whatsapp.SendMessage(patient.Phone, message); err != nil {
			log.Printf("Failed to send confirmation request to %s: %v", patient.Name, err)
			continue
		}
	}

	return nil
}

// SendPaymentReminders finds unpaid installments due within the next three
// days, messages the patient and records a payment notification for the staff.
func (r *Reminders) SendPaymentReminders() error {
	today := time.Now().Format(dateLayout)
	horizon := time.Now().AddDate(0, 0, 3).Format(dateLayout)

	var installments []Models.Installment
	err := r.DB.Model(&Models.Installment{}).
		Where("paid = ? AND reminder_sent = ? AND predicted_date BETWEEN ? AND ?", false, false, today, horizon).
		Find(&installments).Error
	if err != nil {
		return fmt.Errorf("query due installments: %w", err)
	}

	for _, installment := range installments {
		var session Models.Session
		if err := r.DB.First(&session, installment.SessionID).Error; err != nil {
			log.Printf("Installment %d has no session, skipping reminder", installment.ID)
			continue
		}
		var patient Models.Patient
		if err := r.DB.First(&patient, session.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for session ID %d: %v", session.ID, err)
			continue
		}

		if patient.Phone != "" {
			message := fmt.Sprintf(
				"Hello %s, a friendly reminder: installment %d/%d of R$ %.2f is due on %s.",
				patient.Name, installment.Number, installment.Total, installment.Amount, installment.PredictedDate,
			)
			if err := Whatsapp.SendMessage(patient.Phone, message); err != nil {
				log.Printf("Failed to send payment reminder to %s: %v", patient.Name, err)
			}
		}

		patientID := patient.ID
		notification := Models.Notification{
			Type:      Constants.NotificationPayment,
			Title:     "Installment due",
			Message:   fmt.Sprintf("Installment %d/%d of %s (R$ %.2f) is due on %s", installment.Number, installment.Total, patient.Name, installment.Amount, installment.PredictedDate),
			Date:      today,
			Read:      false,
			PatientID: &patientID,
		}
		if err := r.DB.Create(&notification).Error; err != nil {
			log.Printf("Failed to record payment notification: %v", err)
			continue
		}
		Events.Default.Publish(Events.ChangeEvent{Op: Events.OpInsert, Table: Events.TableNotifications, ID: notification.ID, Row: notification})

		installment.ReminderSent = true
		if err := r.DB.Save(&installment).Error; err != nil {
			log.Printf("Failed to mark reminder sent for installment %d: %v", installment.ID, err)
		}
	}

	return nil
}
