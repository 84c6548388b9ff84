package Controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/ArthurLima05/app.renatalyra/Whatsapp"
	"github.com/gin-gonic/gin"
)

func FetchAppointments(c *gin.Context) {
	var appointments []Models.Appointment
	if err := Models.DB.Model(&Models.Appointment{}).Order("date asc, time asc").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func CreateAppointment(c *gin.Context) {
	var input Models.Appointment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient Models.Patient
	if err := Models.DB.First(&patient, input.PatientID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient not found"})
		return
	}

	input.PatientName = patient.Name
	if input.Status == "" {
		input.Status = Constants.StatusScheduled
	}

	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpInsert, Events.TableAppointments, input.ID, input)

	patientID := patient.ID
	appointmentID := input.ID
	notifyStaff(Models.Notification{
		Type:          Constants.NotificationBooking,
		Title:         "New booking",
		Message:       fmt.Sprintf("%s booked an appointment for %s at %s", patient.Name, input.Date, input.Time),
		Date:          time.Now().Format("2006-01-02"),
		Read:          false,
		PatientID:     &patientID,
		AppointmentID: &appointmentID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Appointment created successfully", "appointment": input})
}

// UpdateAppointmentStatus changes the calendar status; cancellations and
// no-shows raise their notification.
func UpdateAppointmentStatus(c *gin.Context) {
	var input struct {
		ID     uint   `json:"id" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var appointment Models.Appointment
	if err := Models.DB.First(&appointment, input.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	appointment.Status = input.Status
	if err := Models.DB.Save(&appointment).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpUpdate, Events.TableAppointments, appointment.ID, appointment)

	if input.Status == Constants.StatusCanceled || input.Status == Constants.StatusNoShow {
		notificationType := Constants.NotificationCancellation
		title := "Appointment canceled"
		if input.Status == Constants.StatusNoShow {
			notificationType = Constants.NotificationNoShow
			title = "No-show recorded"
		}
		patientID := appointment.PatientID
		appointmentID := appointment.ID
		notifyStaff(Models.Notification{
			Type:          notificationType,
			Title:         title,
			Message:       fmt.Sprintf("%s - %s at %s", appointment.PatientName, appointment.Date, appointment.Time),
			Date:          time.Now().Format("2006-01-02"),
			Read:          false,
			PatientID:     &patientID,
			AppointmentID: &appointmentID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment status updated successfully"})
}

// ConfirmAppointment flips a single appointment to confirmed, the same
// operation the WhatsApp reply path performs but keyed by id for staff use.
func ConfirmAppointment(c *gin.Context) {
	var input struct {
		AppointmentID uint `json:"appointment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var appointment Models.Appointment
	if err := Models.DB.First(&appointment, input.AppointmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	appointment.Status = Constants.StatusConfirmed
	if err := Models.DB.Save(&appointment).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpUpdate, Events.TableAppointments, appointment.ID, appointment)

	c.JSON(http.StatusOK, gin.H{"message": "Appointment confirmed successfully", "appointment": appointment})
}

// FetchPendingConfirmations lists appointments still waiting for the patient's
// answer, with the patient contact fields the confirmation sender needs.
func FetchPendingConfirmations(c *gin.Context) {
	type PendingConfirmation struct {
		Models.Appointment
		PatientPhone string `json:"patient_phone"`
		PatientEmail string `json:"patient_email"`
	}

	var appointments []Models.Appointment
	err := Models.DB.Model(&Models.Appointment{}).
		Where("status = ?", Constants.StatusScheduled).
		Order("date asc, time asc").
		Find(&appointments).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pending := make([]PendingConfirmation, 0, len(appointments))
	for _, appointment := range appointments {
		row := PendingConfirmation{Appointment: appointment}
		var patient Models.Patient
		if err := Models.DB.First(&patient, appointment.PatientID).Error; err == nil {
			row.PatientPhone = patient.Phone
			row.PatientEmail = patient.Email
		}
		pending = append(pending, row)
	}

	c.JSON(http.StatusOK, pending)
}

// ProcessWhatsappResponse is the HTTP entry the gateway webhook calls with a
// button reply.
func ProcessWhatsappResponse(c *gin.Context) {
	var input struct {
		ButtonID string `json:"button_id" binding:"required"`
		Phone    string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appointment, err := Whatsapp.ProcessResponse(Models.DB, input.ButtonID, input.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response processed successfully", "appointment": appointment})
}

// RequestReschedule registers an urgent reschedule notification for a patient
// identified by phone number.
func RequestReschedule(c *gin.Context) {
	var input struct {
		Phone         string `json:"phone" binding:"required"`
		AppointmentID uint   `json:"appointment_id"`
		Message       string `json:"message"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := Whatsapp.RequestReschedule(Models.DB, input.Phone, input.AppointmentID, input.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reschedule request registered successfully", "notification": notification})
}
