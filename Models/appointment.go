package Models

import "gorm.io/gorm"

type Appointment struct {
	gorm.Model
	PatientID      uint   `json:"patient_id"`
	PatientName    string `json:"patient_name"`
	ProfessionalID *uint  `json:"professional_id" gorm:"default:null"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	Origin         string `json:"origin"`
	Notes          string `json:"notes"`
	SessionID      *uint  `json:"session_id" gorm:"default:null"`
}

type Notification struct {
	gorm.Model
	Type          string `json:"type"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Date          string `json:"date"`
	Read          bool   `json:"read"`
	PatientID     *uint  `json:"patient_id" gorm:"default:null"`
	AppointmentID *uint  `json:"appointment_id" gorm:"default:null"`
}

// NotificationRequest is the payload handed to FirebaseMessaging for staff
// push delivery. Data carries the ids the mobile app uses for deep-linking.
type NotificationRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

type Feedback struct {
	gorm.Model
	PatientID      uint   `json:"patient_id"`
	PatientName    string `json:"patient_name"`
	ProfessionalID *uint  `json:"professional_id" gorm:"default:null"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
	Origin         string `json:"origin"`
	Date           string `json:"date"`
}
