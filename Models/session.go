package Models

import "gorm.io/gorm"

// Session is the billable clinical encounter. The Appointment row, when one
// exists, is only the calendar slot that fulfils it.
type Session struct {
	gorm.Model
	PatientID       uint          `json:"patient_id"`
	PatientName     string        `json:"patient_name" gorm:"-"`
	ProfessionalID  *uint         `json:"professional_id" gorm:"default:null"`
	Date            string        `json:"date"`
	Label           string        `json:"type"`
	Kind            string        `json:"session_type"`
	Status          string        `json:"status"`
	Notes           string        `json:"notes"`
	Amount          float64       `json:"amount"`
	PaymentStatus   string        `json:"payment_status"`
	NextAppointment string        `json:"next_appointment"`
	Installments    []Installment `json:"installments"`
}

// Installment is one scheduled partial payment of a session. Amounts of all
// installments of a session sum to the session amount; the last one absorbs
// the cent remainder of the split.
type Installment struct {
	gorm.Model
	SessionID     uint    `json:"session_id"`
	Number        uint    `json:"installment_number"`
	Total         uint    `json:"total_installments"`
	Amount        float64 `json:"amount"`
	PredictedDate string  `json:"predicted_date"`
	Paid          bool    `json:"paid"`
	PaidDate      string  `json:"paid_date"`
	TransactionID *uint   `json:"transaction_id" gorm:"default:null"`
	ReminderSent  bool    `json:"reminder_sent"`
}

type Transaction struct {
	gorm.Model
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	PatientID   *uint   `json:"patient_id" gorm:"default:null"`
	SessionID   *uint   `json:"session_id" gorm:"default:null"`
}
