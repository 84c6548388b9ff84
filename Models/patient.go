package Models

import (
	"gorm.io/gorm"
)

type Patient struct {
	gorm.Model
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	BirthDate     string        `json:"birth_date"`
	CPF           string        `json:"cpf"`
	Origin        string        `json:"origin"`
	Notes         string        `json:"notes"`
	FeedbackToken string        `json:"feedback_token" gorm:"uniqueIndex"`
	Sessions      []Session     `json:"sessions"`
	Appointments  []Appointment `json:"appointments"`
	Feedbacks     []Feedback    `json:"feedbacks"`
}

type Professional struct {
	gorm.Model
	Name          string  `json:"name"`
	Specialty     string  `json:"specialty"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	AverageRating float64 `json:"average_rating"`
}

// FindPatientByPhone looks a patient up by exact phone match.
func FindPatientByPhone(db *gorm.DB, phone string) (Patient, error) {
	var patient Patient
	err := db.Model(&Patient{}).Where("phone = ?", phone).First(&patient).Error
	return patient, err
}

// FindPatientByPhoneLenient tolerates the WhatsApp gateway stripping the ninth
// digit from Brazilian mobile numbers: a 12 digit number starting with the
// country code is retried once with a 9 inserted after the area code.
func FindPatientByPhoneLenient(db *gorm.DB, phone string) (Patient, error) {
	patient, err := FindPatientByPhone(db, phone)
	if err == nil {
		return patient, nil
	}
	if len(phone) == 12 && phone[:2] == "55" {
		alternative := phone[:4] + "9" + phone[4:]
		if retried, err2 := FindPatientByPhone(db, alternative); err2 == nil {
			return retried, nil
		}
	}
	return Patient{}, err
}
