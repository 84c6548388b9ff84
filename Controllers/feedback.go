package Controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
)

// ResolveFeedbackToken lets the unauthenticated feedback page turn the token
// from its link into the patient it belongs to, without exposing the numeric
// id space.
func ResolveFeedbackToken(c *gin.Context) {
	token := c.Param("token")

	var patient Models.Patient
	if err := Models.DB.Where("feedback_token = ?", token).First(&patient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown feedback link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient_id": patient.ID, "name": patient.Name})
}

// SubmitFeedback is the public capture surface: no staff login, keyed by
// patient id and origin channel. A rating of 2 or less raises an unread
// feedback notification.
func SubmitFeedback(c *gin.Context) {
	var input struct {
		PatientID      uint   `json:"patient_id" binding:"required"`
		ProfessionalID *uint  `json:"professional_id"`
		Rating         int    `json:"rating" binding:"required,min=1,max=5"`
		Comment        string `json:"comment"`
		Origin         string `json:"origin"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient Models.Patient
	if err := Models.DB.First(&patient, input.PatientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	feedback := Models.Feedback{
		PatientID:      patient.ID,
		PatientName:    patient.Name,
		ProfessionalID: input.ProfessionalID,
		Rating:         input.Rating,
		Comment:        input.Comment,
		Origin:         input.Origin,
		Date:           time.Now().Format("2006-01-02"),
	}
	if feedback.Origin == "" {
		feedback.Origin = patient.Origin
	}

	if err := Models.DB.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpInsert, Events.TableFeedbacks, feedback.ID, feedback)

	if input.ProfessionalID != nil {
		updateAverageRating(*input.ProfessionalID)
	}

	if feedback.Rating <= 2 {
		patientID := patient.ID
		notifyStaff(Models.Notification{
			Type:      Constants.NotificationFeedback,
			Title:     "Negative feedback received",
			Message:   fmt.Sprintf("%s rated %d/5", patient.Name, feedback.Rating),
			Date:      time.Now().Format("2006-01-02"),
			Read:      false,
			PatientID: &patientID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted successfully"})
}

func FetchFeedbacks(c *gin.Context) {
	var feedbacks []Models.Feedback
	if err := Models.DB.Model(&Models.Feedback{}).Order("created_at desc").Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, feedbacks)
}

func updateAverageRating(professionalID uint) {
	var average float64
	err := Models.DB.Model(&Models.Feedback{}).
		Where("professional_id = ?", professionalID).
		Select("AVG(rating)").
		Scan(&average).Error
	if err != nil {
		return
	}

	var professional Models.Professional
	if err := Models.DB.First(&professional, professionalID).Error; err != nil {
		return
	}
	professional.AverageRating = average
	if err := Models.DB.Save(&professional).Error; err != nil {
		return
	}
	publish(Events.OpUpdate, Events.TableProfessionals, professional.ID, professional)
}
