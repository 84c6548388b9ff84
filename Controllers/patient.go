package Controllers

import (
	"net/http"

	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func FetchPatients(c *gin.Context) {
	var patients []Models.Patient
	if err := Models.DB.Model(&Models.Patient{}).Find(&patients).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, patients)
}

func FetchPatient(c *gin.Context) {
	var input struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient Models.Patient
	err := Models.DB.Model(&Models.Patient{}).
		Preload("Sessions.Installments").
		Preload("Appointments").
		Preload("Feedbacks").
		Where("id = ?", input.ID).
		First(&patient).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var transactions []Models.Transaction
	if err := Models.DB.Model(&Models.Transaction{}).Where("patient_id = ?", patient.ID).Find(&transactions).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient": patient, "transactions": transactions})
}

func CreatePatient(c *gin.Context) {
	var input Models.Patient

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Name == "" || input.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone are required"})
		return
	}

	// The token keys the public feedback form for this patient.
	input.FeedbackToken = uuid.NewString()

	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	publish(Events.OpInsert, Events.TablePatients, input.ID, input)

	c.JSON(http.StatusOK, gin.H{"message": "Patient created successfully", "patient": input})
}

func UpdatePatient(c *gin.Context) {
	var input struct {
		ID        uint   `json:"id" binding:"required"`
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		BirthDate string `json:"birth_date"`
		CPF       string `json:"cpf"`
		Origin    string `json:"origin"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var patient Models.Patient
	if err := Models.DB.First(&patient, input.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	patient.Name = input.Name
	patient.Phone = input.Phone
	patient.Email = input.Email
	patient.BirthDate = input.BirthDate
	patient.CPF = input.CPF
	patient.Origin = input.Origin
	patient.Notes = input.Notes

	if err := Models.DB.Save(&patient).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	publish(Events.OpUpdate, Events.TablePatients, patient.ID, patient)

	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully"})
}

func DeletePatient(c *gin.Context) {
	var input struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.DB.Delete(&Models.Patient{}, "id = ?", input.ID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpDelete, Events.TablePatients, input.ID, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}

func FetchProfessionals(c *gin.Context) {
	var professionals []Models.Professional
	if err := Models.DB.Model(&Models.Professional{}).Find(&professionals).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, professionals)
}

func CreateProfessional(c *gin.Context) {
	var input Models.Professional
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpInsert, Events.TableProfessionals, input.ID, input)

	c.JSON(http.StatusOK, gin.H{"message": "Professional created successfully"})
}
