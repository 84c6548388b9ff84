package Controllers

import (
	"net/http"

	"github.com/ArthurLima05/app.renatalyra/Billing"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
)

func FetchSessionsByPatient(c *gin.Context) {
	var input struct {
		PatientID uint `json:"patient_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sessions []Models.Session
	err := Models.DB.Model(&Models.Session{}).
		Preload("Installments").
		Where("patient_id = ?", input.PatientID).
		Order("date desc").
		Find(&sessions).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSession hands the whole write to the billing reconciler: session row,
// optional installment plan, and the immediate payment transaction when the
// session arrives already paid.
func CreateSession(c *gin.Context) {
	var input Billing.SessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := Reconciler.CreateSession(input)
	if err != nil {
		if session.ID != 0 {
			// The session row exists but a later step failed; the client needs
			// both facts for manual reconciliation.
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "session": session})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session created successfully", "session": session})
}

func UpdateSession(c *gin.Context) {
	var input struct {
		ID      uint                  `json:"id" binding:"required"`
		Changes Billing.SessionUpdate `json:"changes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := Reconciler.UpdateSession(input.ID, input.Changes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session updated successfully", "session": session})
}

func DeleteSession(c *gin.Context) {
	var input struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var installments []Models.Installment
	if err := Models.DB.Where("session_id = ?", input.ID).Find(&installments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.DB.Delete(&Models.Installment{}, "session_id = ?", input.ID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, installment := range installments {
		publish(Events.OpDelete, Events.TableInstallments, installment.ID, nil)
	}

	if err := Models.DB.Delete(&Models.Session{}, "id = ?", input.ID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpDelete, Events.TableSessions, input.ID, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func FetchSessionInstallments(c *gin.Context) {
	var input struct {
		SessionID uint `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var installments []Models.Installment
	err := Models.DB.Model(&Models.Installment{}).
		Where("session_id = ?", input.SessionID).
		Order("number asc").
		Find(&installments).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, installments)
}

// SettleInstallment marks one installment paid. Settling twice is safe; the
// reconciler refuses to double-book the transaction.
func SettleInstallment(c *gin.Context) {
	var input struct {
		InstallmentID uint   `json:"installment_id" binding:"required"`
		PaidDate      string `json:"paid_date"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	installment, err := Reconciler.SettleInstallment(input.InstallmentID, input.PaidDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Installment settled successfully", "installment": installment})
}
