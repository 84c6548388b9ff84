package Controllers

import (
	"net/http"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
)

func FetchTransactions(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var transactions []Models.Transaction
	query := Models.DB.Model(&Models.Transaction{}).Order("date desc")
	if input.DateFrom != "" && input.DateTo != "" {
		query = query.Where("date BETWEEN ? AND ?", input.DateFrom, input.DateTo)
	}
	if err := query.Find(&transactions).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// CreateTransaction records a manual ledger entry. Automatic entries come from
// the billing reconciler only.
func CreateTransaction(c *gin.Context) {
	var input Models.Transaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Type != Constants.TransactionIncome && input.Type != Constants.TransactionExpense {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction type must be income or expense"})
		return
	}
	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction amount must be positive"})
		return
	}
	if input.Date == "" {
		input.Date = time.Now().Format("2006-01-02")
	}

	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpInsert, Events.TableTransactions, input.ID, input)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction created successfully", "transaction": input})
}

func DeleteTransaction(c *gin.Context) {
	var input struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.DB.Delete(&Models.Transaction{}, "id = ?", input.ID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpDelete, Events.TableTransactions, input.ID, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
