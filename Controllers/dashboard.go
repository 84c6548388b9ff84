package Controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/gin-gonic/gin"
)

// DashboardMetrics aggregates the dashboard numbers from the cache mirror
// instead of hitting the database per chart.
func DashboardMetrics(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	transactions, err := Mirror.Transactions()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	sessions, err := Mirror.Sessions()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	patients, err := Mirror.Patients()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	notifications, err := Mirror.Notifications()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	installments, err := Mirror.Installments()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	var income, expense float64
	for _, transaction := range transactions {
		if !strings.HasPrefix(transaction.Date, month) {
			continue
		}
		if transaction.Type == Constants.TransactionIncome {
			income += transaction.Amount
		} else {
			expense += transaction.Amount
		}
	}

	sessionsByStatus := map[string]int{}
	var pendingAmount float64
	for _, session := range sessions {
		sessionsByStatus[session.Status]++
		if session.PaymentStatus == Constants.PaymentOpen {
			pendingAmount += session.Amount
		}
	}

	patientsByOrigin := map[string]int{}
	for _, patient := range patients {
		patientsByOrigin[patient.Origin]++
	}

	unread := 0
	for _, notification := range notifications {
		if !notification.Read {
			unread++
		}
	}

	overdue := 0
	today := time.Now().Format("2006-01-02")
	for _, installment := range installments {
		if !installment.Paid && installment.PredictedDate < today {
			overdue++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"month":                month,
		"income":               income,
		"expense":              expense,
		"balance":              income - expense,
		"sessions_by_status":   sessionsByStatus,
		"pending_amount":       pendingAmount,
		"patients_by_origin":   patientsByOrigin,
		"unread_notifications": unread,
		"overdue_installments": overdue,
	})
}
