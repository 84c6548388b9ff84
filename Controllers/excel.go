package Controllers

import (
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
)

// ExportLedger writes the transaction ledger for a date range as an Excel
// sheet, one row per transaction.
func ExportLedger(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, err)
		return
	}

	var transactions []Models.Transaction

	if input.DateFrom != "" && input.DateTo != "" {
		if err := Models.DB.Model(&Models.Transaction{}).
			Where("date BETWEEN ? AND ?", input.DateFrom, input.DateTo).
			Order("date asc").
			Find(&transactions).Error; err != nil {
			c.JSON(http.StatusBadRequest, err)
			return
		}
	} else {
		if err := Models.DB.Model(&Models.Transaction{}).Order("date asc").Find(&transactions).Error; err != nil {
			c.JSON(http.StatusBadRequest, err)
			return
		}
	}

	file := excelize.NewFile()

	headers := map[string]string{
		"A1": "Date",
		"B1": "Type",
		"C1": "Description",
		"D1": "Category",
		"E1": "Amount",
	}
	for cell, header := range headers {
		file.SetCellValue("Sheet1", cell, header)
	}

	var income, expense float64
	for index, transaction := range transactions {
		row := index + 2
		file.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), transaction.Date)
		file.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), transaction.Type)
		file.SetCellValue("Sheet1", fmt.Sprintf("C%d", row), transaction.Description)
		file.SetCellValue("Sheet1", fmt.Sprintf("D%d", row), transaction.Category)
		file.SetCellValue("Sheet1", fmt.Sprintf("E%d", row), transaction.Amount)
		if transaction.Type == "income" {
			income += transaction.Amount
		} else {
			expense += transaction.Amount
		}
	}

	totalRow := len(transactions) + 3
	file.SetCellValue("Sheet1", fmt.Sprintf("A%d", totalRow), "Income")
	file.SetCellValue("Sheet1", fmt.Sprintf("B%d", totalRow), income)
	file.SetCellValue("Sheet1", fmt.Sprintf("A%d", totalRow+1), "Expense")
	file.SetCellValue("Sheet1", fmt.Sprintf("B%d", totalRow+1), expense)
	file.SetCellValue("Sheet1", fmt.Sprintf("A%d", totalRow+2), "Balance")
	file.SetCellValue("Sheet1", fmt.Sprintf("B%d", totalRow+2), income-expense)

	c.Header("Content-Disposition", "attachment; filename=ledger.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}
