package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// DownloadTemplate generates a sample Excel template for bulk import
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Medicine Name", "Batch Number", "Quantity", "MRP", "Purchase Price", "Expiry Date"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, header)
	}

	sampleData := [][]interface{}{
		{"Paracetamol 500mg", "PCM-2401", 200, 25.50, 18.00, "2027-03-31"},
		{"Amoxicillin 250mg", "AMX-2407", 80, 92.00, 64.00, "2026-11-30"},
		{"Cetirizine 10mg", "", 150, 38.00, 22.50, ""},
	}

	for rowIdx, row := range sampleData {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue("Sheet1", cell, value)
		}
	}

	f.SetColWidth("Sheet1", "A", "A", 24)
	f.SetColWidth("Sheet1", "B", "F", 14)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=inventory_import_template.xlsx")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		return
	}
}
