// Package export renders the orders table into an xlsx workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"crmbot/crm/models"
)

var header = []string{"#", "Client", "Phone", "Address", "Product", "Amount", "Date"}

const sheet = "Orders"

// Orders writes one workbook row per order joined with its client and returns
// the path of a temp file. The caller removes the file after sending it.
func Orders(orders []models.OrderWithClient) (string, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheet)

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", err
		}
	}

	for idx, o := range orders {
		values := []any{
			idx + 1,
			o.ClientName,
			o.ClientPhone,
			o.ClientAddress,
			o.Product,
			o.Amount,
			o.CreatedAt.Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, idx+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}
	for col := 'A'; col <= 'G'; col++ {
		if err := f.SetColWidth(sheet, string(col), string(col), 18); err != nil {
			return "", err
		}
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("orders_%s.xlsx", uuid.NewString()))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
