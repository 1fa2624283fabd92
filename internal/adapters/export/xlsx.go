package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/bikeconfig/internal/domain"
)

const ordersSheet = "Orders"

var orderHeader = []interface{}{"ID", "Created", "Status", "Customer", "Email", "Product", "Options", "Total"}

type XLSX struct{}

// WriteOrders writes one row per order under a header row.
func (XLSX) WriteOrders(w io.Writer, orders []domain.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeader); err != nil {
		return err
	}
	for i, o := range orders {
		ids := make([]string, len(o.OptionIDs))
		for j, id := range o.OptionIDs {
			ids[j] = strconv.FormatInt(id, 10)
		}
		row := []interface{}{
			o.ID.String(),
			o.CreatedAt.UTC().Format(time.RFC3339),
			string(o.Status),
			o.CustomerName,
			o.CustomerEmail,
			o.ProductID,
			strings.Join(ids, ","),
			// Numeric cells are float64; the column format pins two decimals.
			o.TotalPrice.Round(2).InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if len(orders) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err == nil {
			_ = f.SetCellStyle(ordersSheet, "H2", fmt.Sprintf("H%d", len(orders)+1), style)
		}
	}
	return f.Write(w)
}
