package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"pallettrack/internal/services"
)

// MovementsPDF renders the movement ledger as a printable report.
func MovementsPDF(ctx context.Context, stock services.StockService, locations services.LocationService) ([]byte, error) {
	moves, err := stock.Movements(ctx, nil)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Stock Movements")
	pdf.Ln(12)

	headers := []string{"Date", "Pallet Type", "Qty", "From", "To", "Note"}
	colWidths := []float64{38, 45, 20, 60, 60, 44}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, m := range moves {
		cells := []string{
			m.Timestamp.Format("02-Jan-2006 15:04"),
			m.PalletType,
			formatQty(m.Quantity),
			fmt.Sprintf("%s (%s)", locations.ResolveName(ctx, m.From), m.From.Kind),
			fmt.Sprintf("%s (%s)", locations.ResolveName(ctx, m.To), m.To.Kind),
			m.Note,
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s - %d movements", time.Now().Format("02-Jan-2006 15:04"), len(moves)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render movements pdf: %w", err)
	}
	return buf.Bytes(), nil
}
