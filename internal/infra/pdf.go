package infra

// pdf.go: account statement rendering with go-pdf/fpdf.
// A4 portrait page with:
//   - Business header and client block
//   - Current balance
//   - Movement table (date, concept, amount, running balance)

import (
	"bytes"
	"fmt"

	"arcadeorders/internal/dto"

	"github.com/go-pdf/fpdf"
)

var movementLabels = map[string]string{
	"OPENING":      "Saldo inicial",
	"ORDER":        "Pedido",
	"DELIVERY":     "Entrega",
	"PAYMENT":      "Pago",
	"CANCELLATION": "Cancelacion",
}

// RenderStatementPDF returns the statement as an in-memory PDF document.
func RenderStatementPDF(st *dto.StatementResponse, businessName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(businessName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Estado de cuenta", "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Client ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr(st.Client.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, st.Client.Email, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	label := "Saldo deudor:"
	if st.Balance.IsNegative() {
		label = "Saldo a favor:"
	}
	pdf.CellFormat(contentW*0.7, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.3, 7, "$"+st.Balance.Abs().StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	// ── Movements ────────────────────────────────────────────────────────────
	col1 := contentW * 0.20 // date
	col2 := contentW * 0.44 // concept
	col3 := contentW * 0.18 // amount
	col4 := contentW * 0.18 // running balance

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Fecha", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Concepto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Importe", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Saldo", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, m := range st.Movements {
		concept := movementLabels[m.Kind]
		if m.Description != "" {
			concept += " - " + m.Description
		}
		if len(concept) > 48 {
			concept = concept[:47] + "..."
		}
		date := m.CreatedAt
		if len(date) >= 10 {
			date = date[:10]
		}
		pdf.CellFormat(col1, 5, date, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, tr(concept), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, m.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, m.RunningBalance.StringFixed(2), "", 1, "R", false, 0, "")
	}

	if len(st.Movements) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6, "Sin movimientos registrados", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render statement: %w", err)
	}
	return buf.Bytes(), nil
}
