// Package render writes loan summaries for the command line as a styled
// table, JSON or CSV.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"loan-amortizer/domain"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
)

var columns = []string{
	"#", "Start balance", "Principal", "Interest", "End balance", "Accrued interest", "Paid to date",
}

// Money formats v with exactly two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Write renders summary in the given format. With summaryOnly the payment
// table is left out.
func Write(w io.Writer, format string, summary domain.LoanSummary, summaryOnly bool) error {
	if summaryOnly {
		summary.PaymentTable = nil
	}

	switch format {
	case FormatTable, "":
		return Table(w, summary)
	case FormatJSON:
		return JSON(w, summary)
	case FormatCSV:
		return CSV(w, summary)
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, FormatTable, FormatJSON, FormatCSV)
	}
}

// Table writes the payment table, when present, followed by the totals.
// Colors are only emitted when w is a terminal.
func Table(w io.Writer, summary domain.LoanSummary) error {
	re := lipgloss.NewRenderer(w)
	headerStyle := re.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle := re.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	labelStyle := re.NewStyle().Foreground(colorMuted).Width(18)
	valueStyle := re.NewStyle().Bold(true)

	if len(summary.PaymentTable) > 0 {
		rows := make([][]string, 0, len(summary.PaymentTable))
		for _, rec := range summary.PaymentTable {
			rows = append(rows, []string{
				strconv.Itoa(rec.PaymentNumber),
				Money(rec.StartBalance),
				Money(rec.PaymentPrincipal),
				Money(rec.PaymentInterest),
				Money(rec.EndBalance),
				Money(rec.AccumulatedInterest),
				Money(rec.AmountPaidToDate),
			})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(re.NewStyle().Foreground(colorMuted)).
			Headers(columns...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}

	lines := []struct {
		label string
		value float64
	}{
		{"Principal", summary.Principal},
		{"Periodic payment", summary.PeriodicPayment},
		{"Total paid", summary.TotalPaid},
		{"Interest paid", summary.InterestPaid},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, labelStyle.Render(l.label)+valueStyle.Render(Money(l.value))); err != nil {
			return err
		}
	}
	return nil
}

func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CSV writes one row per payment period with a header row. Without a payment
// table it writes the totals as a single row instead.
func CSV(w io.Writer, summary domain.LoanSummary) error {
	cw := csv.NewWriter(w)

	if len(summary.PaymentTable) == 0 {
		if err := cw.Write([]string{"principal", "periodic_payment", "total_paid", "interest_paid"}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		// Row errors are sticky and reported by Error after Flush.
		cw.Write([]string{
			Money(summary.Principal),
			Money(summary.PeriodicPayment),
			Money(summary.TotalPaid),
			Money(summary.InterestPaid),
		})
		cw.Flush()
		return cw.Error()
	}

	header := []string{
		"payment_number", "start_balance", "payment_principal", "payment_interest",
		"end_balance", "accumulated_interest", "amount_paid_to_date",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	// Row errors are sticky and reported by Error after Flush.
	for _, rec := range summary.PaymentTable {
		cw.Write([]string{
			strconv.Itoa(rec.PaymentNumber),
			Money(rec.StartBalance),
			Money(rec.PaymentPrincipal),
			Money(rec.PaymentInterest),
			Money(rec.EndBalance),
			Money(rec.AccumulatedInterest),
			Money(rec.AmountPaidToDate),
		})
	}
	cw.Flush()
	return cw.Error()
}
