package Reports

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"AgriDealer/Analytics"
	"AgriDealer/Models"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet wraps an excelize sheet with a running row cursor
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newWorkbook(first string) (*excelize.File, *sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), first); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("error creating sheet: %w", err)
	}
	return f, &sheet{f: f, name: first}, nil
}

func (s *sheet) addRow(values ...interface{}) error {
	s.row++
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.f.SetCellValue(s.name, cell, value); err != nil {
			return err
		}
	}
	return nil
}

// header writes a bold shaded row
func (s *sheet) header(titles ...string) error {
	values := make([]interface{}, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := s.addRow(values...); err != nil {
		return err
	}
	style, err := s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
	})
	if err == nil {
		s.f.SetRowStyle(s.name, s.row, s.row, style)
	}
	return nil
}

func (s *sheet) widths(last string, width float64) {
	s.f.SetColWidth(s.name, "A", last, width)
}

func toBuffer(f *excelize.File) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %w", err)
	}
	return &buf, nil
}

// StatementWorkbook exports a farmer statement: a summary sheet with aging, and the ledger lines
func StatementWorkbook(statement Analytics.Statement, entries []Analytics.LedgerEntry) (*bytes.Buffer, error) {
	f, summary, err := newWorkbook("Statement")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := [][]interface{}{
		{"Farmer", statement.Farmer.FullName},
		{"Mobile", statement.Farmer.Mobile},
		{"Village", statement.Farmer.Village},
		{"As of", statement.AsOf.Format("2006-01-02")},
		{"Outstanding balance", statement.Balance.InexactFloat64()},
	}
	for _, row := range rows {
		if err := summary.addRow(row...); err != nil {
			return nil, err
		}
	}
	summary.row++
	if err := summary.header("Bucket", "Amount", "Share"); err != nil {
		return nil, err
	}
	buckets := [][]interface{}{
		{"0-30 days", statement.Aging.Current.InexactFloat64(), statement.Shares.Current},
		{"31-60 days", statement.Aging.Days30.InexactFloat64(), statement.Shares.Days30},
		{"61-90 days", statement.Aging.Days60.InexactFloat64(), statement.Shares.Days60},
		{"90+ days", statement.Aging.Days90Plus.InexactFloat64(), statement.Shares.Days90Plus},
	}
	for _, row := range buckets {
		if err := summary.addRow(row...); err != nil {
			return nil, err
		}
	}
	if statement.Reminder.ShouldRemind {
		summary.row++
		if err := summary.addRow("Reminder ("+string(statement.Reminder.Urgency)+")", statement.Reminder.Message); err != nil {
			return nil, err
		}
	}
	summary.widths("C", 22)

	if _, err := f.NewSheet("Ledger"); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	ledger := &sheet{f: f, name: "Ledger"}
	if err := ledger.header("Date", "Kind", "Amount", "Status", "Note"); err != nil {
		return nil, err
	}
	for _, e := range entries {
		date := ""
		if !e.OccurredAt.IsZero() {
			date = e.OccurredAt.Format("2006-01-02")
		}
		if err := ledger.addRow(date, string(e.Kind), e.Amount.InexactFloat64(), string(e.Status), e.Note); err != nil {
			return nil, err
		}
	}
	ledger.widths("E", 18)

	return toBuffer(f)
}

// TrendWorkbook exports a vendor's monthly revenue buckets
func TrendWorkbook(vendorID string, points []Analytics.TrendPoint) (*bytes.Buffer, error) {
	f, s, err := newWorkbook("Trend")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := s.addRow("Vendor", vendorID); err != nil {
		return nil, err
	}
	s.row++
	if err := s.header("Month", "Revenue", "Orders"); err != nil {
		return nil, err
	}
	for _, p := range points {
		if err := s.addRow(p.Label, p.Revenue.InexactFloat64(), p.Count); err != nil {
			return nil, err
		}
	}
	s.widths("C", 15)
	return toBuffer(f)
}

// RowError describes an import row that was skipped
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ledger import columns, matched case-insensitively against the first row
var importColumns = map[string]string{
	"date":   "date",
	"kind":   "kind",
	"type":   "kind",
	"amount": "amount",
	"note":   "note",
	"notes":  "note",
}

// ReadLedger reads ledger entries from the first sheet of an xlsx upload.
// The first row names the columns (Date, Kind, Amount, Note). Rows that cannot
// be read are reported and skipped.
func ReadLedger(r io.Reader, farmerID, dealerID uint) ([]Models.LedgerEntry, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("error reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("workbook is empty")
	}

	columns := map[string]int{}
	for i, title := range rows[0] {
		if key, ok := importColumns[strings.ToLower(strings.TrimSpace(title))]; ok {
			columns[key] = i
		}
	}
	for _, required := range []string{"kind", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("missing %q column", required)
		}
	}

	cell := func(row []string, key string) string {
		i, ok := columns[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []Models.LedgerEntry
	var skipped []RowError
	for n, row := range rows[1:] {
		rowNumber := n + 2
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		kind, ok := Analytics.ParseEntryKind(cell(row, "kind"))
		if !ok {
			skipped = append(skipped, RowError{Row: rowNumber, Message: Models.ErrInvalidKind.Error()})
			continue
		}
		amount, err := Models.ParseAmount(cell(row, "amount"))
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		occurredAt, err := Models.ParseOccurredAt(cell(row, "date"))
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		entries = append(entries, Models.LedgerEntry{
			FarmerID:   farmerID,
			DealerID:   dealerID,
			Amount:     amount,
			Kind:       string(kind),
			Status:     Models.StatusActive,
			OccurredAt: occurredAt,
			Note:       cell(row, "note"),
			SyncStatus: "IMPORTED",
		})
	}
	return entries, skipped, nil
}
