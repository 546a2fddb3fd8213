package reporting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pos/internal/domain/models"
)

type memorySheet struct {
	mu   sync.Mutex
	rows map[string][][]interface{}
	err  error
}

func newMemorySheet() *memorySheet {
	return &memorySheet{rows: make(map[string][][]interface{})}
}

func (m *memorySheet) AppendRow(ctx context.Context, sheetRange string, values []interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[sheetRange] = append(m.rows[sheetRange], values)
	return nil
}

func (m *memorySheet) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.rows[sheetRange], nil
}

func (m *memorySheet) EnsureHeader(ctx context.Context, headerRange string, header []interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if len(m.rows[salesDataRange]) == 0 {
		m.rows[salesDataRange] = [][]interface{}{header}
	}
	return nil
}

func TestService_RecordAndSummarize(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)

	sheet := newMemorySheet()
	svc := NewService(sheet, lima, nil)
	ctx := context.Background()

	day := time.Date(2026, 10, 19, 15, 0, 0, 0, lima)
	require.NoError(t, svc.RecordSale(ctx, models.SaleRecord{
		Date: day, ReferenceID: "1", Customer: "Luis", Receipt: "Factura", Items: 3,
		Total: decimal.RequireFromString("25.00"), Tax: decimal.RequireFromString("4.50"),
	}))
	require.NoError(t, svc.RecordSale(ctx, models.SaleRecord{
		Date: day.Add(time.Hour), ReferenceID: "2", Customer: "Walk-in", Items: 1,
		Total: decimal.RequireFromString("9.90"), Tax: decimal.RequireFromString("1.78"),
	}))
	require.NoError(t, svc.RecordSale(ctx, models.SaleRecord{
		Date: day.AddDate(0, 0, 1), ReferenceID: "3", Items: 5,
		Total: decimal.RequireFromString("100"), Tax: decimal.RequireFromString("18"),
	}))
	require.Len(t, sheet.rows[salesDataRange], 4)
	assert.Equal(t, "Date", sheet.rows[salesDataRange][0][0])

	// Rows typed by hand may carry text values.
	sheet.rows[salesDataRange] = append(sheet.rows[salesDataRange], []interface{}{"2026-10-19", "20:00:00", "4", "x", "", "2", "not-a-number", "0"})

	report, err := svc.DailySummary(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sales)
	assert.Equal(t, 4, report.Items)
	assert.InDelta(t, 34.90, report.GrandTotal, 1e-9)
	assert.InDelta(t, 6.28, report.Tax, 1e-9)
	assert.Equal(t, "Sales 2026-10-19: 2 sales, 4 items, total 34.90 (tax 6.28).", FormatSummary(report))

	empty, err := svc.DailySummary(ctx, day.AddDate(0, 0, -3))
	require.NoError(t, err)
	assert.Equal(t, "Sales 2026-10-16: no sales recorded.", FormatSummary(empty))
}

func TestService_PropagatesRepositoryErrors(t *testing.T) {
	sheet := newMemorySheet()
	sheet.err = errors.New("quota exceeded")
	svc := NewService(sheet, time.UTC, nil)

	err := svc.RecordSale(context.Background(), models.SaleRecord{ReferenceID: "1"})
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = svc.DailySummary(context.Background(), time.Now())
	assert.ErrorContains(t, err, "quota exceeded")
}
