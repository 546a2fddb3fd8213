package reporting

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/domain/models"
	repo "github.com/mamadbah2/pos/internal/repository/sheets"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	salesDataRange = "Quotations!A:H"
	headerRange    = "Quotations!A1:H1"
)

var journalHeader = []interface{}{"Date", "Time", "Reference", "Customer", "Receipt", "Items", "Total", "Tax"}

// Service journals sales into the spreadsheet and aggregates them per day.
type Service struct {
	repo     repo.Repository
	location *time.Location
	logger   *zap.Logger

	headerMu    sync.Mutex
	headerReady bool
}

// NewService wires a new reporting service instance.
func NewService(repository repo.Repository, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &Service{repo: repository, location: location, logger: logger}
}

// RecordSale appends one row per completed sale:
// date, time, reference, customer, receipt, items, total, tax.
func (s *Service) RecordSale(ctx context.Context, record models.SaleRecord) error {
	s.ensureHeader(ctx)

	at := record.Date.In(s.location)
	values := []interface{}{
		at.Format(dateLayout),
		at.Format(timeLayout),
		record.ReferenceID,
		record.Customer,
		record.Receipt,
		record.Items,
		record.Total.InexactFloat64(),
		record.Tax.InexactFloat64(),
	}
	if err := s.repo.AppendRow(ctx, salesDataRange, values); err != nil {
		return fmt.Errorf("journal sale %s: %w", record.ReferenceID, err)
	}
	return nil
}

// ensureHeader labels the journal columns once per process. Failures are only
// logged; the row itself is still appended.
func (s *Service) ensureHeader(ctx context.Context) {
	s.headerMu.Lock()
	defer s.headerMu.Unlock()

	if s.headerReady {
		return
	}
	if err := s.repo.EnsureHeader(ctx, headerRange, journalHeader); err != nil {
		s.logger.Warn("failed to write journal header", zap.Error(err))
		return
	}
	s.headerReady = true
}

// DailySummary aggregates the journal rows recorded on day.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (models.DailyReport, error) {
	rows, err := s.repo.ReadRange(ctx, salesDataRange)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load sales range: %w", err)
	}

	local := day.In(s.location)
	wanted := local.Format(dateLayout)
	report := models.DailyReport{
		Date:      time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location),
		CreatedAt: time.Now().UTC(),
	}

	total := decimal.Zero
	tax := decimal.Zero
	for _, row := range rows {
		if len(row) < 7 || fmt.Sprint(row[0]) != wanted {
			continue
		}

		amount, err := parseDecimal(row[6])
		if err != nil {
			s.logger.Debug("skip sales row with invalid total", zap.Any("value", row[6]), zap.Error(err))
			continue
		}
		if items, err := parseInt(row[5]); err == nil {
			report.Items += items
		}
		if len(row) > 7 {
			if t, err := parseDecimal(row[7]); err == nil {
				tax = tax.Add(t)
			}
		}

		total = total.Add(amount)
		report.Sales++
	}

	report.GrandTotal = total.Round(2).InexactFloat64()
	report.Tax = tax.Round(2).InexactFloat64()
	return report, nil
}

// FormatSummary renders a report as a one-line message.
func FormatSummary(report models.DailyReport) string {
	if report.Sales == 0 {
		return fmt.Sprintf("Sales %s: no sales recorded.", report.Date.Format(dateLayout))
	}
	return fmt.Sprintf("Sales %s: %d sales, %d items, total %.2f (tax %.2f).",
		report.Date.Format(dateLayout), report.Sales, report.Items, report.GrandTotal, report.Tax)
}

func parseInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	}
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(str)
}

func parseDecimal(value interface{}) (decimal.Decimal, error) {
	if v, ok := value.(float64); ok {
		return decimal.NewFromFloat(v), nil
	}
	str := fmt.Sprint(value)
	if str == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	return decimal.NewFromString(str)
}
