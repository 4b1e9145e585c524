package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
)

// trendMonths caps the number of trailing month buckets of the default range
const trendMonths = 12

// TrendOptions narrows the revenue trend to an explicit date range. The zero
// value selects the default year-to-date range.
type TrendOptions struct {
	From *time.Time
	To   *time.Time
}

// RevenueService builds the time-bucketed revenue series from invoices. A
// single widened fetch covers the prior-year comparison window and the trend
// buckets; all partitioning happens in memory.
type RevenueService struct {
	invoices *repository.InvoiceRepository
	logger   *zap.Logger
	periods  periods
	now      func() time.Time
}

func NewRevenueService(invoices *repository.InvoiceRepository, logger *zap.Logger, loc *time.Location) *RevenueService {
	return &RevenueService{
		invoices: invoices,
		logger:   logger,
		periods:  newPeriods(loc),
		now:      time.Now,
	}
}

// GetTrend produces the revenue trend for the organization
func (s *RevenueService) GetTrend(ctx context.Context, orgID uuid.UUID, opts TrendOptions) (*domain.RevenueTrend, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	now := s.now().In(s.periods.loc)

	rangeEnd := now
	if opts.To != nil {
		rangeEnd = opts.To.In(s.periods.loc)
	}
	rangeStart := s.periods.startOfYear(rangeEnd)
	if opts.From != nil {
		rangeStart = opts.From.In(s.periods.loc)
	}
	// Exactly at midnight on Jan 1 the default range collapses to a single
	// instant; that is a valid empty window, only inverted ranges are rejected.
	if rangeStart.After(rangeEnd) {
		return nil, fmt.Errorf("%w: date range start must precede end", ErrInvalidInput)
	}

	// Prior-year window for the YoY comparison, same range shifted back one year
	previousRangeStart := rangeStart.AddDate(-1, 0, 0)
	previousRangeEnd := rangeEnd.AddDate(-1, 0, 0)

	// Trend anchor: the explicit range's first month, capped at 12 trailing months
	trendStart := s.periods.startOfMonth(rangeStart)
	bucketCount := s.periods.monthsBetween(trendStart, rangeEnd)
	if bucketCount > trendMonths {
		bucketCount = trendMonths
		trendStart = s.periods.startOfMonth(rangeEnd).AddDate(0, -(trendMonths - 1), 0)
	}
	if bucketCount < 1 {
		bucketCount = 1
	}

	fetchStart := previousRangeStart
	if trendStart.Before(fetchStart) {
		fetchStart = trendStart
	}

	invoices, err := s.invoices.ListRelevantBetween(ctx, orgID, fetchStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue trend: %w", err)
	}

	buckets := make([]domain.RevenueBucket, bucketCount)
	bucketIndex := make(map[string]int, bucketCount)
	for i := 0; i < bucketCount; i++ {
		monthStart := trendStart.AddDate(0, i, 0)
		key := s.periods.monthKey(monthStart)
		buckets[i] = domain.RevenueBucket{
			Label: s.periods.monthLabel(monthStart),
			Key:   key,
		}
		bucketIndex[key] = i
	}

	weekStart := s.periods.startOfWeek(rangeEnd)
	previousWeekStart := weekStart.AddDate(0, 0, -7)

	trend := &domain.RevenueTrend{GeneratedAt: now}

	for i := range invoices {
		invoice := &invoices[i]
		amount := floatOrZero(invoice.AmountTTC)
		paid := isPaidInvoice(invoice)
		createdAt := invoice.CreatedAt.In(s.periods.loc)

		// Month buckets, keyed by issue month
		if idx, ok := bucketIndex[s.periods.monthKey(createdAt)]; ok && !createdAt.Before(trendStart) && createdAt.Before(rangeEnd) {
			buckets[idx].Invoiced += amount
			if paid {
				buckets[idx].Paid += amount
			}
		}

		if inRange(createdAt, rangeStart, rangeEnd) {
			trend.YTDInvoiced += amount
			if paid {
				trend.YTDPaid += amount
				trend.HasData = true
			}
		}
		if inRange(createdAt, previousRangeStart, previousRangeEnd) {
			trend.PreviousYTDInvoiced += amount
			if paid {
				trend.PreviousYTDPaid += amount
			}
		}

		if !paid {
			continue
		}
		paidAt := createdAt
		if invoice.PaidAt != nil {
			paidAt = invoice.PaidAt.In(s.periods.loc)
		}
		if inRange(paidAt, weekStart, rangeEnd) {
			trend.CurrentWeekTotal += amount
		}
		if inRange(paidAt, previousWeekStart, weekStart) {
			trend.PreviousWeekTotal += amount
		}
	}

	for i := range buckets {
		buckets[i].Paid = round2(buckets[i].Paid)
		buckets[i].Invoiced = round2(buckets[i].Invoiced)
	}
	trend.Buckets = buckets

	trend.CurrentMonthTotal = buckets[bucketCount-1].Paid
	if bucketCount > 1 {
		trend.PreviousMonthTotal = buckets[bucketCount-2].Paid
	}

	trend.CurrentWeekTotal = round2(trend.CurrentWeekTotal)
	trend.PreviousWeekTotal = round2(trend.PreviousWeekTotal)
	trend.YTDPaid = round2(trend.YTDPaid)
	trend.YTDInvoiced = round2(trend.YTDInvoiced)
	trend.PreviousYTDPaid = round2(trend.PreviousYTDPaid)
	trend.PreviousYTDInvoiced = round2(trend.PreviousYTDInvoiced)

	return trend, nil
}

// isPaidInvoice normalizes the status before comparing, tolerating lowercase
// values from imports
func isPaidInvoice(invoice *domain.Invoice) bool {
	return domain.ParseInvoiceStatus(string(invoice.Status)) == domain.InvoiceStatusPayee
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
