package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type revenueFixture struct {
	db    *gorm.DB
	svc   *RevenueService
	orgID uuid.UUID
	now   time.Time
	loc   *time.Location
}

func newRevenueFixture(t *testing.T, now time.Time) *revenueFixture {
	t.Helper()

	db := newTestDB(t)
	svc := NewRevenueService(repository.NewInvoiceRepository(db), zap.NewNop(), now.Location())
	svc.now = func() time.Time { return now }

	return &revenueFixture{
		db:    db,
		svc:   svc,
		orgID: newID(),
		now:   now,
		loc:   now.Location(),
	}
}

func (f *revenueFixture) createInvoice(t *testing.T, status domain.InvoiceStatus, amount float64, createdAt time.Time, paidAt *time.Time) {
	t.Helper()
	invoice := &domain.Invoice{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: createdAt, UpdatedAt: createdAt},
		OrganizationID: f.orgID,
		Reference:      "FAC-" + uuid.NewString()[:8],
		Status:         status,
		AmountTTC:      float64Ptr(amount),
		PaidAt:         paidAt,
	}
	require.NoError(t, f.db.Create(invoice).Error)
}

func TestGetTrendRequiresOrganization(t *testing.T) {
	f := newRevenueFixture(t, time.Date(2026, 8, 29, 12, 0, 0, 0, parisLocation(t)))

	_, err := f.svc.GetTrend(context.Background(), uuid.Nil, TrendOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetTrendRejectsInvertedRange(t *testing.T) {
	loc := parisLocation(t)
	f := newRevenueFixture(t, time.Date(2026, 8, 29, 12, 0, 0, 0, loc))

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	_, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetTrendJanuaryHasSingleBucket(t *testing.T) {
	loc := parisLocation(t)
	f := newRevenueFixture(t, time.Date(2026, 1, 5, 9, 0, 0, 0, loc))

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)

	require.Len(t, trend.Buckets, 1)
	assert.Equal(t, "2026-01", trend.Buckets[0].Key)
	assert.Equal(t, "janvier 2026", trend.Buckets[0].Label)
	assert.Zero(t, trend.CurrentMonthTotal)
	assert.Zero(t, trend.PreviousMonthTotal)
	assert.False(t, trend.HasData)
}

func TestGetTrendYearStartInstant(t *testing.T) {
	loc := parisLocation(t)
	// Midnight on Jan 1: the default year-to-date range is a single instant
	f := newRevenueFixture(t, time.Date(2026, 1, 1, 0, 0, 0, 0, loc))

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)

	require.Len(t, trend.Buckets, 1)
	assert.Equal(t, "2026-01", trend.Buckets[0].Key)
	assert.Zero(t, trend.CurrentMonthTotal)
	assert.Zero(t, trend.PreviousMonthTotal)
	assert.False(t, trend.HasData)
}

func TestGetTrendDraftContributesToInvoiced(t *testing.T) {
	loc := parisLocation(t)
	f := newRevenueFixture(t, time.Date(2026, 8, 29, 12, 0, 0, 0, loc))

	issue := time.Date(2026, 8, 10, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusBrouillon, 500, issue, nil)

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)

	assert.Equal(t, 500.0, trend.YTDInvoiced)
	assert.Zero(t, trend.YTDPaid)
	assert.False(t, trend.HasData)
}

func TestGetTrendPaidVersusInvoiced(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	f := newRevenueFixture(t, now)
	ctx := context.Background()

	julyIssue := time.Date(2026, 7, 10, 10, 0, 0, 0, loc)
	julyPaid := time.Date(2026, 7, 20, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 1200, julyIssue, &julyPaid)
	f.createInvoice(t, domain.InvoiceStatusEnvoyee, 800, julyIssue, nil)
	// Drafts count as invoiced work, never as paid
	f.createInvoice(t, domain.InvoiceStatusBrouillon, 500, julyIssue, nil)

	trend, err := f.svc.GetTrend(ctx, f.orgID, TrendOptions{})
	require.NoError(t, err)

	require.Len(t, trend.Buckets, 8)
	july := trend.Buckets[6]
	assert.Equal(t, "2026-07", july.Key)
	assert.Equal(t, 1200.0, july.Paid)
	assert.Equal(t, 2500.0, july.Invoiced)

	assert.Equal(t, 1200.0, trend.YTDPaid)
	assert.Equal(t, 2500.0, trend.YTDInvoiced)
	assert.True(t, trend.HasData)

	// July is the previous-to-last bucket only when a later bucket exists
	assert.Equal(t, trend.Buckets[7].Paid, trend.CurrentMonthTotal)
	assert.Equal(t, 1200.0, trend.Buckets[6].Paid)
}

func TestGetTrendMonthTotals(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	f := newRevenueFixture(t, now)

	augustPaid := time.Date(2026, 8, 10, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 500, augustPaid, &augustPaid)
	julyPaid := time.Date(2026, 7, 15, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 300, julyPaid, &julyPaid)

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)

	assert.Equal(t, 500.0, trend.CurrentMonthTotal)
	assert.Equal(t, 300.0, trend.PreviousMonthTotal)
}

func TestGetTrendPriorYearComparison(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	f := newRevenueFixture(t, now)

	lastYear := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 2500, lastYear, &lastYear)
	thisYear := time.Date(2026, 3, 10, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 3000, thisYear, &thisYear)

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, trend.YTDPaid)
	assert.Equal(t, 2500.0, trend.PreviousYTDPaid)
	assert.Equal(t, 2500.0, trend.PreviousYTDInvoiced)
}

func TestGetTrendWeekTotalsKeyOnPaymentDate(t *testing.T) {
	loc := parisLocation(t)
	// Saturday; current week starts Monday the 24th
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	f := newRevenueFixture(t, now)

	// Issued weeks ago, paid this week: counts toward the current week
	issue := time.Date(2026, 8, 3, 10, 0, 0, 0, loc)
	paidThisWeek := time.Date(2026, 8, 25, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 1000, issue, &paidThisWeek)

	paidLastWeek := time.Date(2026, 8, 19, 10, 0, 0, 0, loc)
	f.createInvoice(t, domain.InvoiceStatusPayee, 400, issue, &paidLastWeek)

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, trend.CurrentWeekTotal)
	assert.Equal(t, 400.0, trend.PreviousWeekTotal)
}

func TestGetTrendExplicitRangeCapsBuckets(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	f := newRevenueFixture(t, now)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 8, 1, 0, 0, 0, 0, loc)
	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{From: &from, To: &to})
	require.NoError(t, err)

	require.Len(t, trend.Buckets, 12)
	assert.Equal(t, "2025-09", trend.Buckets[0].Key)
	assert.Equal(t, "2026-08", trend.Buckets[11].Key)
}

func TestGetTrendScopedToOrganization(t *testing.T) {
	loc := parisLocation(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	f := newRevenueFixture(t, now)

	paid := time.Date(2026, 8, 10, 10, 0, 0, 0, loc)
	other := &domain.Invoice{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: paid, UpdatedAt: paid},
		OrganizationID: newID(),
		Reference:      "FAC-OTHER",
		Status:         domain.InvoiceStatusPayee,
		AmountTTC:      float64Ptr(700),
		PaidAt:         &paid,
	}
	require.NoError(t, f.db.Create(other).Error)

	trend, err := f.svc.GetTrend(context.Background(), f.orgID, TrendOptions{})
	require.NoError(t, err)
	assert.Zero(t, trend.YTDPaid)
	assert.False(t, trend.HasData)
}
