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

type dashboardFixture struct {
	db    *gorm.DB
	svc   *DashboardService
	orgID uuid.UUID
	now   time.Time
	loc   *time.Location
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	loc := parisLocation(t)
	db := newTestDB(t)
	log := zap.NewNop()

	statusConfig := NewStatusConfigService(repository.NewSettingRepository(db), log)
	svc := NewDashboardService(
		repository.NewLeadRepository(db),
		repository.NewProjectRepository(db),
		repository.NewQuoteRepository(db),
		repository.NewSiteRepository(db),
		repository.NewAppointmentRepository(db),
		statusConfig,
		log,
		loc,
	)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	svc.now = func() time.Time { return now }

	return &dashboardFixture{
		db:    db,
		svc:   svc,
		orgID: newID(),
		now:   now,
		loc:   loc,
	}
}

func (f *dashboardFixture) createLead(t *testing.T, status domain.LeadStatus, createdAt time.Time) {
	t.Helper()
	lead := &domain.Lead{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: createdAt, UpdatedAt: createdAt},
		OrganizationID: f.orgID,
		LastName:       "Martin",
		Status:         status,
	}
	require.NoError(t, f.db.Create(lead).Error)
}

func (f *dashboardFixture) createSite(t *testing.T, site *domain.Site) {
	t.Helper()
	if site.ID == uuid.Nil {
		site.ID = newID()
	}
	site.OrganizationID = f.orgID
	require.NoError(t, f.db.Create(site).Error)
}

func TestGetMetricsRequiresOrganization(t *testing.T) {
	f := newDashboardFixture(t)

	_, err := f.svc.GetMetrics(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMetricsEndToEnd(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	f.createLead(t, domain.LeadStatusEligible, f.now.Add(-2*time.Hour))

	product := &domain.ProductCatalog{
		BaseModel:        domain.BaseModel{ID: newID()},
		Reference:        "ISO-001",
		Name:             "Isolation combles",
		Category:         "Isolation",
		CoeffKWhStandard: 85,
		SeuilSurfaceM2:   1000,
		IsActive:         true,
	}
	require.NoError(t, f.db.Create(product).Error)

	project := &domain.Project{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: f.now.Add(-48 * time.Hour), UpdatedAt: f.now.Add(-1 * time.Hour)},
		OrganizationID: f.orgID,
		Name:           "Rénovation Dupont",
		Status:         domain.ProjectStatusDevisSigne,
		BuildingType:   domain.BuildingTypeResidentiel,
		SurfaceM2:      float64Ptr(120),
	}
	require.NoError(t, f.db.Create(project).Error)
	require.NoError(t, f.db.Create(&domain.ProjectProduct{
		BaseModel: domain.BaseModel{ID: newID()},
		ProjectID: project.ID,
		ProductID: product.ID,
		Quantity:  50,
	}).Error)

	f.createSite(t, &domain.Site{
		Name:              "Chantier Dupont",
		Status:            domain.SiteStatusTermine,
		Category:          "Isolation",
		DateFin:           timePtr(f.now.Add(-3 * time.Hour)),
		CaTTC:             float64Ptr(1000),
		SurfaceFactureeM2: float64Ptr(50),
	})

	metrics, err := f.svc.GetMetrics(ctx, f.orgID)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, metrics.LeadsActifs, 1)
	assert.Equal(t, 1000.0, metrics.CAMois)
	assert.Equal(t, 50.0, metrics.SurfaceIsoleeMois)
	assert.Greater(t, metrics.EnergieParCategorie["Isolation"], 0.0)
	// 50 units * 85 kWh / 1000 = 4.25 MWh
	assert.InDelta(t, 4.25, metrics.EnergieTotaleMWh, 0.001)
	assert.Equal(t, 1, metrics.ProjetsEnCours)
	assert.Equal(t, f.now, metrics.GeneratedAt)
}

func TestGetMetricsIdempotent(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	f.createLead(t, domain.LeadStatusQualifie, f.now.Add(-24*time.Hour))
	f.createSite(t, &domain.Site{
		Name:    "Chantier A",
		Status:  domain.SiteStatusEnCours,
		CaTTC:   float64Ptr(5000),
		DateFin: nil,
	})

	first, err := f.svc.GetMetrics(ctx, f.orgID)
	require.NoError(t, err)
	second, err := f.svc.GetMetrics(ctx, f.orgID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetMetricsConversionDeltaNilWithoutSignal(t *testing.T) {
	f := newDashboardFixture(t)

	// No qualified leads in either 90-day window
	f.createLead(t, domain.LeadStatusNouveau, f.now.Add(-time.Hour))

	metrics, err := f.svc.GetMetrics(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Zero(t, metrics.TauxConversion)
	assert.Nil(t, metrics.DeltaTauxConversion)
}

func TestGetMetricsConversionDelta(t *testing.T) {
	f := newDashboardFixture(t)

	// Current window: 2 qualified leads, 1 signed project
	f.createLead(t, domain.LeadStatusQualifie, f.now.Add(-10*24*time.Hour))
	f.createLead(t, domain.LeadStatusConverti, f.now.Add(-20*24*time.Hour))
	// Previous window: 1 qualified lead, no signed project
	f.createLead(t, domain.LeadStatusQualifie, f.now.Add(-120*24*time.Hour))

	project := &domain.Project{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: f.now.Add(-30 * 24 * time.Hour), UpdatedAt: f.now.Add(-5 * 24 * time.Hour)},
		OrganizationID: f.orgID,
		Name:           "Dossier signé",
		Status:         domain.ProjectStatusDevisSigne,
		BuildingType:   domain.BuildingTypeResidentiel,
	}
	require.NoError(t, f.db.Create(project).Error)

	metrics, err := f.svc.GetMetrics(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Equal(t, 50.0, metrics.TauxConversion)
	require.NotNil(t, metrics.DeltaTauxConversion)
	assert.Equal(t, 50.0, *metrics.DeltaTauxConversion)
}

func TestGetMetricsNullRevenueCountsAsZero(t *testing.T) {
	f := newDashboardFixture(t)

	f.createSite(t, &domain.Site{
		Name:    "Chantier sans CA",
		Status:  domain.SiteStatusTermine,
		DateFin: timePtr(f.now.Add(-time.Hour)),
		CaTTC:   nil,
	})

	metrics, err := f.svc.GetMetrics(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.CAMois)
	assert.Equal(t, 0.0, metrics.MargeMois)
}

func TestGetMetricsIgnoresDeliveredSites(t *testing.T) {
	f := newDashboardFixture(t)

	// Delivered this month but not TERMINE: excluded from the month totals
	f.createSite(t, &domain.Site{
		Name:              "Chantier livré",
		Status:            domain.SiteStatusLivre,
		DateFin:           timePtr(f.now.Add(-time.Hour)),
		CaTTC:             float64Ptr(777),
		SurfaceFactureeM2: float64Ptr(40),
	})

	metrics, err := f.svc.GetMetrics(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Zero(t, metrics.CAMois)
	assert.Zero(t, metrics.SurfaceIsoleeMois)
}

func TestGetMetricsScopedToOrganization(t *testing.T) {
	f := newDashboardFixture(t)

	// Another organization's data must not leak into the snapshot
	otherOrg := newID()
	lead := &domain.Lead{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: f.now.Add(-time.Hour), UpdatedAt: f.now.Add(-time.Hour)},
		OrganizationID: otherOrg,
		LastName:       "Durand",
		Status:         domain.LeadStatusNouveau,
	}
	require.NoError(t, f.db.Create(lead).Error)

	metrics, err := f.svc.GetMetrics(context.Background(), f.orgID)
	require.NoError(t, err)
	assert.Zero(t, metrics.LeadsActifs)
}

func timePtr(v time.Time) *time.Time { return &v }
