package service

import (
	"context"
	"fmt"
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

type reportsFixture struct {
	db    *gorm.DB
	svc   *ReportsService
	orgID uuid.UUID
	now   time.Time
}

func newReportsFixture(t *testing.T) *reportsFixture {
	t.Helper()

	loc := parisLocation(t)
	db := newTestDB(t)
	log := zap.NewNop()

	statusConfig := NewStatusConfigService(repository.NewSettingRepository(db), log)
	svc := NewReportsService(
		repository.NewLeadRepository(db),
		repository.NewProjectRepository(db),
		repository.NewSiteRepository(db),
		statusConfig,
		log,
		loc,
	)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, loc)
	svc.now = func() time.Time { return now }

	return &reportsFixture{db: db, svc: svc, orgID: newID(), now: now}
}

func (f *reportsFixture) createLead(t *testing.T, source string, status domain.LeadStatus) {
	t.Helper()
	createdAt := f.now.Add(-30 * 24 * time.Hour)
	lead := &domain.Lead{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: createdAt, UpdatedAt: createdAt},
		OrganizationID: f.orgID,
		LastName:       "Test",
		Source:         source,
		Status:         status,
	}
	require.NoError(t, f.db.Create(lead).Error)
}

func (f *reportsFixture) createSite(t *testing.T, site *domain.Site) {
	t.Helper()
	if site.ID == uuid.Nil {
		site.ID = newID()
	}
	site.OrganizationID = f.orgID
	require.NoError(t, f.db.Create(site).Error)
}

func TestGetReportRequiresOrganization(t *testing.T) {
	f := newReportsFixture(t)

	_, err := f.svc.GetReport(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetReportSourceBreakdown(t *testing.T) {
	f := newReportsFixture(t)

	// Facebook: 3 leads, 2 qualified. Salon: 2 leads, 0 qualified.
	// No source tag: grouped under "Direct".
	f.createLead(t, "Facebook", domain.LeadStatusQualifie)
	f.createLead(t, "Facebook", domain.LeadStatusConverti)
	f.createLead(t, "Facebook", domain.LeadStatusPerdu)
	f.createLead(t, "Salon", domain.LeadStatusNouveau)
	f.createLead(t, "Salon", domain.LeadStatusNonEligible)
	f.createLead(t, "", domain.LeadStatusNouveau)

	report, err := f.svc.GetReport(context.Background(), f.orgID)
	require.NoError(t, err)

	require.Len(t, report.SourceBreakdown, 3)
	assert.Equal(t, "Facebook", report.SourceBreakdown[0].Source)
	assert.Equal(t, 3, report.SourceBreakdown[0].LeadCount)
	assert.Equal(t, 2, report.SourceBreakdown[0].QualifiedCount)
	assert.InDelta(t, 66.7, report.SourceBreakdown[0].ConversionRate, 0.01)

	// Volume descending: Salon (2) before the single untagged Direct lead
	assert.Equal(t, "Salon", report.SourceBreakdown[1].Source)
	assert.Equal(t, 2, report.SourceBreakdown[1].LeadCount)
	assert.Equal(t, "Direct", report.SourceBreakdown[2].Source)
	assert.Equal(t, 1, report.SourceBreakdown[2].LeadCount)
}

func TestGetReportSourceBreakdownTieBreaksAlphabetically(t *testing.T) {
	f := newReportsFixture(t)

	f.createLead(t, "Salon", domain.LeadStatusNouveau)
	f.createLead(t, "Facebook", domain.LeadStatusNouveau)

	report, err := f.svc.GetReport(context.Background(), f.orgID)
	require.NoError(t, err)

	require.Len(t, report.SourceBreakdown, 2)
	assert.Equal(t, "Facebook", report.SourceBreakdown[0].Source)
	assert.Equal(t, "Salon", report.SourceBreakdown[1].Source)
}

func TestGetReportExcludesLeadsBeyondHorizon(t *testing.T) {
	f := newReportsFixture(t)

	old := f.now.Add(-400 * 24 * time.Hour)
	lead := &domain.Lead{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: old, UpdatedAt: old},
		OrganizationID: f.orgID,
		LastName:       "Ancien",
		Source:         "Facebook",
		Status:         domain.LeadStatusQualifie,
	}
	require.NoError(t, f.db.Create(lead).Error)

	report, err := f.svc.GetReport(context.Background(), f.orgID)
	require.NoError(t, err)
	assert.Empty(t, report.SourceBreakdown)
}

func TestGetReportMarginAndDurationAverages(t *testing.T) {
	f := newReportsFixture(t)

	start1 := f.now.Add(-40 * 24 * time.Hour)
	end1 := f.now.Add(-30 * 24 * time.Hour)
	f.createSite(t, &domain.Site{
		Name:      "Chantier A",
		Status:    domain.SiteStatusTermine,
		DateDebut: &start1,
		DateFin:   &end1,
		CaTTC:     float64Ptr(10000),
		TauxMarge: float64Ptr(40),
	})

	// No persisted rate: recomputed from revenue and margin total
	start2 := f.now.Add(-25 * 24 * time.Hour)
	end2 := f.now.Add(-5 * 24 * time.Hour)
	f.createSite(t, &domain.Site{
		Name:        "Chantier B",
		Status:      domain.SiteStatusLivre,
		DateDebut:   &start2,
		DateFin:     &end2,
		CaTTC:       float64Ptr(8000),
		MargeTotale: float64Ptr(1600),
	})

	// Missing start date: counted for margin, excluded from duration
	end3 := f.now.Add(-2 * 24 * time.Hour)
	f.createSite(t, &domain.Site{
		Name:      "Chantier C",
		Status:    domain.SiteStatusTermine,
		DateFin:   &end3,
		CaTTC:     float64Ptr(5000),
		TauxMarge: float64Ptr(30),
	})

	report, err := f.svc.GetReport(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.CompletedSites)
	require.NotNil(t, report.AvgMarginRate)
	// (40 + 20 + 30) / 3
	assert.InDelta(t, 30.0, *report.AvgMarginRate, 0.01)
	require.NotNil(t, report.AvgSiteDurationDays)
	// (10 + 20) / 2
	assert.InDelta(t, 15.0, *report.AvgSiteDurationDays, 0.01)
}

func TestGetReportAveragesNilWithoutSignal(t *testing.T) {
	f := newReportsFixture(t)

	report, err := f.svc.GetReport(context.Background(), f.orgID)
	require.NoError(t, err)

	assert.Nil(t, report.AvgMarginRate)
	assert.Nil(t, report.AvgSiteDurationDays)
	assert.Zero(t, report.CompletedSites)
}

func TestGetReportTopSites(t *testing.T) {
	f := newReportsFixture(t)

	end := f.now.Add(-10 * 24 * time.Hour)
	for i, revenue := range []float64{3000, 9000, 1000, 7000, 5000, 2000, 8000} {
		f.createSite(t, &domain.Site{
			Name:    fmt.Sprintf("Chantier %02d", i),
			Status:  domain.SiteStatusTermine,
			DateFin: &end,
			CaTTC:   float64Ptr(revenue),
		})
	}

	report, err := f.svc.GetReport(context.Background(), f.orgID)
	require.NoError(t, err)

	require.Len(t, report.TopSites, 5)
	assert.Equal(t, 9000.0, report.TopSites[0].CaTTC)
	assert.Equal(t, 8000.0, report.TopSites[1].CaTTC)
	assert.Equal(t, 3000.0, report.TopSites[4].CaTTC)
}

func TestGetReportEnergyBreakdown(t *testing.T) {
	f := newReportsFixture(t)
	ctx := context.Background()

	product := &domain.ProductCatalog{
		BaseModel:        domain.BaseModel{ID: newID()},
		Reference:        "PAC-001",
		Name:             "Pompe à chaleur",
		Category:         "Chauffage",
		CoeffKWhStandard: 120,
		SeuilSurfaceM2:   1000,
		IsActive:         true,
	}
	require.NoError(t, f.db.Create(product).Error)

	project := &domain.Project{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: f.now, UpdatedAt: f.now},
		OrganizationID: f.orgID,
		Name:           "Dossier PAC",
		Status:         domain.ProjectStatusEnCours,
		BuildingType:   domain.BuildingTypeResidentiel,
	}
	require.NoError(t, f.db.Create(project).Error)
	require.NoError(t, f.db.Create(&domain.ProjectProduct{
		BaseModel: domain.BaseModel{ID: newID()},
		ProjectID: project.ID,
		ProductID: product.ID,
		Quantity:  10,
	}).Error)

	report, err := f.svc.GetReport(ctx, f.orgID)
	require.NoError(t, err)

	// 10 units * 120 kWh / 1000 = 1.2 MWh
	assert.InDelta(t, 1.2, report.EnergieTotaleMWh, 0.001)
	assert.InDelta(t, 1.2, report.EnergieParCategorie["Chauffage"], 0.001)
}
