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

type feedFixture struct {
	db    *gorm.DB
	svc   *ActivityFeedService
	orgID uuid.UUID
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()

	db := newTestDB(t)
	svc := NewActivityFeedService(
		repository.NewLeadRepository(db),
		repository.NewQuoteRepository(db),
		repository.NewProjectRepository(db),
		repository.NewSiteRepository(db),
		repository.NewInvoiceRepository(db),
		zap.NewNop(),
	)
	return &feedFixture{db: db, svc: svc, orgID: newID()}
}

func TestGetFeedRequiresOrganization(t *testing.T) {
	f := newFeedFixture(t)

	_, err := f.svc.GetFeed(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetFeedMergesAndTruncates(t *testing.T) {
	f := newFeedFixture(t)
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	// 45 rows across three sources, far more than the feed can hold
	for i := 0; i < 15; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		lead := &domain.Lead{
			BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: ts, UpdatedAt: ts},
			OrganizationID: f.orgID,
			LastName:       fmt.Sprintf("Lead%02d", i),
			Status:         domain.LeadStatusNouveau,
		}
		require.NoError(t, f.db.Create(lead).Error)

		ts = base.Add(time.Duration(i)*time.Hour + 20*time.Minute)
		quote := &domain.Quote{
			BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: ts, UpdatedAt: ts},
			OrganizationID: f.orgID,
			Reference:      fmt.Sprintf("DEV-%02d", i),
			Status:         domain.QuoteStatusEnvoye,
		}
		require.NoError(t, f.db.Create(quote).Error)

		ts = base.Add(time.Duration(i)*time.Hour + 40*time.Minute)
		site := &domain.Site{
			BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: ts, UpdatedAt: ts},
			OrganizationID: f.orgID,
			Name:           fmt.Sprintf("Chantier %02d", i),
			Status:         domain.SiteStatusEnCours,
		}
		require.NoError(t, f.db.Create(site).Error)
	}

	feed, err := f.svc.GetFeed(context.Background(), f.orgID)
	require.NoError(t, err)

	require.Len(t, feed, 10)
	for i := 1; i < len(feed); i++ {
		assert.True(t, feed[i-1].Timestamp.After(feed[i].Timestamp),
			"feed must be strictly descending at index %d", i)
	}
	// The newest row overall is the chantier created last
	assert.Equal(t, domain.ActivityTypeSite, feed[0].Type)
	assert.Equal(t, "Chantier en cours", feed[0].Title)
}

func TestGetFeedPaidInvoiceSortsByPaymentDate(t *testing.T) {
	f := newFeedFixture(t)
	loc := parisLocation(t)

	issued := time.Date(2026, 8, 1, 10, 0, 0, 0, loc)
	paid := time.Date(2026, 8, 5, 10, 0, 0, 0, loc)
	invoice := &domain.Invoice{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: issued, UpdatedAt: paid},
		OrganizationID: f.orgID,
		Reference:      "FAC-001",
		Status:         domain.InvoiceStatusPayee,
		AmountTTC:      float64Ptr(1500),
		PaidAt:         &paid,
	}
	require.NoError(t, f.db.Create(invoice).Error)

	between := time.Date(2026, 8, 3, 10, 0, 0, 0, loc)
	lead := &domain.Lead{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: between, UpdatedAt: between},
		OrganizationID: f.orgID,
		LastName:       "Bernard",
		Status:         domain.LeadStatusNouveau,
	}
	require.NoError(t, f.db.Create(lead).Error)

	feed, err := f.svc.GetFeed(context.Background(), f.orgID)
	require.NoError(t, err)

	require.Len(t, feed, 2)
	assert.Equal(t, domain.ActivityTypeInvoice, feed[0].Type)
	assert.Equal(t, "Facture payée", feed[0].Title)
	assert.Equal(t, domain.ActivityTypeLead, feed[1].Type)
}

func TestGetFeedUnknownStatusFallsBack(t *testing.T) {
	f := newFeedFixture(t)
	ts := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)

	project := &domain.Project{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: ts, UpdatedAt: ts},
		OrganizationID: f.orgID,
		Name:           "Dossier atypique",
		Status:         "PROSPECTION",
		BuildingType:   domain.BuildingTypeResidentiel,
	}
	require.NoError(t, f.db.Create(project).Error)

	feed, err := f.svc.GetFeed(context.Background(), f.orgID)
	require.NoError(t, err)

	require.Len(t, feed, 1)
	assert.Equal(t, "Dossier mis à jour", feed[0].Title)
	assert.Equal(t, "PROSPECTION", feed[0].StatusLabel)
}

func TestGetFeedScopedToOrganization(t *testing.T) {
	f := newFeedFixture(t)
	ts := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)

	lead := &domain.Lead{
		BaseModel:      domain.BaseModel{ID: newID(), CreatedAt: ts, UpdatedAt: ts},
		OrganizationID: newID(),
		LastName:       "Autre",
		Status:         domain.LeadStatusNouveau,
	}
	require.NoError(t, f.db.Create(lead).Error)

	feed, err := f.svc.GetFeed(context.Background(), f.orgID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
