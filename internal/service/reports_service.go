package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	reportHorizon = 365 * 24 * time.Hour
	topSitesLimit = 5
)

// ReportsService computes the long-horizon analytics snapshot: lead-source
// conversion, margin and duration averages, top sites by revenue and the
// full-year energy breakdown.
type ReportsService struct {
	leads        *repository.LeadRepository
	projects     *repository.ProjectRepository
	sites        *repository.SiteRepository
	statusConfig *StatusConfigService
	logger       *zap.Logger
	periods      periods
	now          func() time.Time
}

func NewReportsService(
	leads *repository.LeadRepository,
	projects *repository.ProjectRepository,
	sites *repository.SiteRepository,
	statusConfig *StatusConfigService,
	logger *zap.Logger,
	loc *time.Location,
) *ReportsService {
	return &ReportsService{
		leads:        leads,
		projects:     projects,
		sites:        sites,
		statusConfig: statusConfig,
		logger:       logger,
		periods:      newPeriods(loc),
		now:          time.Now,
	}
}

// GetReport produces the analytics report for the organization
func (s *ReportsService) GetReport(ctx context.Context, orgID uuid.UUID) (*domain.Report, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	statuses, err := s.statusConfig.Resolve(ctx, orgID)
	if err != nil {
		return nil, err
	}
	surfaceValues := SurfaceEligibleStatusValues(statuses)

	now := s.now().In(s.periods.loc)
	horizonStart := now.Add(-reportHorizon)

	var (
		leads          []domain.Lead
		projects       []domain.Project
		completedSites []domain.Site
		activeSites    int
		topSites       []domain.Site
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		leads, err = s.leads.ListCreatedSince(gctx, orgID, horizonStart)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projects.ListByStatuses(gctx, orgID, surfaceValues)
		return err
	})
	g.Go(func() (err error) {
		completedSites, err = s.sites.ListCompletedSince(gctx, orgID, horizonStart)
		return err
	})
	g.Go(func() (err error) {
		activeSites, err = s.sites.CountByStatuses(gctx, orgID, domain.OpenSiteStatuses())
		return err
	})
	g.Go(func() (err error) {
		topSites, err = s.sites.ListTopByRevenue(gctx, orgID, horizonStart, now, topSitesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	energyTotal, energyByCategory := aggregateEnergy(projects)

	report := &domain.Report{
		SourceBreakdown:     buildSourceBreakdown(leads),
		TopSites:            mapTopSites(topSites),
		ActiveSites:         activeSites,
		CompletedSites:      len(completedSites),
		EnergieTotaleMWh:    energyTotal,
		EnergieParCategorie: energyByCategory,
		GeneratedAt:         now,
	}

	if rate, ok := averageMarginRate(completedSites); ok {
		report.AvgMarginRate = &rate
	}
	if days, ok := averageSiteDuration(completedSites); ok {
		report.AvgSiteDurationDays = &days
	}
	return report, nil
}

const defaultLeadSource = "Direct"

// buildSourceBreakdown groups leads by source tag, sorted by volume descending
func buildSourceBreakdown(leads []domain.Lead) []domain.SourceConversion {
	type counters struct {
		total     int
		qualified int
	}
	bySource := make(map[string]*counters)
	for i := range leads {
		source := leads[i].Source
		if source == "" {
			source = defaultLeadSource
		}
		c, ok := bySource[source]
		if !ok {
			c = &counters{}
			bySource[source] = c
		}
		c.total++
		switch domain.ParseLeadStatus(string(leads[i].Status)) {
		case domain.LeadStatusQualifie, domain.LeadStatusConverti:
			c.qualified++
		}
	}

	breakdown := make([]domain.SourceConversion, 0, len(bySource))
	for source, c := range bySource {
		var rate float64
		if c.total > 0 {
			rate = round1(float64(c.qualified) / float64(c.total) * 100)
		}
		breakdown = append(breakdown, domain.SourceConversion{
			Source:         source,
			LeadCount:      c.total,
			QualifiedCount: c.qualified,
			ConversionRate: rate,
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].LeadCount != breakdown[j].LeadCount {
			return breakdown[i].LeadCount > breakdown[j].LeadCount
		}
		return breakdown[i].Source < breakdown[j].Source
	})
	return breakdown
}

// averageMarginRate averages the margin rate across sites with a usable
// figure, preferring persisted rates and recomputing otherwise
func averageMarginRate(sites []domain.Site) (float64, bool) {
	var sum float64
	var n int
	for i := range sites {
		if rate, ok := resolveMarginRate(&sites[i]); ok {
			sum += rate
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return round2(sum / float64(n)), true
}

// averageSiteDuration averages completed-site durations in calendar days.
// Sites with missing dates or an end before the start are excluded.
func averageSiteDuration(sites []domain.Site) (float64, bool) {
	var sum float64
	var n int
	for i := range sites {
		site := &sites[i]
		if site.DateDebut == nil || site.DateFin == nil {
			continue
		}
		duration := site.DateFin.Sub(*site.DateDebut)
		if duration < 0 {
			continue
		}
		sum += duration.Hours() / 24
		n++
	}
	if n == 0 {
		return 0, false
	}
	return round1(sum / float64(n)), true
}

func mapTopSites(sites []domain.Site) []domain.TopSite {
	top := make([]domain.TopSite, 0, len(sites))
	for i := range sites {
		site := &sites[i]
		entry := domain.TopSite{
			ID:         site.ID,
			Name:       site.Name,
			ClientName: site.ClientName,
			CaTTC:      floatOrZero(site.CaTTC),
			TauxMarge:  site.TauxMarge,
		}
		margin := resolveMarginTotal(site)
		entry.MargeTotale = &margin
		if site.TauxMarge == nil {
			if rate, ok := resolveMarginRate(site); ok {
				entry.TauxMarge = &rate
			}
		}
		top = append(top, entry)
	}
	return top
}
