package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// conversionWindow is the trailing window for the qualified-to-signed
// conversion trend. Not organization-configurable.
const conversionWindow = 90 * 24 * time.Hour

// horizonSoon is the look-ahead for "expiring soon" quotes and "ending soon" sites
const horizonSoon = 7 * 24 * time.Hour

// DashboardService computes the point-in-time KPI snapshot for one
// organization. Every call is a pure function of the organization id and the
// current data snapshot; sub-queries run in parallel and the first failure
// fails the whole snapshot.
type DashboardService struct {
	leads        *repository.LeadRepository
	projects     *repository.ProjectRepository
	quotes       *repository.QuoteRepository
	sites        *repository.SiteRepository
	appointments *repository.AppointmentRepository
	statusConfig *StatusConfigService
	logger       *zap.Logger
	periods      periods
	now          func() time.Time
}

func NewDashboardService(
	leads *repository.LeadRepository,
	projects *repository.ProjectRepository,
	quotes *repository.QuoteRepository,
	sites *repository.SiteRepository,
	appointments *repository.AppointmentRepository,
	statusConfig *StatusConfigService,
	logger *zap.Logger,
	loc *time.Location,
) *DashboardService {
	return &DashboardService{
		leads:        leads,
		projects:     projects,
		quotes:       quotes,
		sites:        sites,
		appointments: appointments,
		statusConfig: statusConfig,
		logger:       logger,
		periods:      newPeriods(loc),
		now:          time.Now,
	}
}

// GetMetrics produces the dashboard KPI snapshot for the organization
func (s *DashboardService) GetMetrics(ctx context.Context, orgID uuid.UUID) (*domain.DashboardMetrics, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	statuses, err := s.statusConfig.Resolve(ctx, orgID)
	if err != nil {
		return nil, err
	}
	activeValues := ActiveStatusValues(statuses)
	surfaceValues := SurfaceEligibleStatusValues(statuses)
	fetchValues := unionStatusValues(activeValues, surfaceValues)

	now := s.now().In(s.periods.loc)
	weekStart := s.periods.startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := s.periods.startOfMonth(now)
	monthEnd := monthStart.AddDate(0, 1, 0)
	windowStart := now.Add(-conversionWindow)
	prevWindowStart := now.Add(-2 * conversionWindow)
	soonDeadline := now.Add(horizonSoon)

	var (
		activeLeads       int
		projects          []domain.Project
		pendingQuotes     int
		expiringQuotes    int
		openSites         int
		endingSites       int
		weekAppointments  int
		qualifiedCurrent  int
		qualifiedPrevious int
		acceptedCurrent   int
		acceptedPrevious  int
		monthSites        []domain.Site
		weekSites         []domain.Site
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		activeLeads, err = s.leads.CountByStatuses(gctx, orgID, domain.ActiveLeadStatuses())
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projects.ListByStatuses(gctx, orgID, fetchValues)
		return err
	})
	g.Go(func() (err error) {
		pendingQuotes, err = s.quotes.CountByStatus(gctx, orgID, domain.QuoteStatusEnvoye)
		return err
	})
	g.Go(func() (err error) {
		expiringQuotes, err = s.quotes.CountExpiringBefore(gctx, orgID, now, soonDeadline)
		return err
	})
	g.Go(func() (err error) {
		openSites, err = s.sites.CountByStatuses(gctx, orgID, domain.OpenSiteStatuses())
		return err
	})
	g.Go(func() (err error) {
		endingSites, err = s.sites.CountEndingBefore(gctx, orgID, now, soonDeadline)
		return err
	})
	g.Go(func() (err error) {
		weekAppointments, err = s.appointments.CountBetween(gctx, orgID, weekStart, weekEnd)
		return err
	})
	g.Go(func() (err error) {
		qualifiedCurrent, err = s.leads.CountByStatusesCreatedBetween(gctx, orgID, domain.QualifiedLeadStatuses(), windowStart, now)
		return err
	})
	g.Go(func() (err error) {
		qualifiedPrevious, err = s.leads.CountByStatusesCreatedBetween(gctx, orgID, domain.QualifiedLeadStatuses(), prevWindowStart, windowStart)
		return err
	})
	g.Go(func() (err error) {
		acceptedCurrent, err = s.projects.CountByStatusUpdatedBetween(gctx, orgID, domain.ProjectStatusDevisSigne, windowStart, now)
		return err
	})
	g.Go(func() (err error) {
		acceptedPrevious, err = s.projects.CountByStatusUpdatedBetween(gctx, orgID, domain.ProjectStatusDevisSigne, prevWindowStart, windowStart)
		return err
	})
	g.Go(func() (err error) {
		monthSites, err = s.sites.ListFinishedBetween(gctx, orgID, monthStart, monthEnd)
		return err
	})
	g.Go(func() (err error) {
		weekSites, err = s.sites.ListFinishedBetween(gctx, orgID, weekStart, weekEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard metrics: %w", err)
	}

	activeSet := make(map[string]struct{}, len(activeValues))
	for _, v := range activeValues {
		activeSet[v] = struct{}{}
	}
	surfaceSet := make(map[string]struct{}, len(surfaceValues))
	for _, v := range surfaceValues {
		surfaceSet[v] = struct{}{}
	}

	var inProgress int
	var energyProjects []domain.Project
	for _, project := range projects {
		status := canonicalStatusValue(project.Status)
		if _, ok := activeSet[status]; ok {
			inProgress++
		}
		if _, ok := surfaceSet[status]; ok {
			energyProjects = append(energyProjects, project)
		}
	}

	energyTotal, energyByCategory := aggregateEnergy(energyProjects)

	currentRate := conversionRate(acceptedCurrent, qualifiedCurrent)
	var delta *float64
	if qualifiedCurrent > 0 || qualifiedPrevious > 0 {
		previousRate := conversionRate(acceptedPrevious, qualifiedPrevious)
		d := round1(currentRate - previousRate)
		delta = &d
	}

	var monthRevenue, monthMargin, monthSurface float64
	var monthLuminaires int
	for i := range monthSites {
		site := &monthSites[i]
		monthRevenue += floatOrZero(site.CaTTC)
		monthMargin += resolveMarginTotal(site)
		monthSurface += floatOrZero(site.SurfaceFactureeM2)
		monthLuminaires += intOrZero(site.NbLuminaires)
	}
	var weekRevenue float64
	for i := range weekSites {
		weekRevenue += floatOrZero(weekSites[i].CaTTC)
	}

	return &domain.DashboardMetrics{
		LeadsActifs:               activeLeads,
		ProjetsEnCours:            inProgress,
		DevisEnAttente:            pendingQuotes,
		DevisExpirantBientot:      expiringQuotes,
		ChantiersOuverts:          openSites,
		ChantiersFinissantBientot: endingSites,
		RendezVousSemaine:         weekAppointments,
		SurfaceIsoleeMois:         round2(monthSurface),
		EnergieTotaleMWh:          energyTotal,
		EnergieParCategorie:       energyByCategory,
		TauxConversion:            round1(currentRate),
		DeltaTauxConversion:       delta,
		CAMois:                    round2(monthRevenue),
		CASemaine:                 round2(weekRevenue),
		MargeMois:                 round2(monthMargin),
		LuminairesMois:            monthLuminaires,
		GeneratedAt:               now,
	}, nil
}

// conversionRate is accepted/qualified as a percentage, 0 when qualified is 0
func conversionRate(accepted, qualified int) float64 {
	if qualified == 0 {
		return 0
	}
	return float64(accepted) / float64(qualified) * 100
}
