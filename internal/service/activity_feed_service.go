package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	feedLimit       = 10
	feedSourceLimit = 20
)

// Per-type status to title lookup tables. Unrecognized statuses fall back to
// a default title and pass the raw status through as the label.

var leadTitles = map[domain.LeadStatus]string{
	domain.LeadStatusNouveau:     "Nouveau lead",
	domain.LeadStatusARappeler:   "Lead à rappeler",
	domain.LeadStatusEligible:    "Lead éligible",
	domain.LeadStatusQualifie:    "Lead qualifié",
	domain.LeadStatusNonEligible: "Lead non éligible",
	domain.LeadStatusPerdu:       "Lead perdu",
	domain.LeadStatusConverti:    "Lead converti",
}

var quoteTitles = map[domain.QuoteStatus]string{
	domain.QuoteStatusBrouillon: "Devis en préparation",
	domain.QuoteStatusEnvoye:    "Devis envoyé",
	domain.QuoteStatusAccepte:   "Devis accepté",
	domain.QuoteStatusRefuse:    "Devis refusé",
	domain.QuoteStatusExpire:    "Devis expiré",
}

var projectTitles = map[string]string{
	domain.ProjectStatusEnAttente:   "Dossier en attente",
	domain.ProjectStatusDevisEnvoye: "Dossier, devis envoyé",
	domain.ProjectStatusDevisSigne:  "Dossier, devis signé",
	domain.ProjectStatusEnCours:     "Dossier en cours",
	domain.ProjectStatusTermine:     "Dossier terminé",
	domain.ProjectStatusAnnule:      "Dossier annulé",
}

var siteTitles = map[domain.SiteStatus]string{
	domain.SiteStatusPlanifie:      "Chantier planifié",
	domain.SiteStatusEnPreparation: "Chantier en préparation",
	domain.SiteStatusEnCours:       "Chantier en cours",
	domain.SiteStatusSuspendu:      "Chantier suspendu",
	domain.SiteStatusTermine:       "Chantier terminé",
	domain.SiteStatusLivre:         "Chantier livré",
}

var invoiceTitles = map[domain.InvoiceStatus]string{
	domain.InvoiceStatusEnvoyee: "Facture envoyée",
	domain.InvoiceStatusPayee:   "Facture payée",
}

// ActivityFeedService merges recent leads, quotes, projects, sites and
// invoices into one reverse-chronological feed. The five fetches run in
// parallel and any failure fails the whole feed.
type ActivityFeedService struct {
	leads    *repository.LeadRepository
	quotes   *repository.QuoteRepository
	projects *repository.ProjectRepository
	sites    *repository.SiteRepository
	invoices *repository.InvoiceRepository
	logger   *zap.Logger
}

func NewActivityFeedService(
	leads *repository.LeadRepository,
	quotes *repository.QuoteRepository,
	projects *repository.ProjectRepository,
	sites *repository.SiteRepository,
	invoices *repository.InvoiceRepository,
	logger *zap.Logger,
) *ActivityFeedService {
	return &ActivityFeedService{
		leads:    leads,
		quotes:   quotes,
		projects: projects,
		sites:    sites,
		invoices: invoices,
		logger:   logger,
	}
}

// GetFeed produces the unified activity feed for the organization
func (s *ActivityFeedService) GetFeed(ctx context.Context, orgID uuid.UUID) ([]domain.ActivityItem, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	var (
		leads    []domain.Lead
		quotes   []domain.Quote
		projects []domain.Project
		sites    []domain.Site
		invoices []domain.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		leads, err = s.leads.ListRecent(gctx, orgID, feedSourceLimit)
		return err
	})
	g.Go(func() (err error) {
		quotes, err = s.quotes.ListRecent(gctx, orgID, feedSourceLimit)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projects.ListRecent(gctx, orgID, feedSourceLimit)
		return err
	})
	g.Go(func() (err error) {
		sites, err = s.sites.ListRecent(gctx, orgID, feedSourceLimit)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = s.invoices.ListRecent(gctx, orgID, feedSourceLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build activity feed: %w", err)
	}

	items := make([]domain.ActivityItem, 0, len(leads)+len(quotes)+len(projects)+len(sites)+len(invoices))
	for i := range leads {
		items = append(items, mapLead(&leads[i]))
	}
	for i := range quotes {
		items = append(items, mapQuote(&quotes[i]))
	}
	for i := range projects {
		items = append(items, mapProject(&projects[i]))
	}
	for i := range sites {
		items = append(items, mapSite(&sites[i]))
	}
	for i := range invoices {
		items = append(items, mapInvoice(&invoices[i]))
	}

	// Drop records without a usable date, then merge-sort-truncate. Each
	// source is already capped so total volume stays small.
	filtered := items[:0]
	for _, item := range items {
		if !item.Timestamp.IsZero() {
			filtered = append(filtered, item)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})
	if len(filtered) > feedLimit {
		filtered = filtered[:feedLimit]
	}
	return filtered, nil
}

func mapLead(lead *domain.Lead) domain.ActivityItem {
	status := domain.ParseLeadStatus(string(lead.Status))
	title, ok := leadTitles[status]
	if !ok {
		title = "Lead mis à jour"
	}
	return domain.ActivityItem{
		ID:          lead.ID,
		Type:        domain.ActivityTypeLead,
		Title:       title,
		Description: lead.FullName(),
		StatusLabel: string(lead.Status),
		ClientName:  lead.FullName(),
		City:        lead.City,
		Timestamp:   lead.CreatedAt,
	}
}

func mapQuote(quote *domain.Quote) domain.ActivityItem {
	status := domain.ParseQuoteStatus(string(quote.Status))
	title, ok := quoteTitles[status]
	if !ok {
		title = "Devis mis à jour"
	}
	return domain.ActivityItem{
		ID:          quote.ID,
		Type:        domain.ActivityTypeQuote,
		Title:       title,
		StatusLabel: string(quote.Status),
		Amount:      quote.AmountTTC,
		Reference:   quote.Reference,
		ClientName:  quote.ClientName,
		Timestamp:   quote.UpdatedAt,
	}
}

func mapProject(project *domain.Project) domain.ActivityItem {
	title, ok := projectTitles[canonicalStatusValue(project.Status)]
	if !ok {
		title = "Dossier mis à jour"
	}
	return domain.ActivityItem{
		ID:          project.ID,
		Type:        domain.ActivityTypeProject,
		Title:       title,
		Description: project.Name,
		StatusLabel: project.Status,
		ClientName:  project.ClientName,
		City:        project.City,
		Timestamp:   project.UpdatedAt,
	}
}

func mapSite(site *domain.Site) domain.ActivityItem {
	status := domain.ParseSiteStatus(string(site.Status))
	title, ok := siteTitles[status]
	if !ok {
		title = "Chantier mis à jour"
	}
	return domain.ActivityItem{
		ID:          site.ID,
		Type:        domain.ActivityTypeSite,
		Title:       title,
		Description: site.Name,
		StatusLabel: string(site.Status),
		Amount:      site.CaTTC,
		ClientName:  site.ClientName,
		City:        site.City,
		Timestamp:   site.UpdatedAt,
	}
}

// mapInvoice uses the paid date as event time for paid invoices, the issue
// date otherwise
func mapInvoice(invoice *domain.Invoice) domain.ActivityItem {
	status := domain.ParseInvoiceStatus(string(invoice.Status))
	title, ok := invoiceTitles[status]
	if !ok {
		title = "Facture mise à jour"
	}

	timestamp := invoice.CreatedAt
	if status == domain.InvoiceStatusPayee && invoice.PaidAt != nil {
		timestamp = *invoice.PaidAt
	}
	return domain.ActivityItem{
		ID:          invoice.ID,
		Type:        domain.ActivityTypeInvoice,
		Title:       title,
		StatusLabel: string(invoice.Status),
		Amount:      invoice.AmountTTC,
		Reference:   invoice.Reference,
		ClientName:  invoice.ClientName,
		Timestamp:   timestamp,
	}
}
