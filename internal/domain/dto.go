package domain

import (
	"time"

	"github.com/google/uuid"
)

// DashboardMetrics is the point-in-time KPI snapshot for one organization.
// JSON field names match the legacy frontend contract.
type DashboardMetrics struct {
	LeadsActifs               int                `json:"leadsActifs"`
	ProjetsEnCours            int                `json:"projetsEnCours"`
	DevisEnAttente            int                `json:"devisEnAttente"`
	DevisExpirantBientot      int                `json:"devisExpirantBientot"`
	ChantiersOuverts          int                `json:"chantiersOuverts"`
	ChantiersFinissantBientot int                `json:"chantiersFinissantBientot"`
	RendezVousSemaine         int                `json:"rendezVousSemaine"`
	SurfaceIsoleeMois         float64            `json:"surfaceIsoleeMois"`
	EnergieTotaleMWh          float64            `json:"energieTotaleMWh"`
	EnergieParCategorie       map[string]float64 `json:"energieParCategorie"`
	TauxConversion            float64            `json:"tauxConversion"`
	// DeltaTauxConversion is nil when neither 90-day window has qualified
	// leads; a zero value would be indistinguishable from "no change".
	DeltaTauxConversion *float64  `json:"deltaTauxConversion"`
	CAMois              float64   `json:"caMois"`
	CASemaine           float64   `json:"caSemaine"`
	MargeMois           float64   `json:"margeMois"`
	LuminairesMois      int       `json:"luminairesMois"`
	GeneratedAt         time.Time `json:"generatedAt"`
}

// RevenueBucket is one month of the revenue trend series
type RevenueBucket struct {
	Label    string  `json:"label"` // "août 2026"
	Key      string  `json:"key"`   // "2026-08"
	Paid     float64 `json:"paye"`
	Invoiced float64 `json:"facture"`
}

// RevenueTrend is the time-bucketed revenue series with period comparisons
type RevenueTrend struct {
	Buckets             []RevenueBucket `json:"mois"`
	CurrentMonthTotal   float64         `json:"caMoisCourant"`
	PreviousMonthTotal  float64         `json:"caMoisPrecedent"`
	CurrentWeekTotal    float64         `json:"caSemaineCourante"`
	PreviousWeekTotal   float64         `json:"caSemainePrecedente"`
	YTDPaid             float64         `json:"caAnneePayee"`
	YTDInvoiced         float64         `json:"caAnneeFacturee"`
	PreviousYTDPaid     float64         `json:"caAnneePrecedentePayee"`
	PreviousYTDInvoiced float64         `json:"caAnneePrecedenteFacturee"`
	HasData             bool            `json:"hasData"`
	GeneratedAt         time.Time       `json:"generatedAt"`
}

// ActivityType tags the entity kind behind a feed item
type ActivityType string

const (
	ActivityTypeLead    ActivityType = "lead"
	ActivityTypeQuote   ActivityType = "devis"
	ActivityTypeProject ActivityType = "dossier"
	ActivityTypeSite    ActivityType = "chantier"
	ActivityTypeInvoice ActivityType = "facture"
)

// ActivityItem is one normalized entry of the unified activity feed
type ActivityItem struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	StatusLabel string       `json:"statusLabel,omitempty"`
	Amount      *float64     `json:"amount,omitempty"`
	Reference   string       `json:"reference,omitempty"`
	ClientName  string       `json:"clientName,omitempty"`
	City        string       `json:"city,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// SourceConversion is the per-source lead conversion breakdown of the report
type SourceConversion struct {
	Source         string  `json:"source"`
	LeadCount      int     `json:"leadCount"`
	QualifiedCount int     `json:"qualifiedCount"`
	ConversionRate float64 `json:"conversionRate"`
}

// TopSite is one entry of the top-revenue chantier ranking
type TopSite struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ClientName  string    `json:"clientName,omitempty"`
	CaTTC       float64   `json:"caTTC"`
	MargeTotale *float64  `json:"margeTotale,omitempty"`
	TauxMarge   *float64  `json:"tauxMarge,omitempty"`
}

// Report is the long-horizon analytics snapshot for one organization
type Report struct {
	SourceBreakdown     []SourceConversion `json:"sources"`
	AvgMarginRate       *float64           `json:"tauxMargeMoyen"`
	AvgSiteDurationDays *float64           `json:"dureeMoyenneChantierJours"`
	TopSites            []TopSite          `json:"topChantiers"`
	ActiveSites         int                `json:"chantiersActifs"`
	CompletedSites      int                `json:"chantiersTermines"`
	EnergieTotaleMWh    float64            `json:"energieTotaleMWh"`
	EnergieParCategorie map[string]float64 `json:"energieParCategorie"`
	GeneratedAt         time.Time          `json:"generatedAt"`
}

// CreateLeadRequest is the payload for creating a lead
type CreateLeadRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=50"`
	City      string `json:"city" validate:"max=100"`
	Status    string `json:"status" validate:"max=50"`
	Source    string `json:"source" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// CreateQuoteRequest is the payload for creating a quote
type CreateQuoteRequest struct {
	Reference  string     `json:"reference" validate:"required,max=50"`
	ClientName string     `json:"clientName" validate:"max=200"`
	Status     string     `json:"status" validate:"max=50"`
	AmountTTC  *float64   `json:"amountTTC" validate:"omitempty,gte=0"`
	ValidUntil *time.Time `json:"validUntil"`
	ProjectID  *uuid.UUID `json:"projectId"`
}

// UpdateStatusesRequest is the payload for replacing an organization's
// custom project status list
type UpdateStatusesRequest struct {
	Statuses []ProjectStatusDef `json:"statuses" validate:"required,min=1,dive"`
}
