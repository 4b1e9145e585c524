package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// Organization is the tenant boundary. Every business entity is scoped to
// exactly one organization; cross-organization reads are a correctness bug.
type Organization struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Siret    string `gorm:"type:varchar(20);unique" json:"siret,omitempty"`
	City     string `gorm:"type:varchar(100)" json:"city,omitempty"`
	IsActive bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// LeadStatus represents the funnel stage of a lead
type LeadStatus string

const (
	LeadStatusNouveau     LeadStatus = "NOUVEAU"
	LeadStatusARappeler   LeadStatus = "A_RAPPELER"
	LeadStatusEligible    LeadStatus = "ELIGIBLE"
	LeadStatusQualifie    LeadStatus = "QUALIFIE"
	LeadStatusNonEligible LeadStatus = "NON_ELIGIBLE"
	LeadStatusPerdu       LeadStatus = "PERDU"
	LeadStatusConverti    LeadStatus = "CONVERTI"
	// LeadStatusUnknown is the explicit fallback for unrecognized values
	// coming from upstream imports. Aggregations fold it into a default
	// bucket instead of failing.
	LeadStatusUnknown LeadStatus = "INCONNU"
)

// ParseLeadStatus maps a raw status value to a known variant.
// Unrecognized values yield LeadStatusUnknown, never an error.
func ParseLeadStatus(s string) LeadStatus {
	switch LeadStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case LeadStatusNouveau:
		return LeadStatusNouveau
	case LeadStatusARappeler:
		return LeadStatusARappeler
	case LeadStatusEligible:
		return LeadStatusEligible
	case LeadStatusQualifie:
		return LeadStatusQualifie
	case LeadStatusNonEligible:
		return LeadStatusNonEligible
	case LeadStatusPerdu:
		return LeadStatusPerdu
	case LeadStatusConverti:
		return LeadStatusConverti
	}
	return LeadStatusUnknown
}

// ActiveLeadStatuses are the funnel stages counted as "active" on the dashboard.
func ActiveLeadStatuses() []LeadStatus {
	return []LeadStatus{LeadStatusNouveau, LeadStatusARappeler, LeadStatusEligible, LeadStatusQualifie}
}

// QualifiedLeadStatuses are the stages counted as qualified for conversion rates.
func QualifiedLeadStatuses() []LeadStatus {
	return []LeadStatus{LeadStatusQualifie, LeadStatusConverti}
}

// Lead represents a prospect entering the commercial funnel
type Lead struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
	FirstName      string     `gorm:"type:varchar(100);column:first_name" json:"firstName,omitempty"`
	LastName       string     `gorm:"type:varchar(100);column:last_name" json:"lastName,omitempty"`
	Email          string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone          string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	City           string     `gorm:"type:varchar(100)" json:"city,omitempty"`
	Status         LeadStatus `gorm:"type:varchar(50);not null;default:'NOUVEAU';index" json:"status"`
	Source         string     `gorm:"type:varchar(100)" json:"source,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
}

// FullName returns the lead's display name
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// ProjectStatusDef is one entry of an organization's configurable project
// status list. Stored serialized in organization settings.
type ProjectStatusDef struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Color    string `json:"color,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Active reports whether the status counts as active. Defaults to true
// unless explicitly disabled.
func (d ProjectStatusDef) Active() bool {
	return d.IsActive == nil || *d.IsActive
}

// Default project statuses used when an organization has not configured its own list.
const (
	ProjectStatusEnAttente   = "EN_ATTENTE"
	ProjectStatusDevisEnvoye = "DEVIS_ENVOYE"
	ProjectStatusDevisSigne  = "DEVIS_SIGNE"
	ProjectStatusEnCours     = "EN_COURS"
	ProjectStatusTermine     = "TERMINE"
	ProjectStatusAnnule      = "ANNULE"
)

// DefaultProjectStatuses returns the fallback status list for organizations
// without a custom configuration.
func DefaultProjectStatuses() []ProjectStatusDef {
	return []ProjectStatusDef{
		{Value: ProjectStatusEnAttente, Label: "En attente", Color: "#9ca3af"},
		{Value: ProjectStatusDevisEnvoye, Label: "Devis envoyé", Color: "#60a5fa"},
		{Value: ProjectStatusDevisSigne, Label: "Devis signé", Color: "#34d399"},
		{Value: ProjectStatusEnCours, Label: "En cours", Color: "#fbbf24"},
		{Value: ProjectStatusTermine, Label: "Terminé", Color: "#10b981", IsActive: boolPtr(false)},
		{Value: ProjectStatusAnnule, Label: "Annulé", Color: "#ef4444", IsActive: boolPtr(false)},
	}
}

func boolPtr(b bool) *bool { return &b }

// BuildingType classifies the building a project concerns; energy coefficients
// differ between residential and larger tertiary buildings.
type BuildingType string

const (
	BuildingTypeResidentiel BuildingType = "RESIDENTIEL"
	BuildingTypeTertiaire   BuildingType = "TERTIAIRE"
)

// Project is a renovation dossier: a qualified opportunity carrying the
// technical scope (products, surface) through quoting and execution.
type Project struct {
	BaseModel
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
	LeadID         *uuid.UUID       `gorm:"type:uuid;index;column:lead_id" json:"leadId,omitempty"`
	Lead           *Lead            `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Name           string           `gorm:"type:varchar(200);not null" json:"name"`
	ClientName     string           `gorm:"type:varchar(200);column:client_name" json:"clientName,omitempty"`
	City           string           `gorm:"type:varchar(100)" json:"city,omitempty"`
	Status         string           `gorm:"type:varchar(50);not null;default:'EN_ATTENTE';index" json:"status"`
	BuildingType   BuildingType     `gorm:"type:varchar(50);not null;default:'RESIDENTIEL';column:building_type" json:"buildingType"`
	SurfaceM2      *float64         `gorm:"type:decimal(10,2);column:surface_m2" json:"surfaceM2,omitempty"`
	Products       []ProjectProduct `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

// ProductCatalog describes an installable product and its estimated energy
// yield. The per-unit kWh coefficient is tiered: above SeuilSurfaceM2 the
// large-building coefficient applies; tertiaire buildings use their own rate.
type ProductCatalog struct {
	BaseModel
	Reference         string  `gorm:"type:varchar(100);not null;unique" json:"reference"`
	Name              string  `gorm:"type:varchar(200);not null" json:"name"`
	Category          string  `gorm:"type:varchar(100);not null;index" json:"category"`
	Unit              string  `gorm:"type:varchar(50);not null;default:'unité'" json:"unit"`
	CoeffKWhStandard  float64 `gorm:"type:decimal(12,4);not null;default:0;column:coeff_kwh_standard" json:"coeffKWhStandard"`
	CoeffKWhGrandBat  float64 `gorm:"type:decimal(12,4);not null;default:0;column:coeff_kwh_grand_bat" json:"coeffKWhGrandBat"`
	SeuilSurfaceM2    float64 `gorm:"type:decimal(10,2);not null;default:1000;column:seuil_surface_m2" json:"seuilSurfaceM2"`
	CoeffKWhTertiaire float64 `gorm:"type:decimal(12,4);not null;default:0;column:coeff_kwh_tertiaire" json:"coeffKWhTertiaire"`
	IsActive          bool    `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// TableName keeps the legacy table name
func (ProductCatalog) TableName() string {
	return "product_catalog"
}

// ProjectProduct is a line item: a catalog product installed on a project
type ProjectProduct struct {
	BaseModel
	ProjectID uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id" json:"projectId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;column:product_id" json:"productId"`
	Product   *ProductCatalog `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  float64         `gorm:"type:decimal(10,2);not null;default:1" json:"quantity"`
}

// QuoteStatus represents the lifecycle state of a quote (devis)
type QuoteStatus string

const (
	QuoteStatusBrouillon QuoteStatus = "BROUILLON"
	QuoteStatusEnvoye    QuoteStatus = "ENVOYE"
	QuoteStatusAccepte   QuoteStatus = "ACCEPTE"
	QuoteStatusRefuse    QuoteStatus = "REFUSE"
	QuoteStatusExpire    QuoteStatus = "EXPIRE"
	QuoteStatusUnknown   QuoteStatus = "INCONNU"
)

// ParseQuoteStatus maps a raw status value to a known variant, with an
// explicit Unknown fallback.
func ParseQuoteStatus(s string) QuoteStatus {
	switch QuoteStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case QuoteStatusBrouillon:
		return QuoteStatusBrouillon
	case QuoteStatusEnvoye:
		return QuoteStatusEnvoye
	case QuoteStatusAccepte:
		return QuoteStatusAccepte
	case QuoteStatusRefuse:
		return QuoteStatusRefuse
	case QuoteStatusExpire:
		return QuoteStatusExpire
	}
	return QuoteStatusUnknown
}

// Quote represents a devis sent to a client
type Quote struct {
	BaseModel
	OrganizationID uuid.UUID   `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
	ProjectID      *uuid.UUID  `gorm:"type:uuid;index;column:project_id" json:"projectId,omitempty"`
	Project        *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Reference      string      `gorm:"type:varchar(50);not null;index" json:"reference"`
	ClientName     string      `gorm:"type:varchar(200);column:client_name" json:"clientName,omitempty"`
	Status         QuoteStatus `gorm:"type:varchar(50);not null;default:'BROUILLON';index" json:"status"`
	AmountTTC      *float64    `gorm:"type:decimal(15,2);column:amount_ttc" json:"amountTTC,omitempty"`
	ValidUntil     *time.Time  `gorm:"type:date;column:valid_until" json:"validUntil,omitempty"`
}

// SiteStatus represents the execution state of a chantier
type SiteStatus string

const (
	SiteStatusPlanifie      SiteStatus = "PLANIFIE"
	SiteStatusEnPreparation SiteStatus = "EN_PREPARATION"
	SiteStatusEnCours       SiteStatus = "EN_COURS"
	SiteStatusSuspendu      SiteStatus = "SUSPENDU"
	SiteStatusTermine       SiteStatus = "TERMINE"
	SiteStatusLivre         SiteStatus = "LIVRE"
	SiteStatusUnknown       SiteStatus = "INCONNU"
)

// ParseSiteStatus maps a raw status value to a known variant, with an
// explicit Unknown fallback.
func ParseSiteStatus(s string) SiteStatus {
	switch SiteStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case SiteStatusPlanifie:
		return SiteStatusPlanifie
	case SiteStatusEnPreparation:
		return SiteStatusEnPreparation
	case SiteStatusEnCours:
		return SiteStatusEnCours
	case SiteStatusSuspendu:
		return SiteStatusSuspendu
	case SiteStatusTermine:
		return SiteStatusTermine
	case SiteStatusLivre:
		return SiteStatusLivre
	}
	return SiteStatusUnknown
}

// OpenSiteStatuses are the states in which a chantier counts as open.
func OpenSiteStatuses() []SiteStatus {
	return []SiteStatus{SiteStatusPlanifie, SiteStatusEnPreparation, SiteStatusEnCours}
}

// Site represents a chantier: the realized work order for a signed project
type Site struct {
	BaseModel
	OrganizationID    uuid.UUID      `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
	ProjectID         *uuid.UUID     `gorm:"type:uuid;index;column:project_id" json:"projectId,omitempty"`
	Project           *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name              string         `gorm:"type:varchar(200);not null" json:"name"`
	ClientName        string         `gorm:"type:varchar(200);column:client_name" json:"clientName,omitempty"`
	City              string         `gorm:"type:varchar(100)" json:"city,omitempty"`
	Status            SiteStatus     `gorm:"type:varchar(50);not null;default:'PLANIFIE';index" json:"status"`
	Category          string         `gorm:"type:varchar(100)" json:"category,omitempty"`
	Tags              pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	DateDebut         *time.Time     `gorm:"type:date;column:date_debut" json:"dateDebut,omitempty"`
	DateFinPrevue     *time.Time     `gorm:"type:date;column:date_fin_prevue" json:"dateFinPrevue,omitempty"`
	DateFin           *time.Time     `gorm:"type:date;column:date_fin" json:"dateFin,omitempty"`
	CaTTC             *float64       `gorm:"type:decimal(15,2);column:ca_ttc" json:"caTTC,omitempty"`
	MargeTotale       *float64       `gorm:"type:decimal(15,2);column:marge_totale" json:"margeTotale,omitempty"`
	TauxMarge         *float64       `gorm:"type:decimal(6,2);column:taux_marge" json:"tauxMarge,omitempty"`
	SurfaceFactureeM2 *float64       `gorm:"type:decimal(10,2);column:surface_facturee_m2" json:"surfaceFactureeM2,omitempty"`
	NbLuminaires      *int           `gorm:"column:nb_luminaires" json:"nbLuminaires,omitempty"`
	// Raw cost inputs kept for margin recomputation when the persisted
	// figures are missing or stale.
	CoutMainOeuvreM2  *float64 `gorm:"type:decimal(10,2);column:cout_main_oeuvre_m2" json:"coutMainOeuvreM2,omitempty"`
	CoutMateriauxM2   *float64 `gorm:"type:decimal(10,2);column:cout_materiaux_m2" json:"coutMateriauxM2,omitempty"`
	Commission        *float64 `gorm:"type:decimal(15,2);column:commission" json:"commission,omitempty"`
	TravauxNonSubvent *float64 `gorm:"type:decimal(15,2);column:travaux_non_subventionnes" json:"travauxNonSubventionnes,omitempty"`
	FraisAnnexes      *float64 `gorm:"type:decimal(15,2);column:frais_annexes" json:"fraisAnnexes,omitempty"`
}

// InvoiceStatus represents the lifecycle state of a facture
type InvoiceStatus string

const (
	InvoiceStatusBrouillon InvoiceStatus = "BROUILLON"
	InvoiceStatusEnvoyee   InvoiceStatus = "ENVOYEE"
	InvoiceStatusPayee     InvoiceStatus = "PAYEE"
	InvoiceStatusAnnulee   InvoiceStatus = "ANNULEE"
	InvoiceStatusUnknown   InvoiceStatus = "INCONNUE"
)

// ParseInvoiceStatus maps a raw status value to a known variant, with an
// explicit Unknown fallback.
func ParseInvoiceStatus(s string) InvoiceStatus {
	switch InvoiceStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case InvoiceStatusBrouillon:
		return InvoiceStatusBrouillon
	case InvoiceStatusEnvoyee:
		return InvoiceStatusEnvoyee
	case InvoiceStatusPayee:
		return InvoiceStatusPayee
	case InvoiceStatusAnnulee:
		return InvoiceStatusAnnulee
	}
	return InvoiceStatusUnknown
}

// Invoice represents a facture issued for a site or project
type Invoice struct {
	BaseModel
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
	SiteID         *uuid.UUID    `gorm:"type:uuid;index;column:site_id" json:"siteId,omitempty"`
	Site           *Site         `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	Reference      string        `gorm:"type:varchar(50);not null;index" json:"reference"`
	ClientName     string        `gorm:"type:varchar(200);column:client_name" json:"clientName,omitempty"`
	Status         InvoiceStatus `gorm:"type:varchar(50);not null;default:'BROUILLON';index" json:"status"`
	AmountTTC      *float64      `gorm:"type:decimal(15,2);column:amount_ttc" json:"amountTTC,omitempty"`
	PaidAt         *time.Time    `gorm:"column:paid_at" json:"paidAt,omitempty"`
	// External reference in the accounting system, used by the payment sync job
	AccountingRef string `gorm:"type:varchar(100);column:accounting_ref;index" json:"accountingRef,omitempty"`
}

// Appointment represents a scheduled rendez-vous with a lead or client
type Appointment struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:organization_id" json:"organizationId"`
	LeadID         *uuid.UUID `gorm:"type:uuid;index;column:lead_id" json:"leadId,omitempty"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	ScheduledAt    time.Time  `gorm:"not null;index;column:scheduled_at" json:"scheduledAt"`
	DurationMin    int        `gorm:"not null;default:60;column:duration_min" json:"durationMin"`
	Location       string     `gorm:"type:varchar(300)" json:"location,omitempty"`
}

// SettingKeyProjectStatuses is the settings key holding the serialized
// custom project status list.
const SettingKeyProjectStatuses = "project_statuses"

// OrganizationSetting is a key/value configuration row scoped to one organization
type OrganizationSetting struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_setting_key;column:organization_id" json:"organizationId"`
	Key            string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_org_setting_key" json:"key"`
	Value          string    `gorm:"type:jsonb" json:"value"`
}

// TableName keeps the legacy table name
func (OrganizationSetting) TableName() string {
	return "organization_settings"
}

// User represents an application user
type User struct {
	ID             string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	OrganizationID *uuid.UUID     `gorm:"type:uuid;column:organization_id" json:"organizationId,omitempty"`
	Email          string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName    string         `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Roles          pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive       bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt    *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}
