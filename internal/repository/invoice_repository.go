package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).Where("id = ?", id)
	if err := query.First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Invoice{}), orgID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&invoices).Error
	return invoices, total, err
}

// ListRelevantBetween returns all invoices, whatever their status, whose
// issue date or payment date falls in [from, to). Every invoice counts toward
// the invoiced series; the trend builder decides in memory which ones count
// as paid.
func (r *InvoiceRepository) ListRelevantBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("(created_at >= ? AND created_at < ?) OR (paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ?)", from, to, from, to).
		Order("created_at ASC")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// ListRecent returns the most recent sent or paid invoices for the activity feed
func (r *InvoiceRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = feedSourceLimit
	}
	var invoices []domain.Invoice
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("status IN ?", []domain.InvoiceStatus{domain.InvoiceStatusEnvoyee, domain.InvoiceStatusPayee}).
		Order("updated_at DESC").
		Limit(limit)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent invoices: %w", err)
	}
	return invoices, nil
}

// ListPendingAccountingSync returns sent invoices carrying an accounting
// reference, candidates for the payment sync job.
func (r *InvoiceRepository) ListPendingAccountingSync(ctx context.Context, orgID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("status = ?", domain.InvoiceStatusEnvoyee).
		Where("accounting_ref <> ''")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices pending sync: %w", err)
	}
	return invoices, nil
}

// MarkPaid stamps an invoice as paid at the given instant
func (r *InvoiceRepository) MarkPaid(ctx context.Context, orgID, id uuid.UUID, paidAt time.Time) error {
	result := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Invoice{}), orgID).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  domain.InvoiceStatusPayee,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
