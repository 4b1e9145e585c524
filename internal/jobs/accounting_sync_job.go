package jobs

import (
	"context"
	"time"

	"github.com/renova-habitat/gestion-api/internal/accounting"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
)

// AccountingSyncJob reconciles sent invoices against the accounting export:
// invoices whose reference shows a settled payment are stamped paid with the
// settlement date.
type AccountingSyncJob struct {
	client        *accounting.Client
	organizations *repository.OrganizationRepository
	invoices      *repository.InvoiceRepository
	logger        *zap.Logger
	timeout       time.Duration
}

func NewAccountingSyncJob(
	client *accounting.Client,
	organizations *repository.OrganizationRepository,
	invoices *repository.InvoiceRepository,
	logger *zap.Logger,
	timeout time.Duration,
) *AccountingSyncJob {
	return &AccountingSyncJob{
		client:        client,
		organizations: organizations,
		invoices:      invoices,
		logger:        logger,
		timeout:       timeout,
	}
}

// Run reconciles every active organization's pending invoices. Skips silently
// when the accounting export connection is not configured.
func (j *AccountingSyncJob) Run() {
	if !j.client.IsEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	orgs, err := j.organizations.ListActive(ctx)
	if err != nil {
		j.logger.Error("accounting sync: failed to list organizations", zap.Error(err))
		return
	}

	var updated int
	for _, org := range orgs {
		n, err := j.syncOrganization(ctx, org)
		if err != nil {
			j.logger.Warn("accounting sync: organization failed",
				zap.String("organization_id", org.ID.String()),
				zap.Error(err))
			continue
		}
		updated += n
	}

	j.logger.Info("accounting sync: completed",
		zap.Int("organizations", len(orgs)),
		zap.Int("invoices_marked_paid", updated))
}

func (j *AccountingSyncJob) syncOrganization(ctx context.Context, org domain.Organization) (int, error) {
	pending, err := j.invoices.ListPendingAccountingSync(ctx, org.ID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	byRef := make(map[string]*domain.Invoice, len(pending))
	references := make([]string, 0, len(pending))
	for i := range pending {
		byRef[pending[i].AccountingRef] = &pending[i]
		references = append(references, pending[i].AccountingRef)
	}

	payments, err := j.client.FetchSettledPayments(ctx, references)
	if err != nil {
		return 0, err
	}

	var updated int
	for _, payment := range payments {
		invoice, ok := byRef[payment.Reference]
		if !ok {
			continue
		}
		if err := j.invoices.MarkPaid(ctx, org.ID, invoice.ID, payment.PaidAt); err != nil {
			j.logger.Warn("accounting sync: failed to mark invoice paid",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("reference", payment.Reference),
				zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}
