// Package accounting provides read-only connectivity to the accounting
// system's MS SQL export database. The payment sync job reads settled payment
// rows from it to stamp invoices as paid.
package accounting

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/renova-habitat/gestion-api/internal/config"
	"go.uber.org/zap"
)

const (
	maxConnectAttempts = 3
	initialBackoff     = 1 * time.Second
	maxBackoff         = 10 * time.Second
	backoffFactor      = 2.0
	pingTimeout        = 5 * time.Second
)

// PaymentRow is one settled payment from the accounting export
type PaymentRow struct {
	Reference string
	Amount    float64
	PaidAt    time.Time
}

// Client provides read-only access to the accounting export database.
// A nil client is valid and reports itself as disabled.
type Client struct {
	db           *sql.DB
	logger       *zap.Logger
	queryTimeout time.Duration
}

// NewClient opens a connection pool to the accounting export. Returns
// (nil, nil) when the source is disabled or not configured; connection
// attempts retry with exponential backoff for transient failures.
func NewClient(cfg *config.AccountingConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Accounting export connection disabled")
		return nil, nil
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Accounting export enabled but missing credentials, skipping connection",
			zap.Bool("host_present", cfg.Host != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	connStr := buildConnectionString(cfg)

	var db *sql.DB
	var err error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		logger.Info("Connecting to accounting export",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxConnectAttempts),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err == nil {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxIdleConns)
			db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

			ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				logger.Info("Accounting export connection established",
					zap.Int("attempts_taken", attempt))
				return &Client{
					db:           db,
					logger:       logger,
					queryTimeout: cfg.QueryTimeoutDuration(),
				}, nil
			}
			_ = db.Close()
		}

		logger.Warn("Accounting export connection failed",
			zap.Error(err),
			zap.Int("attempt", attempt),
		)
		if attempt < maxConnectAttempts {
			time.Sleep(backoff)
			backoff = time.Duration(float64(backoff) * backoffFactor)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to accounting export after %d attempts: %w", maxConnectAttempts, err)
}

func buildConnectionString(cfg *config.AccountingConfig) string {
	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if cfg.Database != "" {
		query.Add("database", cfg.Database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// IsEnabled reports whether the client holds a live connection
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

// Close releases the connection pool. Safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	c.logger.Info("Closing accounting export connection")
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close accounting export connection: %w", err)
	}
	return nil
}

// Ping checks the connection, used by the health endpoint
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("accounting export client not initialized")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	return c.db.PingContext(ctx)
}

// FetchSettledPayments returns settled payments matching the given invoice
// references, reading the accounting export's payment table.
func (c *Client) FetchSettledPayments(ctx context.Context, references []string) ([]PaymentRow, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("accounting export client not initialized")
	}
	if len(references) == 0 {
		return nil, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	// The export has no array parameters; one parameterized lookup per
	// reference keeps batches small and the plan cached.
	const query = `SELECT reference, amount, settled_at
FROM dbo.payment_export
WHERE reference = @p1 AND settled_at IS NOT NULL`

	start := time.Now()
	var payments []PaymentRow
	for _, ref := range references {
		rows, err := c.db.QueryContext(ctx, query, sql.Named("p1", ref))
		if err != nil {
			return nil, fmt.Errorf("failed to query settled payments: %w", err)
		}
		for rows.Next() {
			var row PaymentRow
			if err := rows.Scan(&row.Reference, &row.Amount, &row.PaidAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan payment row: %w", err)
			}
			payments = append(payments, row)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error iterating payment rows: %w", err)
		}
		rows.Close()
	}

	c.logger.Debug("Fetched settled payments",
		zap.Int("references", len(references)),
		zap.Int("payments", len(payments)),
		zap.Duration("duration", time.Since(start)),
	)
	return payments, nil
}
