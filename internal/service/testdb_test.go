package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the aggregation
// tables. DDL is kept sqlite-compatible, the uuid defaults of the production
// schema do not apply here so tests assign IDs explicitly.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE organizations (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			name TEXT, siret TEXT, city TEXT, is_active BOOLEAN
		)`,
		`CREATE TABLE leads (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, first_name TEXT, last_name TEXT,
			email TEXT, phone TEXT, city TEXT,
			status TEXT, source TEXT, notes TEXT
		)`,
		`CREATE TABLE product_catalog (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			reference TEXT, name TEXT, category TEXT, unit TEXT,
			coeff_kwh_standard REAL, coeff_kwh_grand_bat REAL,
			seuil_surface_m2 REAL, coeff_kwh_tertiaire REAL, is_active BOOLEAN
		)`,
		`CREATE TABLE projects (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, lead_id TEXT, name TEXT, client_name TEXT,
			city TEXT, status TEXT, building_type TEXT, surface_m2 REAL
		)`,
		`CREATE TABLE project_products (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			project_id TEXT, product_id TEXT, quantity REAL
		)`,
		`CREATE TABLE quotes (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, project_id TEXT, reference TEXT,
			client_name TEXT, status TEXT, amount_ttc REAL, valid_until DATETIME
		)`,
		`CREATE TABLE sites (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, project_id TEXT, name TEXT, client_name TEXT,
			city TEXT, status TEXT, category TEXT, tags TEXT,
			date_debut DATETIME, date_fin_prevue DATETIME, date_fin DATETIME,
			ca_ttc REAL, marge_totale REAL, taux_marge REAL,
			surface_facturee_m2 REAL, nb_luminaires INTEGER,
			cout_main_oeuvre_m2 REAL, cout_materiaux_m2 REAL,
			commission REAL, travaux_non_subventionnes REAL, frais_annexes REAL
		)`,
		`CREATE TABLE invoices (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, site_id TEXT, reference TEXT,
			client_name TEXT, status TEXT, amount_ttc REAL,
			paid_at DATETIME, accounting_ref TEXT
		)`,
		`CREATE TABLE appointments (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, lead_id TEXT, title TEXT,
			scheduled_at DATETIME, duration_min INTEGER, location TEXT
		)`,
		`CREATE TABLE organization_settings (
			id TEXT PRIMARY KEY,
			created_at DATETIME, updated_at DATETIME,
			organization_id TEXT, key TEXT, value TEXT,
			UNIQUE (organization_id, key)
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func newID() uuid.UUID {
	return uuid.New()
}

func float64Ptr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
