package service

import (
	"math"
	"testing"

	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRentability(t *testing.T) {
	site := &domain.Site{
		CaTTC:             float64Ptr(10000),
		SurfaceFactureeM2: float64Ptr(100),
		CoutMainOeuvreM2:  float64Ptr(20),
		CoutMateriauxM2:   float64Ptr(30),
		Commission:        float64Ptr(500),
		TravauxNonSubvent: float64Ptr(1000),
		FraisAnnexes:      float64Ptr(250),
	}

	result := computeRentability(site)

	// 100 m² * (20+30) + 500 + 1000 + 250 = 6750
	assert.Equal(t, 6750.0, result.TotalCosts)
	assert.Equal(t, 3250.0, result.Margin)
	assert.Equal(t, 32.5, result.MarginRate)
	assert.Equal(t, "€/m²", result.UnitLabel)
}

func TestComputeRentabilityNullInputs(t *testing.T) {
	result := computeRentability(&domain.Site{})

	assert.Zero(t, result.Revenue)
	assert.Zero(t, result.TotalCosts)
	assert.Zero(t, result.Margin)
	assert.Zero(t, result.MarginRate)
	assert.Equal(t, "€", result.UnitLabel)
}

func TestResolveMarginRatePrefersPersisted(t *testing.T) {
	site := &domain.Site{
		TauxMarge:         float64Ptr(41.5),
		CaTTC:             float64Ptr(10000),
		SurfaceFactureeM2: float64Ptr(100),
		CoutMainOeuvreM2:  float64Ptr(20),
	}

	rate, ok := resolveMarginRate(site)
	require.True(t, ok)
	assert.Equal(t, 41.5, rate)
}

func TestResolveMarginRateRecomputesWhenPersistedInvalid(t *testing.T) {
	nan := math.NaN()
	site := &domain.Site{
		TauxMarge:         &nan,
		CaTTC:             float64Ptr(10000),
		SurfaceFactureeM2: float64Ptr(100),
		CoutMainOeuvreM2:  float64Ptr(20),
		CoutMateriauxM2:   float64Ptr(30),
	}

	rate, ok := resolveMarginRate(site)
	require.True(t, ok)
	assert.Equal(t, 50.0, rate)
}

func TestResolveMarginRateDerivesFromPersistedTotal(t *testing.T) {
	// Persisted margin total but no persisted rate and no cost inputs:
	// the rate comes from the total, not from a zero-cost recomputation
	site := &domain.Site{
		CaTTC:       float64Ptr(8000),
		MargeTotale: float64Ptr(1600),
	}

	rate, ok := resolveMarginRate(site)
	require.True(t, ok)
	assert.Equal(t, 20.0, rate)
}

func TestResolveMarginRateNoSignal(t *testing.T) {
	_, ok := resolveMarginRate(&domain.Site{})
	assert.False(t, ok)
}

func TestResolveMarginTotal(t *testing.T) {
	persisted := &domain.Site{MargeTotale: float64Ptr(1234.56)}
	assert.Equal(t, 1234.56, resolveMarginTotal(persisted))

	derived := &domain.Site{
		CaTTC:      float64Ptr(5000),
		Commission: float64Ptr(1000),
	}
	assert.Equal(t, 4000.0, resolveMarginTotal(derived))
}
