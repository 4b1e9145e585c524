package service

import (
	"math"

	"github.com/renova-habitat/gestion-api/internal/domain"
)

// RentabilityResult is the computed cost/margin breakdown for one chantier
type RentabilityResult struct {
	Revenue    float64
	TotalCosts float64
	Margin     float64
	MarginRate float64 // percentage of revenue, 0 when revenue is 0
	UnitLabel  string  // "€/m²" when a surface is available, else "€"
}

// computeRentability derives a site's margin from its raw cost inputs. Per-m²
// costs scale with the invoiced surface; commission, non-subsidized works and
// extra costs are flat amounts. Null inputs count as zero.
func computeRentability(site *domain.Site) RentabilityResult {
	revenue := floatOrZero(site.CaTTC)
	surface := floatOrZero(site.SurfaceFactureeM2)

	costs := floatOrZero(site.Commission) +
		floatOrZero(site.TravauxNonSubvent) +
		floatOrZero(site.FraisAnnexes)
	if surface > 0 {
		costs += floatOrZero(site.CoutMainOeuvreM2) * surface
		costs += floatOrZero(site.CoutMateriauxM2) * surface
	}

	margin := revenue - costs
	var rate float64
	if revenue > 0 {
		rate = margin / revenue * 100
	}

	unit := "€"
	if surface > 0 {
		unit = "€/m²"
	}

	return RentabilityResult{
		Revenue:    round2(revenue),
		TotalCosts: round2(costs),
		Margin:     round2(margin),
		MarginRate: round2(rate),
		UnitLabel:  unit,
	}
}

// resolveMarginRate prefers the persisted margin rate when present and finite,
// recomputing from raw costs otherwise. The second return value is false when
// no usable rate exists for the site.
func resolveMarginRate(site *domain.Site) (float64, bool) {
	if site.TauxMarge != nil && isFinite(*site.TauxMarge) {
		return *site.TauxMarge, true
	}
	revenue := floatOrZero(site.CaTTC)
	if revenue <= 0 {
		return 0, false
	}
	if site.MargeTotale != nil && isFinite(*site.MargeTotale) {
		return round2(*site.MargeTotale / revenue * 100), true
	}
	return computeRentability(site).MarginRate, true
}

// resolveMarginTotal prefers the persisted margin total, recomputing otherwise
func resolveMarginTotal(site *domain.Site) float64 {
	if site.MargeTotale != nil && isFinite(*site.MargeTotale) {
		return *site.MargeTotale
	}
	return computeRentability(site).Margin
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
