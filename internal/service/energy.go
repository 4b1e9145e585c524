package service

import (
	"github.com/renova-habitat/gestion-api/internal/domain"
)

// Energy aggregation: each catalog product carries a per-unit kWh yield
// coefficient. The coefficient is tiered, large buildings above the catalog's
// surface threshold use the grand-bâtiment rate and tertiaire buildings their
// own rate. Line yield is coefficient × quantity, reported in MWh grouped by
// product category.

const defaultEnergyCategory = "Autre"

// productCoefficient selects the kWh-per-unit coefficient for one catalog
// product installed on the given project.
func productCoefficient(product *domain.ProductCatalog, project *domain.Project) float64 {
	if product == nil {
		return 0
	}
	if project.BuildingType == domain.BuildingTypeTertiaire && product.CoeffKWhTertiaire > 0 {
		return product.CoeffKWhTertiaire
	}
	if project.SurfaceM2 != nil && *project.SurfaceM2 > product.SeuilSurfaceM2 && product.CoeffKWhGrandBat > 0 {
		return product.CoeffKWhGrandBat
	}
	return product.CoeffKWhStandard
}

// aggregateEnergy sums the estimated MWh yield of the given projects' line
// items, grouped by product category. Values are rounded to 2 decimals.
func aggregateEnergy(projects []domain.Project) (total float64, byCategory map[string]float64) {
	byCategory = make(map[string]float64)
	for i := range projects {
		project := &projects[i]
		for _, line := range project.Products {
			coeff := productCoefficient(line.Product, project)
			if coeff <= 0 || line.Quantity <= 0 {
				continue
			}
			mwh := coeff * line.Quantity / 1000

			category := defaultEnergyCategory
			if line.Product != nil && line.Product.Category != "" {
				category = line.Product.Category
			}
			byCategory[category] += mwh
			total += mwh
		}
	}

	for category, mwh := range byCategory {
		byCategory[category] = round2(mwh)
	}
	return round2(total), byCategory
}
