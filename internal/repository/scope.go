package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// feedSourceLimit caps each entity query feeding the activity feed
const feedSourceLimit = 20

// scopeToOrganization applies the tenant filter. Every read in this package
// goes through it; an unscoped query is a cross-tenant leak.
func scopeToOrganization(query *gorm.DB, orgID uuid.UUID) *gorm.DB {
	return query.Where("organization_id = ?", orgID)
}

// normalizePage clamps pagination parameters to sane bounds
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
