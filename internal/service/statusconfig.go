package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"go.uber.org/zap"
)

// SettingReader is the slice of the settings repository the status config needs
type SettingReader interface {
	Get(ctx context.Context, orgID uuid.UUID, key string) (string, error)
	Upsert(ctx context.Context, orgID uuid.UUID, key, value string) error
}

// StatusConfigService resolves an organization's project status list. Results
// are cached per organization; Invalidate must be called after any settings
// write so the next read hits the database.
type StatusConfigService struct {
	settings SettingReader
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[uuid.UUID][]domain.ProjectStatusDef
}

func NewStatusConfigService(settings SettingReader, logger *zap.Logger) *StatusConfigService {
	return &StatusConfigService{
		settings: settings,
		logger:   logger,
		cache:    make(map[uuid.UUID][]domain.ProjectStatusDef),
	}
}

// Resolve returns the organization's sanitized project status list, falling
// back to the default list when none is configured or the stored value does
// not parse.
func (s *StatusConfigService) Resolve(ctx context.Context, orgID uuid.UUID) ([]domain.ProjectStatusDef, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	s.mu.RLock()
	if cached, ok := s.cache[orgID]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	raw, err := s.settings.Get(ctx, orgID, domain.SettingKeyProjectStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load status configuration: %w", err)
	}

	statuses := domain.DefaultProjectStatuses()
	if raw != "" {
		var configured []domain.ProjectStatusDef
		if err := json.Unmarshal([]byte(raw), &configured); err != nil {
			s.logger.Warn("invalid project status configuration, using defaults",
				zap.String("organization_id", orgID.String()),
				zap.Error(err))
		} else if len(configured) > 0 {
			statuses = configured
		}
	}

	statuses = SanitizeStatuses(statuses)

	s.mu.Lock()
	s.cache[orgID] = statuses
	s.mu.Unlock()

	return statuses, nil
}

// Update replaces the organization's status list and invalidates the cache
func (s *StatusConfigService) Update(ctx context.Context, orgID uuid.UUID, statuses []domain.ProjectStatusDef) ([]domain.ProjectStatusDef, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("%w: status list cannot be empty", ErrInvalidInput)
	}

	sanitized := SanitizeStatuses(statuses)
	payload, err := json.Marshal(sanitized)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize status configuration: %w", err)
	}
	if err := s.settings.Upsert(ctx, orgID, domain.SettingKeyProjectStatuses, string(payload)); err != nil {
		return nil, fmt.Errorf("failed to save status configuration: %w", err)
	}

	s.Invalidate(orgID)
	return sanitized, nil
}

// Invalidate drops the cached list for one organization
func (s *StatusConfigService) Invalidate(orgID uuid.UUID) {
	s.mu.Lock()
	delete(s.cache, orgID)
	s.mu.Unlock()
}

// SanitizeStatuses normalizes a configured status list: values are uppercased
// canonical tokens, duplicate values get a numeric suffix so no entry is lost,
// and entries without an explicit isActive flag default to active.
func SanitizeStatuses(statuses []domain.ProjectStatusDef) []domain.ProjectStatusDef {
	seen := make(map[string]int, len(statuses))
	out := make([]domain.ProjectStatusDef, 0, len(statuses))

	for _, def := range statuses {
		value := canonicalStatusValue(def.Value)
		if value == "" {
			continue
		}
		seen[value]++
		if n := seen[value]; n > 1 {
			value = fmt.Sprintf("%s_%d", value, n)
		}

		def.Value = value
		if def.Label == "" {
			def.Label = value
		}
		if def.IsActive == nil {
			active := true
			def.IsActive = &active
		}
		out = append(out, def)
	}
	return out
}

// canonicalStatusValue uppercases a raw status value and collapses separators
// and accented characters into the canonical token form, e.g.
// "Devis signé" -> "DEVIS_SIGNE".
func canonicalStatusValue(raw string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '-' || r == '_' || r == '\'':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			if folded, ok := foldedLetters[r]; ok {
				b.WriteRune(folded)
				lastUnderscore = false
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// foldedLetters maps the accented uppercase letters seen in French status
// labels to their ASCII base letter.
var foldedLetters = map[rune]rune{
	'É': 'E', 'È': 'E', 'Ê': 'E', 'Ë': 'E',
	'À': 'A', 'Â': 'A',
	'Î': 'I', 'Ï': 'I',
	'Ô': 'O',
	'Û': 'U', 'Ù': 'U', 'Ü': 'U',
	'Ç': 'C',
}

// ActiveStatusValues returns the values of a sanitized list that count as
// active for the in-progress project count.
func ActiveStatusValues(statuses []domain.ProjectStatusDef) []string {
	var values []string
	for _, def := range statuses {
		if def.Active() {
			values = append(values, def.Value)
		}
	}
	return values
}

// SurfaceEligibleStatusValues returns the values whose projects count toward
// surface and energy aggregation. Signed and in-progress statuses qualify
// regardless of the active flag.
func SurfaceEligibleStatusValues(statuses []domain.ProjectStatusDef) []string {
	var values []string
	for _, def := range statuses {
		if def.Active() || def.Value == domain.ProjectStatusDevisSigne || def.Value == domain.ProjectStatusEnCours || def.Value == domain.ProjectStatusTermine {
			values = append(values, def.Value)
		}
	}
	return values
}

// unionStatusValues merges two value sets preserving first-seen order
func unionStatusValues(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, set := range [][]string{a, b} {
		for _, v := range set {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
