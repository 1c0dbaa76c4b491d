package fleet

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/cache"
	"github.com/BearBump/CourierDesk/internal/events"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/projection"
)

type Backend interface {
	ListBranches(ctx context.Context) ([]backend.Record, error)
	ListVehicles(ctx context.Context) ([]backend.Record, error)
	UpdateBranch(ctx context.Context, id string, patch map[string]any) (backend.Record, error)
}

type Publisher interface {
	Publish(e events.Event)
}

const (
	branchesKey = "ref:branches"
	vehiclesKey = "ref:vehicles"
)

// Service serves branch and vehicle reference data, cached for ttl.
type Service struct {
	backend Backend
	cache   cache.BytesCache
	ttl     time.Duration
	// publisher получает agents:refresh после правки филиала
	publisher Publisher
}

func New(b Backend, c cache.BytesCache, ttl time.Duration) *Service {
	return &Service{backend: b, cache: c, ttl: ttl}
}

func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

func (s *Service) Branches(ctx context.Context) ([]models.Branch, error) {
	var out []models.Branch
	if s.cached(ctx, branchesKey, &out) {
		return out, nil
	}
	recs, err := s.backend.ListBranches(ctx)
	if err != nil {
		slog.Warn("list branches failed", "error", err.Error())
		return nil, err
	}
	out = projection.Branches(recs)
	s.store(ctx, branchesKey, out)
	return out, nil
}

func (s *Service) Vehicles(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if s.cached(ctx, vehiclesKey, &out) {
		return out, nil
	}
	recs, err := s.backend.ListVehicles(ctx)
	if err != nil {
		slog.Warn("list vehicles failed", "error", err.Error())
		return nil, err
	}
	out = projection.Vehicles(recs)
	s.store(ctx, vehiclesKey, out)
	return out, nil
}

func (s *Service) Branch(ctx context.Context, id string) (models.Branch, error) {
	branches, err := s.Branches(ctx)
	if err != nil {
		return models.Branch{}, err
	}
	for _, b := range branches {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Branch{}, apperr.Validationf("unknown branch %q", id)
}

// Available returns the vehicles selectable for branchID.
func (s *Service) Available(ctx context.Context, branchID string) ([]models.Vehicle, error) {
	b, err := s.Branch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	return AvailableVehicles(b, vehicles), nil
}

// UpdateBranch saves patch on branch id. On success reference data is
// invalidated: through agents:refresh when a publisher is set, directly
// otherwise.
func (s *Service) UpdateBranch(ctx context.Context, id string, patch map[string]any) (models.Branch, error) {
	if id == "" {
		return models.Branch{}, apperr.Validation("Branch id is required")
	}
	if len(patch) == 0 {
		return models.Branch{}, apperr.Validation("Nothing to update")
	}
	if err := validateFleetPatch(patch["vehicles"]); err != nil {
		return models.Branch{}, err
	}

	rec, err := s.backend.UpdateBranch(ctx, id, patch)
	if err != nil {
		slog.Error("update branch", "branch_id", id, "error", err.Error())
		return models.Branch{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.Event{Topic: events.AgentsRefresh})
	} else {
		s.Invalidate(ctx)
	}
	return projection.Branch(rec), nil
}

// validateFleetPatch accepts a vehicles map of known keys with counts >= 0.
func validateFleetPatch(v any) error {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return apperr.Validation("Vehicles must be an object of counts")
	}
	for key, raw := range m {
		if _, ok := Label(key); !ok {
			return apperr.Validationf("Unknown vehicle type %q", key)
		}
		var n float64
		switch c := raw.(type) {
		case float64:
			n = c
		case int:
			n = float64(c)
		default:
			n = -1
		}
		if n < 0 || n != float64(int(n)) {
			return apperr.Validationf("Vehicle count for %q must be a non-negative integer", key)
		}
	}
	return nil
}

// Invalidate drops cached reference data; the next read refetches.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, branchesKey, vehiclesKey); err != nil {
		slog.Warn("reference cache invalidate failed", "error", err.Error())
	}
}

// Кэш best effort: ошибки чтения считаем промахом.
func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, b, s.ttl)
}
