package customers

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/pagination"
	"github.com/BearBump/CourierDesk/internal/projection"
)

type Backend interface {
	ListCustomers(ctx context.Context, q backend.Query) ([]backend.Record, error)
	GetCustomer(ctx context.Context, id string) (backend.Record, error)
	UpdateCustomer(ctx context.Context, id string, patch map[string]any) (backend.Record, error)
}

type Service struct {
	backend Backend

	mu      sync.RWMutex
	rows    []models.Customer
	lastErr error
}

func New(b Backend) *Service {
	return &Service{backend: b}
}

// Reload refetches the customer list; on failure the list is emptied.
func (s *Service) Reload(ctx context.Context) error {
	recs, err := s.backend.ListCustomers(ctx, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Error("reload customers", "error", err.Error())
		s.rows, s.lastErr = nil, err
		return err
	}
	s.rows, s.lastErr = projection.Customers(recs), nil
	return nil
}

type Filter struct {
	// Query matches name, email or phone, case-insensitively.
	Query  string                `json:"query,omitempty"`
	Status models.CustomerStatus `json:"status,omitempty"`
}

type View struct {
	Rows       []models.Customer `json:"rows"`
	Total      int               `json:"total"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	Pages      []pagination.Item `json:"pages"`
	Error      string            `json:"error,omitempty"`
}

func (s *Service) List(f Filter, page, size int) View {
	s.mu.RLock()
	rows, lastErr := s.rows, s.lastErr
	s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Customer, 0, len(rows))
	for _, c := range rows {
		if f.Status != "" && !strings.EqualFold(string(c.Status), string(f.Status)) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) &&
			!strings.Contains(c.Phone, q) {
			continue
		}
		out = append(out, c)
	}

	res := pagination.Paginate(out, page, size)
	v := View{
		Rows:       res.Rows,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Page:       res.Page,
		Pages:      pagination.Window(res.Page, res.TotalPages),
	}
	if lastErr != nil {
		v.Error = apperr.Message(lastErr, "")
	}
	return v
}

func (s *Service) Get(ctx context.Context, id string) (models.Customer, error) {
	rec, err := s.backend.GetCustomer(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	return projection.Customer(rec), nil
}

// ToggleStatus flips a customer between Active and Blocked. The cached row
// changes only after the backend confirms.
func (s *Service) ToggleStatus(ctx context.Context, id string) (models.Customer, error) {
	c, ok := s.cached(id)
	if !ok {
		var err error
		if c, err = s.Get(ctx, id); err != nil {
			return models.Customer{}, err
		}
	}

	next := models.CustomerBlocked
	if c.Status == models.CustomerBlocked {
		next = models.CustomerActive
	}
	patch := map[string]any{
		"status":    string(next),
		"isBlocked": next == models.CustomerBlocked,
	}
	if _, err := s.backend.UpdateCustomer(ctx, id, patch); err != nil {
		slog.Error("toggle customer status", "customer_id", id, "error", err.Error())
		return models.Customer{}, err
	}

	c.Status = next
	s.mu.Lock()
	rows := append([]models.Customer(nil), s.rows...)
	for i := range rows {
		if rows[i].ID == id {
			rows[i].Status = next
		}
	}
	s.rows = rows
	s.mu.Unlock()
	return c, nil
}

func (s *Service) cached(id string) (models.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.rows {
		if c.ID == id {
			return c, true
		}
	}
	return models.Customer{}, false
}
