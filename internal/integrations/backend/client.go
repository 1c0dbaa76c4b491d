package backend

import (
	"context"
)

// Record is one backend entity as decoded JSON. Field names vary between
// endpoints; internal/projection turns records into view types.
type Record = map[string]any

// Query holds list/report parameters, sent as URL query values.
type Query map[string]string

type LoginResult struct {
	Token string
	User  Record
}

type Client interface {
	ListShipments(ctx context.Context, q Query) ([]Record, error)
	GetShipment(ctx context.Context, id string) (Record, error)
	UpdateShipmentStatus(ctx context.Context, id, status string, payload map[string]any) (Record, error)

	ListBranches(ctx context.Context) ([]Record, error)
	UpdateBranch(ctx context.Context, id string, patch map[string]any) (Record, error)

	ListCustomers(ctx context.Context, q Query) ([]Record, error)
	GetCustomer(ctx context.Context, id string) (Record, error)
	UpdateCustomer(ctx context.Context, id string, patch map[string]any) (Record, error)

	ListVehicles(ctx context.Context) ([]Record, error)

	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, in Record) (Record, error)
	ForgotPassword(ctx context.Context, email string) error

	DashboardStats(ctx context.Context, q Query) (Record, error)
	Report(ctx context.Context, q Query) (Record, error)
}

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }
