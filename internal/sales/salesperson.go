package sales

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// SalespersonDirectory resolves the user that records a sale.
// Implementations return ErrSalespersonNotFound for unknown ids.
type SalespersonDirectory interface {
	LookupSalesperson(ctx context.Context, id string) (*Salesperson, error)
}

// UserServiceDirectory looks salespeople up in the users API.
type UserServiceDirectory struct {
	client *resty.Client
	logger *zap.Logger
}

// NewUserServiceDirectory creates a directory backed by the users API at baseURL
// (e.g. http://localhost:8080/users).
func NewUserServiceDirectory(baseURL string, timeout time.Duration, logger *zap.Logger) *UserServiceDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &UserServiceDirectory{client: client, logger: logger}
}

// Close releases the underlying HTTP client.
func (d *UserServiceDirectory) Close() error {
	return d.client.Close()
}

func (d *UserServiceDirectory) LookupSalesperson(ctx context.Context, id string) (*Salesperson, error) {
	var sp Salesperson
	res, err := d.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&sp).
		Get("/{id}")
	if err != nil {
		return nil, fmt.Errorf("error making request to user API: %w", err)
	}

	switch res.StatusCode() {
	case http.StatusOK:
		if sp.ID == "" {
			sp.ID = id
		}
		return &sp, nil
	case http.StatusNotFound:
		return nil, ErrSalespersonNotFound
	default:
		d.logger.Warn("user API returned unexpected status",
			zap.String("user_id", id),
			zap.Int("status", res.StatusCode()),
		)
		return nil, fmt.Errorf("user API returned unexpected status: %d", res.StatusCode())
	}
}
