// Package refdata exposes typed operations over the backend facade for
// the reference-data entities. It is a thin consumer of the request
// layer: every method is one facade call plus decoding.
package refdata

import (
	"context"
	"fmt"
	"net/http"

	"github.com/refdatahub/refgate/internal/backend"
	"github.com/refdatahub/refgate/internal/core/domain"
	"github.com/refdatahub/refgate/internal/core/errs"
)

// Service wraps a backend client with the reference-data endpoints.
type Service struct {
	c *backend.Client
}

// NewService creates a service over c.
func NewService(c *backend.Client) *Service {
	return &Service{c: c}
}

// Clients lists all client organizations.
func (s *Service) Clients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	if err := s.c.Get(ctx, "/api/clients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Client fetches one client by id.
func (s *Service) Client(ctx context.Context, id int64) (*domain.Client, error) {
	var out domain.Client
	if err := s.c.Get(ctx, fmt.Sprintf("/api/clients/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateClient registers a new client organization.
func (s *Service) CreateClient(ctx context.Context, in domain.Client) (*domain.Client, error) {
	var out domain.Client
	if err := s.c.Post(ctx, "/api/clients", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient replaces a client record.
func (s *Service) UpdateClient(ctx context.Context, in domain.Client) error {
	return s.c.Put(ctx, fmt.Sprintf("/api/clients/%d", in.ID), in, nil)
}

// DeleteClient removes a client record.
func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/api/clients/%d", id), nil)
}

// Projects lists projects, optionally filtered by client.
func (s *Service) Projects(ctx context.Context, clientID int64) ([]domain.Project, error) {
	path := "/api/projects"
	if clientID > 0 {
		path = fmt.Sprintf("/api/projects?client_id=%d", clientID)
	}
	var out []domain.Project
	if err := s.c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Counterparties lists counterparty records for a project.
func (s *Service) Counterparties(ctx context.Context, projectID int64) ([]domain.Counterparty, error) {
	var out []domain.Counterparty
	path := fmt.Sprintf("/api/projects/%d/counterparties", projectID)
	if err := s.c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QualityReport fetches the quality metrics for a project. The report is
// decorative on most screens, so a down backend degrades to an empty
// report instead of failing the page.
func (s *Service) QualityReport(ctx context.Context, projectID int64) ([]domain.QualityMetric, error) {
	req := s.c.NewRequest(http.MethodGet, fmt.Sprintf("/api/projects/%d/quality", projectID))
	resp, cerr := s.c.TryDo(ctx, req)
	if cerr != nil {
		if cerr.Kind == errs.KindNetwork || cerr.Kind == errs.KindTimeout {
			return []domain.QualityMetric{}, nil
		}
		return nil, cerr
	}
	if resp == nil {
		// Caller cancellation.
		return nil, ctx.Err()
	}
	var out []domain.QualityMetric
	if err := resp.Decode(&out); err != nil {
		return nil, errs.Unknown("undecodable quality report: "+err.Error(), err)
	}
	return out, nil
}
