package fleet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service interface defines the contract for fleet queries
type Service interface {
	ListVehicles(ctx context.Context, category string) ([]Vehicle, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// ResolvePool maps a request to a concrete pool of vehicle IDs. Explicit
	// IDs win; otherwise all units sharing the display name form the pool.
	ResolvePool(ctx context.Context, vehicleIDs []uuid.UUID, displayName string) ([]uuid.UUID, error)
}

type service struct {
	repo Repository
}

// NewService creates a new fleet service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListVehicles(ctx context.Context, category string) ([]Vehicle, error) {
	return s.repo.GetVehicles(ctx, category)
}

func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	vehicle, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("vehicle lookup failed: %w", err)
	}
	return vehicle, nil
}

func (s *service) ResolvePool(ctx context.Context, vehicleIDs []uuid.UUID, displayName string) ([]uuid.UUID, error) {
	if len(vehicleIDs) > 0 {
		return vehicleIDs, nil
	}

	if displayName == "" {
		return nil, fmt.Errorf("either vehicle IDs or a vehicle name is required")
	}

	ids, err := s.repo.GetVehicleIDsByName(ctx, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vehicle name %q: %w", displayName, err)
	}
	return ids, nil
}
