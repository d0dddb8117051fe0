package warehouses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
)

// Service defines warehouse management behavior. All operations are
// admin-gated at the controller.
type Service interface {
	Create(ctx context.Context, req CreateWarehouseRequest) (*models.Warehouse, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	List(ctx context.Context) ([]models.Warehouse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateWarehouseRequest) (*models.Warehouse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateWarehouseRequest carries warehouse creation input.
type CreateWarehouseRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// UpdateWarehouseRequest carries partial warehouse updates.
type UpdateWarehouseRequest struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

type service struct {
	repo Repository
}

// NewService constructs a warehouses service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouses repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateWarehouseRequest) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
	}
	if err := s.repo.Create(ctx, warehouse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating warehouse")
	}
	return warehouse, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading warehouse")
	}
	return warehouse, nil
}

func (s *service) List(ctx context.Context) ([]models.Warehouse, error) {
	warehouses, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing warehouses")
	}
	return warehouses, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateWarehouseRequest) (*models.Warehouse, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating warehouse")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting warehouse")
	}
	return nil
}
