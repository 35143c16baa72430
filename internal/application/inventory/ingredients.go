package inventory

import (
	"context"
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateIngredient registers a raw material with zero stock
func (s *Service) CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*IngredientResponse, error) {
	name := strings.TrimSpace(req.Name)
	exists, err := s.ingredients.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An ingredient with this name already exists")
	}

	ing, err := inventory.NewIngredient(name, req.Unit, req.MinQuantity, req.CostPerUnit)
	if err != nil {
		return nil, err
	}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}

	s.logger.Info("Ingredient created", zap.String("ingredient_id", ing.ID.String()), zap.String("name", ing.Name))
	resp := ToIngredientResponse(ing)
	return &resp, nil
}

// GetIngredient returns one raw material
func (s *Service) GetIngredient(ctx context.Context, id uuid.UUID) (*IngredientResponse, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToIngredientResponse(ing)
	return &resp, nil
}

// UpdateIngredient changes name, thresholds, cost and the active flag
func (s *Service) UpdateIngredient(ctx context.Context, id uuid.UUID, req UpdateIngredientRequest) (*IngredientResponse, error) {
	name := strings.TrimSpace(req.Name)
	var ing *inventory.Ingredient
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		ing, err = s.ingredients.FindByID(ctx, id)
		if err != nil {
			return err
		}
		exists, err := s.ingredients.ExistsByName(ctx, name, id)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "An ingredient with this name already exists")
		}

		loaded := ing.Version
		if err := ing.Update(name, req.MinQuantity, req.CostPerUnit); err != nil {
			return err
		}
		if req.IsActive != nil {
			ing.SetActive(*req.IsActive)
		}
		// one write, one version step
		ing.Version = loaded + 1
		return s.ingredients.SaveWithLock(ctx, ing)
	})
	if err != nil {
		return nil, err
	}
	resp := ToIngredientResponse(ing)
	return &resp, nil
}

// ListIngredients lists raw materials
func (s *Service) ListIngredients(ctx context.Context, filter IngredientListFilter) (shared.Paginated[IngredientResponse], error) {
	f := inventory.IngredientFilter{
		Filter:       shared.NewFilter(filter.Page, filter.PageSize, "name", "asc", filter.Search),
		LowStockOnly: filter.LowStockOnly,
		ActiveOnly:   filter.ActiveOnly,
	}
	rows, total, err := s.ingredients.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[IngredientResponse]{}, err
	}
	out := make([]IngredientResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToIngredientResponse(&rows[i]))
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// PurchaseIngredient adds bought stock of a raw material
func (s *Service) PurchaseIngredient(ctx context.Context, id uuid.UUID, req IngredientStockRequest, userID *uuid.UUID) (*IngredientResponse, error) {
	return s.mutateIngredient(ctx, id, func(ing *inventory.Ingredient) (*inventory.Movement, error) {
		m, err := ing.Purchase(req.Quantity)
		if err != nil {
			return nil, err
		}
		return m.By(userID).WithNote(req.Note), nil
	})
}

// AdjustIngredient sets a raw material's stock to a counted value
func (s *Service) AdjustIngredient(ctx context.Context, id uuid.UUID, req IngredientStockRequest, userID *uuid.UUID) (*IngredientResponse, error) {
	return s.mutateIngredient(ctx, id, func(ing *inventory.Ingredient) (*inventory.Movement, error) {
		m, err := ing.AdjustTo(req.Quantity)
		if err != nil {
			return nil, err
		}
		return m.By(userID).WithNote(req.Note), nil
	})
}

func (s *Service) mutateIngredient(ctx context.Context, id uuid.UUID, change func(*inventory.Ingredient) (*inventory.Movement, error)) (*IngredientResponse, error) {
	var ing *inventory.Ingredient
	err := s.txScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		ing, err = s.ingredients.FindByID(ctx, id)
		if err != nil {
			return err
		}
		m, err := change(ing)
		if err != nil {
			return err
		}
		if err := s.ingredients.SaveWithLock(ctx, ing); err != nil {
			return err
		}
		if err := s.movements.Create(ctx, m); err != nil {
			return err
		}
		events := ing.GetDomainEvents()
		ing.ClearDomainEvents()
		return s.saveEvents(ctx, events...)
	})
	if err != nil {
		return nil, err
	}
	resp := ToIngredientResponse(ing)
	return &resp, nil
}
