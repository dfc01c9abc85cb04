package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"mealplan-go/internal/model"
)

// NewMaterial is the user-supplied input for a catalog entry.
type NewMaterial struct {
	Name            string   `validate:"required,max=80"`
	Category        string   `validate:"required"`
	NutritionalInfo []string `validate:"dive,required"`
	Available       bool
	Description     string `validate:"max=500"`
	ImageURL        string `validate:"omitempty,url"`
}

// Catalog holds the ingredient records the generator draws from.
type Catalog struct {
	db       Database
	idgen    IDGenerator
	logger   Logger
	validate *validator.Validate
}

// NewCatalog creates a Catalog over db.
func NewCatalog(db Database, idgen IDGenerator, logger Logger) *Catalog {
	return &Catalog{
		db:       db,
		idgen:    idgen,
		logger:   logger,
		validate: validator.New(),
	}
}

// List returns every material.
func (c *Catalog) List(ctx context.Context) ([]model.Material, error) {
	materials, err := c.db.ListMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	return materials, nil
}

// ListByCategory returns the materials in category.
func (c *Catalog) ListByCategory(ctx context.Context, category model.Category) ([]model.Material, error) {
	return c.filter(ctx, func(m model.Material) bool { return m.Category == category })
}

// ListAvailable returns the materials currently marked available.
func (c *Catalog) ListAvailable(ctx context.Context) ([]model.Material, error) {
	return c.filter(ctx, func(m model.Material) bool { return m.IsAvailable })
}

// Search matches query case-insensitively against name and description.
func (c *Catalog) Search(ctx context.Context, query string) ([]model.Material, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	c.logger.Debug("searching materials", "query", q)
	return c.filter(ctx, func(m model.Material) bool {
		return strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Description), q)
	})
}

func (c *Catalog) filter(ctx context.Context, keep func(model.Material) bool) ([]model.Material, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Material
	for _, m := range all {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Get returns the material with id or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (*model.Material, error) {
	m, err := c.db.FindMaterial(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding material: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	return m, nil
}

// SetAvailability persists the availability flag and returns the updated
// material.
func (c *Catalog) SetAvailability(ctx context.Context, id string, available bool) (*model.Material, error) {
	current, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := current.WithAvailability(available)
	if err := c.db.UpdateMaterial(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating material %s: %w", id, err)
	}
	c.logger.Info("material availability changed", "id", id, "name", updated.Name, "available", available)
	return &updated, nil
}

// Add validates input and stores a new material.
func (c *Catalog) Add(ctx context.Context, in NewMaterial) (*model.Material, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	category, err := model.ParseCategory(strings.ToLower(strings.TrimSpace(in.Category)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m := model.Material{
		ID:              c.idgen.New(),
		Name:            strings.TrimSpace(in.Name),
		Category:        category,
		NutritionalInfo: in.NutritionalInfo,
		IsAvailable:     in.Available,
		Description:     in.Description,
		ImageURL:        in.ImageURL,
	}
	if err := c.db.InsertMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("inserting material: %w", err)
	}
	c.logger.Info("material added", "id", m.ID, "name", m.Name, "category", m.Category.String())
	return &m, nil
}

// Update replaces a stored material.
func (c *Catalog) Update(ctx context.Context, m model.Material) error {
	if err := c.validate.Var(m.Name, "required,max=80"); err != nil {
		return fmt.Errorf("%w: name: %v", ErrInvalidInput, err)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("%w: category %d", ErrInvalidInput, int(m.Category))
	}
	if err := c.db.UpdateMaterial(ctx, m); err != nil {
		return fmt.Errorf("updating material %s: %w", m.ID, err)
	}
	return nil
}

// Delete removes a material no stored meal uses.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.db.DeleteMaterial(ctx, id); err != nil {
		return fmt.Errorf("deleting material %s: %w", id, err)
	}
	c.logger.Info("material deleted", "id", id)
	return nil
}

// Seed inserts the starter catalog when the catalog is empty. It returns the
// number of materials inserted.
func (c *Catalog) Seed(ctx context.Context) (int, error) {
	existing, err := c.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, in := range DefaultMaterials() {
		if _, err := c.Add(ctx, in); err != nil {
			return 0, fmt.Errorf("seeding %s: %w", in.Name, err)
		}
	}
	n := len(DefaultMaterials())
	c.logger.Info("catalog seeded", "count", n)
	return n, nil
}
