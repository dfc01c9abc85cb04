package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"mealplan-go/internal/model"
)

// NewMeal is the user-supplied input for a manually entered meal.
type NewMeal struct {
	Name            string   `validate:"required,max=120"`
	Description     string   `validate:"max=1000"`
	MaterialIDs     []string `validate:"required,min=1,dive,required"`
	MealType        string   `validate:"required"`
	PreparationTime int      `validate:"gte=0,lte=1440"`
	Instructions    string
	Calories        *int `validate:"omitempty,gte=0"`
	Tags            []string
}

// Library is the meal repository seen by the rest of the application.
type Library struct {
	db       Database
	clock    Clock
	idgen    IDGenerator
	logger   Logger
	validate *validator.Validate
}

// NewLibrary creates a Library over db.
func NewLibrary(db Database, clock Clock, idgen IDGenerator, logger Logger) *Library {
	return &Library{
		db:       db,
		clock:    clock,
		idgen:    idgen,
		logger:   logger,
		validate: validator.New(),
	}
}

// All returns every stored meal.
func (l *Library) All(ctx context.Context) ([]model.Meal, error) {
	meals, err := l.db.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meals: %w", err)
	}
	return meals, nil
}

// ByType returns the stored meals of type mt.
func (l *Library) ByType(ctx context.Context, mt model.MealType) ([]model.Meal, error) {
	meals, err := l.db.ListMealsByType(ctx, mt)
	if err != nil {
		return nil, fmt.Errorf("listing %s meals: %w", mt, err)
	}
	return meals, nil
}

// Get returns the meal with id or ErrNotFound.
func (l *Library) Get(ctx context.Context, id string) (*model.Meal, error) {
	meal, err := l.db.FindMeal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding meal: %w", err)
	}
	if meal == nil {
		return nil, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}
	return meal, nil
}

// Search matches query case-insensitively against name, description and tags.
func (l *Library) Search(ctx context.Context, query string) ([]model.Meal, error) {
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.Meal
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Description), q) ||
			tagContains(m.Tags, q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func tagContains(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}

// UsableWithAvailableMaterials returns the meals whose every material is
// currently marked available in the catalog.
func (l *Library) UsableWithAvailableMaterials(ctx context.Context) ([]model.Meal, error) {
	materials, err := l.db.ListMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	available := make(map[string]bool, len(materials))
	for _, m := range materials {
		if m.IsAvailable {
			available[m.ID] = true
		}
	}

	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Meal
	for _, meal := range all {
		if usable(meal, available) {
			out = append(out, meal)
		}
	}
	return out, nil
}

func usable(meal model.Meal, available map[string]bool) bool {
	if len(meal.Materials) == 0 {
		return false
	}
	for _, m := range meal.Materials {
		if !available[m.ID] {
			return false
		}
	}
	return true
}

// Add validates in, resolves its materials against the catalog and stores a
// new meal.
func (l *Library) Add(ctx context.Context, in NewMeal) (*model.Meal, error) {
	if err := l.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	mt, err := model.ParseMealType(strings.ToLower(strings.TrimSpace(in.MealType)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	materials, err := l.resolveMaterials(ctx, in.MaterialIDs)
	if err != nil {
		return nil, err
	}

	meal := model.Meal{
		ID:              l.idgen.New(),
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Materials:       materials,
		MealType:        mt,
		PreparationTime: in.PreparationTime,
		Instructions:    in.Instructions,
		CreatedAt:       l.clock.Now(),
		Calories:        in.Calories,
		Tags:            model.NormalizeTags(in.Tags),
	}
	if err := l.db.InsertMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("inserting meal: %w", err)
	}
	l.logger.Info("meal added", "id", meal.ID, "name", meal.Name, "meal_type", mt.String())
	return &meal, nil
}

// Save stores a meal produced elsewhere (typically by the Generator).
func (l *Library) Save(ctx context.Context, meal model.Meal) error {
	if err := checkMeal(meal); err != nil {
		return err
	}
	meal.Tags = model.NormalizeTags(meal.Tags)
	if err := l.db.InsertMeal(ctx, meal); err != nil {
		return fmt.Errorf("inserting meal %s: %w", meal.ID, err)
	}
	l.logger.Info("meal saved", "id", meal.ID, "name", meal.Name)
	return nil
}

// Update replaces the stored meal with the same ID. It fails with
// ErrNotFound when no such meal exists.
func (l *Library) Update(ctx context.Context, meal model.Meal) error {
	if err := checkMeal(meal); err != nil {
		return err
	}
	meal.Tags = model.NormalizeTags(meal.Tags)
	if err := l.db.UpdateMeal(ctx, meal); err != nil {
		return fmt.Errorf("updating meal %s: %w", meal.ID, err)
	}
	return nil
}

// Delete removes a meal. Meals still assigned to a plan slot are rejected
// with ErrMealInUse.
func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.db.DeleteMeal(ctx, id); err != nil {
		return fmt.Errorf("deleting meal %s: %w", id, err)
	}
	l.logger.Info("meal deleted", "id", id)
	return nil
}

func (l *Library) resolveMaterials(ctx context.Context, ids []string) ([]model.Material, error) {
	out := make([]model.Material, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, err := l.db.FindMaterial(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("finding material %s: %w", id, err)
		}
		if m == nil {
			return nil, fmt.Errorf("material %s: %w", id, ErrNotFound)
		}
		out = append(out, *m)
	}
	return out, nil
}

func checkMeal(meal model.Meal) error {
	switch {
	case meal.ID == "":
		return fmt.Errorf("%w: meal without an id", ErrInvalidInput)
	case strings.TrimSpace(meal.Name) == "":
		return fmt.Errorf("%w: meal %s has no name", ErrInvalidInput, meal.ID)
	case len(meal.Materials) == 0:
		return fmt.Errorf("%w: meal %s has no materials", ErrInvalidInput, meal.ID)
	case !meal.MealType.Valid():
		return fmt.Errorf("%w: meal %s: meal type %d", ErrInvalidInput, meal.ID, int(meal.MealType))
	case meal.PreparationTime < 0:
		return fmt.Errorf("%w: meal %s has negative preparation time", ErrInvalidInput, meal.ID)
	case meal.Calories != nil && *meal.Calories < 0:
		return fmt.Errorf("%w: meal %s has negative calories", ErrInvalidInput, meal.ID)
	}
	return nil
}
