package testutil

import (
	"context"
	"testing"

	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
)

// Material returns an available material with id, name and category.
func Material(id, name string, category model.Category) model.Material {
	return model.Material{
		ID:          id,
		Name:        name,
		Category:    category,
		IsAvailable: true,
	}
}

// Pantry returns a small available catalog that can produce every meal
// type, plus one unavailable material (Beef).
func Pantry() []model.Material {
	beef := Material("beef", "Beef", model.CategoryMeat)
	beef.IsAvailable = false
	return []model.Material{
		Material("chicken", "Chicken", model.CategoryPoultry),
		Material("salmon", "Salmon", model.CategorySeafood),
		beef,
		Material("broccoli", "Broccoli", model.CategoryVegetables),
		Material("spinach", "Spinach", model.CategoryVegetables),
		Material("rice", "Rice", model.CategoryGrains),
		Material("oats", "Oats", model.CategoryGrains),
		Material("milk", "Milk", model.CategoryDairy),
		Material("yogurt", "Yogurt", model.CategoryDairy),
		Material("pepper", "Pepper", model.CategorySpices),
	}
}

// InsertMaterials stores materials in db, failing the test on error.
func InsertMaterials(t *testing.T, db planner.Database, materials []model.Material) {
	t.Helper()
	for _, m := range materials {
		if err := db.InsertMaterial(context.Background(), m); err != nil {
			t.Fatalf("inserting material %s: %v", m.ID, err)
		}
	}
}
