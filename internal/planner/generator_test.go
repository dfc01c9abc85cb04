package planner_test

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
	"mealplan-go/internal/testutil"
)

func TestGenerator_GenerateMeals(t *testing.T) {
	chicken := testutil.Material("chicken", "Chicken", model.CategoryPoultry)
	rice := testutil.Material("rice", "Rice", model.CategoryGrains)

	t.Run("no materials", func(t *testing.T) {
		_, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{MealType: model.Lunch})
		if !errors.Is(err, planner.ErrInsufficientMaterials) {
			t.Fatalf("GenerateMeals() error = %v, want ErrInsufficientMaterials", err)
		}
		var genErr *planner.GenerationError
		if !errors.As(err, &genErr) || genErr.MealType != model.Lunch {
			t.Errorf("GenerateMeals() error = %v, want *GenerationError for lunch", err)
		}
	})

	t.Run("only unavailable materials", func(t *testing.T) {
		off := chicken.WithAvailability(false)
		_, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{
			MealType:  model.Lunch,
			Materials: []model.Material{off},
		})
		if !errors.Is(err, planner.ErrInsufficientMaterials) {
			t.Errorf("GenerateMeals() error = %v, want ErrInsufficientMaterials", err)
		}
	})

	t.Run("chicken and rice lunch", func(t *testing.T) {
		meals, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{
			MealType:  model.Lunch,
			Materials: []model.Material{chicken, rice},
			Count:     1,
		})
		if err != nil {
			t.Fatalf("GenerateMeals() error = %v", err)
		}
		if len(meals) != 1 {
			t.Fatalf("GenerateMeals() returned %d meals, want 1", len(meals))
		}
		meal := meals[0]
		if meal.MealType != model.Lunch {
			t.Errorf("MealType = %v, want lunch", meal.MealType)
		}
		if len(meal.Materials) == 0 {
			t.Fatal("meal has no materials")
		}
		for _, m := range meal.Materials {
			if m.ID != "chicken" && m.ID != "rice" {
				t.Errorf("meal uses %s, not one of the given materials", m.ID)
			}
		}
		if meal.ID != "id-1" {
			t.Errorf("ID = %q, want id-1", meal.ID)
		}
		if !meal.CreatedAt.Equal(testutil.FixedClock().Now()) {
			t.Errorf("CreatedAt = %v, want clock time", meal.CreatedAt)
		}
		if meal.Name == "" || meal.Instructions == "" {
			t.Errorf("meal lacks name or instructions: %+v", meal)
		}
		if !meal.HasTag("generated") || !meal.HasTag("lunch") {
			t.Errorf("Tags = %v, want generated and lunch", meal.Tags)
		}
	})

	t.Run("fewer combinations than requested", func(t *testing.T) {
		meals, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{
			MealType:  model.Lunch,
			Materials: []model.Material{chicken, rice},
			Count:     5,
		})
		if err != nil {
			t.Fatalf("GenerateMeals() error = %v", err)
		}
		// {rice} and {chicken, rice} are the only valid lunches.
		if len(meals) != 2 {
			t.Fatalf("GenerateMeals() returned %d meals, want 2", len(meals))
		}
		seen := map[string]bool{}
		for _, m := range meals {
			key := strings.Join(m.MaterialIDs(), "+")
			if seen[key] {
				t.Errorf("duplicate combination %s", key)
			}
			seen[key] = true
		}
	})

	t.Run("default count", func(t *testing.T) {
		meals, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{
			MealType:  model.Snack,
			Materials: testutil.Pantry(),
		})
		if err != nil {
			t.Fatalf("GenerateMeals() error = %v", err)
		}
		if len(meals) != planner.DefaultMealCount {
			t.Errorf("GenerateMeals() returned %d meals, want %d", len(meals), planner.DefaultMealCount)
		}
	})

	t.Run("unavailable materials are never used", func(t *testing.T) {
		meals, err := newGenerator(3).GenerateMeals(planner.GenerateRequest{
			MealType:  model.Dinner,
			Materials: testutil.Pantry(),
			Count:     20,
		})
		if err != nil {
			t.Fatalf("GenerateMeals() error = %v", err)
		}
		for _, meal := range meals {
			if slices.Contains(meal.MaterialIDs(), "beef") {
				t.Errorf("meal %q uses unavailable beef", meal.Name)
			}
		}
	})

	t.Run("unknown meal type", func(t *testing.T) {
		_, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{
			MealType:  model.MealType(99),
			Materials: testutil.Pantry(),
		})
		if !errors.Is(err, model.ErrUnknownEnumValue) {
			t.Errorf("GenerateMeals() error = %v, want ErrUnknownEnumValue", err)
		}
	})
}

func TestGenerator_Deterministic(t *testing.T) {
	req := planner.GenerateRequest{MealType: model.Dinner, Materials: testutil.Pantry(), Count: 4}

	first, err := newGenerator(42).GenerateMeals(req)
	if err != nil {
		t.Fatalf("GenerateMeals() error = %v", err)
	}
	second, err := newGenerator(42).GenerateMeals(req)
	if err != nil {
		t.Fatalf("GenerateMeals() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs returned %d and %d meals", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Name != second[i].Name ||
			!slices.Equal(first[i].MaterialIDs(), second[i].MaterialIDs()) {
			t.Errorf("meal %d differs: %q vs %q", i, first[i].Name, second[i].Name)
		}
	}
}

func TestGenerator_Restrictions(t *testing.T) {
	tests := []struct {
		name         string
		mealType     model.MealType
		restrictions []string
		wantErr      error
		forbid       func(model.Material) bool
	}{
		{
			name:         "vegetarian lunch has no animal protein",
			mealType:     model.Lunch,
			restrictions: []string{"vegetarian"},
			forbid: func(m model.Material) bool {
				return m.Category == model.CategoryMeat || m.Category == model.CategoryPoultry || m.Category == model.CategorySeafood
			},
		},
		{
			name:         "dairy-free snack",
			mealType:     model.Snack,
			restrictions: []string{"Dairy-Free"},
			forbid:       func(m model.Material) bool { return m.Category == model.CategoryDairy },
		},
		{
			name:         "no-ingredient restriction matches names",
			mealType:     model.Lunch,
			restrictions: []string{"no-rice"},
			forbid:       func(m model.Material) bool { return m.ID == "rice" },
		},
		{
			name:         "vegetarian dinner is built from sides",
			mealType:     model.Dinner,
			restrictions: []string{"vegetarian"},
			forbid: func(m model.Material) bool {
				return m.Category == model.CategoryMeat || m.Category == model.CategoryPoultry || m.Category == model.CategorySeafood
			},
		},
		{
			name:         "vegan gluten-free breakfast is impossible",
			mealType:     model.Breakfast,
			restrictions: []string{"vegan", "gluten-free"},
			wantErr:      planner.ErrNoValidCombination,
		},
		{
			name:         "unknown restriction",
			mealType:     model.Lunch,
			restrictions: []string{"keto"},
			wantErr:      model.ErrUnknownEnumValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meals, err := newGenerator(5).GenerateMeals(planner.GenerateRequest{
				MealType:     tt.mealType,
				Materials:    testutil.Pantry(),
				Restrictions: tt.restrictions,
				Count:        10,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GenerateMeals() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateMeals() error = %v", err)
			}
			if len(meals) == 0 {
				t.Fatal("GenerateMeals() returned no meals")
			}
			for _, meal := range meals {
				for _, m := range meal.Materials {
					if tt.forbid(m) {
						t.Errorf("meal %q uses %s despite %v", meal.Name, m.Name, tt.restrictions)
					}
				}
			}
		})
	}
}

func TestGenerator_GenerateCustomMeal(t *testing.T) {
	pantry := pantryByID()

	t.Run("includes required materials", func(t *testing.T) {
		meal, err := newGenerator(1).GenerateCustomMeal(
			[]model.Material{pantry["salmon"]}, testutil.Pantry(), model.Dinner, nil)
		if err != nil {
			t.Fatalf("GenerateCustomMeal() error = %v", err)
		}
		if !slices.Contains(meal.MaterialIDs(), "salmon") {
			t.Errorf("materials = %v, want salmon included", materialNames(*meal))
		}
		if meal.MealType != model.Dinner {
			t.Errorf("MealType = %v, want dinner", meal.MealType)
		}
	})

	t.Run("required material listed twice is used once", func(t *testing.T) {
		meal, err := newGenerator(1).GenerateCustomMeal(
			[]model.Material{pantry["rice"], pantry["rice"]}, testutil.Pantry(), model.Lunch, nil)
		if err != nil {
			t.Fatalf("GenerateCustomMeal() error = %v", err)
		}
		rice := 0
		for _, id := range meal.MaterialIDs() {
			if id == "rice" {
				rice++
			}
		}
		if rice != 1 {
			t.Errorf("materials = %v, want rice exactly once", materialNames(*meal))
		}
		if strings.Contains(meal.Name, "Rice, Rice") || strings.Contains(meal.Name, "Rice and Rice") {
			t.Errorf("Name = %q repeats rice", meal.Name)
		}
	})

	t.Run("dinner favors protein when available", func(t *testing.T) {
		meals, err := newGenerator(1).GenerateMeals(planner.GenerateRequest{
			MealType:  model.Dinner,
			Materials: testutil.Pantry(),
			Count:     1,
		})
		if err != nil {
			t.Fatalf("GenerateMeals() error = %v", err)
		}
		hasProtein := false
		for _, m := range meals[0].Materials {
			switch m.Category {
			case model.CategoryMeat, model.CategoryPoultry, model.CategorySeafood:
				hasProtein = true
			}
		}
		if !hasProtein {
			t.Errorf("top dinner %q has no protein", meals[0].Name)
		}
	})

	tests := []struct {
		name         string
		required     []model.Material
		mealType     model.MealType
		restrictions []string
		wantErr      error
	}{
		{name: "nothing required", mealType: model.Lunch, wantErr: planner.ErrInvalidInput},
		{name: "required material unavailable", required: []model.Material{pantry["beef"]}, mealType: model.Dinner, wantErr: planner.ErrNoValidCombination},
		{name: "category does not fit meal type", required: []model.Material{pantry["milk"]}, mealType: model.Dinner, wantErr: planner.ErrNoValidCombination},
		{name: "two proteins for dinner", required: []model.Material{pantry["chicken"], pantry["salmon"]}, mealType: model.Dinner, wantErr: planner.ErrNoValidCombination},
		{name: "required conflicts with restriction", required: []model.Material{pantry["chicken"]}, mealType: model.Lunch, restrictions: []string{"vegetarian"}, wantErr: planner.ErrNoValidCombination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGenerator(1).GenerateCustomMeal(tt.required, testutil.Pantry(), tt.mealType, tt.restrictions)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateCustomMeal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerator_Plans(t *testing.T) {
	start := date(2024, time.March, 4)

	t.Run("daily plan fills every slot", func(t *testing.T) {
		plan, err := newGenerator(1).GenerateDailyPlan(start.Add(18*time.Hour), testutil.Pantry(), nil)
		if err != nil {
			t.Fatalf("GenerateDailyPlan() error = %v", err)
		}
		if !plan.Date.Equal(start) {
			t.Errorf("Date = %v, want %v", plan.Date, start)
		}
		for _, mt := range model.MealTypes() {
			meal := plan.Meal(mt)
			if meal == nil {
				t.Errorf("slot %s is empty", mt)
				continue
			}
			if meal.MealType != mt {
				t.Errorf("slot %s holds a %s", mt, meal.MealType)
			}
		}
	})

	t.Run("vegetarian week fills every slot", func(t *testing.T) {
		plans, err := newGenerator(1).GenerateWeeklyPlan(start, testutil.Pantry(), []string{"vegetarian"})
		if err != nil {
			t.Fatalf("GenerateWeeklyPlan() error = %v", err)
		}
		for _, p := range plans {
			for _, mt := range model.MealTypes() {
				meal := p.Meal(mt)
				if meal == nil {
					t.Errorf("%s slot %s is empty", model.FormatDate(p.Date), mt)
					continue
				}
				for _, m := range meal.Materials {
					switch m.Category {
					case model.CategoryMeat, model.CategoryPoultry, model.CategorySeafood:
						t.Errorf("%s %s uses %s", model.FormatDate(p.Date), mt, m.Name)
					}
				}
			}
		}
	})

	t.Run("weekly plan", func(t *testing.T) {
		plans, err := newGenerator(1).GenerateWeeklyPlan(start, testutil.Pantry(), nil)
		if err != nil {
			t.Fatalf("GenerateWeeklyPlan() error = %v", err)
		}
		if len(plans) != 7 {
			t.Fatalf("GenerateWeeklyPlan() returned %d plans, want 7", len(plans))
		}
		ids := map[string]bool{}
		for i, p := range plans {
			if want := start.AddDate(0, 0, i); !p.Date.Equal(want) {
				t.Errorf("plan %d date = %v, want %v", i, p.Date, want)
			}
			filled := 0
			for _, m := range p.Meals {
				if m != nil {
					filled++
				}
			}
			if filled != 4 {
				t.Errorf("plan %d has %d meals, want 4", i, filled)
			}
			if ids[p.ID] {
				t.Errorf("duplicate plan id %s", p.ID)
			}
			ids[p.ID] = true
		}
	})

	t.Run("monthly plan covers the month", func(t *testing.T) {
		plans, err := newGenerator(1).GenerateMonthlyPlan(2024, time.February, testutil.Pantry(), nil)
		if err != nil {
			t.Fatalf("GenerateMonthlyPlan() error = %v", err)
		}
		if len(plans) != 29 {
			t.Errorf("GenerateMonthlyPlan(2024-02) returned %d plans, want 29", len(plans))
		}
	})

	t.Run("days differ", func(t *testing.T) {
		plans, err := newGenerator(1).GenerateRange(start, start.AddDate(0, 0, 13), testutil.Pantry(), nil)
		if err != nil {
			t.Fatalf("GenerateRange() error = %v", err)
		}
		names := map[string]bool{}
		for _, p := range plans {
			names[p.Meal(model.Dinner).Name] = true
		}
		if len(names) < 2 {
			t.Errorf("14 days produced a single dinner: %v", names)
		}
	})

	invalid := []struct {
		name string
		run  func(*planner.Generator) error
	}{
		{"end before start", func(g *planner.Generator) error {
			_, err := g.GenerateRange(start, start.AddDate(0, 0, -1), testutil.Pantry(), nil)
			return err
		}},
		{"zero start", func(g *planner.Generator) error {
			_, err := g.GenerateWeeklyPlan(time.Time{}, testutil.Pantry(), nil)
			return err
		}},
		{"more than a year", func(g *planner.Generator) error {
			_, err := g.GenerateRange(start, start.AddDate(2, 0, 0), testutil.Pantry(), nil)
			return err
		}},
		{"month 13", func(g *planner.Generator) error {
			_, err := g.GenerateMonthlyPlan(2024, time.Month(13), testutil.Pantry(), nil)
			return err
		}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(newGenerator(1)); !errors.Is(err, planner.ErrInvalidDateRange) {
				t.Errorf("error = %v, want ErrInvalidDateRange", err)
			}
		})
	}

	t.Run("generation failure names the date", func(t *testing.T) {
		_, err := newGenerator(1).GenerateDailyPlan(start, []model.Material{
			testutil.Material("milk", "Milk", model.CategoryDairy),
		}, nil)
		var genErr *planner.GenerationError
		if !errors.As(err, &genErr) {
			t.Fatalf("GenerateDailyPlan() error = %v, want *GenerationError", err)
		}
		if !genErr.Date.Equal(start) {
			t.Errorf("GenerationError.Date = %v, want %v", genErr.Date, start)
		}
	})
}
