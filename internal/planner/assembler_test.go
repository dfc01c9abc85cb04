package planner_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
	"mealplan-go/internal/testutil"
)

// addLunch stores a hand-made lunch and returns it.
func addLunch(t *testing.T, e *env) *model.Meal {
	t.Helper()
	meal, err := e.library.Add(context.Background(), planner.NewMeal{
		Name:        "Grandma's Chicken Rice",
		MaterialIDs: []string{"chicken", "rice"},
		MealType:    "lunch",
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return meal
}

func TestAssembler_PlanWeek(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, testutil.Pantry())
	start := date(2024, time.January, 15)

	plans, err := e.assembler.PlanWeek(ctx, start, planner.PlanOptions{})
	if err != nil {
		t.Fatalf("PlanWeek() error = %v", err)
	}
	if len(plans) != 7 {
		t.Fatalf("PlanWeek() returned %d plans, want 7", len(plans))
	}

	stored, err := e.assembler.Plans(ctx, start, start.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("Plans() error = %v", err)
	}
	if len(stored) != 7 {
		t.Fatalf("Plans() returned %d plans, want 7", len(stored))
	}
	for i, p := range stored {
		if want := start.AddDate(0, 0, i); !p.Date.Equal(want) {
			t.Errorf("stored plan %d date = %v, want %v", i, p.Date, want)
		}
		for _, mt := range model.MealTypes() {
			if p.Meal(mt) == nil {
				t.Errorf("stored plan %s slot %s is empty", model.FormatDate(p.Date), mt)
			}
		}
	}
}

func TestAssembler_PlanDay_Overwrite(t *testing.T) {
	ctx := context.Background()
	day := date(2024, time.January, 16)

	tests := []struct {
		name      string
		overwrite bool
		wantKept  bool
	}{
		{name: "keeps filled slots", overwrite: false, wantKept: true},
		{name: "replaces filled slots", overwrite: true, wantKept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, testutil.Pantry())
			custom := addLunch(t, e)
			if _, err := e.assembler.AssignMeal(ctx, day, model.Lunch, custom.ID); err != nil {
				t.Fatalf("AssignMeal() error = %v", err)
			}
			before, _ := e.assembler.Plan(ctx, day)

			e.clock.Advance(time.Hour)
			plan, err := e.assembler.PlanDay(ctx, day, planner.PlanOptions{Overwrite: tt.overwrite})
			if err != nil {
				t.Fatalf("PlanDay() error = %v", err)
			}

			if plan.ID != before.ID {
				t.Errorf("plan ID = %s, want existing %s", plan.ID, before.ID)
			}
			kept := plan.Meal(model.Lunch).ID == custom.ID
			if kept != tt.wantKept {
				t.Errorf("lunch kept = %v, want %v", kept, tt.wantKept)
			}
			for _, mt := range []model.MealType{model.Breakfast, model.Dinner, model.Snack} {
				if plan.Meal(mt) == nil {
					t.Errorf("slot %s left empty", mt)
				}
			}
			if !plan.UpdatedAt.Equal(e.clock.Now()) {
				t.Errorf("UpdatedAt = %v, want %v", plan.UpdatedAt, e.clock.Now())
			}

			stored, _ := e.assembler.Plan(ctx, day)
			if got := stored.Meal(model.Lunch).ID == custom.ID; got != tt.wantKept {
				t.Errorf("stored lunch kept = %v, want %v", got, tt.wantKept)
			}
		})
	}
}

func TestAssembler_ApplyGenerated(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, testutil.Pantry())
	day := date(2024, time.January, 17)
	custom := addLunch(t, e)

	plan, err := e.assembler.ApplyGenerated(ctx, day, map[model.MealType]*model.Meal{
		model.Lunch:  custom,
		model.Dinner: nil,
	}, false)
	if err != nil {
		t.Fatalf("ApplyGenerated() error = %v", err)
	}
	if plan.Meal(model.Lunch) != custom || plan.Meal(model.Dinner) != nil {
		t.Errorf("slots = lunch:%v dinner:%v", plan.Meal(model.Lunch), plan.Meal(model.Dinner))
	}
	if len(plan.Meals) != 4 {
		t.Errorf("len(Meals) = %d, want 4", len(plan.Meals))
	}
	if stored, _ := e.db.FindPlanByDate(ctx, day); stored != nil {
		t.Error("ApplyGenerated() saved the plan")
	}
}

func TestAssembler_ApplyGenerated_RejectsWrongSlot(t *testing.T) {
	e := newEnv(t, testutil.Pantry())
	lunch := addLunch(t, e)

	_, err := e.assembler.ApplyGenerated(context.Background(), date(2024, time.January, 18),
		map[model.MealType]*model.Meal{model.Dinner: lunch}, true)
	if !errors.Is(err, planner.ErrInvalidInput) {
		t.Errorf("ApplyGenerated() lunch into dinner error = %v, want ErrInvalidInput", err)
	}
}

func TestAssembler_PlanWeek_Restrictions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, testutil.Pantry())
	start := date(2024, time.March, 4)

	plans, err := e.assembler.PlanWeek(ctx, start, planner.PlanOptions{Restrictions: []string{"vegetarian"}})
	if err != nil {
		t.Fatalf("PlanWeek() error = %v", err)
	}
	for _, p := range plans {
		for _, mt := range model.MealTypes() {
			meal := p.Meal(mt)
			if meal == nil {
				t.Errorf("%s slot %s is empty", model.FormatDate(p.Date), mt)
				continue
			}
			if !meal.HasTag("vegetarian") {
				t.Errorf("%s %s tags = %v, want vegetarian", model.FormatDate(p.Date), mt, meal.Tags)
			}
			for _, m := range meal.Materials {
				switch m.Category {
				case model.CategoryMeat, model.CategoryPoultry, model.CategorySeafood:
					t.Errorf("%s %s uses %s", model.FormatDate(p.Date), mt, m.Name)
				}
			}
		}
	}

	if _, err := e.assembler.PlanDay(ctx, start, planner.PlanOptions{Restrictions: []string{"keto"}}); !errors.Is(err, model.ErrUnknownEnumValue) {
		t.Errorf("PlanDay(keto) error = %v, want ErrUnknownEnumValue", err)
	}
}

func TestAssembler_PlanDay_OverwriteRemovesReplacedMeals(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, testutil.Pantry())
	day := date(2024, time.April, 8)
	other := day.AddDate(0, 0, 3)

	first, err := e.assembler.PlanDay(ctx, day, planner.PlanOptions{})
	if err != nil {
		t.Fatalf("PlanDay() error = %v", err)
	}
	oldLunch := first.Meal(model.Lunch)
	oldDinner := first.Meal(model.Dinner)
	// A planned meal still assigned to another date must survive.
	if _, err := e.assembler.AssignMeal(ctx, other, model.Lunch, oldLunch.ID); err != nil {
		t.Fatalf("AssignMeal() error = %v", err)
	}
	library := addLunch(t, e)

	e.clock.Advance(time.Hour)
	if _, err := e.assembler.PlanDay(ctx, day, planner.PlanOptions{Overwrite: true}); err != nil {
		t.Fatalf("PlanDay(overwrite) error = %v", err)
	}

	if got, _ := e.db.FindMeal(ctx, oldDinner.ID); got != nil {
		t.Errorf("replaced dinner %s still stored", oldDinner.ID)
	}
	if got, _ := e.db.FindMeal(ctx, oldLunch.ID); got == nil {
		t.Errorf("lunch %s assigned to %s was removed", oldLunch.ID, model.FormatDate(other))
	}
	if got, _ := e.db.FindMeal(ctx, library.ID); got == nil {
		t.Errorf("library meal %s was removed", library.ID)
	}

	meals, err := e.db.ListMeals(ctx)
	if err != nil {
		t.Fatalf("ListMeals() error = %v", err)
	}
	// Four current slots, the lunch kept for the other date and the library meal.
	if len(meals) != 6 {
		t.Errorf("ListMeals() returned %d meals, want 6", len(meals))
	}
}

func TestAssembler_SaveRange(t *testing.T) {
	ctx := context.Background()
	day := date(2024, time.February, 1)

	t.Run("saves every plan", func(t *testing.T) {
		e := newEnv(t, testutil.Pantry())
		plans := []*model.MealPlan{
			model.NewMealPlan("a", day, e.clock.Now()),
			model.NewMealPlan("b", day.AddDate(0, 0, 1), e.clock.Now()),
		}
		n, err := e.assembler.SaveRange(ctx, plans)
		if err != nil || n != 2 {
			t.Errorf("SaveRange() = %d, %v, want 2, nil", n, err)
		}
	})

	t.Run("partial failure keeps saved plans", func(t *testing.T) {
		e := newEnv(t, testutil.Pantry())
		if _, err := e.assembler.SaveRange(ctx, []*model.MealPlan{model.NewMealPlan("stored", day, e.clock.Now())}); err != nil {
			t.Fatalf("SaveRange() setup error = %v", err)
		}

		plans := []*model.MealPlan{
			model.NewMealPlan("other", day, e.clock.Now()),
			model.NewMealPlan("next", day.AddDate(0, 0, 1), e.clock.Now()),
			{Date: day.AddDate(0, 0, 2)},
		}
		n, err := e.assembler.SaveRange(ctx, plans)
		if n != 1 {
			t.Errorf("SaveRange() saved %d, want 1", n)
		}
		var sre *planner.SaveRangeError
		if !errors.As(err, &sre) {
			t.Fatalf("SaveRange() error = %v, want *SaveRangeError", err)
		}
		if !errors.Is(err, planner.ErrPlanDateConflict) {
			t.Errorf("SaveRange() error = %v, want ErrPlanDateConflict inside", err)
		}
		if !errors.Is(err, planner.ErrInvalidInput) {
			t.Errorf("SaveRange() error = %v, want ErrInvalidInput inside", err)
		}
		wantDates := []time.Time{day, day.AddDate(0, 0, 2)}
		if got := planner.FailedDates(err); !slices.EqualFunc(got, wantDates, time.Time.Equal) {
			t.Errorf("FailedDates() = %v, want %v", got, wantDates)
		}

		stored, _ := e.assembler.Plan(ctx, day)
		if stored.ID != "stored" {
			t.Errorf("plan for %s = %s, want original", model.FormatDate(day), stored.ID)
		}
		if _, err := e.assembler.Plan(ctx, day.AddDate(0, 0, 1)); err != nil {
			t.Errorf("plan after the conflict was not saved: %v", err)
		}
	})

	t.Run("failed dates of other errors", func(t *testing.T) {
		if got := planner.FailedDates(errors.New("boom")); got != nil {
			t.Errorf("FailedDates() = %v, want nil", got)
		}
	})
}

func TestAssembler_PlanRange_Errors(t *testing.T) {
	ctx := context.Background()
	day := date(2024, time.March, 1)

	t.Run("no materials", func(t *testing.T) {
		e := newEnv(t, nil)
		_, err := e.assembler.PlanDay(ctx, day, planner.PlanOptions{})
		if !errors.Is(err, planner.ErrInsufficientMaterials) {
			t.Errorf("PlanDay() error = %v, want ErrInsufficientMaterials", err)
		}
		if plans, _ := e.assembler.Plans(ctx, day, day); len(plans) != 0 {
			t.Error("failed generation stored a plan")
		}
	})

	t.Run("invalid ranges", func(t *testing.T) {
		e := newEnv(t, testutil.Pantry())
		if _, err := e.assembler.PlanRange(ctx, day, day.AddDate(0, 0, -3), planner.PlanOptions{}); !errors.Is(err, planner.ErrInvalidDateRange) {
			t.Errorf("PlanRange() error = %v, want ErrInvalidDateRange", err)
		}
		if _, err := e.assembler.PlanWeek(ctx, time.Time{}, planner.PlanOptions{}); !errors.Is(err, planner.ErrInvalidDateRange) {
			t.Errorf("PlanWeek() error = %v, want ErrInvalidDateRange", err)
		}
		if _, err := e.assembler.PlanMonth(ctx, 2024, 0, planner.PlanOptions{}); !errors.Is(err, planner.ErrInvalidDateRange) {
			t.Errorf("PlanMonth() error = %v, want ErrInvalidDateRange", err)
		}
		if _, err := e.assembler.Plans(ctx, day, day.AddDate(0, 0, -1)); !errors.Is(err, planner.ErrInvalidDateRange) {
			t.Errorf("Plans() error = %v, want ErrInvalidDateRange", err)
		}
	})
}

func TestAssembler_PlanMonth(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, testutil.Pantry())

	plans, err := e.assembler.PlanMonth(ctx, 2025, time.February, planner.PlanOptions{})
	if err != nil {
		t.Fatalf("PlanMonth() error = %v", err)
	}
	if len(plans) != 28 {
		t.Errorf("PlanMonth() returned %d plans, want 28", len(plans))
	}
	stored, _ := e.assembler.Plans(ctx, date(2025, time.January, 1), date(2025, time.March, 31))
	if len(stored) != 28 {
		t.Errorf("stored %d plans, want 28", len(stored))
	}
}

func TestAssembler_AssignMeal(t *testing.T) {
	ctx := context.Background()
	day := date(2024, time.April, 2)

	t.Run("creates the plan", func(t *testing.T) {
		e := newEnv(t, testutil.Pantry())
		custom := addLunch(t, e)
		plan, err := e.assembler.AssignMeal(ctx, day, model.Lunch, custom.ID)
		if err != nil {
			t.Fatalf("AssignMeal() error = %v", err)
		}
		stored, err := e.assembler.Plan(ctx, day)
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if stored.ID != plan.ID || stored.Meal(model.Lunch).ID != custom.ID {
			t.Errorf("stored plan = %+v", stored)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		e := newEnv(t, testutil.Pantry())
		custom := addLunch(t, e)
		if _, err := e.assembler.AssignMeal(ctx, day, model.Dinner, custom.ID); !errors.Is(err, planner.ErrInvalidInput) {
			t.Errorf("AssignMeal() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("unknown meal", func(t *testing.T) {
		e := newEnv(t, testutil.Pantry())
		if _, err := e.assembler.AssignMeal(ctx, day, model.Lunch, "absent"); !errors.Is(err, planner.ErrNotFound) {
			t.Errorf("AssignMeal() error = %v, want ErrNotFound", err)
		}
	})
}

func TestAssembler_Updates(t *testing.T) {
	ctx := context.Background()
	day := date(2024, time.May, 5)
	e := newEnv(t, testutil.Pantry())

	if _, err := e.assembler.PlanDay(ctx, day, planner.PlanOptions{}); err != nil {
		t.Fatalf("PlanDay() error = %v", err)
	}

	e.clock.Advance(time.Hour)
	if _, err := e.assembler.SetNotes(ctx, day, "guests over"); err != nil {
		t.Fatalf("SetNotes() error = %v", err)
	}
	if _, err := e.assembler.SetCompleted(ctx, day, true); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}
	if _, err := e.assembler.ClearSlot(ctx, day, model.Snack); err != nil {
		t.Fatalf("ClearSlot() error = %v", err)
	}

	stored, err := e.assembler.Plan(ctx, day)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if stored.Notes != "guests over" || !stored.IsCompleted {
		t.Errorf("stored plan notes=%q completed=%v", stored.Notes, stored.IsCompleted)
	}
	if stored.Meal(model.Snack) != nil {
		t.Error("snack slot not cleared")
	}
	if !stored.UpdatedAt.Equal(e.clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", stored.UpdatedAt, e.clock.Now())
	}

	missing := day.AddDate(0, 0, 1)
	if _, err := e.assembler.SetNotes(ctx, missing, "x"); !errors.Is(err, planner.ErrNotFound) {
		t.Errorf("SetNotes() on missing plan error = %v, want ErrNotFound", err)
	}
}

func TestAssembler_GetOrCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	day := date(2024, time.June, 1)
	e := newEnv(t, testutil.Pantry())

	fresh, err := e.assembler.GetOrCreate(ctx, day)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if fresh.HasAnyMeals() || len(fresh.Meals) != 4 {
		t.Errorf("GetOrCreate() on empty date = %+v, want 4 empty slots", fresh)
	}
	if _, err := e.assembler.Plan(ctx, day); !errors.Is(err, planner.ErrNotFound) {
		t.Errorf("GetOrCreate() persisted the plan: Plan() error = %v", err)
	}

	saved, err := e.assembler.PlanDay(ctx, day, planner.PlanOptions{})
	if err != nil {
		t.Fatalf("PlanDay() error = %v", err)
	}
	again, _ := e.assembler.GetOrCreate(ctx, day)
	if again.ID != saved.ID {
		t.Errorf("GetOrCreate() ID = %s, want stored %s", again.ID, saved.ID)
	}

	if err := e.assembler.Delete(ctx, day); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := e.assembler.Plan(ctx, day); !errors.Is(err, planner.ErrNotFound) {
		t.Errorf("Plan() after delete error = %v, want ErrNotFound", err)
	}
	if err := e.assembler.Delete(ctx, day); !errors.Is(err, planner.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
