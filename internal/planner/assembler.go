package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealplan-go/internal/model"
)

// Assembler reconciles generated meals with the stored meal plans. It is the
// only component that creates plans, which keeps one plan per date.
type Assembler struct {
	db        Database
	generator *Generator
	clock     Clock
	idgen     IDGenerator
	logger    Logger
}

// NewAssembler creates an Assembler with the provided dependencies.
func NewAssembler(db Database, generator *Generator, clock Clock, idgen IDGenerator, logger Logger) *Assembler {
	return &Assembler{
		db:        db,
		generator: generator,
		clock:     clock,
		idgen:     idgen,
		logger:    logger,
	}
}

// GetOrCreate returns the stored plan for date, or a new empty plan that has
// not been saved yet.
func (a *Assembler) GetOrCreate(ctx context.Context, date time.Time) (*model.MealPlan, error) {
	plan, err := a.db.FindPlanByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("finding plan for %s: %w", model.FormatDate(date), err)
	}
	if plan != nil {
		plan.Normalize()
		return plan, nil
	}
	return model.NewMealPlan(a.idgen.New(), date, a.clock.Now()), nil
}

// Plan returns the stored plan for date or ErrNotFound.
func (a *Assembler) Plan(ctx context.Context, date time.Time) (*model.MealPlan, error) {
	plan, err := a.db.FindPlanByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("finding plan for %s: %w", model.FormatDate(date), err)
	}
	if plan == nil {
		return nil, fmt.Errorf("plan for %s: %w", model.FormatDate(date), ErrNotFound)
	}
	plan.Normalize()
	return plan, nil
}

// ApplyGenerated merges generated into the plan for date. Slots already
// holding a meal are kept unless overwrite is set. UpdatedAt is refreshed
// even when nothing changed. The merged plan is returned unsaved.
func (a *Assembler) ApplyGenerated(ctx context.Context, date time.Time, generated map[model.MealType]*model.Meal, overwrite bool) (*model.MealPlan, error) {
	plan, _, err := a.applyGenerated(ctx, date, generated, overwrite)
	return plan, err
}

// applyGenerated is ApplyGenerated that also returns the meals it displaced.
func (a *Assembler) applyGenerated(ctx context.Context, date time.Time, generated map[model.MealType]*model.Meal, overwrite bool) (*model.MealPlan, []*model.Meal, error) {
	for mt, meal := range generated {
		if meal != nil && meal.MealType != mt {
			return nil, nil, fmt.Errorf("%w: meal %q is a %s, not a %s", ErrInvalidInput, meal.Name, meal.MealType, mt)
		}
	}
	plan, err := a.GetOrCreate(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	now := a.clock.Now()
	var displaced []*model.Meal
	for _, mt := range model.MealTypes() {
		meal := generated[mt]
		if meal == nil {
			continue
		}
		old := plan.Meals[mt]
		if old != nil && !overwrite {
			continue
		}
		plan.SetMeal(mt, meal, now)
		if old != nil && old.ID != meal.ID {
			displaced = append(displaced, old)
		}
	}
	plan.UpdatedAt = now
	a.logger.Debug("generated meals applied",
		"date", model.FormatDate(plan.Date), "replaced", len(displaced), "overwrite", overwrite)
	return plan, displaced, nil
}

// SaveRange persists every plan in its own transaction. Plans saved before a
// failure stay saved. When any plan fails the returned error is a
// *SaveRangeError listing each failed date.
func (a *Assembler) SaveRange(ctx context.Context, plans []*model.MealPlan) (int, error) {
	var failures []DateFailure
	saved := 0
	for _, plan := range plans {
		if plan == nil {
			continue
		}
		if err := a.save(ctx, plan); err != nil {
			a.logger.Warn("saving meal plan failed", "date", model.FormatDate(plan.Date), "error", err)
			failures = append(failures, DateFailure{Date: plan.Date, Err: err})
			continue
		}
		saved++
	}
	if len(failures) > 0 {
		return saved, &SaveRangeError{Failures: failures}
	}
	a.logger.Info("meal plans saved", "count", saved)
	return saved, nil
}

func (a *Assembler) save(ctx context.Context, plan *model.MealPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("%w: plan without an id", ErrInvalidInput)
	}
	plan.Normalize()
	existing, err := a.db.FindPlanByDate(ctx, plan.Date)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != plan.ID {
		return fmt.Errorf("plan %s: %w (stored plan %s)", plan.ID, ErrPlanDateConflict, existing.ID)
	}
	return a.db.SavePlan(ctx, plan)
}

// PlanOptions controls PlanRange and the plan wrappers around it.
type PlanOptions struct {
	// Overwrite replaces meals already planned.
	Overwrite bool
	// Restrictions are dietary restriction tags applied to every slot.
	Restrictions []string
}

// plannedTag marks meals created by PlanRange. They are removed again once
// an overwrite leaves them without a slot.
const plannedTag = "planned"

// PlanRange generates a plan for every date from start to end from the
// currently available materials, merges each into the stored plan for its
// date and saves the result. The merged plans are returned even when some
// dates failed to save.
func (a *Assembler) PlanRange(ctx context.Context, start, end time.Time, opts PlanOptions) ([]*model.MealPlan, error) {
	materials, err := a.db.ListMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	generated, err := a.generator.GenerateRange(start, end, materials, opts.Restrictions)
	if err != nil {
		return nil, err
	}

	merged := make([]*model.MealPlan, 0, len(generated))
	displaced := make([][]*model.Meal, 0, len(generated))
	for _, g := range generated {
		for _, meal := range g.Meals {
			if meal != nil {
				meal.Tags = model.NormalizeTags(append(meal.Tags, plannedTag))
			}
		}
		plan, old, err := a.applyGenerated(ctx, g.Date, g.Meals, opts.Overwrite)
		if err != nil {
			return nil, err
		}
		merged = append(merged, plan)
		displaced = append(displaced, old)
	}

	_, saveErr := a.SaveRange(ctx, merged)
	failed := make(map[string]bool)
	for _, d := range FailedDates(saveErr) {
		failed[model.FormatDate(d)] = true
	}
	var orphans []*model.Meal
	for i, plan := range merged {
		if !failed[model.FormatDate(plan.Date)] {
			orphans = append(orphans, displaced[i]...)
		}
	}
	a.prunePlanned(ctx, orphans)

	if saveErr != nil {
		return merged, saveErr
	}
	return merged, nil
}

// prunePlanned deletes meals created by PlanRange that no plan slot
// references anymore. Library meals and meals still assigned elsewhere stay.
func (a *Assembler) prunePlanned(ctx context.Context, meals []*model.Meal) {
	seen := make(map[string]bool)
	for _, m := range meals {
		if seen[m.ID] || !m.HasTag(plannedTag) {
			continue
		}
		seen[m.ID] = true
		err := a.db.DeleteMeal(ctx, m.ID)
		switch {
		case err == nil:
			a.logger.Debug("replaced meal removed", "meal", m.ID)
		case errors.Is(err, ErrMealInUse), errors.Is(err, ErrNotFound):
		default:
			a.logger.Warn("removing replaced meal failed", "meal", m.ID, "error", err)
		}
	}
}

// PlanDay plans a single date.
func (a *Assembler) PlanDay(ctx context.Context, date time.Time, opts PlanOptions) (*model.MealPlan, error) {
	plans, err := a.PlanRange(ctx, date, date, opts)
	if err != nil {
		return nil, err
	}
	return plans[0], nil
}

// PlanWeek plans seven consecutive dates from start.
func (a *Assembler) PlanWeek(ctx context.Context, start time.Time, opts PlanOptions) ([]*model.MealPlan, error) {
	if start.IsZero() {
		return nil, fmt.Errorf("weekly plan without a start date: %w", ErrInvalidDateRange)
	}
	return a.PlanRange(ctx, start, model.DateOf(start).AddDate(0, 0, 6), opts)
}

// PlanMonth plans every date of year/month.
func (a *Assembler) PlanMonth(ctx context.Context, year int, month time.Month, opts PlanOptions) ([]*model.MealPlan, error) {
	first, last, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}
	return a.PlanRange(ctx, first, last, opts)
}

// Plans returns the stored plans dated start..end inclusive.
func (a *Assembler) Plans(ctx context.Context, start, end time.Time) ([]*model.MealPlan, error) {
	if model.DateOf(end).Before(model.DateOf(start)) {
		return nil, fmt.Errorf("end %s is before start %s: %w",
			model.FormatDate(end), model.FormatDate(start), ErrInvalidDateRange)
	}
	plans, err := a.db.ListPlans(ctx, model.DateOf(start), model.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	for _, p := range plans {
		p.Normalize()
	}
	return plans, nil
}

// Delete removes the plan stored for date.
func (a *Assembler) Delete(ctx context.Context, date time.Time) error {
	plan, err := a.Plan(ctx, date)
	if err != nil {
		return err
	}
	if err := a.db.DeletePlan(ctx, plan.ID); err != nil {
		return fmt.Errorf("deleting plan %s: %w", plan.ID, err)
	}
	a.logger.Info("meal plan deleted", "date", model.FormatDate(plan.Date), "id", plan.ID)
	return nil
}

// AssignMeal places a stored meal into the mt slot of the plan for date,
// creating the plan if needed. The meal's type must match the slot.
func (a *Assembler) AssignMeal(ctx context.Context, date time.Time, mt model.MealType, mealID string) (*model.MealPlan, error) {
	if !mt.Valid() {
		return nil, fmt.Errorf("%w: meal type %d", ErrInvalidInput, int(mt))
	}
	meal, err := a.db.FindMeal(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("finding meal: %w", err)
	}
	if meal == nil {
		return nil, fmt.Errorf("meal %s: %w", mealID, ErrNotFound)
	}
	if meal.MealType != mt {
		return nil, fmt.Errorf("%w: meal %q is a %s, not a %s", ErrInvalidInput, meal.Name, meal.MealType, mt)
	}

	plan, err := a.GetOrCreate(ctx, date)
	if err != nil {
		return nil, err
	}
	plan.SetMeal(mt, meal, a.clock.Now())
	if err := a.db.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("saving plan for %s: %w", model.FormatDate(date), err)
	}
	a.logger.Info("meal assigned", "date", model.FormatDate(plan.Date), "meal_type", mt.String(), "meal", meal.ID)
	return plan, nil
}

// ClearSlot empties the mt slot of the plan stored for date.
func (a *Assembler) ClearSlot(ctx context.Context, date time.Time, mt model.MealType) (*model.MealPlan, error) {
	return a.update(ctx, date, func(p *model.MealPlan, now time.Time) {
		p.ClearMeal(mt, now)
	})
}

// SetCompleted marks the plan stored for date as done or not done.
func (a *Assembler) SetCompleted(ctx context.Context, date time.Time, completed bool) (*model.MealPlan, error) {
	return a.update(ctx, date, func(p *model.MealPlan, now time.Time) {
		p.IsCompleted = completed
		p.UpdatedAt = now
	})
}

// SetNotes replaces the notes of the plan stored for date.
func (a *Assembler) SetNotes(ctx context.Context, date time.Time, notes string) (*model.MealPlan, error) {
	return a.update(ctx, date, func(p *model.MealPlan, now time.Time) {
		p.Notes = notes
		p.UpdatedAt = now
	})
}

func (a *Assembler) update(ctx context.Context, date time.Time, apply func(*model.MealPlan, time.Time)) (*model.MealPlan, error) {
	plan, err := a.Plan(ctx, date)
	if err != nil {
		return nil, err
	}
	apply(plan, a.clock.Now())
	if err := a.db.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("saving plan for %s: %w", model.FormatDate(date), err)
	}
	return plan, nil
}

// FailedDates extracts the failed dates from a SaveRange error, or nil.
func FailedDates(err error) []time.Time {
	var sre *SaveRangeError
	if errors.As(err, &sre) {
		return sre.Dates()
	}
	return nil
}
