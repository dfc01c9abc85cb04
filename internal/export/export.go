package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
)

// Every stored plan falls inside this range.
var (
	firstDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	lastDate  = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Build reads the whole store into a Document.
func Build(ctx context.Context, db planner.Database, clock planner.Clock) (*Document, error) {
	materials, err := db.ListMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	meals, err := db.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meals: %w", err)
	}
	plans, err := db.ListPlans(ctx, firstDate, lastDate)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}

	doc := &Document{
		Version:    DocumentVersion,
		ExportedAt: clock.Now().UTC(),
		Materials:  make([]MaterialRecord, len(materials)),
		Meals:      make([]MealRecord, len(meals)),
		Plans:      make([]PlanRecord, len(plans)),
	}
	for i, m := range materials {
		doc.Materials[i] = MaterialRecord{
			ID:              m.ID,
			Name:            m.Name,
			Category:        m.Category.String(),
			NutritionalInfo: m.NutritionalInfo,
			Available:       m.IsAvailable,
			Description:     m.Description,
			ImageURL:        m.ImageURL,
		}
	}
	for i, m := range meals {
		doc.Meals[i] = MealRecord{
			ID:              m.ID,
			Name:            m.Name,
			Description:     m.Description,
			MealType:        m.MealType.String(),
			MaterialIDs:     m.MaterialIDs(),
			PreparationTime: m.PreparationTime,
			Instructions:    m.Instructions,
			CreatedAt:       m.CreatedAt.UTC(),
			Calories:        m.Calories,
			Tags:            m.Tags,
		}
	}
	for i, p := range plans {
		rec := PlanRecord{
			ID:        p.ID,
			Date:      model.FormatDate(p.Date),
			CreatedAt: p.CreatedAt.UTC(),
			UpdatedAt: p.UpdatedAt.UTC(),
			Notes:     p.Notes,
			Completed: p.IsCompleted,
		}
		for _, mt := range model.MealTypes() {
			if meal := p.Meal(mt); meal != nil {
				if rec.Slots == nil {
					rec.Slots = make(map[string]string)
				}
				rec.Slots[mt.String()] = meal.ID
			}
		}
		doc.Plans[i] = rec
	}
	return doc, nil
}

// Summary counts what Import wrote.
type Summary struct {
	Materials int
	Meals     int
	Plans     int
}

// Importer loads documents into the store. Records with an existing ID are
// replaced. Plans go through the Assembler so a plan whose date already
// belongs to another plan is reported instead of overwriting it.
type Importer struct {
	db        planner.Database
	assembler *planner.Assembler
	logger    planner.Logger
}

func NewImporter(db planner.Database, assembler *planner.Assembler, logger planner.Logger) *Importer {
	return &Importer{db: db, assembler: assembler, logger: logger}
}

// Import writes doc. Materials and meals stop at the first bad record. Plans
// are saved independently; when some fail the error is a
// *planner.SaveRangeError and the summary counts the ones saved.
func (im *Importer) Import(ctx context.Context, doc *Document) (Summary, error) {
	var sum Summary

	materials := make(map[string]model.Material, len(doc.Materials))
	for _, rec := range doc.Materials {
		m, err := materialFromRecord(rec)
		if err != nil {
			return sum, err
		}
		if err := upsert(ctx, im.db.FindMaterial, im.db.InsertMaterial, im.db.UpdateMaterial, m.ID, m); err != nil {
			return sum, fmt.Errorf("importing material %s: %w", m.ID, err)
		}
		materials[m.ID] = m
		sum.Materials++
	}

	meals := make(map[string]*model.Meal, len(doc.Meals))
	for _, rec := range doc.Meals {
		meal, err := im.mealFromRecord(ctx, rec, materials)
		if err != nil {
			return sum, err
		}
		if err := upsert(ctx, im.db.FindMeal, im.db.InsertMeal, im.db.UpdateMeal, meal.ID, *meal); err != nil {
			return sum, fmt.Errorf("importing meal %s: %w", meal.ID, err)
		}
		meals[meal.ID] = meal
		sum.Meals++
	}

	plans := make([]*model.MealPlan, 0, len(doc.Plans))
	for _, rec := range doc.Plans {
		plan, err := im.planFromRecord(ctx, rec, meals)
		if err != nil {
			return sum, err
		}
		plans = append(plans, plan)
	}
	saved, err := im.assembler.SaveRange(ctx, plans)
	sum.Plans = saved
	im.logger.Info("document imported",
		"materials", sum.Materials, "meals", sum.Meals, "plans", sum.Plans)
	return sum, err
}

// upsert inserts v unless a record with id exists, in which case it updates.
func upsert[T any, P any](ctx context.Context,
	find func(context.Context, string) (*P, error),
	insert, update func(context.Context, T) error,
	id string, v T,
) error {
	existing, err := find(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return insert(ctx, v)
	}
	return update(ctx, v)
}

func materialFromRecord(rec MaterialRecord) (model.Material, error) {
	if rec.ID == "" || rec.Name == "" {
		return model.Material{}, fmt.Errorf("%w: material record needs an id and a name", planner.ErrInvalidInput)
	}
	category, err := model.ParseCategory(rec.Category)
	if err != nil {
		return model.Material{}, fmt.Errorf("material %s: %w", rec.ID, err)
	}
	return model.Material{
		ID:              rec.ID,
		Name:            rec.Name,
		Category:        category,
		NutritionalInfo: rec.NutritionalInfo,
		IsAvailable:     rec.Available,
		Description:     rec.Description,
		ImageURL:        rec.ImageURL,
	}, nil
}

func (im *Importer) mealFromRecord(ctx context.Context, rec MealRecord, materials map[string]model.Material) (*model.Meal, error) {
	mt, err := model.ParseMealType(rec.MealType)
	if err != nil {
		return nil, fmt.Errorf("meal %s: %w", rec.ID, err)
	}
	meal := &model.Meal{
		ID:              rec.ID,
		Name:            rec.Name,
		Description:     rec.Description,
		MealType:        mt,
		PreparationTime: rec.PreparationTime,
		Instructions:    rec.Instructions,
		CreatedAt:       rec.CreatedAt,
		Calories:        rec.Calories,
		Tags:            model.NormalizeTags(rec.Tags),
	}
	for _, id := range rec.MaterialIDs {
		m, ok := materials[id]
		if !ok {
			stored, err := im.db.FindMaterial(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("meal %s: %w", rec.ID, err)
			}
			if stored == nil {
				return nil, fmt.Errorf("meal %s: material %s: %w", rec.ID, id, planner.ErrNotFound)
			}
			m = *stored
		}
		meal.Materials = append(meal.Materials, m)
	}
	if meal.ID == "" || meal.Name == "" || len(meal.Materials) == 0 {
		return nil, fmt.Errorf("%w: meal record %q needs an id, a name and materials", planner.ErrInvalidInput, rec.ID)
	}
	return meal, nil
}

func (im *Importer) planFromRecord(ctx context.Context, rec PlanRecord, meals map[string]*model.Meal) (*model.MealPlan, error) {
	date, err := model.ParseDate(rec.Date)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", rec.ID, err)
	}
	plan := &model.MealPlan{
		ID:          rec.ID,
		Date:        date,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Notes:       rec.Notes,
		IsCompleted: rec.Completed,
	}
	plan.Normalize()
	for slot, mealID := range rec.Slots {
		mt, err := model.ParseMealType(slot)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", rec.ID, err)
		}
		meal, ok := meals[mealID]
		if !ok {
			meal, err = im.db.FindMeal(ctx, mealID)
			if err != nil {
				return nil, fmt.Errorf("plan %s: %w", rec.ID, err)
			}
			if meal == nil {
				return nil, fmt.Errorf("plan %s: meal %s: %w", rec.ID, mealID, planner.ErrNotFound)
			}
		}
		if meal.MealType != mt {
			return nil, fmt.Errorf("%w: plan %s puts %s meal %s in the %s slot",
				planner.ErrInvalidInput, rec.ID, meal.MealType, mealID, mt)
		}
		plan.Meals[mt] = meal
	}
	return plan, nil
}

// IsPartial reports whether err only describes plans that failed to save.
func IsPartial(err error) bool {
	var sre *planner.SaveRangeError
	return errors.As(err, &sre)
}
