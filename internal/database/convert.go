package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mealplan-go/internal/database/sqlc"
	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
)

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func materialFromRow(row sqlc.Material) (model.Material, error) {
	category, err := model.ParseCategory(row.Category)
	if err != nil {
		return model.Material{}, fmt.Errorf("material %s: %w", row.ID, err)
	}
	info, err := decodeStrings(row.NutritionalInfo)
	if err != nil {
		return model.Material{}, fmt.Errorf("material %s: decoding nutritional info: %w", row.ID, err)
	}
	return model.Material{
		ID:              row.ID,
		Name:            row.Name,
		Category:        category,
		NutritionalInfo: info,
		IsAvailable:     row.IsAvailable,
		Description:     row.Description,
		ImageURL:        row.ImageUrl,
	}, nil
}

func materialParams(m model.Material) (sqlc.InsertMaterialParams, error) {
	if !m.Category.Valid() {
		return sqlc.InsertMaterialParams{}, fmt.Errorf("material %s: category %d: %w", m.ID, int(m.Category), model.ErrUnknownEnumValue)
	}
	info, err := encodeStrings(m.NutritionalInfo)
	if err != nil {
		return sqlc.InsertMaterialParams{}, err
	}
	return sqlc.InsertMaterialParams{
		ID:              m.ID,
		Name:            m.Name,
		Category:        m.Category.String(),
		NutritionalInfo: info,
		IsAvailable:     m.IsAvailable,
		Description:     m.Description,
		ImageUrl:        m.ImageURL,
	}, nil
}

// mealFromRow converts a meal row. Materials are loaded separately.
func mealFromRow(row sqlc.Meal) (model.Meal, error) {
	mt, err := model.ParseMealType(row.MealType)
	if err != nil {
		return model.Meal{}, fmt.Errorf("meal %s: %w", row.ID, err)
	}
	tags, err := decodeStrings(row.Tags)
	if err != nil {
		return model.Meal{}, fmt.Errorf("meal %s: decoding tags: %w", row.ID, err)
	}
	meal := model.Meal{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		MealType:        mt,
		PreparationTime: int(row.PreparationTime),
		Instructions:    row.Instructions,
		CreatedAt:       row.CreatedAt,
		Tags:            tags,
	}
	if row.Calories.Valid {
		c := int(row.Calories.Int64)
		meal.Calories = &c
	}
	return meal, nil
}

func mealParams(m model.Meal) (sqlc.InsertMealParams, error) {
	if !m.MealType.Valid() {
		return sqlc.InsertMealParams{}, fmt.Errorf("meal %s: meal type %d: %w", m.ID, int(m.MealType), model.ErrUnknownEnumValue)
	}
	tags, err := encodeStrings(model.NormalizeTags(m.Tags))
	if err != nil {
		return sqlc.InsertMealParams{}, err
	}
	var calories sql.NullInt64
	if m.Calories != nil {
		calories = sql.NullInt64{Int64: int64(*m.Calories), Valid: true}
	}
	return sqlc.InsertMealParams{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		MealType:        m.MealType.String(),
		PreparationTime: int64(m.PreparationTime),
		Instructions:    m.Instructions,
		CreatedAt:       m.CreatedAt,
		Calories:        calories,
		Tags:            tags,
	}, nil
}

// planFromRow converts a plan row. Slots are loaded separately.
func planFromRow(row sqlc.MealPlan) (*model.MealPlan, error) {
	date, err := model.ParseDate(row.PlanDate)
	if err != nil {
		return nil, fmt.Errorf("meal plan %s: %w", row.ID, err)
	}
	plan := &model.MealPlan{
		ID:          row.ID,
		Date:        date,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Notes:       row.Notes,
		IsCompleted: row.IsCompleted,
	}
	plan.Normalize()
	return plan, nil
}

func operationFromRow(row sqlc.Operation) *planner.OperationRecord {
	op := &planner.OperationRecord{
		ID:         row.ID,
		StartedAt:  row.StartedAt,
		Operation:  row.Operation,
		Parameters: row.Parameters,
		Status:     row.Status,
	}
	if row.FinishedAt.Valid {
		t := row.FinishedAt.Time
		op.FinishedAt = &t
	}
	return op
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
