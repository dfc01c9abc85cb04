package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mealplan-go/internal/database/migrations"
	"mealplan-go/internal/database/sqlc"
	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements planner.Database on SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// NewSQLiteDatabase opens the database at path (or ":memory:") and applies
// pending migrations.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", planner.ErrPersistence, err)
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already migrated connection.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
	}
}

// OpenConnection opens a SQLite connection. Foreign keys and the busy
// timeout are set through the DSN so every pooled connection gets them.
// In-memory databases are limited to one connection, since every pooled
// connection to ":memory:" would otherwise see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", planner.ErrPersistence, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening database: %w", planner.ErrPersistence, err)
	}
	return db, nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, planner.ErrPersistence, err)
}

// inTx runs fn inside a transaction and commits if fn returns nil.
func (s *SQLiteDatabase) inTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("starting transaction", err)
	}
	defer tx.Rollback()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return persistence("committing transaction", err)
	}
	return nil
}

// Material operations

func (s *SQLiteDatabase) ListMaterials(ctx context.Context) ([]model.Material, error) {
	rows, err := s.queries.ListMaterials(ctx)
	if err != nil {
		return nil, persistence("listing materials", err)
	}
	out := make([]model.Material, 0, len(rows))
	for _, row := range rows {
		m, err := materialFromRow(row)
		if err != nil {
			return nil, persistence("decoding material", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *SQLiteDatabase) FindMaterial(ctx context.Context, id string) (*model.Material, error) {
	row, err := s.queries.GetMaterial(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("finding material", err)
	}
	m, err := materialFromRow(row)
	if err != nil {
		return nil, persistence("decoding material", err)
	}
	return &m, nil
}

func (s *SQLiteDatabase) InsertMaterial(ctx context.Context, material model.Material) error {
	params, err := materialParams(material)
	if err != nil {
		return err
	}
	if err := s.queries.InsertMaterial(ctx, params); err != nil {
		return persistence("inserting material", err)
	}
	return nil
}

func (s *SQLiteDatabase) UpdateMaterial(ctx context.Context, material model.Material) error {
	p, err := materialParams(material)
	if err != nil {
		return err
	}
	n, err := s.queries.UpdateMaterial(ctx, sqlc.UpdateMaterialParams{
		Name:            p.Name,
		Category:        p.Category,
		NutritionalInfo: p.NutritionalInfo,
		IsAvailable:     p.IsAvailable,
		Description:     p.Description,
		ImageUrl:        p.ImageUrl,
		ID:              p.ID,
	})
	if err != nil {
		return persistence("updating material", err)
	}
	if n == 0 {
		return fmt.Errorf("material %s: %w", material.ID, planner.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteMaterial(ctx context.Context, id string) error {
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		if _, err := q.GetMaterial(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("material %s: %w", id, planner.ErrNotFound)
			}
			return persistence("finding material", err)
		}
		used, err := q.CountMealsUsingMaterial(ctx, id)
		if err != nil {
			return persistence("counting meals using material", err)
		}
		if used > 0 {
			return fmt.Errorf("material %s is used by %d meal(s): %w", id, used, planner.ErrMaterialInUse)
		}
		if _, err := q.DeleteMaterial(ctx, id); err != nil {
			return persistence("deleting material", err)
		}
		return nil
	})
}

// Meal operations

func (s *SQLiteDatabase) ListMeals(ctx context.Context) ([]model.Meal, error) {
	rows, err := s.queries.ListMeals(ctx)
	if err != nil {
		return nil, persistence("listing meals", err)
	}
	return s.hydrateMeals(ctx, rows)
}

func (s *SQLiteDatabase) ListMealsByType(ctx context.Context, mealType model.MealType) ([]model.Meal, error) {
	if !mealType.Valid() {
		return nil, fmt.Errorf("meal type %d: %w", int(mealType), model.ErrUnknownEnumValue)
	}
	rows, err := s.queries.ListMealsByType(ctx, mealType.String())
	if err != nil {
		return nil, persistence("listing meals by type", err)
	}
	return s.hydrateMeals(ctx, rows)
}

func (s *SQLiteDatabase) hydrateMeals(ctx context.Context, rows []sqlc.Meal) ([]model.Meal, error) {
	out := make([]model.Meal, 0, len(rows))
	for _, row := range rows {
		meal, err := loadMeal(ctx, s.queries, row)
		if err != nil {
			return nil, err
		}
		out = append(out, meal)
	}
	return out, nil
}

func loadMeal(ctx context.Context, q *sqlc.Queries, row sqlc.Meal) (model.Meal, error) {
	meal, err := mealFromRow(row)
	if err != nil {
		return model.Meal{}, persistence("decoding meal", err)
	}
	materialRows, err := q.ListMealMaterials(ctx, row.ID)
	if err != nil {
		return model.Meal{}, persistence("listing meal materials", err)
	}
	for _, mr := range materialRows {
		m, err := materialFromRow(mr)
		if err != nil {
			return model.Meal{}, persistence("decoding material", err)
		}
		meal.Materials = append(meal.Materials, m)
	}
	return meal, nil
}

func (s *SQLiteDatabase) FindMeal(ctx context.Context, id string) (*model.Meal, error) {
	row, err := s.queries.GetMeal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("finding meal", err)
	}
	meal, err := loadMeal(ctx, s.queries, row)
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *SQLiteDatabase) InsertMeal(ctx context.Context, meal model.Meal) error {
	params, err := mealParams(meal)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		if err := q.InsertMeal(ctx, params); err != nil {
			return persistence("inserting meal", err)
		}
		return writeMealMaterials(ctx, q, meal)
	})
}

func (s *SQLiteDatabase) UpdateMeal(ctx context.Context, meal model.Meal) error {
	p, err := mealParams(meal)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		n, err := q.UpdateMeal(ctx, sqlc.UpdateMealParams{
			Name:            p.Name,
			Description:     p.Description,
			MealType:        p.MealType,
			PreparationTime: p.PreparationTime,
			Instructions:    p.Instructions,
			Calories:        p.Calories,
			Tags:            p.Tags,
			ID:              p.ID,
		})
		if err != nil {
			return persistence("updating meal", err)
		}
		if n == 0 {
			return fmt.Errorf("meal %s: %w", meal.ID, planner.ErrNotFound)
		}
		return writeMealMaterials(ctx, q, meal)
	})
}

// upsertMeal stores meal, replacing any existing record with its ID.
func upsertMeal(ctx context.Context, q *sqlc.Queries, meal model.Meal) error {
	p, err := mealParams(meal)
	if err != nil {
		return err
	}
	if err := q.UpsertMeal(ctx, sqlc.UpsertMealParams(p)); err != nil {
		return persistence("upserting meal", err)
	}
	return writeMealMaterials(ctx, q, meal)
}

func writeMealMaterials(ctx context.Context, q *sqlc.Queries, meal model.Meal) error {
	if err := q.DeleteMealMaterials(ctx, meal.ID); err != nil {
		return persistence("clearing meal materials", err)
	}
	for i, m := range meal.Materials {
		err := q.InsertMealMaterial(ctx, sqlc.InsertMealMaterialParams{
			MealID:     meal.ID,
			MaterialID: m.ID,
			Position:   int64(i),
		})
		if err != nil {
			return persistence(fmt.Sprintf("linking material %s to meal %s", m.ID, meal.ID), err)
		}
	}
	return nil
}

func (s *SQLiteDatabase) DeleteMeal(ctx context.Context, id string) error {
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		if _, err := q.GetMeal(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("meal %s: %w", id, planner.ErrNotFound)
			}
			return persistence("finding meal", err)
		}
		used, err := q.CountSlotsUsingMeal(ctx, id)
		if err != nil {
			return persistence("counting plan slots using meal", err)
		}
		if used > 0 {
			return fmt.Errorf("meal %s is assigned to %d plan slot(s): %w", id, used, planner.ErrMealInUse)
		}
		if _, err := q.DeleteMeal(ctx, id); err != nil {
			return persistence("deleting meal", err)
		}
		return nil
	})
}

// Meal plan operations

func (s *SQLiteDatabase) FindPlanByDate(ctx context.Context, date time.Time) (*model.MealPlan, error) {
	row, err := s.queries.GetPlanByDate(ctx, model.FormatDate(date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("finding meal plan", err)
	}
	return s.loadPlan(ctx, row)
}

func (s *SQLiteDatabase) ListPlans(ctx context.Context, start, end time.Time) ([]*model.MealPlan, error) {
	rows, err := s.queries.ListPlansInRange(ctx, sqlc.ListPlansInRangeParams{
		PlanDate:   model.FormatDate(start),
		PlanDate_2: model.FormatDate(end),
	})
	if err != nil {
		return nil, persistence("listing meal plans", err)
	}
	out := make([]*model.MealPlan, 0, len(rows))
	for _, row := range rows {
		plan, err := s.loadPlan(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, nil
}

func (s *SQLiteDatabase) loadPlan(ctx context.Context, row sqlc.MealPlan) (*model.MealPlan, error) {
	plan, err := planFromRow(row)
	if err != nil {
		return nil, persistence("decoding meal plan", err)
	}
	slots, err := s.queries.ListPlanSlots(ctx, row.ID)
	if err != nil {
		return nil, persistence("listing plan slots", err)
	}
	for _, slot := range slots {
		mt, err := model.ParseMealType(slot.MealType)
		if err != nil {
			return nil, persistence("decoding plan slot", err)
		}
		mealRow, err := s.queries.GetMeal(ctx, slot.MealID)
		if err != nil {
			return nil, persistence(fmt.Sprintf("loading meal %s for plan %s", slot.MealID, row.ID), err)
		}
		meal, err := loadMeal(ctx, s.queries, mealRow)
		if err != nil {
			return nil, err
		}
		plan.Meals[mt] = &meal
	}
	return plan, nil
}

func (s *SQLiteDatabase) SavePlan(ctx context.Context, plan *model.MealPlan) error {
	plan.Normalize()
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		for _, mt := range model.MealTypes() {
			if meal := plan.Meals[mt]; meal != nil {
				if err := upsertMeal(ctx, q, *meal); err != nil {
					return err
				}
			}
		}

		err := q.UpsertPlan(ctx, sqlc.UpsertPlanParams{
			ID:          plan.ID,
			PlanDate:    model.FormatDate(plan.Date),
			CreatedAt:   plan.CreatedAt,
			UpdatedAt:   plan.UpdatedAt,
			Notes:       plan.Notes,
			IsCompleted: plan.IsCompleted,
		})
		if err != nil {
			return persistence("upserting meal plan", err)
		}

		if err := q.DeletePlanSlots(ctx, plan.ID); err != nil {
			return persistence("clearing plan slots", err)
		}
		for _, mt := range model.MealTypes() {
			meal := plan.Meals[mt]
			if meal == nil {
				continue
			}
			err := q.InsertPlanSlot(ctx, sqlc.InsertPlanSlotParams{
				PlanID:   plan.ID,
				MealType: mt.String(),
				MealID:   meal.ID,
			})
			if err != nil {
				return persistence("inserting plan slot", err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) DeletePlan(ctx context.Context, id string) error {
	n, err := s.queries.DeletePlan(ctx, id)
	if err != nil {
		return persistence("deleting meal plan", err)
	}
	if n == 0 {
		return fmt.Errorf("meal plan %s: %w", id, planner.ErrNotFound)
	}
	return nil
}

// Operation history

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (*planner.OperationRecord, error) {
	id, err := s.queries.InsertOperation(ctx, sqlc.InsertOperationParams{
		StartedAt:  startedAt,
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, persistence("creating operation", err)
	}
	row, err := s.queries.GetOperation(ctx, id)
	if err != nil {
		return nil, persistence("reading operation", err)
	}
	return operationFromRow(row), nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error {
	n, err := s.queries.UpdateOperationFinished(ctx, sqlc.UpdateOperationFinishedParams{
		FinishedAt: nullTime(finishedAt),
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return persistence("finishing operation", err)
	}
	if n == 0 {
		return fmt.Errorf("operation %d: %w", id, planner.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*planner.OperationRecord, error) {
	rows, err := s.queries.ListOperations(ctx, int64(limit))
	if err != nil {
		return nil, persistence("listing operations", err)
	}
	out := make([]*planner.OperationRecord, len(rows))
	for i, row := range rows {
		out[i] = operationFromRow(row)
	}
	return out, nil
}

func (s *SQLiteDatabase) MaxOperationID(ctx context.Context) (int64, error) {
	id, err := s.queries.GetMaxOperationID(ctx)
	if err != nil {
		return 0, persistence("reading max operation id", err)
	}
	return id, nil
}

// Path returns the database file path, or "" for wrapped connections.
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the schema is at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a consistent copy of the database to destPath using
// VACUUM INTO. destPath must not exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return persistence("backing up database", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ planner.Database = (*SQLiteDatabase)(nil)
