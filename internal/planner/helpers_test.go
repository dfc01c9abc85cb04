package planner_test

import (
	"testing"
	"time"

	"mealplan-go/internal/database"
	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
	"mealplan-go/internal/testutil"
)

// env wires every planner component over one in-memory database.
type env struct {
	db        *database.SQLiteDatabase
	clock     *testutil.StubClock
	ids       *testutil.StubIDGenerator
	catalog   *planner.Catalog
	library   *planner.Library
	generator *planner.Generator
	assembler *planner.Assembler
}

func newEnv(t *testing.T, materials []model.Material) *env {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	testutil.InsertMaterials(t, db, materials)

	clock := testutil.FixedClock()
	ids := testutil.NewStubIDGenerator()
	logger := planner.NewNopLogger()
	gen := planner.NewGenerator(planner.GeneratorOptions{Seed: 7}, clock, ids, logger)
	return &env{
		db:        db,
		clock:     clock,
		ids:       ids,
		catalog:   planner.NewCatalog(db, ids, logger),
		library:   planner.NewLibrary(db, clock, ids, logger),
		generator: gen,
		assembler: planner.NewAssembler(db, gen, clock, ids, logger),
	}
}

func newGenerator(seed uint64) *planner.Generator {
	return planner.NewGenerator(planner.GeneratorOptions{Seed: seed},
		testutil.FixedClock(), testutil.NewStubIDGenerator(), planner.NewNopLogger())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pantryByID() map[string]model.Material {
	out := make(map[string]model.Material)
	for _, m := range testutil.Pantry() {
		out[m.ID] = m
	}
	return out
}

func materialNames(meal model.Meal) []string {
	names := make([]string, len(meal.Materials))
	for i, m := range meal.Materials {
		names[i] = m.Name
	}
	return names
}
