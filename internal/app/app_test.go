package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mealplan-go/internal/config"
	"mealplan-go/internal/database"
	"mealplan-go/internal/export"
	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
)

const seededMaterials = 20

// testConfig returns a config rooted in a temp dir with a sqlite store,
// a filesystem archive and the test encryptor.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig("profile-test", t.TempDir())
	cfg.LogLevel = "error"
	cfg.Encryption = config.EncryptionConfig{Type: "test"}
	cfg.Generator.Seed = 7
	return cfg
}

func openApp(t *testing.T, cfg *config.Config, operation string) *App {
	t.Helper()
	a, err := NewApp(cfg, operation)
	if err != nil {
		t.Fatalf("NewApp(%s) error = %v", operation, err)
	}
	return a
}

func closeApp(t *testing.T, a *App) {
	t.Helper()
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func seed(t *testing.T, cfg *config.Config) {
	t.Helper()
	a := openApp(t, cfg, "SeedMaterials")
	n, err := a.SeedMaterials(context.Background())
	if err != nil {
		t.Fatalf("SeedMaterials() error = %v", err)
	}
	if n != seededMaterials {
		t.Fatalf("SeedMaterials() = %d, want %d", n, seededMaterials)
	}
	closeApp(t, a)
}

func history(t *testing.T, cfg *config.Config) []*planner.OperationRecord {
	t.Helper()
	a := openApp(t, cfg, "GetHistory")
	defer closeApp(t, a)
	ops, err := a.History(context.Background(), 50)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	return ops
}

func TestApp_RecordsMutatingOperations(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)

	// Reads are not recorded.
	a := openApp(t, cfg, "ListMaterials")
	materials, err := a.ListMaterials(context.Background(), "", false)
	if err != nil {
		t.Fatalf("ListMaterials() error = %v", err)
	}
	if len(materials) != seededMaterials {
		t.Errorf("ListMaterials() returned %d, want %d", len(materials), seededMaterials)
	}
	closeApp(t, a)

	ops := history(t, cfg)
	if len(ops) != 1 {
		t.Fatalf("History() returned %d operations, want 1", len(ops))
	}
	op := ops[0]
	if op.Operation != "SeedMaterials" || op.Status != StatusSuccess {
		t.Errorf("operation = %s/%s, want SeedMaterials/success", op.Operation, op.Status)
	}
	if op.FinishedAt == nil {
		t.Error("FinishedAt = nil, want the close time")
	}
}

func TestApp_FailedOperationRecorded(t *testing.T) {
	cfg := testConfig(t)

	a := openApp(t, cfg, "DeleteMaterial")
	err := a.DeleteMaterial(context.Background(), "missing")
	if !errors.Is(err, planner.ErrNotFound) {
		t.Errorf("DeleteMaterial() error = %v, want ErrNotFound", err)
	}
	closeApp(t, a)

	ops := history(t, cfg)
	if len(ops) != 1 {
		t.Fatalf("History() returned %d operations, want 1", len(ops))
	}
	if ops[0].Status != StatusError || ops[0].Parameters != "missing" {
		t.Errorf("operation = %+v, want status error with parameters %q", ops[0], "missing")
	}
}

func TestApp_ListMaterialsFilters(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)

	a := openApp(t, cfg, "ListMaterials")
	defer closeApp(t, a)
	ctx := context.Background()

	tests := []struct {
		name          string
		category      string
		availableOnly bool
		want          int
	}{
		{name: "all", want: seededMaterials},
		{name: "grains", category: "grains", want: 4},
		{name: "available grains", category: "Grains", availableOnly: true, want: 2},
		{name: "available", availableOnly: true, want: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ListMaterials(ctx, tt.category, tt.availableOnly)
			if err != nil {
				t.Fatalf("ListMaterials() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("ListMaterials() returned %d, want %d", len(got), tt.want)
			}
		})
	}

	if _, err := a.ListMaterials(ctx, "candy", false); !errors.Is(err, planner.ErrInvalidInput) {
		t.Errorf("ListMaterials(candy) error = %v, want ErrInvalidInput", err)
	}
}

func TestApp_PlanWeek(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	a := openApp(t, cfg, "PlanWeek")
	plans, err := a.PlanWeek(ctx, start, false)
	if err != nil {
		t.Fatalf("PlanWeek() error = %v", err)
	}
	if len(plans) != 7 {
		t.Fatalf("PlanWeek() returned %d plans, want 7", len(plans))
	}
	closeApp(t, a)

	a = openApp(t, cfg, "ShowPlans")
	defer closeApp(t, a)
	stored, err := a.Plans(ctx, start, start.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("Plans() error = %v", err)
	}
	if len(stored) != 7 {
		t.Fatalf("Plans() returned %d, want 7", len(stored))
	}
	for _, p := range stored {
		for _, mt := range model.MealTypes() {
			if p.Meal(mt) == nil {
				t.Errorf("plan %s has no %s", model.FormatDate(p.Date), mt)
			}
		}
	}
}

func TestApp_PlanWeekUsesConfiguredRestrictions(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)
	cfg.Planning.Restrictions = []string{"vegetarian"}
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	a := openApp(t, cfg, "PlanWeek")
	defer closeApp(t, a)

	plans, err := a.PlanWeek(context.Background(), start, false)
	if err != nil {
		t.Fatalf("PlanWeek() error = %v", err)
	}
	if len(plans) != 7 {
		t.Fatalf("PlanWeek() returned %d plans, want 7", len(plans))
	}
	for _, p := range plans {
		for _, mt := range model.MealTypes() {
			meal := p.Meal(mt)
			if meal == nil {
				t.Errorf("plan %s has no %s", model.FormatDate(p.Date), mt)
				continue
			}
			for _, m := range meal.Materials {
				switch m.Category {
				case model.CategoryMeat, model.CategoryPoultry, model.CategorySeafood:
					t.Errorf("plan %s %s uses %s despite vegetarian default", model.FormatDate(p.Date), mt, m.Name)
				}
			}
		}
	}
}

func TestApp_PlanEdits(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := openApp(t, cfg, "EditPlan")
	defer closeApp(t, a)

	if _, err := a.PlanDay(ctx, day, false); err != nil {
		t.Fatalf("PlanDay() error = %v", err)
	}
	plan, err := a.ClearSlot(ctx, day, "Snack")
	if err != nil {
		t.Fatalf("ClearSlot() error = %v", err)
	}
	if plan.Meal(model.Snack) != nil {
		t.Error("snack slot still filled after ClearSlot")
	}
	if _, err := a.SetNotes(ctx, day, "leftovers"); err != nil {
		t.Fatalf("SetNotes() error = %v", err)
	}
	plan, err = a.SetCompleted(ctx, day, true)
	if err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}
	if !plan.IsCompleted || plan.Notes != "leftovers" {
		t.Errorf("plan = completed %v notes %q, want true/leftovers", plan.IsCompleted, plan.Notes)
	}
	if _, err := a.AssignMeal(ctx, day, "brunch", "x"); !errors.Is(err, planner.ErrInvalidInput) {
		t.Errorf("AssignMeal(brunch) error = %v, want ErrInvalidInput", err)
	}
	if err := a.DeletePlan(ctx, day); err != nil {
		t.Fatalf("DeletePlan() error = %v", err)
	}
	if got, _ := a.Plans(ctx, day, day); len(got) != 0 {
		t.Errorf("Plans() after delete returned %d, want 0", len(got))
	}
}

func TestApp_GenerateUsesConfiguredRestrictions(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)
	cfg.Planning.Restrictions = []string{"vegetarian"}

	a := openApp(t, cfg, "GenerateMeals")
	defer closeApp(t, a)

	meals, err := a.GenerateMeals(context.Background(), "lunch", 5, nil)
	if err != nil {
		t.Fatalf("GenerateMeals() error = %v", err)
	}
	if len(meals) == 0 {
		t.Fatal("GenerateMeals() returned no meals")
	}
	for _, meal := range meals {
		for _, m := range meal.Materials {
			switch m.Category {
			case model.CategoryMeat, model.CategoryPoultry, model.CategorySeafood:
				t.Errorf("meal %q uses %s (%s) despite vegetarian default", meal.Name, m.Name, m.Category)
			}
		}
	}

	// Generated meals are not stored until saved.
	stored, err := a.ListMeals(context.Background(), "")
	if err != nil {
		t.Fatalf("ListMeals() error = %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("ListMeals() returned %d before SaveMeals, want 0", len(stored))
	}
	if err := a.SaveMeals(context.Background(), meals); err != nil {
		t.Fatalf("SaveMeals() error = %v", err)
	}
	stored, _ = a.ListMeals(context.Background(), "lunch")
	if len(stored) != len(meals) {
		t.Errorf("ListMeals(lunch) returned %d, want %d", len(stored), len(meals))
	}
}

func TestApp_GenerateCustomMeal(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg)
	ctx := context.Background()

	a := openApp(t, cfg, "GenerateCustomMeal")
	defer closeApp(t, a)

	salmon, err := a.SearchMaterials(ctx, "salmon")
	if err != nil || len(salmon) != 1 {
		t.Fatalf("SearchMaterials(salmon) = %v, %v", salmon, err)
	}
	meal, err := a.GenerateCustomMeal(ctx, "dinner", []string{salmon[0].ID}, nil)
	if err != nil {
		t.Fatalf("GenerateCustomMeal() error = %v", err)
	}
	found := false
	for _, m := range meal.Materials {
		found = found || m.ID == salmon[0].ID
	}
	if !found {
		t.Errorf("custom meal %q does not contain salmon", meal.Name)
	}

	if _, err := a.GenerateCustomMeal(ctx, "dinner", []string{"nope"}, nil); !errors.Is(err, planner.ErrNotFound) {
		t.Errorf("GenerateCustomMeal(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestApp_AutoBackupAndRestore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Archive.AutoBackup = true
	seed(t, cfg)

	dest := filepath.Join(t.TempDir(), "restored.db")
	version, err := Restore(cfg, "", dest)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Restore() version = %d, want 1", version)
	}

	db, err := database.NewSQLiteDatabase(dest)
	if err != nil {
		t.Fatalf("opening restored database: %v", err)
	}
	defer db.Close()
	materials, err := db.ListMaterials(context.Background())
	if err != nil {
		t.Fatalf("ListMaterials() error = %v", err)
	}
	if len(materials) != seededMaterials {
		t.Errorf("restored %d materials, want %d", len(materials), seededMaterials)
	}

	if _, err := Restore(cfg, "", dest); err == nil {
		t.Error("Restore() onto an existing file expected error")
	}
}

func TestApp_RefusesStoreBehindArchive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Archive.AutoBackup = true
	seed(t, cfg)

	fresh := *cfg
	fresh.Database.DataDir = t.TempDir()
	_, err := NewApp(&fresh, "ListMaterials")
	if err == nil || !strings.Contains(err.Error(), "behind") {
		t.Errorf("NewApp() error = %v, want local database behind archive", err)
	}
}

func TestApp_Backup(t *testing.T) {
	t.Run("versions snapshots by latest operation", func(t *testing.T) {
		cfg := testConfig(t)
		seed(t, cfg)

		a := openApp(t, cfg, "Backup")
		defer closeApp(t, a)
		version, err := a.Backup(context.Background())
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if version != 1 {
			t.Errorf("Backup() version = %d, want 1", version)
		}
	})

	t.Run("no archive", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Archive = config.ArchiveConfig{Type: "none"}

		a := openApp(t, cfg, "Backup")
		defer closeApp(t, a)
		if _, err := a.Backup(context.Background()); err == nil {
			t.Error("Backup() expected error without an archive")
		}
	})

	t.Run("age keys required", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Encryption = config.NewConfig(cfg.ProfileID, cfg.BaseDir).Encryption

		a := openApp(t, cfg, "Backup")
		defer closeApp(t, a)
		if _, err := a.Backup(context.Background()); err == nil || !strings.Contains(err.Error(), "config keys") {
			t.Errorf("Backup() error = %v, want keys not set up", err)
		}
	})
}

func TestApp_AgeEncryptedRestore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Encryption = config.NewConfig(cfg.ProfileID, cfg.BaseDir).Encryption
	if err := SetupEncryption(cfg, "correct horse"); err != nil {
		t.Fatalf("SetupEncryption() error = %v", err)
	}
	seed(t, cfg)

	a := openApp(t, cfg, "Backup")
	if _, err := a.Backup(context.Background()); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	closeApp(t, a)

	dir := t.TempDir()
	if _, err := Restore(cfg, "wrong", filepath.Join(dir, "a.db")); err == nil {
		t.Error("Restore() with wrong passphrase expected error")
	}
	if _, err := Restore(cfg, "correct horse", filepath.Join(dir, "b.db")); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
}

func TestCheckArchive(t *testing.T) {
	cfg := testConfig(t)
	if err := CheckArchive(cfg); err != nil {
		t.Errorf("CheckArchive() error = %v", err)
	}

	cfg.Archive = config.ArchiveConfig{Type: "none"}
	if err := CheckArchive(cfg); err == nil {
		t.Error("CheckArchive() expected error without an archive")
	}
}

func TestApp_ExportImport(t *testing.T) {
	src := testConfig(t)
	seed(t, src)
	ctx := context.Background()

	a := openApp(t, src, "Export")
	var buf bytes.Buffer
	if err := a.Export(ctx, &buf, export.FormatYAML); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	closeApp(t, a)

	dst := testConfig(t)
	b := openApp(t, dst, "Import")
	summary, err := b.Import(ctx, &buf, export.FormatYAML)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Materials != seededMaterials {
		t.Errorf("Import() materials = %d, want %d", summary.Materials, seededMaterials)
	}
	closeApp(t, b)

	ops := history(t, dst)
	if len(ops) != 1 || ops[0].Operation != "Import" || ops[0].Parameters != "yaml" {
		t.Errorf("history after import = %+v, want one yaml Import", ops)
	}
}
