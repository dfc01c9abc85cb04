package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mealplan-go/internal/archive"
	"mealplan-go/internal/config"
	"mealplan-go/internal/database"
	"mealplan-go/internal/encryption"
	"mealplan-go/internal/export"
	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"
)

// SnapshotName is the archive name under which database snapshots are stored.
const SnapshotName = "mealplan.db"

// App is the application layer between the CLI and the planner components.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI strings, records mutating commands in the operation
// history and manages the DB lifecycle on Close.
type App struct {
	cfg       *config.Config
	db        planner.Database
	archive   planner.Archive // nil when archiving is disabled
	encryptor planner.Encryptor
	clock     planner.Clock
	logger    planner.Logger
	catalog   *planner.Catalog
	library   *planner.Library
	generator *planner.Generator
	assembler *planner.Assembler
	importer  *export.Importer
	op        *Operation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "PlanWeek", "AddMaterial").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	arch, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	if arch != nil {
		if err := checkSnapshotVersion(db, arch, cfg.ProfileID); err != nil {
			db.Close()
			return nil, err
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := planner.RealClock{}
	opID := clock.Now().UTC().Format("20060102T150405Z")
	sl, logFile, err := newLogger(cfg.LogDir, opID, cfg.LogLevel)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	ids := planner.UUIDGenerator{}
	gen := planner.NewGenerator(planner.GeneratorOptions{
		Seed:           uint64(cfg.Generator.Seed),
		CandidateLimit: cfg.Generator.CandidateLimit,
		MaxPerGroup:    cfg.Generator.MaxPerGroup,
		DefaultCount:   cfg.Generator.DefaultCount,
	}, clock, ids, logger)
	asm := planner.NewAssembler(db, gen, clock, ids, logger)

	return &App{
		cfg:       cfg,
		db:        db,
		archive:   arch,
		encryptor: enc,
		clock:     clock,
		logger:    logger,
		catalog:   planner.NewCatalog(db, ids, logger),
		library:   planner.NewLibrary(db, clock, ids, logger),
		generator: gen,
		assembler: asm,
		importer:  export.NewImporter(db, asm, logger),
		op:        NewOperation(operation, "", clock.Now()),
		logFile:   logFile,
	}, nil
}

// checkSnapshotVersion refuses to work on a local store that is older than
// the newest archived snapshot.
func checkSnapshotVersion(db planner.Database, arch planner.Archive, profileID string) error {
	remote, err := arch.GetSnapshotVersion(profileID, SnapshotName)
	if err != nil {
		return fmt.Errorf("checking archived snapshot version: %w", err)
	}
	local, err := db.MaxOperationID(context.Background())
	if err != nil {
		return fmt.Errorf("checking local operation history: %w", err)
	}
	if remote > local {
		return fmt.Errorf("local database is behind the archive (local=%d, archived=%d): run 'mealplan restore' or point database.data_dir elsewhere", local, remote)
	}
	return nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// Only DB-mutating commands call it.
func (a *App) persistOperation(ctx context.Context, parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	rec, err := a.db.CreateOperation(ctx, a.op.Name, parameters, a.op.StartedAt)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	a.op.ID = rec.ID
	return nil
}

// mutate runs fn as part of a recorded operation and marks the operation
// failed when fn returns an error.
func mutate[T any](ctx context.Context, a *App, parameters string, fn func() (T, error)) (T, error) {
	if err := a.persistOperation(ctx, parameters); err != nil {
		var zero T
		return zero, err
	}
	v, err := fn()
	a.op.Fail(err)
	return v, err
}

func (a *App) restrictionsOrDefault(restrictions []string) []string {
	if len(restrictions) > 0 {
		return restrictions
	}
	return a.cfg.Planning.Restrictions
}

// planOptions applies the configured restrictions to plan commands.
func (a *App) planOptions(overwrite bool) planner.PlanOptions {
	return planner.PlanOptions{Overwrite: overwrite, Restrictions: a.cfg.Planning.Restrictions}
}

// Materials

// ListMaterials returns the catalog, optionally narrowed to one category
// and to available materials.
func (a *App) ListMaterials(ctx context.Context, category string, availableOnly bool) ([]model.Material, error) {
	var (
		materials []model.Material
		err       error
	)
	if category != "" {
		c, perr := model.ParseCategory(strings.ToLower(category))
		if perr != nil {
			return nil, fmt.Errorf("%w: %w", planner.ErrInvalidInput, perr)
		}
		materials, err = a.catalog.ListByCategory(ctx, c)
	} else {
		materials, err = a.catalog.List(ctx)
	}
	if err != nil || !availableOnly {
		return materials, err
	}
	var out []model.Material
	for _, m := range materials {
		if m.IsAvailable {
			out = append(out, m)
		}
	}
	return out, nil
}

func (a *App) SearchMaterials(ctx context.Context, query string) ([]model.Material, error) {
	return a.catalog.Search(ctx, query)
}

func (a *App) AddMaterial(ctx context.Context, in planner.NewMaterial) (*model.Material, error) {
	return mutate(ctx, a, in.Name, func() (*model.Material, error) {
		return a.catalog.Add(ctx, in)
	})
}

func (a *App) SetAvailability(ctx context.Context, id string, available bool) (*model.Material, error) {
	return mutate(ctx, a, fmt.Sprintf("%s available=%t", id, available), func() (*model.Material, error) {
		return a.catalog.SetAvailability(ctx, id, available)
	})
}

func (a *App) DeleteMaterial(ctx context.Context, id string) error {
	_, err := mutate(ctx, a, id, func() (struct{}, error) {
		return struct{}{}, a.catalog.Delete(ctx, id)
	})
	return err
}

// SeedMaterials loads the starter catalog into an empty store and returns
// the number of materials added.
func (a *App) SeedMaterials(ctx context.Context) (int, error) {
	return mutate(ctx, a, "", func() (int, error) {
		return a.catalog.Seed(ctx)
	})
}

// Meals

// ListMeals returns the stored meals, optionally of one meal type.
func (a *App) ListMeals(ctx context.Context, mealType string) ([]model.Meal, error) {
	if mealType == "" {
		return a.library.All(ctx)
	}
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}
	return a.library.ByType(ctx, mt)
}

func (a *App) GetMeal(ctx context.Context, id string) (*model.Meal, error) {
	return a.library.Get(ctx, id)
}

func (a *App) SearchMeals(ctx context.Context, query string) ([]model.Meal, error) {
	return a.library.Search(ctx, query)
}

// UsableMeals returns the stored meals whose materials are all available.
func (a *App) UsableMeals(ctx context.Context) ([]model.Meal, error) {
	return a.library.UsableWithAvailableMaterials(ctx)
}

func (a *App) AddMeal(ctx context.Context, in planner.NewMeal) (*model.Meal, error) {
	return mutate(ctx, a, in.Name, func() (*model.Meal, error) {
		return a.library.Add(ctx, in)
	})
}

func (a *App) DeleteMeal(ctx context.Context, id string) error {
	_, err := mutate(ctx, a, id, func() (struct{}, error) {
		return struct{}{}, a.library.Delete(ctx, id)
	})
	return err
}

// SaveMeals stores generated meals in the library.
func (a *App) SaveMeals(ctx context.Context, meals []model.Meal) error {
	_, err := mutate(ctx, a, fmt.Sprintf("%d meals", len(meals)), func() (struct{}, error) {
		for _, m := range meals {
			if err := a.library.Save(ctx, m); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return err
}

// Generation

// GenerateMeals proposes up to count meals of mealType from the catalog.
// Empty restrictions fall back to the configured planning restrictions.
func (a *App) GenerateMeals(ctx context.Context, mealType string, count int, restrictions []string) ([]model.Meal, error) {
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}
	materials, err := a.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return a.generator.GenerateMeals(planner.GenerateRequest{
		MealType:     mt,
		Materials:    materials,
		Restrictions: a.restrictionsOrDefault(restrictions),
		Count:        count,
	})
}

// GenerateCustomMeal builds one meal of mealType that contains every material in requiredIDs.
func (a *App) GenerateCustomMeal(ctx context.Context, mealType string, requiredIDs []string, restrictions []string) (*model.Meal, error) {
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}
	required := make([]model.Material, 0, len(requiredIDs))
	for _, id := range requiredIDs {
		m, err := a.catalog.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		required = append(required, *m)
	}
	materials, err := a.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return a.generator.GenerateCustomMeal(required, materials, mt, a.restrictionsOrDefault(restrictions))
}

// Plans

func (a *App) PlanDay(ctx context.Context, date time.Time, overwrite bool) (*model.MealPlan, error) {
	return mutate(ctx, a, model.FormatDate(date), func() (*model.MealPlan, error) {
		return a.assembler.PlanDay(ctx, date, a.planOptions(overwrite))
	})
}

func (a *App) PlanWeek(ctx context.Context, start time.Time, overwrite bool) ([]*model.MealPlan, error) {
	return mutate(ctx, a, model.FormatDate(start), func() ([]*model.MealPlan, error) {
		return a.assembler.PlanWeek(ctx, start, a.planOptions(overwrite))
	})
}

func (a *App) PlanMonth(ctx context.Context, year int, month time.Month, overwrite bool) ([]*model.MealPlan, error) {
	return mutate(ctx, a, fmt.Sprintf("%04d-%02d", year, int(month)), func() ([]*model.MealPlan, error) {
		return a.assembler.PlanMonth(ctx, year, month, a.planOptions(overwrite))
	})
}

// Plans returns the stored plans dated start..end inclusive.
func (a *App) Plans(ctx context.Context, start, end time.Time) ([]*model.MealPlan, error) {
	return a.assembler.Plans(ctx, start, end)
}

func (a *App) AssignMeal(ctx context.Context, date time.Time, mealType, mealID string) (*model.MealPlan, error) {
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}
	return mutate(ctx, a, fmt.Sprintf("%s %s %s", model.FormatDate(date), mt, mealID), func() (*model.MealPlan, error) {
		return a.assembler.AssignMeal(ctx, date, mt, mealID)
	})
}

func (a *App) ClearSlot(ctx context.Context, date time.Time, mealType string) (*model.MealPlan, error) {
	mt, err := parseMealType(mealType)
	if err != nil {
		return nil, err
	}
	return mutate(ctx, a, fmt.Sprintf("%s %s", model.FormatDate(date), mt), func() (*model.MealPlan, error) {
		return a.assembler.ClearSlot(ctx, date, mt)
	})
}

func (a *App) SetCompleted(ctx context.Context, date time.Time, completed bool) (*model.MealPlan, error) {
	return mutate(ctx, a, fmt.Sprintf("%s completed=%t", model.FormatDate(date), completed), func() (*model.MealPlan, error) {
		return a.assembler.SetCompleted(ctx, date, completed)
	})
}

func (a *App) SetNotes(ctx context.Context, date time.Time, notes string) (*model.MealPlan, error) {
	return mutate(ctx, a, model.FormatDate(date), func() (*model.MealPlan, error) {
		return a.assembler.SetNotes(ctx, date, notes)
	})
}

func (a *App) DeletePlan(ctx context.Context, date time.Time) error {
	_, err := mutate(ctx, a, model.FormatDate(date), func() (struct{}, error) {
		return struct{}{}, a.assembler.Delete(ctx, date)
	})
	return err
}

// Export and import

// Export writes every material, meal and plan to w.
func (a *App) Export(ctx context.Context, w io.Writer, format export.Format) error {
	doc, err := export.Build(ctx, a.db, a.clock)
	if err != nil {
		return err
	}
	return export.Encode(w, doc, format)
}

// Import reads a document from r and upserts its records. A partial import
// returns the summary of what was stored together with the error.
func (a *App) Import(ctx context.Context, r io.Reader, format export.Format) (export.Summary, error) {
	doc, err := export.Decode(r, format)
	if err != nil {
		return export.Summary{}, err
	}
	return mutate(ctx, a, string(format), func() (export.Summary, error) {
		return a.importer.Import(ctx, doc)
	})
}

// History returns the most recent recorded operations.
func (a *App) History(ctx context.Context, limit int) ([]*planner.OperationRecord, error) {
	return a.db.ListOperations(ctx, limit)
}

// Snapshots

// Backup uploads an encrypted snapshot of the store to the archive and
// returns its version, the ID of the latest recorded operation.
func (a *App) Backup(ctx context.Context) (int64, error) {
	if a.archive == nil {
		return 0, errors.New("no archive configured")
	}
	version, err := a.db.MaxOperationID(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	dir, err := a.snapshot()
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	if err := a.upload(dir, version); err != nil {
		return 0, err
	}
	return version, nil
}

// snapshot copies the store into a fresh temp directory and returns it.
func (a *App) snapshot() (string, error) {
	if !a.encryptor.IsConfigured() {
		return "", errors.New("encryption keys are not set up: run 'mealplan config keys'")
	}
	dir, err := os.MkdirTemp("", "mealplan-snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	if err := a.db.BackupTo(filepath.Join(dir, SnapshotName)); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("backing up database: %w", err)
	}
	return dir, nil
}

// upload encrypts the snapshot in dir and stores it with the given version.
func (a *App) upload(dir string, version int64) error {
	in, err := os.Open(filepath.Join(dir, SnapshotName))
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	sealedPath := filepath.Join(dir, SnapshotName+".sealed")
	out, err := os.Create(sealedPath)
	if err != nil {
		return fmt.Errorf("creating sealed snapshot: %w", err)
	}
	defer out.Close()

	if err := a.encryptor.Encrypt(in, out); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	size, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("sizing sealed snapshot: %w", err)
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding sealed snapshot: %w", err)
	}

	if err := a.archive.PutSnapshot(a.cfg.ProfileID, SnapshotName, out, size, version); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	a.logger.Info("snapshot archived", "version", version, "size", size)
	return nil
}

// Close finalizes the operation and closes all resources.
// For persisted operations with auto_backup enabled, the store is
// snapshotted and uploaded before the database is closed.
func (a *App) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	ctx := context.Background()

	var snapshotDir string
	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status, a.clock.Now()); err != nil {
			keep(fmt.Errorf("finishing operation: %w", err))
		}
		if a.cfg.Archive.AutoBackup && a.archive != nil && a.op.Status == StatusSuccess {
			dir, err := a.snapshot()
			keep(err)
			snapshotDir = dir
		}
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if snapshotDir != "" {
		keep(a.upload(snapshotDir, a.op.ID))
		os.RemoveAll(snapshotDir)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

func parseMealType(s string) (model.MealType, error) {
	mt, err := model.ParseMealType(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
	}
	return mt, nil
}
