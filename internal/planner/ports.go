package planner

import (
	"context"
	"io"
	"time"

	"mealplan-go/internal/model"
)

// OperationRecord is a recorded CLI operation that mutated the store.
type OperationRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Operation  string
	Parameters string
	Status     string
}

// Database is the persistence backend for materials, meals and meal plans.
// Implementations translate storage errors into ErrPersistence and report
// missing records on update/delete as ErrNotFound.
type Database interface {
	// Material operations

	ListMaterials(ctx context.Context) ([]model.Material, error)

	// FindMaterial returns nil, nil when the material does not exist.
	FindMaterial(ctx context.Context, id string) (*model.Material, error)

	InsertMaterial(ctx context.Context, material model.Material) error
	UpdateMaterial(ctx context.Context, material model.Material) error

	// DeleteMaterial fails with ErrMaterialInUse while a stored meal uses it.
	DeleteMaterial(ctx context.Context, id string) error

	// Meal operations

	ListMeals(ctx context.Context) ([]model.Meal, error)
	ListMealsByType(ctx context.Context, mealType model.MealType) ([]model.Meal, error)

	// FindMeal returns nil, nil when the meal does not exist.
	FindMeal(ctx context.Context, id string) (*model.Meal, error)

	InsertMeal(ctx context.Context, meal model.Meal) error
	UpdateMeal(ctx context.Context, meal model.Meal) error

	// DeleteMeal fails with ErrMealInUse while a meal plan slot references it.
	DeleteMeal(ctx context.Context, id string) error

	// Meal plan operations

	// FindPlanByDate returns nil, nil when no plan exists for the date.
	FindPlanByDate(ctx context.Context, date time.Time) (*model.MealPlan, error)

	// ListPlans returns plans dated start..end inclusive, ordered by date.
	ListPlans(ctx context.Context, start, end time.Time) ([]*model.MealPlan, error)

	// SavePlan upserts the plan, every meal it references and its slots in a
	// single transaction.
	SavePlan(ctx context.Context, plan *model.MealPlan) error

	DeletePlan(ctx context.Context, id string) error

	// Operation history

	CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (*OperationRecord, error)
	FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error
	ListOperations(ctx context.Context, limit int) ([]*OperationRecord, error)
	MaxOperationID(ctx context.Context) (int64, error)

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// BackupTo writes a consistent snapshot of the store to destPath.
	BackupTo(destPath string) error

	Close() error
}

// Archive stores versioned snapshots of the local store.
// All operations stream through io.Reader/io.Writer.
type Archive interface {
	// PutSnapshot stores a named snapshot for a profile.
	// size is the number of bytes that will be read from r.
	PutSnapshot(profileID string, name string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the named snapshot for a profile to w.
	GetSnapshot(profileID string, name string, w io.Writer) error

	// GetSnapshotVersion returns 0 if no snapshot has been stored.
	GetSnapshotVersion(profileID string, name string) (int64, error)

	// ValidateSetup verifies that the archive is accessible.
	ValidateSetup() error
}

// Encryptor encrypts snapshots with a public key and unlocks the private key
// with a passphrase for restores.
type Encryptor interface {
	// Setup generates a key pair, stores the public key in plaintext and the
	// private key encrypted with passphrase.
	Setup(passphrase string) error

	Encrypt(r io.Reader, w io.Writer) error

	// Unlock returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
