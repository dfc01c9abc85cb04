package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mealplan-go/internal/model"
)

// Sentinel errors used across layers. Callers test with errors.Is.
var (
	ErrNotFound              = errors.New("not found")
	ErrInsufficientMaterials = errors.New("no available materials")
	ErrNoValidCombination    = errors.New("no valid material combination")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrPersistence           = errors.New("persistence failure")
	ErrMealInUse             = errors.New("meal is referenced by a meal plan")
	ErrMaterialInUse         = errors.New("material is referenced by a meal")
	ErrPlanDateConflict      = errors.New("another meal plan already exists for this date")
	ErrInvalidInput          = errors.New("invalid input")
)

// GenerationError reports which meal type (and date, when generating plans)
// a generation failure belongs to.
type GenerationError struct {
	MealType model.MealType
	Date     time.Time // zero when not generating for a date
	Detail   string
	Err      error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generating %s", e.MealType)
	if !e.Date.IsZero() {
		fmt.Fprintf(&b, " for %s", model.FormatDate(e.Date))
	}
	b.WriteString(": ")
	if e.Detail != "" {
		b.WriteString(e.Detail)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DateFailure is a single failed date within a SaveRange call.
type DateFailure struct {
	Date time.Time
	Err  error
}

// SaveRangeError lists the dates SaveRange could not persist. Dates not
// listed were saved.
type SaveRangeError struct {
	Failures []DateFailure
}

func (e *SaveRangeError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", model.FormatDate(f.Date), f.Err)
	}
	return fmt.Sprintf("saving %d meal plan(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Dates returns the failed dates in the order they were attempted.
func (e *SaveRangeError) Dates() []time.Time {
	out := make([]time.Time, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Date
	}
	return out
}

// Unwrap exposes every per-date error to errors.Is / errors.As.
func (e *SaveRangeError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}
