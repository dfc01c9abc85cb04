package app

import "time"

// Operation statuses recorded in the history table.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks the CLI command being run. Operations start in memory with
// ID=0; only commands that change the store persist them, which gives them an
// auto-increment ID that doubles as the snapshot version.
type Operation struct {
	ID         int64
	Name       string
	Parameters string
	Status     string
	StartedAt  time.Time
}

// NewOperation creates an in-memory operation that has not failed yet.
func NewOperation(name, parameters string, startedAt time.Time) *Operation {
	return &Operation{
		Name:       name,
		Parameters: parameters,
		Status:     StatusSuccess,
		StartedAt:  startedAt,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed. It is a no-op for a nil error.
func (op *Operation) Fail(err error) {
	if err != nil {
		op.Status = StatusError
	}
}
