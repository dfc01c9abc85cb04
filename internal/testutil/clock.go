package testutil

import (
	"fmt"
	"sync"
	"time"

	"mealplan-go/internal/planner"
)

var (
	_ planner.Clock       = (*StubClock)(nil)
	_ planner.IDGenerator = (*StubIDGenerator)(nil)
)

// StubClock is a planner.Clock that only moves when told to.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock is set to Monday 2024-01-15 10:30 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StubIDGenerator hands out "id-1", "id-2", ... in call order.
type StubIDGenerator struct {
	mu     sync.Mutex
	issued int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return fmt.Sprintf("id-%d", g.issued)
}

// Issued reports how many IDs have been handed out.
func (g *StubIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued
}
