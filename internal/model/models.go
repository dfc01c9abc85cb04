package model

import (
	"slices"
	"strings"
	"time"
)

// Material is an ingredient the user may or may not have at hand.
// It is a value type: updates produce a new instance.
type Material struct {
	ID              string
	Name            string
	Category        Category
	NutritionalInfo []string
	IsAvailable     bool
	Description     string // optional
	ImageURL        string // optional
}

// WithAvailability returns a copy of m with the availability flag replaced.
func (m Material) WithAvailability(available bool) Material {
	out := m
	out.NutritionalInfo = slices.Clone(m.NutritionalInfo)
	out.IsAvailable = available
	return out
}

// SameAs reports whether m and other are the same entity.
func (m Material) SameAs(other Material) bool {
	return m.ID == other.ID
}

// Meal is a named dish composed of materials.
type Meal struct {
	ID              string
	Name            string
	Description     string
	Materials       []Material
	MealType        MealType
	PreparationTime int // minutes
	Instructions    string
	CreatedAt       time.Time
	Calories        *int
	Tags            []string // set semantics, see NormalizeTags
}

// SameAs reports whether m and other are the same entity.
func (m Meal) SameAs(other Meal) bool {
	return m.ID == other.ID
}

// MaterialIDs returns the IDs of the meal's materials in order.
func (m Meal) MaterialIDs() []string {
	ids := make([]string, len(m.Materials))
	for i, mat := range m.Materials {
		ids[i] = mat.ID
	}
	return ids
}

// HasTag reports whether the meal carries tag (case-insensitive).
func (m Meal) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return slices.Contains(m.Tags, tag)
}

// NormalizeTags lowercases, trims, deduplicates and sorts tags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// MealPlan assigns up to one meal per meal type to a calendar date.
// Meals always holds a key for every MealType; absent meals are nil.
type MealPlan struct {
	ID          string
	Date        time.Time // calendar date, see DateOf
	Meals       map[MealType]*Meal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Notes       string
	IsCompleted bool
}

// NewMealPlan creates an empty plan for date with all slots present.
func NewMealPlan(id string, date, now time.Time) *MealPlan {
	p := &MealPlan{
		ID:        id,
		Date:      DateOf(date),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Normalize()
	return p
}

// Normalize ensures every MealType key is present and the date carries no
// time-of-day component.
func (p *MealPlan) Normalize() {
	if p.Meals == nil {
		p.Meals = make(map[MealType]*Meal, 4)
	}
	for _, t := range MealTypes() {
		if _, ok := p.Meals[t]; !ok {
			p.Meals[t] = nil
		}
	}
	p.Date = DateOf(p.Date)
}

// SameAs reports whether p and other are the same entity.
func (p *MealPlan) SameAs(other *MealPlan) bool {
	return other != nil && p.ID == other.ID
}

// Meal returns the meal in slot t, or nil.
func (p *MealPlan) Meal(t MealType) *Meal {
	return p.Meals[t]
}

// SetMeal places meal in slot t and refreshes UpdatedAt.
func (p *MealPlan) SetMeal(t MealType, meal *Meal, now time.Time) {
	p.Normalize()
	p.Meals[t] = meal
	p.UpdatedAt = now
}

// ClearMeal empties slot t and refreshes UpdatedAt.
func (p *MealPlan) ClearMeal(t MealType, now time.Time) {
	p.SetMeal(t, nil, now)
}

// HasAnyMeals reports whether at least one slot is filled.
func (p *MealPlan) HasAnyMeals() bool {
	for _, m := range p.Meals {
		if m != nil {
			return true
		}
	}
	return false
}

// TotalPreparationTime sums preparation minutes over present meals.
func (p *MealPlan) TotalPreparationTime() int {
	total := 0
	for _, m := range p.Meals {
		if m != nil {
			total += m.PreparationTime
		}
	}
	return total
}

// TotalCalories sums calories over meals that know them. It returns nil when
// no present meal has a calorie count.
func (p *MealPlan) TotalCalories() *int {
	var total *int
	for _, m := range p.Meals {
		if m == nil || m.Calories == nil {
			continue
		}
		if total == nil {
			total = new(int)
		}
		*total += *m.Calories
	}
	return total
}

// IsToday reports whether the plan's date is the calendar date of now.
func (p *MealPlan) IsToday(now time.Time) bool {
	return DateOf(p.Date).Equal(DateOf(now))
}

// IsPast reports whether the plan's date is before the calendar date of now.
func (p *MealPlan) IsPast(now time.Time) bool {
	return DateOf(p.Date).Before(DateOf(now))
}

// IsFuture reports whether the plan's date is after the calendar date of now.
func (p *MealPlan) IsFuture(now time.Time) bool {
	return DateOf(p.Date).After(DateOf(now))
}
