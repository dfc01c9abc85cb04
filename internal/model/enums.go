package model

import (
	"errors"
	"fmt"
)

// ErrUnknownEnumValue is returned when a persisted string does not map to a
// known enum member.
var ErrUnknownEnumValue = errors.New("unknown enum value")

// Category classifies a material.
type Category int

const (
	CategoryMeat Category = iota
	CategorySeafood
	CategoryPoultry
	CategoryVegetables
	CategoryGrains
	CategoryDairy
	CategorySpices
)

// categoryNames is the single source of truth for the persisted form of a
// Category. categoryByName is derived from it.
var categoryNames = map[Category]string{
	CategoryMeat:       "meat",
	CategorySeafood:    "seafood",
	CategoryPoultry:    "poultry",
	CategoryVegetables: "vegetables",
	CategoryGrains:     "grains",
	CategoryDairy:      "dairy",
	CategorySpices:     "spices",
}

var categoryByName = invert(categoryNames)

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryMeat, CategorySeafood, CategoryPoultry, CategoryVegetables,
		CategoryGrains, CategoryDairy, CategorySpices,
	}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is a declared category.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory maps a persisted string back to a Category.
func ParseCategory(s string) (Category, error) {
	c, ok := categoryByName[s]
	if !ok {
		return 0, fmt.Errorf("category %q: %w", s, ErrUnknownEnumValue)
	}
	return c, nil
}

func (c Category) MarshalText() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", int(c), ErrUnknownEnumValue)
	}
	return []byte(name), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MealType is the calendar slot a meal occupies.
type MealType int

const (
	Breakfast MealType = iota
	Lunch
	Dinner
	Snack
)

var mealTypeNames = map[MealType]string{
	Breakfast: "breakfast",
	Lunch:     "lunch",
	Dinner:    "dinner",
	Snack:     "snack",
}

var mealTypeByName = invert(mealTypeNames)

// MealTypes lists every meal type in the order they occur during a day.
func MealTypes() []MealType {
	return []MealType{Breakfast, Lunch, Dinner, Snack}
}

func (t MealType) String() string {
	if name, ok := mealTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MealType(%d)", int(t))
}

// Valid reports whether t is a declared meal type.
func (t MealType) Valid() bool {
	_, ok := mealTypeNames[t]
	return ok
}

// ParseMealType maps a persisted string back to a MealType.
func ParseMealType(s string) (MealType, error) {
	t, ok := mealTypeByName[s]
	if !ok {
		return 0, fmt.Errorf("meal type %q: %w", s, ErrUnknownEnumValue)
	}
	return t, nil
}

func (t MealType) MarshalText() ([]byte, error) {
	name, ok := mealTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("meal type %d: %w", int(t), ErrUnknownEnumValue)
	}
	return []byte(name), nil
}

func (t *MealType) UnmarshalText(text []byte) error {
	parsed, err := ParseMealType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
