package planner

import (
	"fmt"
	"strings"

	"mealplan-go/internal/model"
)

// categoryGroup is one slot of a meal's category mix. A combination picks
// between min and max materials whose category is listed.
type categoryGroup struct {
	name       string
	categories []model.Category
	min, max   int
	primary    bool
}

func (g categoryGroup) accepts(c model.Category) bool {
	for _, gc := range g.categories {
		if gc == c {
			return true
		}
	}
	return false
}

// mealRule is the category mix for one meal type. Groups within a rule never
// share a category.
type mealRule struct {
	groups []categoryGroup
	suffix string
}

// groupFor returns the index of the group accepting c, or -1.
func (r mealRule) groupFor(c model.Category) int {
	for i, g := range r.groups {
		if g.accepts(c) {
			return i
		}
	}
	return -1
}

var proteins = []model.Category{model.CategoryMeat, model.CategorySeafood, model.CategoryPoultry}

var mealRules = map[model.MealType]mealRule{
	model.Breakfast: {
		suffix: "Breakfast Bowl",
		groups: []categoryGroup{
			{name: "base", categories: []model.Category{model.CategoryGrains, model.CategoryDairy}, min: 1, max: 2, primary: true},
			{name: "extra", categories: []model.Category{model.CategoryVegetables, model.CategoryPoultry}, min: 0, max: 1},
			{name: "seasoning", categories: []model.Category{model.CategorySpices}, min: 0, max: 1},
		},
	},
	model.Lunch: {
		suffix: "Lunch Plate",
		groups: []categoryGroup{
			{name: "protein", categories: proteins, min: 0, max: 1, primary: true},
			{name: "base", categories: []model.Category{model.CategoryGrains, model.CategoryVegetables}, min: 1, max: 2},
			{name: "seasoning", categories: []model.Category{model.CategorySpices}, min: 0, max: 1},
		},
	},
	model.Dinner: {
		suffix: "Dinner",
		groups: []categoryGroup{
			{name: "protein", categories: proteins, min: 0, max: 1, primary: true},
			{name: "sides", categories: []model.Category{model.CategoryVegetables, model.CategoryGrains}, min: 1, max: 2},
			{name: "seasoning", categories: []model.Category{model.CategorySpices}, min: 0, max: 1},
		},
	},
	model.Snack: {
		suffix: "Snack",
		groups: []categoryGroup{
			{name: "base", categories: []model.Category{model.CategoryDairy, model.CategoryVegetables, model.CategoryGrains}, min: 1, max: 2, primary: true},
		},
	},
}

// Per-category estimates used when materializing a generated meal.
var (
	prepMinutes = map[model.Category]int{
		model.CategoryMeat:       30,
		model.CategorySeafood:    15,
		model.CategoryPoultry:    20,
		model.CategoryVegetables: 10,
		model.CategoryGrains:     15,
		model.CategoryDairy:      5,
		model.CategorySpices:     0,
	}
	caloriesPerPortion = map[model.Category]int{
		model.CategoryMeat:       250,
		model.CategorySeafood:    180,
		model.CategoryPoultry:    220,
		model.CategoryVegetables: 40,
		model.CategoryGrains:     200,
		model.CategoryDairy:      120,
		model.CategorySpices:     5,
	}
)

// restriction excludes materials from generation.
type restriction struct {
	tag        string
	categories []model.Category
	word       string // set for "no-<word>" restrictions
}

var restrictionTable = map[string][]model.Category{
	"vegetarian":  proteins,
	"vegan":       {model.CategoryMeat, model.CategorySeafood, model.CategoryPoultry, model.CategoryDairy},
	"pescatarian": {model.CategoryMeat, model.CategoryPoultry},
	"dairy-free":  {model.CategoryDairy},
	"gluten-free": {model.CategoryGrains},
}

// DietaryRestrictions lists the named restrictions understood by the
// generator. Any "no-<ingredient>" tag is accepted as well.
func DietaryRestrictions() []string {
	return []string{"vegetarian", "vegan", "pescatarian", "dairy-free", "gluten-free"}
}

func parseRestrictions(tags []string) ([]restriction, error) {
	var out []restriction
	for _, tag := range model.NormalizeTags(tags) {
		if cats, ok := restrictionTable[tag]; ok {
			out = append(out, restriction{tag: tag, categories: cats})
			continue
		}
		if word, ok := strings.CutPrefix(tag, "no-"); ok && word != "" {
			out = append(out, restriction{tag: tag, word: word})
			continue
		}
		return nil, fmt.Errorf("dietary restriction %q: %w", tag, model.ErrUnknownEnumValue)
	}
	return out, nil
}

func (r restriction) excludes(m model.Material) bool {
	if r.word != "" {
		return strings.Contains(strings.ToLower(m.Name), r.word)
	}
	for _, c := range r.categories {
		if m.Category == c {
			return true
		}
	}
	return false
}

func excludedByAny(rs []restriction, m model.Material) (string, bool) {
	for _, r := range rs {
		if r.excludes(m) {
			return r.tag, true
		}
	}
	return "", false
}
