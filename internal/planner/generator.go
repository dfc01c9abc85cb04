package planner

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"mealplan-go/internal/model"
)

// Generator defaults.
const (
	DefaultMealCount      = 3
	DefaultCandidateLimit = 500
	DefaultMaxPerGroup    = 6
	maxRangeDays          = 366
)

// GeneratorOptions tunes candidate enumeration. Zero values take defaults.
type GeneratorOptions struct {
	Seed           uint64
	CandidateLimit int
	MaxPerGroup    int
	DefaultCount   int
}

// GenerateRequest describes a single GenerateMeals call.
type GenerateRequest struct {
	MealType     model.MealType
	Materials    []model.Material
	Required     []model.Material
	Restrictions []string
	Count        int       // 0 means the configured default
	Date         time.Time // optional; varies the result per day
}

// Generator turns available materials into candidate meals and plans.
// Output is reproducible for equal inputs, options and clock/ID sources.
type Generator struct {
	opts   GeneratorOptions
	clock  Clock
	idgen  IDGenerator
	logger Logger
}

// NewGenerator creates a Generator with the provided dependencies.
func NewGenerator(opts GeneratorOptions, clock Clock, idgen IDGenerator, logger Logger) *Generator {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.MaxPerGroup <= 0 {
		opts.MaxPerGroup = DefaultMaxPerGroup
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = DefaultMealCount
	}
	return &Generator{opts: opts, clock: clock, idgen: idgen, logger: logger}
}

// GenerateMeals proposes up to req.Count distinct meals of req.MealType.
// It returns fewer meals than requested when fewer combinations exist, and
// fails only when there is nothing to propose.
func (g *Generator) GenerateMeals(req GenerateRequest) ([]model.Meal, error) {
	return g.generate(req, nil)
}

// GenerateCustomMeal builds one meal containing every required material,
// filling the rest of the category mix from materials.
func (g *Generator) GenerateCustomMeal(required, materials []model.Material, mealType model.MealType, restrictions []string) (*model.Meal, error) {
	if len(required) == 0 {
		return nil, &GenerationError{MealType: mealType, Detail: "no required materials given", Err: ErrInvalidInput}
	}
	meals, err := g.generate(GenerateRequest{
		MealType:     mealType,
		Materials:    materials,
		Required:     required,
		Restrictions: restrictions,
		Count:        1,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &meals[0], nil
}

// GenerateDailyPlan generates one meal for every meal type on date. Materials
// excluded by restrictions are left out of every slot.
func (g *Generator) GenerateDailyPlan(date time.Time, materials []model.Material, restrictions []string) (*model.MealPlan, error) {
	plan := model.NewMealPlan(g.idgen.New(), date, g.clock.Now())
	used := make(map[string]bool)
	for _, mt := range model.MealTypes() {
		meals, err := g.generate(GenerateRequest{
			MealType:     mt,
			Materials:    materials,
			Restrictions: restrictions,
			Count:        1,
			Date:         plan.Date,
		}, used)
		if err != nil {
			return nil, err
		}
		meal := meals[0]
		plan.Meals[mt] = &meal
		used[comboKey(meal.Materials)] = true
	}
	g.logger.Debug("daily plan generated", "date", model.FormatDate(plan.Date))
	return plan, nil
}

// GenerateWeeklyPlan generates seven consecutive daily plans from start.
func (g *Generator) GenerateWeeklyPlan(start time.Time, materials []model.Material, restrictions []string) ([]*model.MealPlan, error) {
	if start.IsZero() {
		return nil, fmt.Errorf("weekly plan without a start date: %w", ErrInvalidDateRange)
	}
	return g.GenerateRange(start, model.DateOf(start).AddDate(0, 0, 6), materials, restrictions)
}

// GenerateMonthlyPlan generates a daily plan for every date in year/month.
func (g *Generator) GenerateMonthlyPlan(year int, month time.Month, materials []model.Material, restrictions []string) ([]*model.MealPlan, error) {
	first, last, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}
	return g.GenerateRange(first, last, materials, restrictions)
}

func monthRange(year int, month time.Month) (time.Time, time.Time, error) {
	if month < time.January || month > time.December || year < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("month %d-%02d: %w", year, int(month), ErrInvalidDateRange)
	}
	first, last := model.MonthBounds(year, month)
	return first, last, nil
}

// GenerateRange generates a daily plan for every date from start to end
// inclusive.
func (g *Generator) GenerateRange(start, end time.Time, materials []model.Material, restrictions []string) ([]*model.MealPlan, error) {
	days, err := rangeDays(start, end)
	if err != nil {
		return nil, err
	}
	plans := make([]*model.MealPlan, 0, len(days))
	for _, day := range days {
		plan, err := g.GenerateDailyPlan(day, materials, restrictions)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	g.logger.Info("meal plans generated", "start", model.FormatDate(days[0]), "days", len(days))
	return plans, nil
}

func rangeDays(start, end time.Time) ([]time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("range needs both a start and an end date: %w", ErrInvalidDateRange)
	}
	start, end = model.DateOf(start), model.DateOf(end)
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s: %w",
			model.FormatDate(end), model.FormatDate(start), ErrInvalidDateRange)
	}
	if n := int(end.Sub(start).Hours()/24) + 1; n > maxRangeDays {
		return nil, fmt.Errorf("range of %d days exceeds %d: %w", n, maxRangeDays, ErrInvalidDateRange)
	}
	return model.DaysBetween(start, end), nil
}

func (g *Generator) generate(req GenerateRequest, avoid map[string]bool) ([]model.Meal, error) {
	fail := func(detail string, err error) error {
		return &GenerationError{MealType: req.MealType, Date: req.Date, Detail: detail, Err: err}
	}

	rule, ok := mealRules[req.MealType]
	if !ok {
		return nil, fail("", fmt.Errorf("meal type %d: %w", int(req.MealType), model.ErrUnknownEnumValue))
	}
	restrictions, err := parseRestrictions(req.Restrictions)
	if err != nil {
		return nil, fail("", err)
	}

	count := req.Count
	if count <= 0 {
		count = g.opts.DefaultCount
	}

	var available []model.Material
	availableIDs := make(map[string]bool)
	for _, m := range req.Materials {
		if m.IsAvailable && !availableIDs[m.ID] {
			available = append(available, m)
			availableIDs[m.ID] = true
		}
	}
	if len(available) == 0 {
		return nil, fail("add or mark materials as available first", ErrInsufficientMaterials)
	}

	var pool []model.Material
	for _, m := range available {
		if _, excluded := excludedByAny(restrictions, m); !excluded {
			pool = append(pool, m)
		}
	}

	perGroup := make(map[int]int)
	var required []model.Material
	requiredIDs := make(map[string]bool, len(req.Required))
	for _, m := range req.Required {
		if requiredIDs[m.ID] {
			continue
		}
		requiredIDs[m.ID] = true
		required = append(required, m)
		if !availableIDs[m.ID] {
			return nil, fail(fmt.Sprintf("required material %q is not available", m.Name), ErrNoValidCombination)
		}
		if tag, excluded := excludedByAny(restrictions, m); excluded {
			return nil, fail(fmt.Sprintf("required material %q conflicts with %s", m.Name, tag), ErrNoValidCombination)
		}
		gi := rule.groupFor(m.Category)
		if gi < 0 {
			return nil, fail(fmt.Sprintf("%s material %q does not belong in a %s", m.Category, m.Name, req.MealType), ErrNoValidCombination)
		}
		perGroup[gi]++
		if perGroup[gi] > rule.groups[gi].max {
			return nil, fail(fmt.Sprintf("too many %s materials required", rule.groups[gi].name), ErrNoValidCombination)
		}
	}

	req.Required = required
	rng := rand.New(rand.NewPCG(g.opts.Seed, streamFor(req)))
	cands := enumerate(rule, pool, required, rng, g.opts.MaxPerGroup, g.opts.CandidateLimit)
	if len(cands) == 0 {
		return nil, fail("", ErrNoValidCombination)
	}
	rank(cands, rng)
	picked := selectTop(cands, count, avoid)

	meals := make([]model.Meal, len(picked))
	for i, c := range picked {
		meals[i] = g.materialize(req.MealType, rule, c.materials, restrictions)
	}
	g.logger.Debug("meals generated",
		"meal_type", req.MealType.String(), "candidates", len(cands), "returned", len(meals))
	return meals, nil
}

// streamFor derives the random stream from the request so that different
// meal types, dates and required sets draw different sequences.
func streamFor(req GenerateRequest) uint64 {
	h := fnv.New64a()
	h.Write([]byte(req.MealType.String()))
	if !req.Date.IsZero() {
		h.Write([]byte(model.FormatDate(req.Date)))
	}
	h.Write([]byte(comboKey(req.Required)))
	return h.Sum64()
}

func (g *Generator) materialize(mt model.MealType, rule mealRule, materials []model.Material, restrictions []restriction) model.Meal {
	names := make([]string, len(materials))
	prep, calories := 0, 0
	tags := []string{mt.String(), "generated"}
	for i, m := range materials {
		names[i] = m.Name
		prep += prepMinutes[m.Category]
		calories += caloriesPerPortion[m.Category]
		tags = append(tags, m.Category.String())
	}
	for _, r := range restrictions {
		tags = append(tags, r.tag)
	}

	return model.Meal{
		ID:              g.idgen.New(),
		Name:            mealName(names, rule.suffix),
		Description:     fmt.Sprintf("Generated %s using %s.", mt, strings.Join(names, ", ")),
		Materials:       materials,
		MealType:        mt,
		PreparationTime: prep,
		Instructions:    instructions(materials),
		CreatedAt:       g.clock.Now(),
		Calories:        &calories,
		Tags:            model.NormalizeTags(tags),
	}
}

func mealName(names []string, suffix string) string {
	var phrase string
	switch len(names) {
	case 1:
		phrase = names[0]
	case 2:
		phrase = names[0] + " with " + names[1]
	default:
		phrase = names[0] + " with " + strings.Join(names[1:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
	return phrase + " " + suffix
}

func instructions(materials []model.Material) string {
	var b strings.Builder
	step := 1
	names := make([]string, len(materials))
	for i, m := range materials {
		names[i] = m.Name
	}
	fmt.Fprintf(&b, "%d. Gather %s.\n", step, strings.Join(names, ", "))
	step++

	var seasoning []string
	for _, m := range materials {
		if m.Category == model.CategorySpices {
			seasoning = append(seasoning, m.Name)
			continue
		}
		if minutes := prepMinutes[m.Category]; minutes > 0 {
			fmt.Fprintf(&b, "%d. Prepare the %s (about %d min).\n", step, m.Name, minutes)
		} else {
			fmt.Fprintf(&b, "%d. Prepare the %s.\n", step, m.Name)
		}
		step++
	}
	if len(seasoning) > 0 {
		fmt.Fprintf(&b, "%d. Season with %s.\n", step, strings.Join(seasoning, ", "))
		step++
	}
	fmt.Fprintf(&b, "%d. Combine and serve.", step)
	return b.String()
}
