package planner

import (
	"math/rand/v2"
	"testing"

	"mealplan-go/internal/model"
)

func mat(id string, c model.Category) model.Material {
	return model.Material{ID: id, Name: id, Category: c, IsAvailable: true}
}

func TestSubsets(t *testing.T) {
	items := []model.Material{mat("a", model.CategoryGrains), mat("b", model.CategoryGrains), mat("c", model.CategoryGrains), mat("d", model.CategoryGrains)}

	tests := []struct {
		k    int
		want int
	}{
		{0, 1},
		{1, 4},
		{2, 6},
		{4, 1},
		{5, 0},
	}
	for _, tt := range tests {
		if got := subsets(items, tt.k); len(got) != tt.want {
			t.Errorf("subsets(4, %d) = %d subsets, want %d", tt.k, len(got), tt.want)
		}
	}
}

func TestComboKey_OrderIndependent(t *testing.T) {
	a := []model.Material{mat("rice", model.CategoryGrains), mat("chicken", model.CategoryPoultry)}
	b := []model.Material{mat("chicken", model.CategoryPoultry), mat("rice", model.CategoryGrains)}
	if comboKey(a) != comboKey(b) {
		t.Errorf("comboKey differs by order: %q vs %q", comboKey(a), comboKey(b))
	}
}

func TestEnumerate_RespectsRule(t *testing.T) {
	pool := []model.Material{
		mat("chicken", model.CategoryPoultry),
		mat("salmon", model.CategorySeafood),
		mat("rice", model.CategoryGrains),
		mat("broccoli", model.CategoryVegetables),
		mat("milk", model.CategoryDairy),
	}
	rule := mealRules[model.Dinner]
	cands := enumerate(rule, pool, nil, rand.New(rand.NewPCG(1, 2)), DefaultMaxPerGroup, DefaultCandidateLimit)
	if len(cands) == 0 {
		t.Fatal("enumerate() returned no candidates")
	}
	meatless := 0
	for _, c := range cands {
		proteins := 0
		for _, m := range c.materials {
			switch m.Category {
			case model.CategoryDairy:
				t.Errorf("dinner candidate %s contains dairy", comboKey(c.materials))
			case model.CategoryPoultry, model.CategorySeafood, model.CategoryMeat:
				proteins++
			}
		}
		if proteins > 1 {
			t.Errorf("dinner candidate %s has %d proteins, want at most 1", comboKey(c.materials), proteins)
		}
		if proteins == 0 {
			meatless++
		}
	}
	if meatless == 0 {
		t.Error("enumerate() produced no dinner without protein")
	}

	limited := enumerate(rule, pool, nil, rand.New(rand.NewPCG(1, 2)), DefaultMaxPerGroup, 2)
	if len(limited) != 2 {
		t.Errorf("enumerate() with limit 2 returned %d candidates", len(limited))
	}
}

func TestEnumerate_RequiredOnce(t *testing.T) {
	rice := mat("rice", model.CategoryGrains)
	pool := []model.Material{rice, mat("broccoli", model.CategoryVegetables), mat("salmon", model.CategorySeafood)}

	cands := enumerate(mealRules[model.Lunch], pool, []model.Material{rice, rice}, rand.New(rand.NewPCG(1, 2)), DefaultMaxPerGroup, DefaultCandidateLimit)
	if len(cands) == 0 {
		t.Fatal("enumerate() returned no candidates")
	}
	for _, c := range cands {
		n := 0
		for _, m := range c.materials {
			if m.ID == "rice" {
				n++
			}
		}
		if n != 1 {
			t.Errorf("candidate %s has rice %d times, want 1", comboKey(c.materials), n)
		}
	}
}

func TestSelectTop_AvoidsUsedCombinations(t *testing.T) {
	ranked := []candidate{{key: "a"}, {key: "a"}, {key: "b"}, {key: "c"}}

	got := selectTop(ranked, 2, map[string]bool{"a": true})
	if len(got) != 2 || got[0].key != "b" || got[1].key != "c" {
		t.Errorf("selectTop() = %v, want [b c]", got)
	}

	got = selectTop(ranked, 3, map[string]bool{"a": true})
	if len(got) != 3 || got[2].key != "a" {
		t.Errorf("selectTop() falls back to avoided keys last, got %v", got)
	}
}

func TestParseRestrictions(t *testing.T) {
	rs, err := parseRestrictions([]string{"Vegan", "no-peanut", "vegan"})
	if err != nil {
		t.Fatalf("parseRestrictions() error = %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("parseRestrictions() = %d restrictions, want 2", len(rs))
	}
	if !rs[0].excludes(mat("Peanut Butter", model.CategorySpices)) && !rs[1].excludes(mat("Peanut Butter", model.CategorySpices)) {
		t.Error("no-peanut does not exclude Peanut Butter")
	}

	if _, err := parseRestrictions([]string{"no-"}); err == nil {
		t.Error("parseRestrictions(no-) error = nil, want error")
	}
}
