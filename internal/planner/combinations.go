package planner

import (
	"math/rand/v2"
	"slices"
	"sort"
	"strings"

	"mealplan-go/internal/model"
)

// candidate is one combination of materials considered for a meal.
type candidate struct {
	materials []model.Material
	groupsHit int
	primary   int
	score     int
	jitter    float64
	key       string
}

// comboKey identifies a material set independent of order.
func comboKey(materials []model.Material) string {
	ids := make([]string, len(materials))
	for i, m := range materials {
		ids[i] = m.ID
	}
	slices.Sort(ids)
	return strings.Join(ids, "+")
}

// enumerate builds every combination allowed by rule from pool, with the
// required materials forced into their groups. Pool order within a group is
// shuffled by rng and cut to maxPerGroup before subsets are taken; the
// cartesian product stops at limit candidates.
func enumerate(rule mealRule, pool, required []model.Material, rng *rand.Rand, maxPerGroup, limit int) []candidate {
	forced := make([][]model.Material, len(rule.groups))
	requiredIDs := make(map[string]bool, len(required))
	for _, m := range required {
		gi := rule.groupFor(m.Category)
		if gi < 0 || requiredIDs[m.ID] {
			continue
		}
		forced[gi] = append(forced[gi], m)
		requiredIDs[m.ID] = true
	}

	options := make([][]model.Material, len(rule.groups))
	for _, m := range pool {
		if requiredIDs[m.ID] {
			continue
		}
		if gi := rule.groupFor(m.Category); gi >= 0 {
			options[gi] = append(options[gi], m)
		}
	}

	choices := make([][][]model.Material, len(rule.groups))
	for gi, g := range rule.groups {
		opts := options[gi]
		rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		if len(opts) > maxPerGroup {
			opts = opts[:maxPerGroup]
		}

		lo := max(g.min-len(forced[gi]), 0)
		hi := g.max - len(forced[gi])
		for k := lo; k <= hi && k <= len(opts); k++ {
			for _, subset := range subsets(opts, k) {
				choice := append(slices.Clone(forced[gi]), subset...)
				choices[gi] = append(choices[gi], choice)
			}
		}
		if len(choices[gi]) == 0 {
			return nil
		}
	}

	var out []candidate
	var walk func(gi int, acc []model.Material, groupsHit, primary int) bool
	walk = func(gi int, acc []model.Material, groupsHit, primary int) bool {
		if gi == len(rule.groups) {
			if len(acc) == 0 {
				return true
			}
			out = append(out, candidate{
				materials: slices.Clone(acc),
				groupsHit: groupsHit,
				primary:   primary,
			})
			return len(out) < limit
		}
		for _, choice := range choices[gi] {
			hit, prim := groupsHit, primary
			if len(choice) > 0 {
				hit++
				if rule.groups[gi].primary {
					prim += len(choice)
				}
			}
			if !walk(gi+1, append(acc, choice...), hit, prim) {
				return false
			}
		}
		return true
	}
	walk(0, nil, 0, 0)
	return out
}

// subsets returns every k-element subset of items, preserving item order.
func subsets(items []model.Material, k int) [][]model.Material {
	if k == 0 {
		return [][]model.Material{nil}
	}
	var out [][]model.Material
	var pick func(start int, acc []model.Material)
	pick = func(start int, acc []model.Material) {
		if len(acc) == k {
			out = append(out, slices.Clone(acc))
			return
		}
		for i := start; i <= len(items)-(k-len(acc)); i++ {
			pick(i+1, append(acc, items[i]))
		}
	}
	pick(0, nil)
	return out
}

// rank scores candidates and orders them best first.
//
// score = 10*groups covered + 3*distinct categories + 2*primary picks
// - total estimated preparation minutes / 10
//
// Ties fall to a seeded jitter, then to the material-set key.
func rank(cands []candidate, rng *rand.Rand) {
	for i := range cands {
		c := &cands[i]
		cats := make(map[model.Category]bool)
		prep := 0
		for _, m := range c.materials {
			cats[m.Category] = true
			prep += prepMinutes[m.Category]
		}
		c.score = 10*c.groupsHit + 3*len(cats) + 2*c.primary - prep/10
		c.jitter = rng.Float64()
		c.key = comboKey(c.materials)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.jitter != b.jitter {
			return a.jitter > b.jitter
		}
		return a.key < b.key
	})
}

// selectTop picks up to count distinct candidates. Candidates whose key is in
// avoid are only used once every other candidate has been taken.
func selectTop(ranked []candidate, count int, avoid map[string]bool) []candidate {
	seen := make(map[string]bool)
	var picked, deferred []candidate
	for _, c := range ranked {
		if seen[c.key] {
			continue
		}
		seen[c.key] = true
		if avoid[c.key] {
			deferred = append(deferred, c)
			continue
		}
		picked = append(picked, c)
		if len(picked) == count {
			return picked
		}
	}
	for _, c := range deferred {
		if len(picked) == count {
			break
		}
		picked = append(picked, c)
	}
	return picked
}
