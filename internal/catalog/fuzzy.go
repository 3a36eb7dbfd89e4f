package catalog

import (
	"sort"
	"strings"

	"reelvault/pkg/models"
)

// Score rates how well text matches a short query. 0 means no match and
// callers should drop the candidate. Tiers, best first:
//
//	exact (case-insensitive)    1000
//	prefix                      500..600, shorter text scores higher
//	substring                   200..250, earlier occurrence scores higher
//	in-order subsequence        0..~100 plus a bonus for consecutive runs
//
// A query whose characters cannot all be found in order scores 0.
func Score(text, query string) int {
	t := strings.ToLower(text)
	q := strings.ToLower(query)
	if len(q) == 0 || len(t) == 0 {
		return 0
	}

	if t == q {
		return 1000
	}
	if strings.HasPrefix(t, q) {
		return 500 + 100*len(q)/len(t)
	}
	if idx := strings.Index(t, q); idx >= 0 {
		return 200 + (len(t)-idx)*50/len(t)
	}
	return subsequenceScore(t, q)
}

func subsequenceScore(t, q string) int {
	qi := 0
	first, last := -1, -1
	prev := -2
	run, maxRun := 0, 0

	for i := 0; i < len(t) && qi < len(q); i++ {
		if t[i] != q[qi] {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		if i == prev+1 {
			run++
		} else {
			run = 1
		}
		if run > maxRun {
			maxRun = run
		}
		prev = i
		qi++
	}

	if qi < len(q) {
		return 0
	}

	// Penalize matches spread across the text relative to query length.
	spread := last - first + 1
	penalty := (spread - len(q)) * 10 / len(q)

	score := 100 - penalty + 10*maxRun
	if score < 0 {
		return 0
	}
	return score
}

// RankTags returns the tags matching query ordered by descending score,
// ties broken newest-first. An empty query skips scoring entirely and
// returns every tag newest-first.
func RankTags(tags []models.Tag, query string) []models.Tag {
	query = strings.TrimSpace(query)

	if query == "" {
		out := make([]models.Tag, len(tags))
		copy(out, tags)
		sort.SliceStable(out, func(i, j int) bool { return tagNewer(out[i], out[j]) })
		return out
	}

	type scored struct {
		tag   models.Tag
		score int
	}
	ranked := make([]scored, 0, len(tags))
	for _, t := range tags {
		if s := Score(t.Name, query); s > 0 {
			ranked = append(ranked, scored{tag: t, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return tagNewer(ranked[i].tag, ranked[j].tag)
	})

	out := make([]models.Tag, len(ranked))
	for i, r := range ranked {
		out[i] = r.tag
	}
	return out
}

func tagNewer(a, b models.Tag) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
