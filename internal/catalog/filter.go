package catalog

import (
	"sort"
	"strconv"
	"strings"

	"reelvault/pkg/models"
)

// Category selects a fixed subset of the catalog, independent of the
// free-text query.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryUntagged  Category = "untagged"
	CategoryWatched   Category = "watched"
	CategoryUnwatched Category = "unwatched"
	CategoryFavorites Category = "favorites"
	CategoryTag       Category = "tag" // paired with FilterSpec.TagID
)

// FilterSpec is the active view criteria: a category plus a free-text
// query. It is transient state, never persisted.
type FilterSpec struct {
	Category Category `json:"category"`
	TagID    int64    `json:"tag_id,omitempty"` // only meaningful for CategoryTag
	Query    string   `json:"q,omitempty"`
}

// ParseCategory accepts the wire form of a category, including "tag:<id>".
// Unknown or empty values fall back to "all".
func ParseCategory(s string) FilterSpec {
	s = strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(s, "tag:"); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err == nil && id > 0 {
			return FilterSpec{Category: CategoryTag, TagID: id}
		}
		return FilterSpec{Category: CategoryAll}
	}
	switch Category(s) {
	case CategoryUntagged, CategoryWatched, CategoryUnwatched, CategoryFavorites:
		return FilterSpec{Category: Category(s)}
	default:
		return FilterSpec{Category: CategoryAll}
	}
}

// String renders the category in its wire form.
func (f FilterSpec) String() string {
	if f.Category == CategoryTag {
		return "tag:" + strconv.FormatInt(f.TagID, 10)
	}
	if f.Category == "" {
		return string(CategoryAll)
	}
	return string(f.Category)
}

func (f FilterSpec) matchesCategory(e models.Entry) bool {
	switch f.Category {
	case CategoryUntagged:
		return len(e.Tags) == 0
	case CategoryWatched:
		return e.Watched
	case CategoryUnwatched:
		return !e.Watched
	case CategoryFavorites:
		return e.Favorite
	case CategoryTag:
		return e.HasTag(f.TagID)
	default:
		return true
	}
}

// LessFunc orders the filtered output.
type LessFunc func(a, b models.Entry) bool

// ByCreatedDesc is the default ordering: newest first, id as tiebreak so
// the sort is total.
func ByCreatedDesc(a, b models.Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Filter runs the full pipeline over entries: the query is tokenized on
// whitespace, each token classified as a tag token (it substring-matches
// some tag name) or a text token, and an entry survives only if
//
//   - for every tag token it has at least one tag whose name contains it,
//   - every text token occurs in its title, notes, path, or metadata blob,
//   - the category predicate holds.
//
// Tokens are ANDed; a tag token that matches no tag on an entry excludes
// the entry even if the token would also match its title. The input slice
// is never modified; the result is a fresh slice sorted by less
// (ByCreatedDesc when nil).
func Filter(entries []models.Entry, tags []models.Tag, spec FilterSpec, less LessFunc) []models.Entry {
	if less == nil {
		less = ByCreatedDesc
	}

	tagTokens, textTokens := classifyTokens(spec.Query, tags)

	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if !spec.matchesCategory(e) {
			continue
		}
		if !matchesTagTokens(e, tagTokens) {
			continue
		}
		if !matchesTextTokens(e, textTokens) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// classifyTokens splits the query and partitions tokens by whether any
// existing tag name contains them. Tag matching takes priority: a token
// matching both a tag and plain text is consumed as a tag constraint.
func classifyTokens(query string, tags []models.Tag) (tagTokens, textTokens []string) {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = strings.ToLower(t.Name)
	}

	for _, tok := range strings.Fields(query) {
		tok = strings.ToLower(tok)
		isTag := false
		for _, name := range names {
			if strings.Contains(name, tok) {
				isTag = true
				break
			}
		}
		if isTag {
			tagTokens = append(tagTokens, tok)
		} else {
			textTokens = append(textTokens, tok)
		}
	}
	return tagTokens, textTokens
}

func matchesTagTokens(e models.Entry, tokens []string) bool {
	for _, tok := range tokens {
		found := false
		for _, t := range e.Tags {
			if strings.Contains(strings.ToLower(t.Name), tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesTextTokens(e models.Entry, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	title := strings.ToLower(e.Title)
	notes := strings.ToLower(e.Notes)
	path := strings.ToLower(e.Path)
	meta := strings.ToLower(e.Meta)
	for _, tok := range tokens {
		if !strings.Contains(title, tok) &&
			!strings.Contains(notes, tok) &&
			!strings.Contains(path, tok) &&
			!strings.Contains(meta, tok) {
			return false
		}
	}
	return true
}
