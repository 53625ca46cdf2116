package catalog

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"site-content-api/internal/model"
	"site-content-api/internal/store"
	"site-content-api/internal/validate"
)

// wordsPerMinute drives the blog read-time estimate.
const wordsPerMinute = 200

func joinEnum(values []string) string {
	quoted := make([]string, len(values))
	for i, s := range values {
		if strings.ContainsRune(s, ' ') {
			s = "'" + s + "'"
		}
		quoted[i] = s
	}
	return strings.Join(quoted, " ")
}

// roundMoney rounds the numbers at paths half-to-even to two places.
func roundMoney(paths ...string) func(map[string]any) {
	return func(doc map[string]any) {
		for _, p := range paths {
			parent, key := walk(doc, p)
			if parent == nil {
				continue
			}
			f, ok := parent[key].(float64)
			if !ok {
				continue
			}
			parent[key] = decimal.NewFromFloat(f).RoundBank(2).InexactFloat64()
		}
	}
}

// dateOnly reduces a parseable date or timestamp at field to YYYY-MM-DD.
// Unparseable values are left for validation to reject.
func dateOnly(field string) func(map[string]any) {
	return func(doc map[string]any) {
		s, ok := doc[field].(string)
		if !ok {
			return
		}
		if d, ok := validate.ParseDate(s); ok {
			doc[field] = d.Format(time.DateOnly)
		}
	}
}

// walk returns the object holding the last segment of a dotted path.
func walk(doc map[string]any, path string) (map[string]any, string) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return nil, ""
		}
		cur = next
	}
	return cur, parts[len(parts)-1]
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases title and joins its alphanumeric runs with dashes.
func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// ReadTime estimates minutes to read content, at least one.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	return int(math.Max(1, math.Ceil(float64(words)/wordsPerMinute)))
}

type publisher struct {
	clock store.Clock
}

func (p publisher) beforeCreate(_ context.Context, who model.Identity, doc map[string]any) error {
	title, _ := doc["title"].(string)
	doc["slug"] = Slugify(title)
	if _, ok := doc["author"]; !ok && who.Name != "" {
		doc["author"] = who.Name
	}
	if _, ok := doc["readTime"]; !ok {
		content, _ := doc["content"].(string)
		doc["readTime"] = float64(ReadTime(content))
	}
	p.stamp(doc, doc)
	return nil
}

func (p publisher) beforeUpdate(_ context.Context, _ model.Identity, merged, patch map[string]any) error {
	if title, ok := patch["title"].(string); ok {
		patch["slug"] = Slugify(title)
	}
	if content, ok := patch["content"].(string); ok {
		if _, explicit := patch["readTime"]; !explicit {
			patch["readTime"] = float64(ReadTime(content))
		}
	}
	p.stamp(merged, patch)
	return nil
}

// stamp mirrors status into isPublished and records the first publish time.
func (p publisher) stamp(doc, out map[string]any) {
	published := doc["status"] == "published"
	out["isPublished"] = published
	if _, done := doc["publishedAt"]; published && !done {
		out["publishedAt"] = p.clock().Format(time.RFC3339)
	}
}
