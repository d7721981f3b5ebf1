package signals

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/answerscope/answerscope/internal/utils"
	"github.com/tidwall/gjson"
)

const (
	maxStructuredBlocks    = 8
	maxStructuredBlockSize = 200 * 1024
)

type structuredData struct {
	types         []string
	author        string
	datePublished string
	dateModified  string
}

// extractStructuredData mines application/ld+json blocks. Block count and size
// are capped to bound parse time; malformed JSON is logged and skipped.
func extractStructuredData(doc *goquery.Document, pageURL string) structuredData {
	var sd structuredData
	seen := make(map[string]bool)
	blocks := 0

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if blocks >= maxStructuredBlocks {
			return false
		}
		blocks++

		raw := s.Text()
		if len(raw) > maxStructuredBlockSize {
			utils.Log.Warnf("Skipping oversized JSON-LD block on %s (%d bytes)", pageURL, len(raw))
			return true
		}
		if !gjson.Valid(raw) {
			utils.Log.Debugf("Skipping malformed JSON-LD block on %s", pageURL)
			return true
		}
		walkSchema(gjson.Parse(raw), &sd, seen)
		return true
	})

	sort.Strings(sd.types)
	return sd
}

// walkSchema recursively collects @type values and the first non-empty
// author/datePublished/dateModified. Arrays, @graph, mainEntity and
// itemListElement nestings are all descended into.
func walkSchema(node gjson.Result, sd *structuredData, seen map[string]bool) {
	if node.IsArray() {
		node.ForEach(func(_, item gjson.Result) bool {
			walkSchema(item, sd, seen)
			return true
		})
		return
	}
	if !node.IsObject() {
		return
	}

	collectTypes(node.Get("@type"), sd, seen)

	if sd.author == "" {
		sd.author = schemaName(node.Get("author"))
	}
	if sd.datePublished == "" {
		sd.datePublished = strings.TrimSpace(node.Get("datePublished").String())
	}
	if sd.dateModified == "" {
		sd.dateModified = strings.TrimSpace(node.Get("dateModified").String())
	}

	for _, key := range []string{"@graph", "mainEntity", "itemListElement", "item"} {
		if child := node.Get(key); child.Exists() {
			walkSchema(child, sd, seen)
		}
	}
}

func collectTypes(t gjson.Result, sd *structuredData, seen map[string]bool) {
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			sd.types = append(sd.types, v)
		}
	}
	if t.IsArray() {
		t.ForEach(func(_, item gjson.Result) bool {
			add(item.String())
			return true
		})
		return
	}
	if t.Type == gjson.String {
		add(t.String())
	}
}

// schemaName resolves an author field that may be a string, an object with a
// name, or an array of either.
func schemaName(v gjson.Result) string {
	if !v.Exists() {
		return ""
	}
	if v.Type == gjson.String {
		return strings.TrimSpace(v.String())
	}
	if v.IsArray() {
		name := ""
		v.ForEach(func(_, item gjson.Result) bool {
			name = schemaName(item)
			return name == ""
		})
		return name
	}
	if v.IsObject() {
		return strings.TrimSpace(v.Get("name").String())
	}
	return ""
}
