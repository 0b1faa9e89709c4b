// Package profile loads and parses the institution profile: a
// free-text document with **heading**-delimited sections plus a
// structured JSON document of string lists keyed by category.
package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Section is one titled list of items.
type Section struct {
	Title string
	Items []string
}

// Headings are the Arabic section headings of the free-text profile,
// in display order.
var Headings = []string{
	"نظرة عامة",
	"انطباع العملاء",
	"تقييمات الفروع",
	"نقاط القوة",
	"نقاط الضعف",
	"الخدمات المقدمة",
	"التحديثات الأخيرة",
}

var bulletPrefix = regexp.MustCompile(`^\s*[*\-\d.]+\s*`)

// ParseSection extracts the lines under one **heading**. Bullet and
// number prefixes are stripped; blank lines dropped. A missing heading
// yields an empty list.
func ParseSection(doc, heading string) []string {
	re, err := regexp.Compile(`(?is)\*\*` + regexp.QuoteMeta(heading) + `\*\*(.*?)(?:\n\*\*|$)`)
	if err != nil {
		return nil
	}

	match := re.FindStringSubmatch(doc)
	if match == nil {
		return nil
	}

	var items []string
	for _, line := range strings.Split(strings.TrimSpace(match[1]), "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// ParseSections extracts every known heading from the document,
// keeping empty sections so the view can show them as such.
func ParseSections(doc string) []Section {
	sections := make([]Section, 0, len(Headings))
	for _, h := range Headings {
		sections = append(sections, Section{Title: h, Items: ParseSection(doc, h)})
	}
	return sections
}

// TitleCase turns a snake_case category key into a display title.
func TitleCase(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// structuredOrder fixes the display order of the structured document's
// categories; unknown keys follow alphabetically after the known ones.
var structuredOrder = []string{
	"founders", "key_personnel", "branch_locations", "accounts", "loans",
	"cards", "digital_services", "transfer_services", "investment_services",
	"fees", "interest_rates", "csr_programs", "awards", "partners",
	"contact_info",
}

// FromStructured converts the structured document into sections.
func FromStructured(data map[string][]string) []Section {
	var sections []Section
	seen := map[string]bool{}
	for _, key := range structuredOrder {
		if items, ok := data[key]; ok {
			sections = append(sections, Section{Title: TitleCase(key), Items: items})
			seen[key] = true
		}
	}

	var rest []string
	for key := range data {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	for i := 0; i < len(rest); i++ {
		for j := i + 1; j < len(rest); j++ {
			if rest[j] < rest[i] {
				rest[i], rest[j] = rest[j], rest[i]
			}
		}
	}
	for _, key := range rest {
		sections = append(sections, Section{Title: TitleCase(key), Items: data[key]})
	}
	return sections
}

// Search keeps the sections whose title or items contain term; items
// are narrowed to the matching ones unless the title itself matches.
// An empty term returns the input unchanged.
func Search(sections []Section, term string) []Section {
	term = strings.TrimSpace(term)
	if term == "" {
		return sections
	}
	lower := strings.ToLower(term)

	var out []Section
	for _, s := range sections {
		if strings.Contains(strings.ToLower(s.Title), lower) {
			out = append(out, s)
			continue
		}
		var items []string
		for _, item := range s.Items {
			if strings.Contains(strings.ToLower(item), lower) {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			out = append(out, Section{Title: s.Title, Items: items})
		}
	}
	return out
}

// Source is the slice of the REST client the profile view needs.
type Source interface {
	InstitutionProfile(ctx context.Context) (string, error)
	BankProfileData(ctx context.Context) (map[string][]string, error)
}

// Load fetches and combines both profile documents: parsed free-text
// sections first, structured categories after.
func Load(ctx context.Context, src Source) ([]Section, error) {
	doc, err := src.InstitutionProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load institution profile: %w", err)
	}

	data, err := src.BankProfileData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank profile data: %w", err)
	}

	return append(ParseSections(doc), FromStructured(data)...), nil
}
