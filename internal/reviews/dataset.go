// Package reviews holds the bundled review datasets and the pure
// filter/aggregate derivations the dashboards render.
package reviews

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed data/*.json
var bundled embed.FS

// Review is one customer review from the bundled dataset.
type Review struct {
	Review    string `json:"review"`
	Stars     int    `json:"stars"`
	Reviewer  string `json:"reviewer"`
	Source    string `json:"source"`
	Location  string `json:"location"`
	Sentiment string `json:"sentiment,omitempty"`
}

// StarEntry is the average rating of one branch.
type StarEntry struct {
	Location string  `json:"location"`
	Star     float64 `json:"star"`
	Image    string  `json:"image,omitempty"`
}

// VoteEntry is the per-location tally of 1-5 star votes.
type VoteEntry struct {
	Location string `json:"location"`
	Five     int    `json:"5"`
	Four     int    `json:"4"`
	Three    int    `json:"3"`
	Two      int    `json:"2"`
	One      int    `json:"1"`
}

// BucketCount is one (star bucket, count) pair of a distribution.
type BucketCount struct {
	Star  int
	Count int
}

// Buckets returns the chart-ready ordered sequence, 5 stars first.
func (v VoteEntry) Buckets() []BucketCount {
	return []BucketCount{
		{Star: 5, Count: v.Five},
		{Star: 4, Count: v.Four},
		{Star: 3, Count: v.Three},
		{Star: 2, Count: v.Two},
		{Star: 1, Count: v.One},
	}
}

// Datasets are the bundled JSON files loaded into typed slices.
type Datasets struct {
	Stars   []StarEntry
	Reviews []Review
	Votes   []VoteEntry
}

// LoadBundled reads the datasets shipped with the binary. Loading
// happens once at startup; derived views never mutate the slices.
func LoadBundled() (*Datasets, error) {
	starsRaw, err := bundled.ReadFile("data/stars.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read stars dataset: %w", err)
	}
	stars, err := LoadStars(starsRaw)
	if err != nil {
		return nil, err
	}

	reviewsRaw, err := bundled.ReadFile("data/bank_reviews.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews dataset: %w", err)
	}
	var revs []Review
	if err := json.Unmarshal(reviewsRaw, &revs); err != nil {
		return nil, fmt.Errorf("failed to parse reviews dataset: %w", err)
	}

	votesRaw, err := bundled.ReadFile("data/voting.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read voting dataset: %w", err)
	}
	var votes []VoteEntry
	if err := json.Unmarshal(votesRaw, &votes); err != nil {
		return nil, fmt.Errorf("failed to parse voting dataset: %w", err)
	}

	return &Datasets{Stars: stars, Reviews: revs, Votes: votes}, nil
}

// LoadStars parses the stars dataset. The canonical shape is an array
// of entries; an older revision shipped a location-to-rating map,
// which is migrated here so no call site branches on shape.
func LoadStars(data []byte) ([]StarEntry, error) {
	var entries []StarEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var legacy map[string]float64
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("stars dataset is neither an entry array nor the legacy map: %w", err)
	}

	entries = make([]StarEntry, 0, len(legacy))
	for location, star := range legacy {
		entries = append(entries, StarEntry{Location: location, Star: star})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})
	return entries, nil
}
