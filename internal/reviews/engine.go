package reviews

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Criteria is a conjunctive filter selection: an entry passes only if
// it matches every active criterion. Zero values are inactive.
type Criteria struct {
	Stars     int
	Sentiment string
	Location  string
}

// Matches reports whether one review satisfies every active criterion.
func (c Criteria) Matches(r Review) bool {
	if c.Stars > 0 && r.Stars != c.Stars {
		return false
	}
	if c.Sentiment != "" && c.Sentiment != "All" && r.Sentiment != c.Sentiment {
		return false
	}
	if c.Location != "" && c.Location != "All" && strings.TrimSpace(r.Location) != c.Location {
		return false
	}
	return true
}

// Filter returns the reviews matching the criteria as a fresh slice;
// the input is never mutated.
func Filter(revs []Review, c Criteria) []Review {
	out := make([]Review, 0, len(revs))
	for _, r := range revs {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Average is the mean star rating, 0 for an empty input.
func Average(revs []Review) float64 {
	if len(revs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range revs {
		sum += r.Stars
	}
	return float64(sum) / float64(len(revs))
}

// Distribution counts reviews per star bucket, 5 first, matching the
// order the dashboard renders.
func Distribution(revs []Review) []BucketCount {
	counts := map[int]int{}
	for _, r := range revs {
		if r.Stars >= 1 && r.Stars <= 5 {
			counts[r.Stars]++
		}
	}
	out := make([]BucketCount, 0, 5)
	for star := 5; star >= 1; star-- {
		out = append(out, BucketCount{Star: star, Count: counts[star]})
	}
	return out
}

// BranchName normalizes a review location to a branch name: the
// "فرع " prefix is stripped and anything after " -" dropped.
func BranchName(location string) string {
	name := strings.TrimPrefix(location, "فرع ")
	name, _, _ = strings.Cut(name, " -")
	return strings.TrimSpace(name)
}

// BranchNames returns the distinct normalized branch names, in first
// appearance order.
func BranchNames(revs []Review) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range revs {
		name := BranchName(r.Location)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ForBranch selects the reviews whose normalized location equals the
// branch name.
func ForBranch(revs []Review, branch string) []Review {
	out := make([]Review, 0)
	for _, r := range revs {
		if BranchName(r.Location) == branch {
			out = append(out, r)
		}
	}
	return out
}

// VotesFor finds the vote tally of a branch, matching on the trimmed
// location.
func VotesFor(votes []VoteEntry, branch string) (VoteEntry, bool) {
	for _, v := range votes {
		if strings.TrimSpace(v.Location) == branch {
			return v, true
		}
	}
	return VoteEntry{}, false
}

// Locations extracts the distinct trimmed locations for filter
// dropdowns, sorted with locale-aware collation (the dataset is
// Arabic).
func Locations(revs []Review) []string {
	seen := map[string]bool{}
	var locs []string
	for _, r := range revs {
		loc := strings.TrimSpace(r.Location)
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		locs = append(locs, loc)
	}

	c := collate.New(language.Arabic)
	c.SortStrings(locs)
	return locs
}
