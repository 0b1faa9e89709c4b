package ui

import (
	"context"
	"fmt"

	"bopchat/internal/api"
	"bopchat/internal/reviews"
)

// ReviewsSummary renders the reviews home: overall metrics, the
// 1-5 distribution, the per-branch rating chart and the branch list.
func (a *App) ReviewsSummary() {
	t := a.Theme
	revs := a.Data.Reviews

	a.println()
	a.println(t.Title.Render("Bank of Palestine Reviews"))
	a.println(t.Subtle.Render("Discover Our Branch Ratings"))
	a.println()

	avg := reviews.Average(revs)
	branches := len(reviews.BranchNames(revs))

	a.println(t.Subtitle.Render("Reviews Overview"))
	a.printf("  Average Rating     %s\n", t.Star.Render(fmt.Sprintf("%.1f / 5 ★", avg)))
	a.printf("  Total Reviews      %d\n", len(revs))
	a.printf("  Branches Reviewed  %d\n", branches)
	a.println()

	a.println(t.Subtitle.Render("Rating Distribution"))
	dist := reviews.Distribution(revs)
	for _, b := range dist {
		label := fmt.Sprintf("%d %s", b.Star, t.Star.Render("★"))
		a.printf("  %s %s %d\n", label, t.renderBar(float64(b.Count), float64(len(revs))), b.Count)
	}
	a.println()

	a.println(t.Subtitle.Render("Average Rating by Branch"))
	for _, entry := range a.Data.Stars {
		a.printf("  %s\n", t.labeledBar(entry.Location, entry.Star, 5, "%.1f"))
	}
	a.println()

	a.println(t.Subtitle.Render("Branch Ratings"))
	for _, entry := range a.Data.Stars {
		a.printf("  %s %s\n", t.Star.Render(fmt.Sprintf("★ %.1f", entry.Star)), entry.Location)
	}
	a.println()
	a.println(t.Subtle.Render("Run `bopchat reviews <branch>` for one branch."))
}

// BranchReviews renders one branch: its review cards and vote
// distribution.
func (a *App) BranchReviews(branch string) {
	t := a.Theme

	a.println()
	a.println(t.Title.Render("Reviews — " + branch))
	a.println()

	matched := reviews.ForBranch(a.Data.Reviews, branch)
	if len(matched) == 0 {
		a.println(t.Subtle.Render("No reviews for this branch yet."))
	}
	for _, r := range matched {
		a.printf("%s %s\n", t.Star.Render(fmt.Sprintf("★ %d", r.Stars)), r.Review)
		meta := fmt.Sprintf("   — %s, %s (%s)", r.Reviewer, r.Location, r.Source)
		if r.Sentiment != "" {
			meta += " · " + r.Sentiment
		}
		a.println(t.Subtle.Render(meta))
		a.println()
	}

	vote, ok := reviews.VotesFor(a.Data.Votes, branch)
	if !ok {
		a.println(t.Subtle.Render("No voting data for this branch."))
		return
	}

	total := 0
	for _, b := range vote.Buckets() {
		total += b.Count
	}

	a.println(t.Subtitle.Render("Vote Distribution"))
	for _, b := range vote.Buckets() {
		label := fmt.Sprintf("%d %s", b.Star, t.Star.Render("★"))
		a.printf("  %s %s %d\n", label, t.renderBar(float64(b.Count), float64(total)), b.Count)
	}
}

// ReviewsByRating fetches server-side filtered reviews and renders
// them: the conjunctive stars/sentiment/location filter view.
func (a *App) ReviewsByRating(ctx context.Context, filter api.ReviewFilter) error {
	t := a.Theme

	a.println()
	a.println(t.Title.Render("Filtered Reviews"))

	// Dropdown values come from the unfiltered list, like the page
	// populating its location selector on mount.
	all, err := a.API.Reviews(ctx, api.ReviewFilter{})
	if err != nil {
		a.Logger.Error("failed to fetch reviews for locations list", "error", err)
	} else {
		locs := reviews.Locations(toDataset(all))
		a.println(t.Subtle.Render(fmt.Sprintf("%d locations available for filtering.", len(locs))))
	}

	filtered, err := a.API.Reviews(ctx, filter)
	if err != nil {
		a.Logger.Error("failed to fetch filtered reviews", "error", err)
		a.notice("Could not load reviews.")
		return err
	}

	if len(filtered) == 0 {
		a.println(t.Subtle.Render("No reviews match the selected criteria."))
		return nil
	}

	a.println()
	for _, r := range filtered {
		if r.Review == "" {
			continue
		}
		a.printf("%s %s\n", t.Star.Render(fmt.Sprintf("★ %d", r.Stars)), r.Review)
		meta := fmt.Sprintf("   — %s, %s", r.Reviewer, r.Location)
		if r.Sentiment != "" {
			meta += " · " + r.Sentiment
		}
		a.println(t.Subtle.Render(meta))
		a.println()
	}
	return nil
}

// toDataset converts API reviews into the dataset shape the engine
// derives from.
func toDataset(in []api.Review) []reviews.Review {
	out := make([]reviews.Review, len(in))
	for i, r := range in {
		out[i] = reviews.Review{
			Review:    r.Review,
			Stars:     r.Stars,
			Reviewer:  r.Reviewer,
			Source:    r.Source,
			Location:  r.Location,
			Sentiment: r.Sentiment,
		}
	}
	return out
}
