package ui

import (
	"context"

	"bopchat/internal/profile"
)

// Profile renders the institution profile: parsed free-text sections
// followed by the structured categories, optionally narrowed by a
// search term.
func (a *App) Profile(ctx context.Context, term string) error {
	t := a.Theme

	sections, err := profile.Load(ctx, a.API)
	if err != nil {
		a.Logger.Error("failed to load profile", "error", err)
		a.notice("فشل في تحميل بيانات البنك أو الملف الشخصي.")
		return err
	}

	sections = profile.Search(sections, term)
	if len(sections) == 0 {
		a.println(t.Subtle.Render("Nothing matches the search term."))
		return nil
	}

	for _, s := range sections {
		a.println()
		a.println(t.Subtitle.Render(s.Title))
		if len(s.Items) == 0 {
			a.println(t.Subtle.Render("  (empty)"))
			continue
		}
		for _, item := range s.Items {
			a.println("  - " + item)
		}
	}
	a.println()
	return nil
}
