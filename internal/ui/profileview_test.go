package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/institution-profile", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"profile": "**نظرة عامة**\nبنك فلسطين هو أكبر بنك في فلسطين.\n\n**نقاط القوة**\n* شبكة فروع واسعة",
		})
	})
	mux.HandleFunc("/data/bank_profile_data.json", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"fees":["no monthly fee"],"founders":["هاشم عطا الشوا"]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProfileRendersAllSections(t *testing.T) {
	app, out := newTestApp(t, profileServer(t), nil, "")

	require.NoError(t, app.Profile(context.Background(), ""))

	assert.Contains(t, out.String(), "نظرة عامة")
	assert.Contains(t, out.String(), "بنك فلسطين هو أكبر بنك في فلسطين.")
	// Free-text sections come before the structured categories.
	assert.Less(t,
		strings.Index(out.String(), "نظرة عامة"),
		strings.Index(out.String(), "Founders"))
	// Headings with no content render an explicit empty marker.
	assert.Contains(t, out.String(), "(empty)")
}

func TestProfileSearchNarrows(t *testing.T) {
	app, out := newTestApp(t, profileServer(t), nil, "")

	require.NoError(t, app.Profile(context.Background(), "fees"))

	assert.Contains(t, out.String(), "no monthly fee")
	assert.NotContains(t, out.String(), "نظرة عامة")
}

func TestProfileSearchWithoutMatches(t *testing.T) {
	app, out := newTestApp(t, profileServer(t), nil, "")

	require.NoError(t, app.Profile(context.Background(), "crypto"))
	assert.Contains(t, out.String(), "Nothing matches the search term.")
}

func TestProfileLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	app, out := newTestApp(t, srv, nil, "")

	require.Error(t, app.Profile(context.Background(), ""))
	assert.Contains(t, out.String(), "فشل في تحميل بيانات البنك أو الملف الشخصي.")
}
