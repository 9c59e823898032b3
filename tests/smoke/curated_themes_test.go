//go:build smoke

package smoke

import (
	"context"
	"reflect"
	"testing"

	dbpkg "github.com/codr1/mailthemes/internal/db"
	dbgen "github.com/codr1/mailthemes/internal/db/generated"
	"github.com/codr1/mailthemes/internal/models"
	"github.com/codr1/mailthemes/internal/testutil"
	"github.com/codr1/mailthemes/internal/themes"
)

func TestCuratedThemesSeeded(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	expectedThemes, err := dbpkg.ParseThemesFile()
	if err != nil {
		t.Fatalf("parse themes file: %v", err)
	}

	svc := themes.NewService(db.Queries, themes.WithTransactions(db))
	if _, err := svc.SeedPublicThemes(ctx, "curated", expectedThemes); err != nil {
		t.Fatalf("seed curated themes: %v", err)
	}

	expectedByName := make(map[string]models.Theme, len(expectedThemes))
	missing := make(map[string]struct{}, len(expectedThemes))
	for _, theme := range expectedThemes {
		expectedByName[theme.Name] = theme
		missing[theme.Name] = struct{}{}
	}

	queries := dbgen.New(db)
	rows, err := queries.ListPublicThemes(ctx, dbgen.ListPublicThemesParams{Search: "", Limit: 100, Offset: 0})
	if err != nil {
		t.Fatalf("list public themes: %v", err)
	}
	if len(rows) != len(expectedThemes) {
		t.Fatalf("public themes count mismatch: got %d want %d", len(rows), len(expectedThemes))
	}

	for _, row := range rows {
		expected, ok := expectedByName[row.Name]
		if !ok {
			t.Fatalf("unexpected public theme %q", row.Name)
		}

		theme := models.ThemeFromDB(row)
		if err := theme.Validate(); err != nil {
			t.Fatalf("seeded theme %q failed validation: %v", row.Name, err)
		}
		if theme.UserID != "curated" || !theme.IsPublic {
			t.Fatalf("seeded theme %q owner/public = %q/%v", row.Name, theme.UserID, theme.IsPublic)
		}
		if !reflect.DeepEqual(theme.ThemeData, expected.ThemeData) {
			t.Fatalf("theme %q palette mismatch: got %+v want %+v", row.Name, theme.ThemeData, expected.ThemeData)
		}

		delete(missing, row.Name)
	}

	for name := range missing {
		t.Fatalf("missing curated theme %q", name)
	}
}
