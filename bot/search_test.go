package bot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/breathebhutan/tashi/travel/datastore"
)

func newSearchApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.json": `[{"category": "tours", "files": [{"file_path": "tours.json"}]}]`,
		"tours.json": `[{"name": "Cultural Tour", "description": "A hike to the Tiger's Nest Monastery."}]`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	store := datastore.New(dir)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	app, err := New(&Config{}, nil, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app
}

func TestFreeTextSearchFindsRecords(t *testing.T) {
	app := newSearchApp(t)
	text, found := app.searchReply(context.Background(), "tiger's nest")
	if !found {
		t.Fatalf("searchReply found nothing")
	}
	if !strings.Contains(text, "Cultural Tour") {
		t.Errorf("reply = %q, want the matching tour", text)
	}
}

func TestFreeTextSearchReportsNoMatch(t *testing.T) {
	app := newSearchApp(t)
	if _, found := app.searchReply(context.Background(), "snowboarding"); found {
		t.Errorf("searchReply reported a match for an unknown query")
	}
}
