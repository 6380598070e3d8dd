package datastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const testIndex = `[
  {"category": "general", "files": [{"file_path": "general.json"}]},
  {"category": "tours", "files": [{"file_path": "tours.json"}]},
  {"category": "trekking", "files": [{"file_path": "trekking.json"}]},
  {"category": "itineraries", "files": [{"file_path": "itineraries.json"}]}
]`

const testTours = `[
  {"name": "Cultural Tour of Western Bhutan", "description": "Includes a hike to the Tiger's Nest Monastery above the Paro valley."},
  {"name": "Eastern Discovery", "description": "Remote villages, weaving houses and quiet dzongs."}
]`

const testGeneral = `[
  {"name": "About Breathe Bhutan", "description": "A small family run travel company in Thimphu."}
]`

const testTrekking = `{"treks": [
  {"name": "Druk Path Trek", "description": "Classic five day trek between Paro and Thimphu."}
]}`

const testItineraries = `[
  {"title": "Bhutan in Ten Days", "description": "A relaxed loop through the western valleys."}
]`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	writeDataFile(t, dir, "index.json", testIndex)
	writeDataFile(t, dir, "general.json", testGeneral)
	writeDataFile(t, dir, "tours.json", testTours)
	writeDataFile(t, dir, "trekking.json", testTrekking)
	writeDataFile(t, dir, "itineraries.json", testItineraries)

	s := New(dir)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestCategoryReturnsOwnRecords(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.Category(context.Background(), "tours")
	if err != nil {
		t.Fatalf("Category(tours): %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Category(tours) returned %d records, want 2", len(recs))
	}
	if got := recs[0].Name(); got != "Cultural Tour of Western Bhutan" {
		t.Errorf("first record name = %q", got)
	}
	for _, rec := range recs {
		if rec.Name() == "About Breathe Bhutan" {
			t.Errorf("tours records contain a general record")
		}
	}
}

func TestCategoryNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Category(context.Background(), "festivals")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Category(festivals) err = %v, want ErrNotFound", err)
	}
}

func TestCategoryWrapperObject(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.Category(context.Background(), "trekking")
	if err != nil {
		t.Fatalf("Category(trekking): %v", err)
	}
	if len(recs) != 1 || recs[0].Name() != "Druk Path Trek" {
		t.Fatalf("trekking records = %+v, want the single wrapped trek", recs)
	}
}

func TestRecordTitleFallback(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.Category(context.Background(), "itineraries")
	if err != nil {
		t.Fatalf("Category(itineraries): %v", err)
	}
	if got := recs[0].Name(); got != "Bhutan in Ten Days" {
		t.Errorf("Name() = %q, want title fallback", got)
	}
}

func TestSearchSubstring(t *testing.T) {
	s := newTestStore(t)

	matches := s.Search(context.Background(), "TIGER'S NEST")
	if len(matches) != 1 {
		t.Fatalf("Search returned %d matches, want 1", len(matches))
	}
	if matches[0].Category != "tours" {
		t.Errorf("match category = %q, want tours", matches[0].Category)
	}
	if matches[0].Record.Name() != "Cultural Tour of Western Bhutan" {
		t.Errorf("match record = %q", matches[0].Record.Name())
	}
}

func TestSearchOrderFollowsIndex(t *testing.T) {
	s := newTestStore(t)

	// "thimphu" appears in general (declared first) and trekking.
	matches := s.Search(context.Background(), "thimphu")
	if len(matches) != 2 {
		t.Fatalf("Search returned %d matches, want 2", len(matches))
	}
	if matches[0].Category != "general" || matches[1].Category != "trekking" {
		t.Errorf("match order = [%s %s], want [general trekking]",
			matches[0].Category, matches[1].Category)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := newTestStore(t)

	if matches := s.Search(context.Background(), "   "); matches != nil {
		t.Fatalf("empty query returned %d matches, want none", len(matches))
	}
}

func TestMalformedFileDegradesSingleCategory(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "index.json", testIndex)
	writeDataFile(t, dir, "general.json", testGeneral)
	writeDataFile(t, dir, "tours.json", "{not json")
	writeDataFile(t, dir, "trekking.json", testTrekking)
	writeDataFile(t, dir, "itineraries.json", testItineraries)

	s := New(dir)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := s.Category(context.Background(), "tours"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Category(tours) err = %v, want ErrNotFound", err)
	}
	if _, err := s.Category(context.Background(), "general"); err != nil {
		t.Fatalf("Category(general) after tours degraded: %v", err)
	}
	if matches := s.Search(context.Background(), "thimphu"); len(matches) != 2 {
		t.Fatalf("Search after degrade returned %d matches, want 2", len(matches))
	}
}

func TestMissingIndexDegradesToEmpty(t *testing.T) {
	s := New(t.TempDir())

	err := s.Load(context.Background())
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("Load err = %v, want ErrIndexUnavailable", err)
	}
	if cats := s.Categories(); len(cats) != 0 {
		t.Errorf("Categories() = %v, want empty", cats)
	}
	if matches := s.Search(context.Background(), "tour"); matches != nil {
		t.Errorf("Search on empty store returned %d matches", len(matches))
	}
	if _, err := s.Category(context.Background(), "tours"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Category on empty store err = %v, want ErrNotFound", err)
	}
}

func TestFileParsedOncePerProcess(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "index.json", testIndex)
	writeDataFile(t, dir, "general.json", testGeneral)
	writeDataFile(t, dir, "tours.json", testTours)
	writeDataFile(t, dir, "trekking.json", testTrekking)
	writeDataFile(t, dir, "itineraries.json", testItineraries)

	s := New(dir)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Category(context.Background(), "tours"); err != nil {
		t.Fatalf("first Category(tours): %v", err)
	}

	// Deleting the backing file must not matter once it has been parsed.
	if err := os.Remove(filepath.Join(dir, "tours.json")); err != nil {
		t.Fatalf("remove tours.json: %v", err)
	}
	recs, err := s.Category(context.Background(), "tours")
	if err != nil {
		t.Fatalf("cached Category(tours): %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("cached Category(tours) returned %d records, want 2", len(recs))
	}
}

func TestPreloadWarmsEveryFile(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "index.json", testIndex)
	writeDataFile(t, dir, "general.json", testGeneral)
	writeDataFile(t, dir, "tours.json", testTours)
	writeDataFile(t, dir, "trekking.json", testTrekking)
	writeDataFile(t, dir, "itineraries.json", testItineraries)

	s := New(dir)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Preload(context.Background()); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	for _, name := range []string{"general.json", "tours.json", "trekking.json", "itineraries.json"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			t.Fatalf("remove %s: %v", name, err)
		}
	}
	for _, cat := range []string{"general", "tours", "trekking", "itineraries"} {
		if _, err := s.Category(context.Background(), cat); err != nil {
			t.Errorf("Category(%s) after preload: %v", cat, err)
		}
	}
}

func TestDecodeRecordsSkipsNonObjects(t *testing.T) {
	recs, err := decodeRecords([]byte(`[{"name": "a"}, "stray", 3, {"name": "b"}]`))
	if err != nil {
		t.Fatalf("decodeRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("decoded %d records, want 2", len(recs))
	}
}

func TestDecodeRecordsPrefersObjectArray(t *testing.T) {
	raw := []byte(`{"aliases": ["x", "y"], "treks": [{"name": "Druk Path Trek"}]}`)
	recs, err := decodeRecords(raw)
	if err != nil {
		t.Fatalf("decodeRecords: %v", err)
	}
	if len(recs) != 1 || recs[0].Name() != "Druk Path Trek" {
		t.Fatalf("decoded %+v, want the treks array", recs)
	}
}
