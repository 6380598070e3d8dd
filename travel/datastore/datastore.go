// Package datastore serves the scraped Breathe Bhutan content. A small index
// document maps categories to JSON data files; files are parsed on first use,
// at most once per process, and cached for the process lifetime.
package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/breathebhutan/tashi/core/logger"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"log/slog"
)

// indexFile is the index document at the root of the data directory.
const indexFile = "index.json"

const preloadWorkers = 4

type indexEntry struct {
	Category string `json:"category"`
	Files    []struct {
		FilePath string `json:"file_path"`
	} `json:"files"`
}

// fileData is the cached outcome of parsing one data file. A failed parse is
// cached too so the file is never retried.
type fileData struct {
	records []Record
	failed  bool
}

// Match pairs a found record with the category that produced it.
type Match struct {
	Category string
	Record   Record
}

// Store is a read-only view over the scraped content. Load must complete
// before the store serves requests; afterwards the index is immutable and the
// parse cache is internally synchronized, so all methods are safe for
// concurrent use.
type Store struct {
	dir string

	categories []string            // index declaration order
	files      map[string][]string // category -> relative file paths

	parsed  *cache.Cache // relative path -> *fileData
	flights singleflight.Group

	loadOnce sync.Once
	loadErr  error
}

// New creates a Store over the given data directory.
func New(dir string) *Store {
	return &Store{
		dir:    dir,
		files:  make(map[string][]string),
		parsed: cache.New(cache.NoExpiration, 0),
	}
}

// Load reads the index document. It runs at most once; repeated calls return
// the first outcome. On failure the store degrades to an empty category set
// and Load reports ErrIndexUnavailable, leaving the process able to continue.
func (s *Store) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		s.loadErr = s.loadIndex(ctx)
	})
	return s.loadErr
}

func (s *Store) loadIndex(ctx context.Context) error {
	start := time.Now()
	path := filepath.Join(s.dir, indexFile)

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error(ctx, "travel.data", "index.unavailable",
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("read category index: %w: %w", ErrIndexUnavailable, err)
	}

	var entries []indexEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Error(ctx, "travel.data", "index.unavailable",
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("parse category index: %w: %w", ErrIndexUnavailable, err)
	}

	total := 0
	for _, e := range entries {
		name := strings.TrimSpace(e.Category)
		if name == "" {
			continue
		}
		if _, seen := s.files[name]; !seen {
			s.categories = append(s.categories, name)
		}
		for _, f := range e.Files {
			rel := strings.TrimSpace(f.FilePath)
			if rel == "" {
				continue
			}
			s.files[name] = append(s.files[name], rel)
			total++
		}
	}

	logger.Info(ctx, "travel.data", "index.loaded",
		slog.Int("categories", len(s.categories)),
		slog.Int("files", total),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Preload parses every indexed file concurrently so first user requests do
// not pay parse latency. Individual file failures degrade those files only.
func (s *Store) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadWorkers)

	for _, cat := range s.categories {
		for _, rel := range s.files[cat] {
			rel := rel
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				s.loadFile(ctx, rel)
				return nil
			})
		}
	}
	return g.Wait()
}

// Categories returns category names in index declaration order.
func (s *Store) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Category returns the records of the named category's first data file.
// It reports ErrNotFound when the category is absent from the index or its
// file cannot be parsed.
func (s *Store) Category(ctx context.Context, name string) ([]Record, error) {
	files, ok := s.files[name]
	if !ok || len(files) == 0 {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	fd := s.loadFile(ctx, files[0])
	if fd.failed {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return fd.records, nil
}

// Search returns the records whose name or description contains the query,
// case-insensitively. Results follow category declaration order, then record
// order within the category. An empty query matches nothing.
func (s *Store) Search(ctx context.Context, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	start := time.Now()

	var out []Match
	for _, cat := range s.categories {
		recs, err := s.Category(ctx, cat)
		if err != nil {
			continue
		}
		for _, rec := range recs {
			if strings.Contains(strings.ToLower(rec.Name()), q) ||
				strings.Contains(strings.ToLower(rec.Description()), q) {
				out = append(out, Match{Category: cat, Record: rec})
			}
		}
	}

	logger.Debug(ctx, "travel.data", "search.scan",
		slog.String("query", q),
		slog.Int("matches", len(out)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return out
}

// loadFile returns the parse outcome for one data file, parsing it at most
// once per process. Concurrent first touches collapse into a single parse.
func (s *Store) loadFile(ctx context.Context, rel string) *fileData {
	if v, ok := s.parsed.Get(rel); ok {
		return v.(*fileData)
	}
	v, _, _ := s.flights.Do(rel, func() (any, error) {
		if cached, ok := s.parsed.Get(rel); ok {
			return cached, nil
		}
		fd := s.parseFile(ctx, rel)
		s.parsed.Set(rel, fd, cache.NoExpiration)
		return fd, nil
	})
	return v.(*fileData)
}

func (s *Store) parseFile(ctx context.Context, rel string) *fileData {
	start := time.Now()
	path := filepath.Join(s.dir, rel)

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn(ctx, "travel.data", "file.degraded",
			slog.String("path", rel),
			slog.String("err", err.Error()),
		)
		return &fileData{failed: true}
	}

	recs, err := decodeRecords(raw)
	if err != nil {
		logger.Warn(ctx, "travel.data", "file.degraded",
			slog.String("path", rel),
			slog.String("err", err.Error()),
		)
		return &fileData{failed: true}
	}

	logger.Debug(ctx, "travel.data", "file.parsed",
		slog.String("path", rel),
		slog.Int("results", len(recs)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &fileData{records: recs}
}
