// Package search provides full-text catalog search using Bleve.
// Books are indexed with their title and a denormalized author name so a
// single query can match either field without touching the store.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// BookDocument is the document structure for the catalog index.
// The author name is denormalized into the book document so author
// searches resolve in one index query.
type BookDocument struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// ToMap converts the document to a map so field names match the
// lowercase names used in the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":     d.ID,
		"title":  d.Title,
		"author": d.Author,
	}
}

// Params configures a catalog search. Title and Author are fragments;
// either may be empty, in which case that field is not constrained.
type Params struct {
	Title  string
	Author string
	Limit  int
	Offset int
}

// Hit is a single search result.
type Hit struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author,omitempty"`
}

// Result represents the search results.
type Result struct {
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch triggers an automatic rebuild on startup.
const mappingVersion = "1"

// Index wraps a Bleve index with catalog-specific operations.
//
// Thread safety: all public methods are safe for concurrent use. The
// mutex protects against index corruption during rebuild operations.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr if nil)
}

// New creates or opens a catalog search index under opts.DataPath.
// A corrupted index or one built with an outdated mapping is removed
// and recreated; callers should reindex from the store afterwards.
func New(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "catalog.bleve")
	versionPath := filepath.Join(opts.DataPath, "catalog.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("search index has no version file, will rebuild with current mapping",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// buildIndexMapping creates the Bleve mapping for book documents.
// Both text fields use the English analyzer for stemmed matching and
// are stored so hits can be rendered without a store lookup.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = en.AnalyzerName
	titleField.Store = true
	docMapping.AddFieldMappingsAt("title", titleField)

	authorField := bleve.NewTextFieldMapping()
	authorField.Analyzer = en.AnalyzerName
	authorField.Store = true
	docMapping.AddFieldMappingsAt("author", authorField)

	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt("id", idField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook indexes a single book document.
func (s *Index) IndexBook(doc *BookDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexBooks indexes multiple documents in batches. This is much faster
// than calling IndexBook in a loop during startup reindexing.
func (s *Index) IndexBooks(docs []*BookDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteBook removes a book from the index.
func (s *Index) DeleteBook(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Search executes a catalog query. When both Title and Author are set
// a hit must match both fields.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchRequest := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	searchRequest.Fields = []string{"id", "title", "author"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildQuery builds the field queries for a catalog search. Each field
// combines a stemmed match with a prefix query so partial words still
// hit during incremental typing.
func buildQuery(params Params) query.Query {
	var conjuncts []query.Query

	if field := fieldQuery("title", params.Title); field != nil {
		conjuncts = append(conjuncts, field)
	}
	if field := fieldQuery("author", params.Author); field != nil {
		conjuncts = append(conjuncts, field)
	}

	switch len(conjuncts) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return conjuncts[0]
	default:
		return bleve.NewConjunctionQuery(conjuncts...)
	}
}

func fieldQuery(field, fragment string) query.Query {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}

	match := bleve.NewMatchQuery(fragment)
	match.SetField(field)
	match.SetBoost(2.0)

	prefix := bleve.NewPrefixQuery(strings.ToLower(fragment))
	prefix.SetField(field)
	prefix.SetBoost(0.5)

	return bleve.NewDisjunctionQuery(match, prefix)
}

// Rebuild drops the existing index and creates a fresh empty one.
// Callers must reindex from the store afterwards.
//
// This acquires an exclusive lock and blocks all other operations.
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)

	return nil
}
