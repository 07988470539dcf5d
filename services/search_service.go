package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"openshelf_go/models"
)

// searchCacheTTL bounds how long cached search results are served.
const searchCacheTTL = 5 * time.Minute

// SearchService answers substring searches over books and authors, with a
// Redis cache in front when available.
type SearchService struct {
	db    *gorm.DB
	cache *redis.Client
}

// NewSearchService creates a search service. cache may be nil.
func NewSearchService(db *gorm.DB, cache *redis.Client) *SearchService {
	return &SearchService{db: db, cache: cache}
}

// SearchBooks returns books whose title contains the query,
// case-insensitively.
func (s *SearchService) SearchBooks(ctx context.Context, query string) ([]models.Book, error) {
	cacheKey := "search:books:" + strings.ToLower(query)

	var books []models.Book
	if s.cacheGet(ctx, cacheKey, &books) {
		return books, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	if err := s.db.
		Preload("Authors").
		Where("LOWER(title) LIKE ?", pattern).
		Order("created_at").
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	s.cacheSet(cacheKey, books)
	return books, nil
}

// SearchAuthors returns authors whose first or last name contains the
// query, case-insensitively.
func (s *SearchService) SearchAuthors(ctx context.Context, query string) ([]models.Author, error) {
	cacheKey := "search:authors:" + strings.ToLower(query)

	var authors []models.Author
	if s.cacheGet(ctx, cacheKey, &authors) {
		return authors, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	if err := s.db.
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", pattern, pattern).
		Order("created_at").
		Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to search authors: %w", err)
	}

	s.cacheSet(cacheKey, authors)
	return authors, nil
}

// SerializeBooks renders books in the search API array shape.
func (s *SearchService) SerializeBooks(books []models.Book) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(books))
	for i := range books {
		out = append(out, books[i].Serialize())
	}
	return out
}

// SerializeAuthors renders authors in the search API array shape.
func (s *SearchService) SerializeAuthors(authors []models.Author) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(authors))
	for i := range authors {
		out = append(out, authors[i].Serialize())
	}
	return out
}

// cacheGet loads a cached result; false on miss or when caching is off.
func (s *SearchService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dest) == nil
}

// cacheSet stores a result asynchronously, best effort.
func (s *SearchService) cacheSet(key string, value interface{}) {
	if s.cache == nil {
		return
	}
	go func() {
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		s.cache.Set(context.Background(), key, data, searchCacheTTL)
	}()
}
