package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"openshelf_go/config"
	"openshelf_go/models"
)

// CartStore is the session-state contract for carts: an ordered list of
// book ids per user, living only as long as the session.
type CartStore interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Set(ctx context.Context, userID string, bookIDs []string) error
	Clear(ctx context.Context, userID string) error
}

// cartTTL matches the session lifetime of the auth tokens.
const cartTTL = 7 * 24 * time.Hour

// RedisCartStore keeps carts in Redis under cart:<user_id>.
type RedisCartStore struct {
	client *redis.Client
}

// NewRedisCartStore creates a Redis-backed cart store.
func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (s *RedisCartStore) Get(ctx context.Context, userID string) ([]string, error) {
	val, err := s.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return ids, nil
}

func (s *RedisCartStore) Set(ctx context.Context, userID string, bookIDs []string) error {
	data, err := json.Marshal(bookIDs)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MemoryCartStore keeps carts in process memory. Used when Redis is
// disabled; carts then live only as long as the process.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string][]string
}

// NewMemoryCartStore creates an in-memory cart store.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string][]string)}
}

func (s *MemoryCartStore) Get(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.carts[userID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *MemoryCartStore) Set(ctx context.Context, userID string, bookIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(bookIDs))
	copy(ids, bookIDs)
	s.carts[userID] = ids
	return nil
}

func (s *MemoryCartStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

var (
	defaultCartStore     CartStore
	defaultCartStoreOnce sync.Once
)

// DefaultCartStore returns the shared cart store: Redis when available,
// otherwise a process-wide in-memory store.
func DefaultCartStore() CartStore {
	defaultCartStoreOnce.Do(func() {
		if client := config.GetRedisClient(); client != nil {
			defaultCartStore = NewRedisCartStore(client)
		} else {
			defaultCartStore = NewMemoryCartStore()
		}
	})
	return defaultCartStore
}

// CartService applies the toggle contract on top of a CartStore.
type CartService struct {
	db    *gorm.DB
	store CartStore
}

// NewCartService creates a cart service over the given database and store.
func NewCartService(db *gorm.DB, store CartStore) *CartService {
	return &CartService{db: db, store: store}
}

// Toggle adds the book to the user's cart, or removes it when already
// present. Toggling twice restores the cart exactly. Unknown book ids fail
// with ErrNotFound.
func (s *CartService) Toggle(ctx context.Context, userID, bookID string) (string, error) {
	var book models.Book
	if err := s.db.Select("id").First(&book, "id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to look up book: %w", err)
	}

	ids, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	var message string
	index := -1
	for i, id := range ids {
		if id == bookID {
			index = i
			break
		}
	}
	if index < 0 {
		ids = append(ids, bookID)
		message = fmt.Sprintf("Added book %s to cart", bookID)
	} else {
		ids = append(ids[:index], ids[index+1:]...)
		message = fmt.Sprintf("Removed book %s from cart", bookID)
	}

	if err := s.store.Set(ctx, userID, ids); err != nil {
		return "", err
	}
	return message, nil
}

// Contents returns the book ids in the user's cart, in insertion order.
func (s *CartService) Contents(ctx context.Context, userID string) ([]string, error) {
	return s.store.Get(ctx, userID)
}

// Books resolves the cart to book records.
func (s *CartService) Books(ctx context.Context, userID string) ([]models.Book, error) {
	ids, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Book{}, nil
	}

	var books []models.Book
	if err := s.db.
		Preload("Authors").
		Where("id IN ?", ids).
		Order("created_at").
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart books: %w", err)
	}
	return books, nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
