package stubs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookswap/internal/models"
	"bookswap/internal/storage"
)

// MockDB is an in-memory implementation of the Storage interface for tests
// and for running the bot without a database (USE_MOCK_DB)
type MockDB struct {
	mu         sync.RWMutex
	users      map[int64]*models.User
	books      map[uint]*models.Book
	nextUserID uint
	nextBookID uint
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users:      make(map[int64]*models.User),
		books:      make(map[uint]*models.Book),
		nextUserID: 1,
		nextBookID: 1,
	}
}

// Initialize does nothing for the mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// UpsertUser creates or refreshes a user keyed by Telegram id
func (m *MockDB) UpsertUser(ctx context.Context, telegramID int64, displayName, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[telegramID]; ok {
		if user.DisplayName != displayName || user.Username != username {
			user.DisplayName = displayName
			user.Username = username
			user.UpdatedAt = time.Now()
		}
		copied := *user
		return &copied, nil
	}

	user := &models.User{
		ID:          m.nextUserID,
		TelegramID:  telegramID,
		DisplayName: displayName,
		Username:    username,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.nextUserID++
	m.users[telegramID] = user

	copied := *user
	return &copied, nil
}

// CreateBook inserts a new listing and assigns its id
func (m *MockDB) CreateBook(ctx context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book.ID = m.nextBookID
	m.nextBookID++
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	if book.Owner == nil {
		book.Owner = m.ownerByID(book.OwnerID)
	}

	copied := *book
	m.books[book.ID] = &copied
	return nil
}

// GetBook returns a listing by id
func (m *MockDB) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *book
	if copied.Owner == nil {
		copied.Owner = m.ownerByID(copied.OwnerID)
	}
	return &copied, nil
}

// ListAvailableBooks returns non-sold listings matching the filter, newest first
func (m *MockDB) ListAvailableBooks(ctx context.Context, page, perPage int, filter storage.BookFilter) (*storage.BookPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if page < 1 {
		page = 1
	}

	var matched []models.Book
	for _, book := range m.books {
		if book.IsSold {
			continue
		}
		if filter.Title != "" && !containsFold(book.Title, filter.Title) {
			continue
		}
		if filter.Author != "" && !containsFold(book.Author, filter.Author) {
			continue
		}
		if filter.Condition != "" && book.Condition != filter.Condition {
			continue
		}
		if filter.Query != "" &&
			!containsFold(book.Title, filter.Query) &&
			!containsFold(book.Author, filter.Query) &&
			!containsFold(book.Description, filter.Query) {
			continue
		}
		if filter.ExcludeOwner != 0 && book.OwnerID == filter.ExcludeOwner {
			continue
		}
		copied := *book
		if copied.Owner == nil {
			copied.Owner = m.ownerByID(copied.OwnerID)
		}
		matched = append(matched, copied)
	}

	// Newest first; id breaks ties for a stable order across pages
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	return &storage.BookPage{
		Items:      matched[start:end],
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: storage.TotalPages(total, perPage),
	}, nil
}

// ListUserBooks returns one seller's listings, newest first
func (m *MockDB) ListUserBooks(ctx context.Context, ownerID uint, includeSold bool) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var books []models.Book
	for _, book := range m.books {
		if book.OwnerID != ownerID {
			continue
		}
		if !includeSold && book.IsSold {
			continue
		}
		copied := *book
		if copied.Owner == nil {
			copied.Owner = m.ownerByID(copied.OwnerID)
		}
		books = append(books, copied)
	}

	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID > books[j].ID
	})
	return books, nil
}

// MarkBookSold flips the availability flag on a listing
func (m *MockDB) MarkBookSold(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return storage.ErrNotFound
	}
	book.IsSold = true
	return nil
}

// Close does nothing for the mock DB
func (m *MockDB) Close() error {
	return nil
}

// ownerByID resolves a stored user by primary key; callers hold the lock
func (m *MockDB) ownerByID(id uint) *models.User {
	for _, user := range m.users {
		if user.ID == id {
			copied := *user
			return &copied
		}
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}
