package storage

import (
	"context"
	"errors"

	"bookswap/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("record not found")

// BookFilter narrows listings returned by ListAvailableBooks
type BookFilter struct {
	// Title is a case-insensitive substring match on the title field
	Title string
	// Author is a case-insensitive substring match on the author field
	Author string
	// Condition filters on an exact condition value when non-empty
	Condition models.Condition
	// Query is a case-insensitive substring match across title, author
	// and description
	Query string
	// ExcludeOwner skips listings owned by this user id (0 = no filter)
	ExcludeOwner uint
}

// BookPage is one page of listings plus the total match count
type BookPage struct {
	Items      []models.Book
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// Storage defines the interface for data storage operations
type Storage interface {
	// User operations

	// UpsertUser creates the user on first contact and refreshes the
	// display name and username on every later call.
	UpsertUser(ctx context.Context, telegramID int64, displayName, username string) (*models.User, error)

	// Book operations

	CreateBook(ctx context.Context, book *models.Book) error
	// GetBook returns the book with its owner loaded, or ErrNotFound.
	GetBook(ctx context.Context, id uint) (*models.Book, error)
	// ListAvailableBooks returns non-sold listings matching the filter,
	// newest first. Page numbering starts at 1.
	ListAvailableBooks(ctx context.Context, page, perPage int, filter BookFilter) (*BookPage, error)
	// ListUserBooks returns one seller's listings, newest first.
	ListUserBooks(ctx context.Context, ownerID uint, includeSold bool) ([]models.Book, error)
	// MarkBookSold flips the availability flag. Returns ErrNotFound when
	// the listing no longer exists. Irreversible in current scope.
	MarkBookSold(ctx context.Context, id uint) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}

// TotalPages computes ceil(total/perPage), never less than 1
func TotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
