package stubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookswap/internal/models"
	"bookswap/internal/storage"
)

func TestMockDB_UpsertUser(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	user, err := db.UpsertUser(ctx, 123, "Alice", "alice")
	if err != nil {
		t.Fatalf("Failed to upsert user: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("Expected a non-zero user id")
	}
	if user.TelegramID != 123 {
		t.Errorf("Expected telegram id 123, got %d", user.TelegramID)
	}

	// Upserting again with new profile data refreshes, not duplicates
	updated, err := db.UpsertUser(ctx, 123, "Alice Smith", "alicesmith")
	if err != nil {
		t.Fatalf("Failed to upsert user: %v", err)
	}
	if updated.ID != user.ID {
		t.Errorf("Expected same user id, got %d and %d", user.ID, updated.ID)
	}
	if updated.DisplayName != "Alice Smith" || updated.Username != "alicesmith" {
		t.Errorf("Expected refreshed profile, got %+v", updated)
	}
}

func TestMockDB_CreateAndGetBook(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	owner, err := db.UpsertUser(ctx, 123, "Alice", "alice")
	if err != nil {
		t.Fatalf("Failed to upsert user: %v", err)
	}

	book := &models.Book{
		Title:     "Hyperion",
		Author:    "Dan Simmons",
		Condition: models.ConditionGood,
		OwnerID:   owner.ID,
	}
	if err := db.CreateBook(ctx, book); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}
	if book.ID == 0 {
		t.Fatal("Expected a non-zero book id")
	}

	stored, err := db.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if stored.Title != "Hyperion" {
		t.Errorf("Unexpected title %q", stored.Title)
	}
	if stored.Owner == nil || stored.Owner.ID != owner.ID {
		t.Error("Expected owner to be resolved on read")
	}

	if _, err := db.GetBook(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing book, got %v", err)
	}
}

func TestMockDB_ListAvailableBooksPagination(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	owner, _ := db.UpsertUser(ctx, 123, "Alice", "alice")

	// Stagger creation times so the newest-first order is deterministic
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		book := &models.Book{
			Title:     "Book",
			Condition: models.ConditionGood,
			OwnerID:   owner.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.CreateBook(ctx, book); err != nil {
			t.Fatalf("Failed to create book: %v", err)
		}
	}

	perPage := 3
	seen := map[uint]bool{}
	var lastCreated time.Time

	for page := 1; page <= 3; page++ {
		result, err := db.ListAvailableBooks(ctx, page, perPage, storage.BookFilter{})
		if err != nil {
			t.Fatalf("Failed to list page %d: %v", page, err)
		}
		if result.Total != 7 {
			t.Errorf("Page %d: expected total 7, got %d", page, result.Total)
		}
		if result.TotalPages != 3 {
			t.Errorf("Page %d: expected 3 total pages, got %d", page, result.TotalPages)
		}
		for _, book := range result.Items {
			if seen[book.ID] {
				t.Errorf("Book %d appeared twice", book.ID)
			}
			seen[book.ID] = true
			if !lastCreated.IsZero() && book.CreatedAt.After(lastCreated) {
				t.Error("Expected newest-first order across pages")
			}
			lastCreated = book.CreatedAt
		}
	}

	if len(seen) != 7 {
		t.Errorf("Expected all 7 books across pages, got %d", len(seen))
	}
}

func TestMockDB_ListAvailableBooksFilters(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	alice, _ := db.UpsertUser(ctx, 1, "Alice", "alice")
	bob, _ := db.UpsertUser(ctx, 2, "Bob", "bob")

	books := []models.Book{
		{Title: "Dune", Author: "Frank Herbert", Condition: models.ConditionGood, OwnerID: alice.ID},
		{Title: "Neuromancer", Author: "William Gibson", Condition: models.ConditionPoor, OwnerID: bob.ID},
		{Title: "Count Zero", Author: "William Gibson", Condition: models.ConditionGood, Description: "Sprawl trilogy", OwnerID: bob.ID},
	}
	for i := range books {
		if err := db.CreateBook(ctx, &books[i]); err != nil {
			t.Fatalf("Failed to create book: %v", err)
		}
	}

	result, err := db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Author: "gibson"})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Author filter: expected 2, got %d", result.Total)
	}

	result, _ = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Title: "zero"})
	if result.Total != 1 || result.Items[0].Title != "Count Zero" {
		t.Errorf("Title filter: unexpected result %+v", result.Items)
	}

	result, _ = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Condition: models.ConditionGood})
	if result.Total != 2 {
		t.Errorf("Condition filter: expected 2, got %d", result.Total)
	}

	// Query matches title, author or description
	result, _ = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Query: "sprawl"})
	if result.Total != 1 || result.Items[0].Title != "Count Zero" {
		t.Errorf("Query filter: unexpected result %+v", result.Items)
	}

	result, _ = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{ExcludeOwner: bob.ID})
	if result.Total != 1 || result.Items[0].Title != "Dune" {
		t.Errorf("ExcludeOwner filter: unexpected result %+v", result.Items)
	}
}

func TestMockDB_MarkBookSold(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	owner, _ := db.UpsertUser(ctx, 123, "Alice", "alice")
	book := &models.Book{Title: "Dune", Condition: models.ConditionGood, OwnerID: owner.ID}
	if err := db.CreateBook(ctx, book); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	if err := db.MarkBookSold(ctx, book.ID); err != nil {
		t.Fatalf("Failed to mark book sold: %v", err)
	}

	stored, err := db.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if !stored.IsSold {
		t.Error("Expected book to be sold")
	}

	// Sold books leave the available listing
	result, _ := db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{})
	if result.Total != 0 {
		t.Errorf("Expected no available books, got %d", result.Total)
	}

	if err := db.MarkBookSold(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMockDB_ListUserBooks(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	alice, _ := db.UpsertUser(ctx, 1, "Alice", "alice")
	bob, _ := db.UpsertUser(ctx, 2, "Bob", "bob")

	sold := &models.Book{Title: "Sold One", Condition: models.ConditionGood, OwnerID: alice.ID}
	active := &models.Book{Title: "Active One", Condition: models.ConditionGood, OwnerID: alice.ID}
	other := &models.Book{Title: "Bob's Book", Condition: models.ConditionGood, OwnerID: bob.ID}
	for _, book := range []*models.Book{sold, active, other} {
		if err := db.CreateBook(ctx, book); err != nil {
			t.Fatalf("Failed to create book: %v", err)
		}
	}
	if err := db.MarkBookSold(ctx, sold.ID); err != nil {
		t.Fatalf("Failed to mark book sold: %v", err)
	}

	activeOnly, err := db.ListUserBooks(ctx, alice.ID, false)
	if err != nil {
		t.Fatalf("Failed to list user books: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].Title != "Active One" {
		t.Errorf("Expected only the active listing, got %+v", activeOnly)
	}

	all, err := db.ListUserBooks(ctx, alice.ID, true)
	if err != nil {
		t.Fatalf("Failed to list user books: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 listings including sold, got %d", len(all))
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{7, 3, 3},
	}
	for _, tt := range tests {
		if got := storage.TotalPages(tt.total, tt.perPage); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}
