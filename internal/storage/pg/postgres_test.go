package pg

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgresTC "github.com/testcontainers/testcontainers-go/modules/postgres"

	"bookswap/internal/models"
	"bookswap/internal/storage"
)

// setupTestDB creates a test Postgres instance using testcontainers
func setupTestDB(t *testing.T) (*PostgresDB, func()) {
	ctx := context.Background()

	postgresContainer, err := postgresTC.Run(ctx,
		"postgres:16-alpine",
		postgresTC.WithDatabase("bookswap_test"),
		postgresTC.WithUsername("bookswap"),
		postgresTC.WithPassword("testpassword"),
		postgresTC.BasicWaitStrategies(),
	)
	require.NoError(t, err, "Failed to start Postgres container")

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewPostgresDB(dsn)
	require.NoError(t, err, "Failed to connect to Postgres")

	require.NoError(t, db.Initialize(ctx), "Failed to migrate schema")

	cleanup := func() {
		db.Close()
		postgresContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestPostgresDB_UpsertUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := db.UpsertUser(ctx, 123, "Alice", "alice")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, int64(123), user.TelegramID)

	updated, err := db.UpsertUser(ctx, 123, "Alice Smith", "alicesmith")
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID, "upsert must not create a second row")
	assert.Equal(t, "Alice Smith", updated.DisplayName)
	assert.Equal(t, "alicesmith", updated.Username)
}

func TestPostgresDB_CreateAndGetBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner, err := db.UpsertUser(ctx, 123, "Alice", "alice")
	require.NoError(t, err)

	book := &models.Book{
		Title:       "Hyperion",
		Author:      "Dan Simmons",
		Condition:   models.ConditionGood,
		Price:       decimal.NewFromFloat(14.99),
		Description: "First of the Cantos",
		OwnerID:     owner.ID,
	}
	require.NoError(t, db.CreateBook(ctx, book))
	assert.NotZero(t, book.ID)

	stored, err := db.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hyperion", stored.Title)
	assert.Equal(t, models.ConditionGood, stored.Condition)
	assert.Equal(t, "14.99", stored.Price.StringFixed(2))
	require.NotNil(t, stored.Owner, "owner should be preloaded")
	assert.Equal(t, int64(123), stored.Owner.TelegramID)

	_, err = db.GetBook(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgresDB_ListAvailableBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	alice, err := db.UpsertUser(ctx, 1, "Alice", "alice")
	require.NoError(t, err)
	bob, err := db.UpsertUser(ctx, 2, "Bob", "bob")
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	books := []models.Book{
		{Title: "Dune", Author: "Frank Herbert", Condition: models.ConditionGood, OwnerID: alice.ID, CreatedAt: base},
		{Title: "Neuromancer", Author: "William Gibson", Condition: models.ConditionPoor, OwnerID: bob.ID, CreatedAt: base.Add(time.Minute)},
		{Title: "Count Zero", Author: "William Gibson", Condition: models.ConditionGood, Description: "Sprawl trilogy", OwnerID: bob.ID, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range books {
		require.NoError(t, db.CreateBook(ctx, &books[i]))
	}

	// No filter: everything available, newest first
	page, err := db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Count Zero", page.Items[0].Title)
	assert.Equal(t, "Dune", page.Items[2].Title)
	require.NotNil(t, page.Items[0].Owner, "owner should be preloaded")

	// Title filter is case-insensitive substring
	page, err = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Title: "zero"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Count Zero", page.Items[0].Title)

	// Author filter is case-insensitive substring
	page, err = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Author: "gibson"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	// Condition filter is exact
	page, err = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Condition: models.ConditionPoor})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Neuromancer", page.Items[0].Title)

	// Free-text query reaches the description
	page, err = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{Query: "sprawl"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Count Zero", page.Items[0].Title)

	// Viewer exclusion hides the viewer's own listings
	page, err = db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{ExcludeOwner: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Dune", page.Items[0].Title)
}

func TestPostgresDB_Pagination(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner, err := db.UpsertUser(ctx, 1, "Alice", "alice")
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		book := models.Book{
			Title:     "Book",
			Condition: models.ConditionGood,
			OwnerID:   owner.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.CreateBook(ctx, &book))
	}

	seen := map[uint]bool{}
	for pageNum := 1; pageNum <= 3; pageNum++ {
		page, err := db.ListAvailableBooks(ctx, pageNum, 3, storage.BookFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(7), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		for _, book := range page.Items {
			assert.False(t, seen[book.ID], "book %d appeared twice", book.ID)
			seen[book.ID] = true
		}
	}
	assert.Len(t, seen, 7, "every book should appear exactly once across pages")
}

func TestPostgresDB_EqualTimestampOrdering(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner, err := db.UpsertUser(ctx, 1, "Alice", "alice")
	require.NoError(t, err)

	// Same created_at for every row; id must break the tie so rows never
	// swap between pages
	created := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		book := models.Book{
			Title:     "Book",
			Condition: models.ConditionGood,
			OwnerID:   owner.ID,
			CreatedAt: created,
		}
		require.NoError(t, db.CreateBook(ctx, &book))
	}

	var order []uint
	for pageNum := 1; pageNum <= 3; pageNum++ {
		page, err := db.ListAvailableBooks(ctx, pageNum, 2, storage.BookFilter{})
		require.NoError(t, err)
		for _, book := range page.Items {
			order = append(order, book.ID)
		}
	}

	require.Len(t, order, 5, "every book should appear exactly once across pages")
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i-1], order[i], "ids must be strictly descending across pages")
	}
}

func TestPostgresDB_MarkBookSold(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	owner, err := db.UpsertUser(ctx, 1, "Alice", "alice")
	require.NoError(t, err)

	book := &models.Book{Title: "Dune", Condition: models.ConditionGood, OwnerID: owner.ID}
	require.NoError(t, db.CreateBook(ctx, book))

	require.NoError(t, db.MarkBookSold(ctx, book.ID))

	stored, err := db.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSold)

	page, err := db.ListAvailableBooks(ctx, 1, 10, storage.BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	userBooks, err := db.ListUserBooks(ctx, owner.ID, true)
	require.NoError(t, err)
	require.Len(t, userBooks, 1)
	assert.True(t, userBooks[0].IsSold)

	activeBooks, err := db.ListUserBooks(ctx, owner.ID, false)
	require.NoError(t, err)
	assert.Empty(t, activeBooks)

	assert.ErrorIs(t, db.MarkBookSold(ctx, 9999), storage.ErrNotFound)
}
