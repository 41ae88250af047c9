package pg

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookswap/internal/models"
	"bookswap/internal/storage"
)

// PostgresDB implements storage.Storage using GORM over Postgres
type PostgresDB struct {
	db *gorm.DB
}

// NewPostgresDB opens a Postgres connection and verifies it with a ping
func NewPostgresDB(dsn string) (*PostgresDB, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

// Initialize runs GORM auto-migration for all persisted models. Versioned
// schema changes go through cmd/migrate; auto-migration keeps fresh
// databases (dev runner, integration tests) usable without it.
func (p *PostgresDB) Initialize(ctx context.Context) error {
	err := p.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.BookRequest{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}

// UpsertUser creates or refreshes the user row keyed by Telegram id
func (p *PostgresDB) UpsertUser(ctx context.Context, telegramID int64, displayName, username string) (*models.User, error) {
	var user models.User
	err := p.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			TelegramID:  telegramID,
			DisplayName: displayName,
			Username:    username,
		}
		if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.DisplayName != displayName || user.Username != username {
		user.DisplayName = displayName
		user.Username = username
		if err := p.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}
	return &user, nil
}

// CreateBook inserts a new listing
func (p *PostgresDB) CreateBook(ctx context.Context, book *models.Book) error {
	if err := p.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook returns a listing with its owner preloaded
func (p *PostgresDB) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := p.db.WithContext(ctx).Preload("Owner").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// ListAvailableBooks returns non-sold listings matching the filter, newest first
func (p *PostgresDB) ListAvailableBooks(ctx context.Context, page, perPage int, filter storage.BookFilter) (*storage.BookPage, error) {
	if page < 1 {
		page = 1
	}

	query := p.db.WithContext(ctx).Model(&models.Book{}).Where("is_sold = ?", false)
	if filter.Title != "" {
		query = query.Where("title ILIKE ?", "%"+strings.TrimSpace(filter.Title)+"%")
	}
	if filter.Author != "" {
		query = query.Where("author ILIKE ?", "%"+strings.TrimSpace(filter.Author)+"%")
	}
	if filter.Condition != "" {
		query = query.Where("condition = ?", filter.Condition)
	}
	if filter.Query != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(filter.Query)) + "%"
		query = query.Where(
			"lower(title) LIKE ? OR lower(author) LIKE ? OR lower(description) LIKE ?",
			term, term, term,
		)
	}
	if filter.ExcludeOwner != 0 {
		query = query.Where("owner_id <> ?", filter.ExcludeOwner)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	var books []models.Book
	err := query.
		Preload("Owner").
		// id breaks created_at ties so pagination stays stable across pages
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return &storage.BookPage{
		Items:      books,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: storage.TotalPages(total, perPage),
	}, nil
}

// ListUserBooks returns one seller's listings, newest first
func (p *PostgresDB) ListUserBooks(ctx context.Context, ownerID uint, includeSold bool) ([]models.Book, error) {
	query := p.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if !includeSold {
		query = query.Where("is_sold = ?", false)
	}

	var books []models.Book
	if err := query.Preload("Owner").Order("created_at DESC, id DESC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list user books: %w", err)
	}
	return books, nil
}

// MarkBookSold flips the availability flag on a listing
func (p *PostgresDB) MarkBookSold(ctx context.Context, id uint) error {
	res := p.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Update("is_sold", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark book sold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close closes the database connection
func (p *PostgresDB) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
