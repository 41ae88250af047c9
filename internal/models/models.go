package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Condition is the physical condition of a listed book
type Condition string

const (
	ConditionNew        Condition = "new"
	ConditionLikeNew    Condition = "like_new"
	ConditionGood       Condition = "good"
	ConditionAcceptable Condition = "acceptable"
	ConditionPoor       Condition = "poor"
)

// Conditions returns all valid conditions in display order
func Conditions() []Condition {
	return []Condition{
		ConditionNew,
		ConditionLikeNew,
		ConditionGood,
		ConditionAcceptable,
		ConditionPoor,
	}
}

// Label returns a human-friendly label for the condition
func (c Condition) Label() string {
	switch c {
	case ConditionNew:
		return "New"
	case ConditionLikeNew:
		return "Like new"
	case ConditionGood:
		return "Good"
	case ConditionAcceptable:
		return "Acceptable"
	case ConditionPoor:
		return "Poor"
	}
	return string(c)
}

// ParseCondition matches user input against the condition set. Both the
// canonical value ("like_new") and the label ("Like new") are accepted,
// case-insensitively.
func ParseCondition(s string) (Condition, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Conditions() {
		if normalized == string(c) || normalized == strings.ToLower(c.Label()) {
			return c, true
		}
	}
	return "", false
}

// User represents a registered Telegram user. Rows are created on first
// interaction and refreshed on every interaction; never deleted.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	TelegramID  int64  `gorm:"uniqueIndex;not null"`
	Username    string `gorm:"size:64"`
	DisplayName string `gorm:"size:128"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Books []Book `gorm:"foreignKey:OwnerID"`
}

// ContactDisplay returns a contact string safe to show to other users
func (u *User) ContactDisplay() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return fmt.Sprintf("tg:%d", u.TelegramID)
}

// Book represents one listing offered for exchange. Ownership is fixed at
// creation; the only mutation in scope is flipping IsSold.
type Book struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"size:256;not null;index"`
	Author      string          `gorm:"size:256;index"`
	Condition   Condition       `gorm:"size:16;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)"`
	Description string          `gorm:"size:2000"`
	IsSold      bool            `gorm:"not null;default:false;index:idx_books_sold_created,priority:1"`
	OwnerID     uint            `gorm:"not null;index"`
	Owner       *User           `gorm:"foreignKey:OwnerID"`
	CreatedAt   time.Time       `gorm:"index:idx_books_sold_created,priority:2"`
}

// BookRequest is scaffolding for a future swap negotiation workflow.
// No handler operates on it yet.
type BookRequest struct {
	ID          uint `gorm:"primaryKey"`
	BookID      uint `gorm:"not null;index"`
	RequesterID uint `gorm:"not null;index"`
	CreatedAt   time.Time
}
