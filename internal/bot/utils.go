package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bookswap/internal/i18n"
	"bookswap/internal/listing"
	"bookswap/internal/models"
)

// sendMessage sends any chattable, tolerating a nil API for tests
func (b *Bot) sendMessage(c tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

// reply sends plain text to a chat
func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// answerCallback acknowledges a callback query, optionally as an alert
func (b *Bot) answerCallback(queryID, text string, alert bool) {
	if b.api == nil {
		return // For testing
	}
	callback := tgbotapi.NewCallback(queryID, text)
	if alert {
		callback = tgbotapi.NewCallbackWithAlert(queryID, text)
	}
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

// ensureUser upserts the sender so every interaction refreshes the profile
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	display := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if display == "" {
		display = from.UserName
	}
	if display == "" {
		display = strconv.FormatInt(from.ID, 10)
	}
	return b.db.UpsertUser(ctx, from.ID, display, from.UserName)
}

// contactDisplay builds a buyer contact string from the raw Telegram user
func contactDisplay(from *tgbotapi.User) string {
	if from.UserName != "" {
		return "@" + from.UserName
	}
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name != "" {
		return name
	}
	return fmt.Sprintf("tg:%d", from.ID)
}

// formatBookSummary renders a concise multi-line summary of a listing
func formatBookSummary(book *models.Book) string {
	author := book.Author
	if author == "" {
		author = i18n.T("Unknown")
	}
	seller := i18n.T("Unknown")
	if book.Owner != nil {
		seller = book.Owner.ContactDisplay()
	}
	listed := "—"
	if !book.CreatedAt.IsZero() {
		listed = book.CreatedAt.Format("2006-01-02 15:04 UTC")
	}

	var text strings.Builder
	text.WriteString(book.Title + "\n")
	text.WriteString(i18n.Tf("Author: %s\n", author))
	text.WriteString(i18n.Tf("Condition: %s\n", i18n.T(book.Condition.Label())))
	text.WriteString(i18n.Tf("Price: %s\n", book.Price.StringFixed(2)))
	text.WriteString(i18n.Tf("Listed: %s\n", listed))
	text.WriteString(i18n.Tf("Seller: %s\n", seller))
	text.WriteString(i18n.Tf("Book ID: %d", book.ID))
	return text.String()
}

// formatDraftPreview renders the confirmation summary of a draft
func formatDraftPreview(draft *listing.Draft) string {
	author := draft.Author
	if author == "" {
		author = i18n.T("Unknown")
	}
	description := draft.Description
	if description == "" {
		description = "—"
	}
	return i18n.Tf(
		"Please confirm your listing:\n\nTitle: %s\nAuthor: %s\nCondition: %s\nPrice: %s\nDescription: %s",
		draft.Title, author, i18n.T(draft.Condition.Label()), draft.Price.StringFixed(2), description,
	)
}
