package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bookswap/internal/i18n"
	"bookswap/internal/listing"
	"bookswap/internal/models"
)

// handleStart registers the sender and shows the welcome message
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user, err := b.ensureUser(ctx, message.From)
	if err != nil {
		b.logger.Error("Failed to upsert user", zap.Error(err), zap.Int64("user_id", message.From.ID))
		b.reply(message.Chat.ID, i18n.T("Something went wrong. Please try again."))
		return
	}

	text := i18n.Tf(`👋 Welcome to the Book Swap Marketplace, %s!

Available commands:
/addbook - List a book (or /addbook Title|Author|Condition)
/browse - Browse available books
/search - Search for specific books
/mybooks - Manage your listings
/cancel - Abort the current flow
/help - Show this list again`, user.DisplayName)

	b.reply(message.Chat.ID, text)
	b.logger.Info("User started the bot", zap.Int64("user_id", user.TelegramID))
}

// handleHelp lists the main commands
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := i18n.T(`Here are the main commands:
/start - show welcome message
/addbook - start the listing flow
/browse - browse available books
/search - search for specific books
/mybooks - manage your listings
/cancel - abort the current flow`)
	b.reply(message.Chat.ID, text)
}

// handleAddBook starts the guided listing flow, or commits immediately when
// the one-line pipe-delimited shortcut is used
func (b *Bot) handleAddBook(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	args := strings.TrimSpace(message.CommandArguments())

	if args != "" && strings.Contains(args, "|") {
		draft, err := listing.ParseOneLine(args)
		if err != nil {
			b.reply(message.Chat.ID, i18n.T("❌ Invalid format. Use: /addbook Title|Author|Condition"))
			return
		}
		b.commitDraft(ctx, message.Chat.ID, message.From, draft)
		return
	}

	// Guided flow
	state := &ConversationState{Flow: FlowAddBook, State: listing.StateTitle}
	b.setState(userID, state)
	b.promptFor(message.Chat.ID, state)
}

// commitDraft inserts a complete draft as a Book owned by the sender
func (b *Bot) commitDraft(ctx context.Context, chatID int64, from *tgbotapi.User, draft *listing.Draft) {
	seller, err := b.ensureUser(ctx, from)
	if err != nil {
		b.logger.Error("Failed to upsert user", zap.Error(err), zap.Int64("user_id", from.ID))
		b.reply(chatID, i18n.T("Something went wrong. Please try again."))
		return
	}

	book := &models.Book{
		Title:       draft.Title,
		Author:      draft.Author,
		Condition:   draft.Condition,
		Price:       draft.Price,
		Description: draft.Description,
		OwnerID:     seller.ID,
		Owner:       seller,
	}
	if err := b.db.CreateBook(ctx, book); err != nil {
		b.logger.Error("Failed to create book",
			zap.Error(err),
			zap.Int64("user_id", from.ID),
			zap.String("title", draft.Title),
		)
		b.reply(chatID, i18n.T("Something went wrong. Please try again."))
		return
	}

	var text strings.Builder
	text.WriteString(i18n.T("✅ Book added successfully!") + "\n\n")
	text.WriteString(i18n.Tf("Title: %s\n", book.Title))
	text.WriteString(i18n.Tf("Author: %s\n", book.Author))
	text.WriteString(i18n.Tf("Condition: %s\n", i18n.T(book.Condition.Label())))
	if book.Description != "" {
		text.WriteString(i18n.Tf("Description: %s\n", book.Description))
	}
	text.WriteString(i18n.Tf("Book ID: %d", book.ID))
	b.replyRemovingKeyboard(chatID, text.String())

	b.logger.Info("Book listed",
		zap.Int64("user_id", from.ID),
		zap.Uint("book_id", book.ID),
		zap.String("title", book.Title),
	)
}

// handleBrowse shows the first page of available listings
func (b *Bot) handleBrowse(ctx context.Context, message *tgbotapi.Message) {
	page, err := b.fetchListingPage(ctx, message.From, "", 1)
	if err != nil {
		b.logger.Error("Failed to list books", zap.Error(err))
		b.reply(message.Chat.ID, i18n.T("Something went wrong. Please try again."))
		return
	}
	if page.Total == 0 {
		b.reply(message.Chat.ID, i18n.T("No books are available yet. Try again soon!"))
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, browsePageText(page))
	msg.ReplyMarkup = listingKeyboard(page, cbBrowse)
	b.sendMessage(msg)
}

// handleSearchStart begins the search flow; the next message is the query
func (b *Bot) handleSearchStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{Flow: FlowSearch, AwaitingQuery: true})
	b.reply(message.Chat.ID, i18n.T("🔎 Search Books\n\nEnter keywords to search by title, author or description:"))
}

// handleMyBooks shows the sender's active listings with mark-sold buttons
func (b *Bot) handleMyBooks(ctx context.Context, message *tgbotapi.Message) {
	user, err := b.ensureUser(ctx, message.From)
	if err != nil {
		b.logger.Error("Failed to upsert user", zap.Error(err), zap.Int64("user_id", message.From.ID))
		b.reply(message.Chat.ID, i18n.T("Something went wrong. Please try again."))
		return
	}

	books, err := b.db.ListUserBooks(ctx, user.ID, false)
	if err != nil {
		b.logger.Error("Failed to list user books", zap.Error(err), zap.Int64("user_id", message.From.ID))
		b.reply(message.Chat.ID, i18n.T("Something went wrong. Please try again."))
		return
	}

	if len(books) == 0 {
		b.reply(message.Chat.ID, i18n.T("You have no active listings right now.\n\nAdd your first book with /addbook"))
		return
	}

	var text strings.Builder
	text.WriteString(i18n.T("📚 Your active listings:") + "\n")
	for i := range books {
		text.WriteString("\n" + formatBookSummary(&books[i]) + "\n")
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text.String())
	msg.ReplyMarkup = manageKeyboard(books)
	b.sendMessage(msg)
}
