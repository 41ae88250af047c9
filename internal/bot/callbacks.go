package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bookswap/internal/i18n"
	"bookswap/internal/listing"
	"bookswap/internal/models"
	"bookswap/internal/storage"
)

// handleConfirmCallback commits or discards the draft at the confirmation
// step. Commit failures keep the draft in place so the user can retry.
func (b *Bot) handleConfirmCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action := strings.TrimPrefix(query.Data, cbConfirm)
	userID := query.From.ID

	state, ok := b.getState(userID)
	if !ok || state.Flow != FlowAddBook || state.State != listing.StateConfirm {
		b.answerCallback(query.ID, i18n.T("Nothing to confirm."), false)
		return
	}

	switch action {
	case "cancel":
		b.clearState(userID)
		b.answerCallback(query.ID, "", false)
		b.editMessageText(query, i18n.T("Listing cancelled."))

	case "commit":
		seller, err := b.ensureUser(ctx, query.From)
		if err != nil {
			b.logger.Error("Failed to upsert user", zap.Error(err), zap.Int64("user_id", userID))
			b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
			return
		}

		book := &models.Book{
			Title:       state.Draft.Title,
			Author:      state.Draft.Author,
			Condition:   state.Draft.Condition,
			Price:       state.Draft.Price,
			Description: state.Draft.Description,
			OwnerID:     seller.ID,
			Owner:       seller,
		}
		if err := b.db.CreateBook(ctx, book); err != nil {
			b.logger.Error("Failed to create book",
				zap.Error(err),
				zap.Int64("user_id", userID),
				zap.String("title", state.Draft.Title),
			)
			// Draft survives for a retry of the confirm button
			b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
			return
		}

		b.clearState(userID)
		b.answerCallback(query.ID, i18n.T("Listing published!"), false)
		b.editMessageText(query, i18n.Tf("✅ Book listed! (ID #%d)", book.ID))
		b.logger.Info("Book listed",
			zap.Int64("user_id", userID),
			zap.Uint("book_id", book.ID),
			zap.String("title", book.Title),
		)

	default:
		b.answerCallback(query.ID, "", false)
	}
}

// handleBrowseCallback serves pagination and contact actions for /browse
func (b *Bot) handleBrowseCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := strings.TrimPrefix(query.Data, cbBrowse)

	switch {
	case strings.HasPrefix(data, "page:"):
		pageNum := parsePageNumber(strings.TrimPrefix(data, "page:"))
		page, err := b.fetchListingPage(ctx, query.From, "", pageNum)
		if err != nil {
			b.logger.Error("Failed to list books", zap.Error(err))
			b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
			return
		}
		b.editListingPage(query, browsePageText(page), page, cbBrowse)
		b.answerCallback(query.ID, "", false)

	case strings.HasPrefix(data, "contact:"):
		b.contactSeller(ctx, query, strings.TrimPrefix(data, "contact:"))
	}
}

// handleSearchCallback serves pagination and contact actions for search
// results; pagination needs the query kept in conversation state
func (b *Bot) handleSearchCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := strings.TrimPrefix(query.Data, cbSearch)

	switch {
	case strings.HasPrefix(data, "page:"):
		state, ok := b.getState(query.From.ID)
		if !ok || state.Query == "" {
			b.answerCallback(query.ID, i18n.T("Search query not found. Please start a new search."), true)
			return
		}
		pageNum := parsePageNumber(strings.TrimPrefix(data, "page:"))
		page, err := b.fetchListingPage(ctx, query.From, state.Query, pageNum)
		if err != nil {
			b.logger.Error("Failed to search books", zap.Error(err), zap.String("query", state.Query))
			b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
			return
		}
		b.editListingPage(query, searchPageText(state.Query, page), page, cbSearch)
		b.answerCallback(query.ID, "", false)

	case strings.HasPrefix(data, "contact:"):
		b.contactSeller(ctx, query, strings.TrimPrefix(data, "contact:"))
	}
}

// contactSeller relays contact details both ways: the buyer gets the seller
// contact in chat, the seller gets a direct notification. Repeating the
// action just sends the messages again.
func (b *Bot) contactSeller(ctx context.Context, query *tgbotapi.CallbackQuery, idText string) {
	bookID, err := strconv.ParseUint(idText, 10, 32)
	if err != nil {
		b.answerCallback(query.ID, i18n.T("Missing book information."), true)
		return
	}

	book, err := b.db.GetBook(ctx, uint(bookID))
	if errors.Is(err, storage.ErrNotFound) {
		b.answerCallback(query.ID, i18n.T("This listing is no longer available."), true)
		return
	}
	if err != nil {
		b.logger.Error("Failed to get book", zap.Error(err), zap.Uint64("book_id", bookID))
		b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
		return
	}
	if book.IsSold {
		b.answerCallback(query.ID, i18n.T("This listing is no longer available."), true)
		return
	}

	if _, err := b.ensureUser(ctx, query.From); err != nil {
		b.logger.Error("Failed to upsert user", zap.Error(err), zap.Int64("user_id", query.From.ID))
	}

	sellerContact := i18n.T("Unavailable")
	if book.Owner != nil {
		sellerContact = book.Owner.ContactDisplay()
	}

	if query.Message != nil {
		b.reply(query.Message.Chat.ID, i18n.Tf(
			"Seller contact for '%s': %s\nMention that you're from the Book Swap Marketplace.",
			book.Title, sellerContact,
		))
	}

	if book.Owner != nil {
		b.notifySeller(book.Owner.TelegramID, book.Title, contactDisplay(query.From))
	}

	b.answerCallback(query.ID, i18n.T("Contact sent! 👌"), false)
}

// notifySeller messages the seller about buyer interest. Failures are
// swallowed: the seller may have blocked the bot.
func (b *Bot) notifySeller(sellerChatID int64, bookTitle, buyerContact string) {
	if b.api == nil {
		return // For testing
	}
	msg := tgbotapi.NewMessage(sellerChatID, i18n.Tf(
		"📚 Someone is interested in your book!\n\nBook: %s\nBuyer: %s\nReply directly in Telegram to arrange the exchange.",
		bookTitle, buyerContact,
	))
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Info("Seller could not be notified",
			zap.Int64("seller_id", sellerChatID),
			zap.Error(err),
		)
	}
}

// handleManageCallback flips a listing to sold, owners only
func (b *Bot) handleManageCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := strings.TrimPrefix(query.Data, cbManage)
	if !strings.HasPrefix(data, "sold:") {
		b.answerCallback(query.ID, "", false)
		return
	}

	bookID, err := strconv.ParseUint(strings.TrimPrefix(data, "sold:"), 10, 32)
	if err != nil {
		b.answerCallback(query.ID, i18n.T("Missing book information."), true)
		return
	}

	seller, err := b.ensureUser(ctx, query.From)
	if err != nil {
		b.logger.Error("Failed to upsert user", zap.Error(err), zap.Int64("user_id", query.From.ID))
		b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
		return
	}

	book, err := b.db.GetBook(ctx, uint(bookID))
	if errors.Is(err, storage.ErrNotFound) {
		b.answerCallback(query.ID, i18n.T("This listing is no longer available."), true)
		return
	}
	if err != nil {
		b.logger.Error("Failed to get book", zap.Error(err), zap.Uint64("book_id", bookID))
		b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
		return
	}

	if book.OwnerID != seller.ID {
		b.answerCallback(query.ID, i18n.T("You cannot modify this listing."), true)
		return
	}
	if book.IsSold {
		b.answerCallback(query.ID, i18n.T("Already marked as sold."), false)
		return
	}

	if err := b.db.MarkBookSold(ctx, book.ID); err != nil {
		b.logger.Error("Failed to mark book sold", zap.Error(err), zap.Uint("book_id", book.ID))
		b.answerCallback(query.ID, i18n.T("Something went wrong. Please try again."), true)
		return
	}

	b.answerCallback(query.ID, i18n.T("Marked as sold."), false)
	b.editMessageText(query, i18n.T("Listing marked as sold. Refresh /mybooks to see remaining items."))
	b.logger.Info("Book marked sold",
		zap.Int64("user_id", query.From.ID),
		zap.Uint("book_id", book.ID),
	)
}

// editMessageText replaces the message the callback originated from
func (b *Bot) editMessageText(query *tgbotapi.CallbackQuery, text string) {
	if query.Message == nil {
		return
	}
	b.sendMessage(tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text))
}

// editListingPage swaps the text and keyboard of a paginated listing message
func (b *Bot) editListingPage(query *tgbotapi.CallbackQuery, text string, page *storage.BookPage, prefix string) {
	if query.Message == nil {
		return
	}
	if len(page.Items) == 0 {
		b.editMessageText(query, text)
		return
	}
	b.sendMessage(tgbotapi.NewEditMessageTextAndMarkup(
		query.Message.Chat.ID,
		query.Message.MessageID,
		text,
		listingKeyboard(page, prefix),
	))
}

// parsePageNumber parses a pagination callback argument, clamped to >= 1
func parsePageNumber(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
