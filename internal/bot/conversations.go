package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bookswap/internal/i18n"
	"bookswap/internal/listing"
)

// handleConversation processes free-text input for the active flow
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	text := strings.TrimSpace(message.Text)

	// The condition keyboard carries a Cancel button; accept it from any step
	if strings.EqualFold(text, i18n.T("Cancel")) {
		b.clearState(message.From.ID)
		b.replyRemovingKeyboard(message.Chat.ID, i18n.T("✅ Canceled! Back to the main menu."))
		return
	}

	switch state.Flow {
	case FlowAddBook:
		b.handleListingConversation(message, state)
	case FlowSearch:
		if state.AwaitingQuery {
			b.handleSearchQuery(ctx, message, state)
			return
		}
		b.reply(message.Chat.ID, i18n.T("Use /start to see available commands."))
	}
}

// handleListingConversation feeds one message into the listing state machine.
// Invalid input re-prompts without advancing the state.
func (b *Bot) handleListingConversation(message *tgbotapi.Message, state *ConversationState) {
	next, err := listing.Advance(state.State, &state.Draft, message.Text)
	if err != nil {
		b.reply(message.Chat.ID, repromptText(err))
		return
	}

	state.State = next
	b.promptFor(message.Chat.ID, state)
}

// repromptText maps a flow input error to the user-facing re-prompt
func repromptText(err error) string {
	switch {
	case errors.Is(err, listing.ErrEmptyTitle):
		return i18n.T("Please provide a title.")
	case errors.Is(err, listing.ErrUnknownCondition):
		return i18n.T("Please choose a condition from the keyboard options.")
	case errors.Is(err, listing.ErrInvalidPrice):
		return i18n.T("Please send a valid non-negative price (e.g., 15.00).")
	}
	return i18n.T("Sorry, I didn't understand that.")
}

// promptFor sends the prompt for the flow's current state
func (b *Bot) promptFor(chatID int64, state *ConversationState) {
	switch state.State {
	case listing.StateTitle:
		b.replyRemovingKeyboard(chatID, i18n.T("Let's list a book! What is the title?"))
	case listing.StateAuthor:
		b.reply(chatID, i18n.T("Who's the author? Send 'skip' if unknown."))
	case listing.StateCondition:
		msg := tgbotapi.NewMessage(chatID, i18n.T("Select the condition:"))
		msg.ReplyMarkup = conditionKeyboard()
		b.sendMessage(msg)
	case listing.StatePrice:
		b.replyRemovingKeyboard(chatID, i18n.T("What price are you asking? Use numbers only (e.g., 12.50)."))
	case listing.StateDescription:
		b.reply(chatID, i18n.T("Add an optional description or send 'skip'."))
	case listing.StateConfirm:
		msg := tgbotapi.NewMessage(chatID, formatDraftPreview(&state.Draft))
		msg.ReplyMarkup = confirmKeyboard()
		b.sendMessage(msg)
	}
}

// handleSearchQuery runs a search with the entered term and shows page one
func (b *Bot) handleSearchQuery(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	query := strings.TrimSpace(message.Text)
	if query == "" {
		b.reply(message.Chat.ID, i18n.T("Please enter a search term."))
		return
	}

	// Keep the query around so pagination callbacks can re-run it
	state.AwaitingQuery = false
	state.Query = query

	page, err := b.fetchListingPage(ctx, message.From, query, 1)
	if err != nil {
		b.logger.Error("Failed to search books", zap.Error(err), zap.String("query", query))
		b.reply(message.Chat.ID, i18n.T("Something went wrong. Please try again."))
		return
	}

	if page.Total == 0 {
		b.reply(message.Chat.ID, i18n.Tf("🔍 No books found for '%s'\n\nTry different keywords or /browse all books instead.", query))
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, searchPageText(query, page))
	msg.ReplyMarkup = listingKeyboard(page, cbSearch)
	b.sendMessage(msg)
}

// replyRemovingKeyboard sends text and clears any reply keyboard
func (b *Bot) replyRemovingKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	b.sendMessage(msg)
}
