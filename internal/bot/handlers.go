package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bookswap/internal/i18n"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, i18n.T("An error occurred while processing your request. Please try again."))
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Check if user is in a conversation
	if state, ok := b.getState(userID); ok {
		if message.IsCommand() {
			// Any command interrupts an ongoing flow and discards the draft
			b.clearState(userID)
			if message.Command() == "cancel" {
				b.replyRemovingKeyboard(message.Chat.ID, i18n.T("✅ Canceled! Back to the main menu."))
				return
			}
			// Continue to process the new command below
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		b.reply(message.Chat.ID, i18n.T("Use /start to see available commands."))
		return
	}

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(message)
	case "cancel":
		b.reply(message.Chat.ID, i18n.T("❌ You're not in any process to cancel."))
	case "addbook":
		b.handleAddBook(ctx, message)
	case "browse":
		b.handleBrowse(ctx, message)
	case "search":
		b.handleSearchStart(message)
	case "mybooks":
		b.handleMyBooks(ctx, message)
	default:
		b.reply(message.Chat.ID, i18n.T("Unknown command. Use /start to see available commands."))
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()
	data := query.Data

	switch {
	case strings.HasPrefix(data, cbConfirm):
		b.handleConfirmCallback(ctx, query)
	case strings.HasPrefix(data, cbBrowse):
		b.handleBrowseCallback(ctx, query)
	case strings.HasPrefix(data, cbSearch):
		b.handleSearchCallback(ctx, query)
	case strings.HasPrefix(data, cbManage):
		b.handleManageCallback(ctx, query)
	default:
		b.answerCallback(query.ID, "", false)
	}
}
