package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"bookswap/internal/listing"
	"bookswap/internal/storage"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api      *tgbotapi.BotAPI
	db       storage.Storage
	pageSize int
	states   map[int64]*ConversationState
	statesMu sync.Mutex
	logger   *zap.Logger
}

// Flow names the multi-step command a user is in
type Flow string

const (
	FlowAddBook Flow = "addbook"
	FlowSearch  Flow = "search"
)

// ConversationState tracks one user's in-flight flow, keyed by Telegram user
// id. A draft lives here until it is committed or discarded; there is no
// in-process timeout, an abandoned draft persists until the next command
// overwrites it.
type ConversationState struct {
	Flow  Flow
	State listing.State
	Draft listing.Draft

	// Search flow: AwaitingQuery marks that the next message is the search
	// term; Query keeps the last executed term for result pagination.
	AwaitingQuery bool
	Query         string
}

// getState returns the conversation state for a user, if any
func (b *Bot) getState(userID int64) (*ConversationState, bool) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	state, ok := b.states[userID]
	return state, ok
}

// setState installs a conversation state, replacing any previous one
func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

// clearState discards a user's conversation state and draft
func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}
