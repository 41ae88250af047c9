package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bookswap/internal/models"
)

// State identifies the current step of the guided listing flow.
//
// The flow advances linearly from StateTitle to StateConfirm; StateConfirm
// is the only branching point (commit or discard). StateIdle means no flow
// is active.
type State int

const (
	StateIdle State = iota
	StateTitle
	StateAuthor
	StateCondition
	StatePrice
	StateDescription
	StateConfirm
)

// String returns the state name for logs
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTitle:
		return "awaiting_title"
	case StateAuthor:
		return "awaiting_author"
	case StateCondition:
		return "awaiting_condition"
	case StatePrice:
		return "awaiting_price"
	case StateDescription:
		return "awaiting_description"
	case StateConfirm:
		return "awaiting_confirmation"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Draft holds the listing fields collected so far. It lives in transient
// conversation state and becomes a Book row only on confirmation.
type Draft struct {
	Title       string
	Author      string
	Condition   models.Condition
	Price       decimal.Decimal
	Description string
}

// Input errors. The flow stays on the same state and the caller re-prompts.
var (
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrUnknownCondition = errors.New("condition is not one of the offered options")
	ErrInvalidPrice     = errors.New("price must be a non-negative number")
)

// ErrUsage is returned when a one-line /addbook argument cannot be parsed
var ErrUsage = errors.New("expected Title|Author|Condition with an optional |Description")

// SkipKeyword lets users leave an optional field empty
const SkipKeyword = "skip"

// Advance feeds one message into the flow. On success it records the input
// in the draft and returns the next state; on an input error the state is
// returned unchanged. StateConfirm and StateIdle accept no free text and
// fall through with an error.
func Advance(st State, d *Draft, input string) (State, error) {
	text := strings.TrimSpace(input)

	switch st {
	case StateTitle:
		if text == "" {
			return st, ErrEmptyTitle
		}
		d.Title = text
		return StateAuthor, nil

	case StateAuthor:
		if !strings.EqualFold(text, SkipKeyword) {
			d.Author = text
		}
		return StateCondition, nil

	case StateCondition:
		cond, ok := models.ParseCondition(text)
		if !ok {
			return st, ErrUnknownCondition
		}
		d.Condition = cond
		return StatePrice, nil

	case StatePrice:
		price, err := decimal.NewFromString(text)
		if err != nil || price.IsNegative() {
			return st, ErrInvalidPrice
		}
		d.Price = price
		return StateDescription, nil

	case StateDescription:
		if !strings.EqualFold(text, SkipKeyword) {
			d.Description = text
		}
		return StateConfirm, nil
	}

	return st, fmt.Errorf("state %s accepts no text input", st)
}

// ParseOneLine parses the pipe-delimited shortcut
// "Title|Author|Condition(|Description)" into a complete draft. Title,
// author and a recognized condition are required; anything after the third
// delimiter is the description. The draft carries no price.
func ParseOneLine(args string) (*Draft, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 3 {
		return nil, ErrUsage
	}

	title := strings.TrimSpace(parts[0])
	author := strings.TrimSpace(parts[1])
	conditionText := strings.TrimSpace(parts[2])
	if title == "" || author == "" || conditionText == "" {
		return nil, ErrUsage
	}

	condition, ok := models.ParseCondition(conditionText)
	if !ok {
		return nil, ErrUsage
	}

	draft := &Draft{
		Title:     title,
		Author:    author,
		Condition: condition,
	}
	if len(parts) > 3 {
		draft.Description = strings.TrimSpace(strings.Join(parts[3:], "|"))
	}
	return draft, nil
}
