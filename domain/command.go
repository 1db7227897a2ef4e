package domain

import (
	"fmt"
	"live-poll/errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type CreatePollCommand struct {
	Question  string   `json:"question" validate:"required,max=280"`
	Options   []string `json:"options" validate:"required,min=1,dive,required,max=120"`
	CreatedBy UserID   `json:"-" validate:"required"`
}

// Normalize trims the question and every label.
func (c CreatePollCommand) Normalize() CreatePollCommand {
	c.Question = strings.TrimSpace(c.Question)
	c.Options = lo.Map(c.Options, func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return c
}

// ValidateCreate rejects a command that would break poll invariants.
// Duplicate labels are reported, never silently merged.
func ValidateCreate(c CreatePollCommand) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidPoll, describe(err))
	}
	if dups := lo.FindDuplicates(c.Options); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate option %q", errors.ErrInvalidPoll, dups[0])
	}
	return nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch {
	case fe.StructField() == "Question" && fe.Tag() == "required":
		return "question is required"
	case fe.StructField() == "Question":
		return "question is too long"
	case fe.StructField() == "Options" && (fe.Tag() == "required" || fe.Tag() == "min"):
		return "at least one option is required"
	case strings.HasPrefix(fe.StructField(), "Options") && fe.Tag() == "required":
		return "options cannot be empty"
	case strings.HasPrefix(fe.StructField(), "Options"):
		return "option is too long"
	case fe.StructField() == "CreatedBy":
		return "creator is required"
	default:
		return fe.Error()
	}
}

// VoteCommand is a parsed vote already bound to an authenticated user.
type VoteCommand struct {
	PollID       PollID
	UserID       UserID
	Option       string
	ConnectionID string
	ReceivedAt   time.Time
}
