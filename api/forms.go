package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// titleForm is the single-field form used for both list and todo titles
type titleForm struct {
	Title string `validate:"required,max=100"`
}

// titleMessages are the user-facing messages for one kind of title
type titleMessages struct {
	Field    string
	Required string
	Length   string
	Unique   string
}

var (
	listTitleMessages = titleMessages{
		Field:    "todoListTitle",
		Required: "The list title is required.",
		Length:   "List title must be between 1 and 100 characters.",
		Unique:   "List title must be unique.",
	}
	todoTitleMessages = titleMessages{
		Field:    "todoTitle",
		Required: "The todo title is required.",
		Length:   "Todo title must be between 1 and 100 characters.",
	}
)

// validateTitle trims the title and checks it against the form rules.
// It returns the trimmed title and the messages for every failed rule.
func validateTitle(raw string, msgs titleMessages) (string, []string) {
	form := titleForm{Title: strings.TrimSpace(raw)}

	err := validate.Struct(form)
	if err == nil {
		return form.Title, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return form.Title, []string{err.Error()}
	}

	var problems []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, msgs.Required)
		case "max":
			problems = append(problems, msgs.Length)
		default:
			problems = append(problems, fe.Error())
		}
	}
	return form.Title, problems
}
