package dashboard

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/room-booking/internal/application"
)

const (
	msgInvalidCredentials = "Невірний email або пароль."
	msgDuplicateEmail     = "Користувач з таким email вже існує."
	msgPasswordMismatch   = "Паролі не співпадають!"
	msgInvalidTimeRange   = "Час початку має бути раніше часу закінчення."
	msgUnauthorized       = "Недостатньо прав для виконання цієї операції."
	msgRoomNotFound       = "Кімнату не знайдено."
	msgBookingNotFound    = "Бронювання не знайдено."
	msgOperationFailed    = "Операція не вдалася"
	msgBusy               = "Операція вже виконується."
	msgInvalidInput       = "Перевірте введені дані"
	msgLoginFailed        = "Помилка входу."
	msgRegisterFailed     = "Помилка реєстрації."
)

// describe turns err into the message stored on a slice. notFound names the
// missing entity for the slice; fallback covers unexpected errors.
func describe(err error, notFound, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBusy):
		return msgBusy
	case errors.Is(err, application.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, application.ErrDuplicateEmail):
		return msgDuplicateEmail
	case errors.Is(err, application.ErrPasswordMismatch):
		return msgPasswordMismatch
	case errors.Is(err, application.ErrInvalidTimeRange):
		return msgInvalidTimeRange
	case errors.Is(err, application.ErrUnauthorized):
		return msgUnauthorized
	case errors.Is(err, application.ErrNotFound) && notFound != "":
		return notFound
	case errors.Is(err, application.ErrOperationFailed):
		return msgOperationFailed
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		return msgInvalidInput + ": " + localizeValidationErrors(vErr)
	}
	return fallback
}

func localizeValidationErrors(vErr *application.ValidationError) string {
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, translateValidationMessage(vErr.FieldErrors[field]))
	}
	return strings.Join(parts, " ")
}

func translateValidationMessage(message string) string {
	switch message {
	case "name is required":
		return "Назва обов'язкова."
	case "email is required":
		return "Email обов'язковий."
	case "password is required":
		return "Пароль обов'язковий."
	case "title is required":
		return "Тема обов'язкова."
	case "room is required":
		return "Оберіть кімнату."
	case "room does not exist":
		return msgRoomNotFound
	default:
		return message
	}
}
