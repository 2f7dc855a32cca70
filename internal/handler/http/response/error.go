package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

var kindStatus = map[leave.Kind]int{
	leave.KindValidation:          http.StatusUnprocessableEntity,
	leave.KindNotFound:            http.StatusNotFound,
	leave.KindForbidden:           http.StatusForbidden,
	leave.KindInvalidState:        http.StatusConflict,
	leave.KindInsufficientBalance: http.StatusUnprocessableEntity,
	leave.KindConcurrency:         http.StatusConflict,
	leave.KindConflict:            http.StatusConflict,
}

// StatusForKind returns the HTTP status a leave error kind renders as.
func StatusForKind(kind leave.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if e, ok := leave.AsError(err); ok {
		Error(w, StatusForKind(e.Kind), e.Code, e.Message, e.Details)
		return
	}

	switch {
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrEmployeeIDRequired), errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, err.Error())

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
