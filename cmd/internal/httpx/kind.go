package httpx

import (
	"net/http"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
)

// KindStatus maps a failure kind to its HTTP status and stable code.
func KindStatus(k invitation.Kind) (int, APIError) {
	switch k {
	case invitation.KindValidation:
		return http.StatusBadRequest, APIError{Code: "invalid_request", Message: "request is missing required fields"}
	case invitation.KindAccessDenied:
		return http.StatusForbidden, APIError{Code: "access_denied", Message: "you are not allowed to do this"}
	case invitation.KindNotFound:
		return http.StatusNotFound, APIError{Code: "invalid_invitation", Message: "this invitation does not exist"}
	case invitation.KindTimeout:
		return http.StatusGatewayTimeout, APIError{Code: "timeout", Message: "the server took too long, please try again", Retryable: true}
	case invitation.KindPersistence:
		return http.StatusBadGateway, APIError{Code: "persistence_failed", Message: "could not save changes, please try again", Retryable: true}
	case invitation.KindRender:
		return http.StatusInternalServerError, APIError{Code: "render_failed", Message: "could not create the flyer, please try again", Retryable: true}
	default:
		return http.StatusInternalServerError, APIError{Code: "server_error", Message: "internal error"}
	}
}

// WriteKindError classifies err and writes the matching response. Backend
// error text never reaches the body.
func WriteKindError(w http.ResponseWriter, err error) invitation.Kind {
	k := invitation.KindOf(err)
	status, body := KindStatus(k)
	WriteAPIError(w, status, body)
	return k
}
