package web

// errors.go turns errors into JSON responses. Service errors are mapped
// through core.MapError, which picks the message, support code and status;
// malformed requests are answered directly with writeError.

import (
	"net/http"

	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/logging"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// respondError logs err with the request id and replies with its mapped
// message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"code", msg.Code,
		"error", err.Error(),
	)
	if msg.Status >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Warn("request rejected")
	}

	writeJSON(w, msg.Status, ErrorResponse{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// writeError replies to a request that never reached the service.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: "REQ000"})
}
