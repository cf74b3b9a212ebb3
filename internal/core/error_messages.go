package core

// error_messages.go maps errors from the tree, translation and import
// layers to messages with a support code and an HTTP status.
//
// Known sentinel errors are matched first with errors.Is. Anything else
// falls through to substring patterns on the error text, and finally to
// ERR000.
//
// Codes by category:
//
//	TREE001-TREE004  nested-set operations
//	I18N001-I18N002  translations
//	IMP001-IMP004    spreadsheet import
//	DB001-DB005      database and driver failures
//	REQ001-REQ002    request lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/importer"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Status  int    // HTTP status for API responses
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

var errorSentinels = []errorSentinel{
	{
		target: nestedset.ErrNotFound,
		msg: UserMessage{
			Message: "Record not found",
			Action:  "Check that the referenced node, user or term exists",
			Code:    "TREE001",
			Status:  http.StatusNotFound,
		},
	},
	{
		target: nestedset.ErrInvalidHierarchy,
		msg: UserMessage{
			Message: "A node cannot be moved inside its own subtree",
			Action:  "Choose a parent outside the node's subtree",
			Code:    "TREE002",
			Status:  http.StatusUnprocessableEntity,
		},
	},
	{
		target: nestedset.ErrUnsavedEntity,
		msg: UserMessage{
			Message: "The entity has not been saved yet",
			Action:  "Save the entity before changing its position or translations",
			Code:    "TREE003",
			Status:  http.StatusBadRequest,
		},
	},
	{
		target: nestedset.ErrIntegrity,
		msg: UserMessage{
			Message: "The change conflicts with existing records",
			Action:  "Check that referenced records exist and values are unique",
			Code:    "TREE004",
			Status:  http.StatusConflict,
		},
	},
	{
		target: ErrUnknownKind,
		msg: UserMessage{
			Message: "Unknown entity kind",
			Action:  "List the available kinds and use one of their keys",
			Code:    "TREE005",
			Status:  http.StatusNotFound,
		},
	},
	{
		target: i18n.ErrUnknownField,
		msg: UserMessage{
			Message: "Unknown translation field",
			Action:  "Use one of the fields listed for this kind",
			Code:    "I18N001",
			Status:  http.StatusBadRequest,
		},
	},
	{
		target: ErrNoTranslations,
		msg: UserMessage{
			Message: "This kind has no translated fields",
			Action:  "Translations are only available for described kinds",
			Code:    "I18N002",
			Status:  http.StatusBadRequest,
		},
	},
	{
		target: importer.ErrBadHeader,
		msg: UserMessage{
			Message: "The spreadsheet is missing required columns",
			Action:  "Compare the header row with the contact template",
			Code:    "IMP001",
			Status:  http.StatusUnprocessableEntity,
		},
	},
	{
		target: ErrTooManyImports,
		msg: UserMessage{
			Message: "The system is busy with other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		target: ErrImportDisabled,
		msg: UserMessage{
			Message: "Import is not available on this server",
			Action:  "Run the import from the command line",
			Code:    "IMP003",
			Status:  http.StatusNotImplemented,
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
			Status:  499,
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller spreadsheet or try again later",
			Code:    "REQ002",
			Status:  http.StatusGatewayTimeout,
		},
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The spreadsheet exceeds the size limit",
			Action:  "Split the file with --from and --to ranges",
			Code:    "IMP004",
			Status:  http.StatusRequestEntityTooLarge,
		},
	},
	{
		pattern: "lock timeout",
		msg: UserMessage{
			Message: "The tree is locked by another operation",
			Action:  "Please try again when the running import finishes",
			Code:    "DB001",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB002",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB005",
			Status:  http.StatusGatewayTimeout,
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError returns the user message for err, or a zero UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders the mapped message for CLI output.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil for nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
