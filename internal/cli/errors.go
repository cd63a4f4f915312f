package cli

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// Exit codes mirror the error taxonomy so embedding shells can branch on
// the process status without parsing the error object.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitPermission = 3
)

// ErrorObject is the single machine-readable failure document.
type ErrorObject struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody always carries a message; the code refines it for callers that
// want to branch without string matching.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClassifyError maps a failure onto its code and exit status.
func ClassifyError(err error) (string, int) {
	switch {
	case models.IsValidation(err):
		return "validation_error", ExitValidation
	case models.IsArgument(err):
		return "invalid_argument", ExitValidation
	case errors.Is(err, models.ErrStoreCorrupt):
		return "store_corrupt", ExitFailure
	case errors.Is(err, os.ErrNotExist):
		return "not_found", ExitValidation
	case errors.Is(err, os.ErrPermission):
		return "permission_error", ExitPermission
	default:
		return "error", ExitFailure
	}
}

// WriteError emits the JSON error object and returns the exit code the
// process should terminate with. Errors go to the same stream as success
// documents: the contract is one JSON document per invocation either way.
func WriteError(w io.Writer, err error) int {
	code, exit := ClassifyError(err)
	out := ErrorObject{Error: ErrorBody{Code: code, Message: err.Error()}}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	// Nothing sane to do if the error itself cannot be written.
	_ = encoder.Encode(out)
	return exit
}
