package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/duedate"
	"github.com/julianstephens/pibble/internal/keyring"
	"github.com/julianstephens/pibble/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", Describe(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Describe maps an error to the text shown to the user.
// Connectivity problems get a generic message, auth failures ask for a new
// sign-in, and validation messages from the server are passed through verbatim.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *api.Error
	switch {
	case stderrors.Is(err, api.ErrNetwork):
		return "could not reach the ProtectPibble server; check your connection and the --api address"
	case stderrors.Is(err, api.ErrUnauthorized):
		return "your session has expired; sign in again with `pibble login`"
	case stderrors.As(err, &apiErr):
		return apiErr.Message
	case stderrors.Is(err, duedate.ErrDueRequired):
		return "a due date and time are required"
	case stderrors.Is(err, cache.ErrMiss):
		return "nothing cached for this view yet; run it once while online"
	case stderrors.Is(err, keyring.ErrKeyringUnavailable):
		return "the OS keyring is not available; sign-in cannot be remembered on this system"
	}
	return err.Error()
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
