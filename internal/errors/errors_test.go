package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/duedate"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "server detail",
			err:      &api.Error{Status: 400, Message: "Already a member of this group"},
			expected: "Error: Already a member of this group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		args     []interface{}
		expected string
	}{
		{
			name:     "simple message",
			format:   "something went wrong",
			expected: "Error: something went wrong",
		},
		{
			name:     "formatted message",
			format:   "group %s not found",
			args:     []interface{}{"g-1"},
			expected: "Error: group g-1 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Formatf(tt.format, tt.args...)
			if result != tt.expected {
				t.Errorf("Formatf(%q, %v) = %q, want %q", tt.format, tt.args, result, tt.expected)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"network", &api.Error{Status: 0, Message: "dial tcp: refused"}, "could not reach"},
		{"wrapped network", fmt.Errorf("loading groups: %w", &api.Error{Status: 0}), "could not reach"},
		{"unauthorized", &api.Error{Status: 401, Message: "Invalid token"}, "sign in again"},
		{"validation verbatim", &api.Error{Status: 422, Message: "title: field required"}, "title: field required"},
		{"forbidden verbatim", &api.Error{Status: 403, Message: "Only instructors can create tasks"}, "Only instructors can create tasks"},
		{"due required", duedate.ErrDueRequired, "due date and time are required"},
		{"cache miss", fmt.Errorf("offline: %w", cache.ErrMiss), "nothing cached"},
		{"plain", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Describe() = %q, want it to contain %q", got, tt.contains)
			}
		})
	}

	if Describe(nil) != "" {
		t.Error("Describe(nil) should be empty")
	}
}

func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal_NilError$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit with error, got %v", err)
	}
}
