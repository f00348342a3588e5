package errors

import (
	"errors"
	"testing"
	"time"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("open index file", "/missing/final.idx")

	if err.Type != ErrorTypeNotFound {
		t.Errorf("Expected Type to be ErrorTypeNotFound, got %v", err.Type)
	}

	if err.Path != "/missing/final.idx" {
		t.Errorf("Expected Path to be '/missing/final.idx', got %s", err.Path)
	}

	expectedMsg := "open index file: not found: /missing/final.idx"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestBuildError(t *testing.T) {
	underlying := errors.New("disk full")
	err := NewBuildError("merge", "/out/final.idx", underlying)

	if err.Type != ErrorTypeIO {
		t.Errorf("Expected Type to be ErrorTypeIO, got %v", err.Type)
	}

	if err.Stage != "merge" {
		t.Errorf("Expected Stage to be 'merge', got %s", err.Stage)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "build failed during merge for /out/final.idx: disk full"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestCleanupError(t *testing.T) {
	underlying := errors.New("file busy")
	err := NewCleanupError("/tmp/temp_blocks/block_0.txt", underlying)

	if err.Type != ErrorTypeCleanup {
		t.Errorf("Expected Type to be ErrorTypeCleanup, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "cleanup failed for /tmp/temp_blocks/block_0.txt: file busy"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid integer")
	err := NewConfigError("block-size", ".invidx.kdl", underlying)

	if err.Field != "block-size" {
		t.Errorf("Expected Field to be 'block-size', got %s", err.Field)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "config error in .invidx.kdl (field block-size): invalid integer"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigErrorWithoutField(t *testing.T) {
	underlying := errors.New("malformed document")
	err := NewConfigError("", ".invidx.kdl", underlying)

	expectedMsg := "config error in .invidx.kdl: malformed document"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})

	if len(multiErr.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(multiErr.Errors))
	}

	errMsg := multiErr.Error()
	if len(errMsg) < 10 || errMsg[:10] != "3 errors: " {
		t.Errorf("Expected message to start with '3 errors: ', got %q", errMsg)
	}

	singleErr := NewMultiError([]error{err1})
	if singleErr.Error() != "error 1" {
		t.Errorf("Expected 'error 1', got %q", singleErr.Error())
	}

	emptyErr := NewMultiError([]error{})
	if emptyErr.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", emptyErr.Error())
	}

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil})
	if len(nilFiltered.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(nilFiltered.Errors))
	}

	unwrapped := multiErr.Unwrap()
	if len(unwrapped) != 3 {
		t.Errorf("Expected 3 unwrapped errors, got %d", len(unwrapped))
	}
}

func TestTimestamp(t *testing.T) {
	err := NewBuildError("flush", "/out/temp_blocks/block_0.txt", errors.New("test"))
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}
