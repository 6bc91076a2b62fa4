package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := SourceError("bad front matter").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategorySource) {
			t.Error("expected error to have source category")
		}
		if !err.IsFatal() {
			t.Error("expected source error to be fatal")
		}
	})

	t.Run("WithCause keeps the chain", func(t *testing.T) {
		cause := errors.New("no such file")
		err := ImageError("missing image").WithCause(cause).Build()
		if !errors.Is(err, cause) {
			t.Error("expected cause to be reachable with errors.Is")
		}
		if GetSeverity(err) != SeverityWarning {
			t.Errorf("expected WithCause to keep warning severity, got %s", GetSeverity(err))
		}
	})

	t.Run("Image errors are warnings", func(t *testing.T) {
		err := ImageError("missing image").Build()
		if err.IsFatal() {
			t.Error("expected image error to be non-fatal")
		}
		if GetSeverity(err) != SeverityWarning {
			t.Errorf("expected warning severity, got %s", GetSeverity(err))
		}
	})
}

func TestClassifiedError_Message(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "without cause",
			err:      ConfigError("configuration invalid").Build(),
			expected: "[config:fatal] configuration invalid",
		},
		{
			name:     "with cause and context",
			err:      WrapError(fmt.Errorf("yaml: line 2"), CategorySource, "malformed front matter").Fatal().WithContext("path", "data/a.md").Build(),
			expected: "[source:fatal] malformed front matter path=data/a.md: yaml: line 2",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.expected {
				t.Errorf("Error() = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	sentinel := errors.New("slug collision")
	classified := WrapError(sentinel, CategoryConflict, "duplicate slug").Build()
	wrapped := fmt.Errorf("load posts: %w", classified)

	if !errors.Is(wrapped, sentinel) {
		t.Error("expected sentinel to be reachable through the chain")
	}
	if GetCategory(wrapped) != CategoryConflict {
		t.Errorf("expected conflict category through fmt wrapping, got %s", GetCategory(wrapped))
	}
	if GetCategory(errors.New("plain")) != CategoryInternal {
		t.Error("expected unclassified errors to report internal category")
	}
}

func TestWithContextDoesNotMutate(t *testing.T) {
	base := ImageError("missing image").WithContext("image", "a.png").Build()
	derived := base.WithContext("reason", "not found")

	if _, ok := base.Context().Get("reason"); ok {
		t.Error("expected original error context to stay unchanged")
	}
	if v, _ := derived.Context().GetString("image"); v != "a.png" {
		t.Errorf("expected derived error to keep image context, got %q", v)
	}
}
