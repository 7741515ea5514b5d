package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "resource not found")
		assert.Equal(t, "[NOT_FOUND] resource not found", err.Error())
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		assert.Equal(t, "[INTERNAL_ERROR] internal failure: original error", err.Error())
		assert.ErrorIs(t, err, original)
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		assert.True(t, IsCode(err, CodeValidationError))
		assert.False(t, IsCode(err, CodeNotFound))
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("extract: %w", UnsupportedConstruct("star import", 3))
		assert.True(t, IsCode(err, CodeUnsupportedConstruct))
	})
}

func TestMissingFile(t *testing.T) {
	err := MissingFile("/tmp/nope.py")
	require.True(t, IsCode(err, CodeNotFound))

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "/tmp/nope.py", de.Context[CtxPath])
	assert.Contains(t, err.Error(), "file /tmp/nope.py not exist")
}

func TestUnsupportedConstruct(t *testing.T) {
	err := UnsupportedConstruct("base class expression", 12)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeUnsupportedConstruct, de.Code)
	assert.Equal(t, 12, de.Context[CtxLine])
	assert.Equal(t, "base class expression", de.Context[CtxConstruct])
}

func TestAddContext(t *testing.T) {
	t.Run("DomainError", func(t *testing.T) {
		err := AddContext(Usage("missing path"), CtxOperation, "parse")
		assert.True(t, IsCode(err, CodeUsage))
		assert.Contains(t, err.Error(), "operation:parse")
	})

	t.Run("PlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxPath, "a.py")
		assert.True(t, IsCode(err, CodeInternal))
	})
}
