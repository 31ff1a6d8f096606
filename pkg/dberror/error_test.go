package dberror

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBError_Is(t *testing.T) {
	err := Schemaf("column %s not found", "budget")
	assert.True(t, errors.Is(err, ErrSchema))
	assert.False(t, errors.Is(err, ErrTypeMismatch))

	wrapped := fmt.Errorf("project: %w", err)
	assert.True(t, errors.Is(wrapped, ErrSchema))

	var dbErr *DBError
	assert.True(t, errors.As(wrapped, &dbErr))
	assert.Equal(t, ErrCategoryUser, dbErr.Category)
}

func TestDBError_Error(t *testing.T) {
	err := Incompatiblef("arity %d vs %d", 2, 3).WithOp("Union", "movie")

	msg := err.Error()
	assert.Equal(t, "[INCOMPATIBLE_TABLES] incompatible tables: arity 2 vs 3 (operation: Union, component: movie)", msg)
	assert.NotEmpty(t, err.Hint)
}

func TestDBError_WithOpKeepsFirst(t *testing.T) {
	err := TypeMismatchf("x").WithOp("Select", "movie").WithOp("Join", "studio")
	assert.Equal(t, "Select", err.Operation)
	assert.Equal(t, "movie", err.Component)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeSnapshot, "Load", "SnapshotStore"))

	err := Wrap(fs.ErrNotExist, CodeSnapshot, "Load", "SnapshotStore")
	assert.True(t, errors.Is(err, ErrSnapshot))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, ErrCategorySystem, err.Category)
	assert.Contains(t, err.Error(), "caused by")

	orig := InvalidConditionf("bad")
	again := Wrap(orig, CodeInternal, "Select", "movie")
	assert.Same(t, orig, again)
	assert.True(t, errors.Is(again, ErrInvalidCondition))
	assert.Equal(t, "Select", again.Operation)
}

func TestFormatStack(t *testing.T) {
	err := New(ErrCategoryData, CodeSnapshotCorrupted, "bad file")
	stack := err.FormatStack()
	assert.True(t, strings.HasPrefix(stack, "Stack trace:"))

	assert.Empty(t, ErrSchema.FormatStack())
}

func TestErrorCategory_String(t *testing.T) {
	assert.Equal(t, "user", ErrCategoryUser.String())
	assert.Equal(t, "system", ErrCategorySystem.String())
	assert.Equal(t, "data", ErrCategoryData.String())
	assert.Equal(t, "unknown", ErrorCategory(9).String())
}
