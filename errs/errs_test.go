package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsMatchByKind(t *testing.T) {
	err := NotFound("project")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInsufficientPermissions))
	assert.Equal(t, "project not found", err.Error())

	wrapped := fmt.Errorf("get project: %w", InsufficientPermissions("only owners can delete"))
	assert.True(t, errors.Is(wrapped, ErrInsufficientPermissions))
	assert.Equal(t, KindInsufficientPermissions, KindOf(wrapped))
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("connection refused")))
	assert.Equal(t, "Internal", KindOf(errors.New("x")).String())
	assert.Equal(t, "CannotRemoveOwner", KindCannotRemoveOwner.String())
}
