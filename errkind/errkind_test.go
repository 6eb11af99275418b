package errkind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(Schema, "unknown column")
	assert.True(t, Is(err, Schema))
	assert.False(t, Is(err, Auth))
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("boom"), Schema))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Constraint, "persist failed", cause)
	assert.True(t, Is(err, Constraint))
	assert.ErrorIs(t, err, cause)
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(TableNotFound, "table %q missing", "users")
	assert.Contains(t, err.Error(), `table "users" missing`)
}
