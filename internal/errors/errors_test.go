package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("quantity out of range"),
			want: "[VALIDATION] quantity out of range",
		},
		{
			name: "with cause",
			err:  NewParsingError("bad timestamp", fmt.Errorf("cannot parse %q", "yesterday")),
			want: `[PARSING] bad timestamp: cannot parse "yesterday"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStorageError("write snapshot", cause)

	assert.True(t, stderrors.Is(err, cause))

	var appErr *AppError
	require.True(t, stderrors.As(fmt.Errorf("run failed: %w", err), &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestWithContext(t *testing.T) {
	err := NewParsingError("unparseable quantity", nil).
		WithContext("sheet", "Year 2009-2010").
		WithContext("row", 42)

	assert.Equal(t, "Year 2009-2010", err.Context["sheet"])
	assert.Equal(t, 42, err.Context["row"])
}

func TestWithContextNilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "missing path"}
	err.WithContext("key", "value")

	assert.Equal(t, "value", err.Context["key"])
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("workbook")
	assert.Equal(t, "[NOT_FOUND] workbook not found", err.Error())
	assert.Equal(t, ErrTypeNotFound, err.Type)
}
