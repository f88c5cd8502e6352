package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewSchemaError("streams column is required", nil),
			want: "[SCHEMA] streams column is required",
		},
		{
			name: "with cause",
			err:  NewParsingError("failed to read record", fmt.Errorf("bare quote")),
			want: "[PARSING] failed to read record: bare quote",
		},
		{
			name: "not found",
			err:  NewNotFoundError("run"),
			want: "[NOT_FOUND] run not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("disk full")
	err := NewStorageError("failed to save run", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, sentinel, err.Unwrap())

	assert.Nil(t, NewAppValidationError("id is required").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewSchemaError("missing column", nil).
		WithContext("column", "streams").
		WithContext("rows", 3)

	assert.Equal(t, "streams", err.Context["column"])
	assert.Equal(t, 3, err.Context["rows"])

	bare := &AppError{Type: ErrTypeExport, Message: "write failed"}
	bare.WithContext("path", "out.csv")
	require.NotNil(t, bare.Context)
	assert.Equal(t, "out.csv", bare.Context["path"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
		wantWrap bool
	}{
		{"parsing", NewParsingError("unreadable", cause), ErrTypeParsing, "unreadable", true},
		{"schema", NewSchemaError("missing", cause), ErrTypeSchema, "missing", true},
		{"storage", NewStorageError("save", cause), ErrTypeStorage, "save", true},
		{"validation", NewAppValidationError("bad limit"), ErrTypeValidation, "bad limit", false},
		{"not found", NewNotFoundError("run"), ErrTypeNotFound, "run not found", false},
		{"config", NewConfigError("bad port", cause), ErrTypeConfig, "bad port", true},
		{"export", NewExportError("write", cause), ErrTypeExport, "write", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotNil(t, tt.err.Context)
			if tt.wantWrap {
				assert.ErrorIs(t, tt.err, cause)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("clean: %w", NewSchemaError("missing", nil))

	tests := []struct {
		name   string
		err    error
		want   ErrorType
		wantOK bool
	}{
		{"direct", NewStorageError("x", nil), ErrTypeStorage, true},
		{"wrapped", wrapped, ErrTypeSchema, true},
		{"plain error", errors.New("plain"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TypeOf(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, IsType(wrapped, ErrTypeSchema))
	assert.False(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(errors.New("plain"), ErrTypeSchema))
}
