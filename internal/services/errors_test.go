package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceError(t *testing.T) {
	err := NewServiceError("ERROR_CODE", "Error message")

	assert.Equal(t, "ERROR_CODE", err.Code)
	assert.Equal(t, "Error message", err.Error())
	assert.Nil(t, err.Details)
	assert.Nil(t, err.Unwrap())
}

func TestServiceError_JSON(t *testing.T) {
	err := NewServiceErrorWithDetails(CodeInputInvalid, "bad input", map[string]interface{}{"line": 2})

	data, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"code":"INPUT_INVALID","message":"bad input","details":{"line":2}}`, string(data))

	data, jerr = json.Marshal(NewServiceError("X", "y"))
	require.NoError(t, jerr)
	assert.NotContains(t, string(data), "details")
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("open data.csv: %w", os.ErrNotExist)
	err := wrapError(CodeInputNotFound, cause, "failed to read %s", "data.csv")

	assert.Equal(t, "failed to read data.csv: open data.csv: file does not exist", err.Error())
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, cause.Error(), err.Details["error"])
}

func TestErrorCode(t *testing.T) {
	err := fmt.Errorf("run: %w", NewServiceError(CodeModelSaveFailed, "nope"))
	assert.Equal(t, CodeModelSaveFailed, ErrorCode(err))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Equal(t, "", ErrorCode(nil))
}
