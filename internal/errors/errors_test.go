package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := DataLoad("missing column")
	wrapped := Wrapf(fmt.Errorf("row 3: %w", inner), "failed to read %s", "launches.csv")

	assert.Equal(t, CodeDataLoad, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeDataLoad))
	assert.True(t, stderrors.Is(wrapped, inner))
	assert.Equal(t, "failed to read launches.csv: row 3: missing column", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(stderrors.New("disk on fire"), "load")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, InternalError("bad range"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "bad range", err.Error())

	err = WithCode(CodeNotFound, stderrors.New("gone"))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.False(t, HasCode(stderrors.New("plain"), CodeDataLoad))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *AppError
		code string
		msg  string
	}{
		{ConfigInvalid("PORT is required"), CodeConfigInvalid, "PORT is required"},
		{DataLoadf("row %d", 4), CodeDataLoad, "row 4"},
		{DataLoadCause("read", stderrors.New("eof")), CodeDataLoad, "read: eof"},
		{NotFound("session x"), CodeNotFound, "session x not found"},
		{InvalidInput("low must be a number"), CodeInvalidInput, "low must be a number"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.msg, tt.err.Error())
	}
}
