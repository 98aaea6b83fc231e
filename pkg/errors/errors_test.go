package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("message without path", func(t *testing.T) {
		err := NewValidationError("boom")
		assert.Equal(t, "boom", err.Error())
	})

	t.Run("path is rendered in order", func(t *testing.T) {
		err := NewValidationError("unknown field").AddObject("Account").AddField("Foo__c").AddCheck("row_update")
		assert.Equal(t, "object 'Account' -> field 'Foo__c' -> check 'row_update': unknown field", err.Error())
	})

	t.Run("formats wrapped errors", func(t *testing.T) {
		err := NewValidationErrorf("failed: %w", fmt.Errorf("inner"))
		assert.Equal(t, "failed: inner", err.Error())
	})

	t.Run("wrap keeps existing validation errors", func(t *testing.T) {
		original := NewValidationError("x").AddField("Name")
		assert.Same(t, original, WrapValidationError(original))
		assert.Nil(t, WrapValidationError(nil))
		assert.Equal(t, "plain", WrapValidationError(fmt.Errorf("plain")).Error())
	})

	t.Run("converts to a 400", func(t *testing.T) {
		err := ToHTTPError(NewValidationError("bad").AddField("Name"))
		assert.True(t, httperror.IsHTTPError(err))
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
		assert.True(t, IsValidationError(NewValidationError("bad")))
		assert.False(t, IsValidationError(fmt.Errorf("bad")))
	})
}
