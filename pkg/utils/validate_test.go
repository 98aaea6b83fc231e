package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type selectRequest struct {
	SourceObject string `json:"source_object" validate:"required"`
	TargetObject string `json:"target_object" validate:"required"`
}

func TestValidate(t *testing.T) {
	_, err := Validate(selectRequest{SourceObject: "Account", TargetObject: "Account"})
	assert.NoError(t, err)

	_, err = Validate(selectRequest{SourceObject: "Account"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TargetObject")
	assert.Contains(t, err.Error(), "required")
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue("picklist", "oneof=picklist character_limit missing_field"))
	assert.Error(t, ValidateValue("other", "oneof=picklist character_limit missing_field"))
}

func TestBindRequest(t *testing.T) {
	e := echo.New()
	bind := func(body string) (selectRequest, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return BindRequest[selectRequest](e.NewContext(req, httptest.NewRecorder()))
	}

	got, err := bind(`{"source_object":"Contact","target_object":"Lead"}`)
	require.NoError(t, err)
	assert.Equal(t, selectRequest{SourceObject: "Contact", TargetObject: "Lead"}, got)

	_, err = bind(`{"source_object":"Contact"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))

	_, err = bind(`{not json`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}
