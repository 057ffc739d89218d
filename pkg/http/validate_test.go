package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentimentQuery struct {
	CoinID string `query:"coinId" default:"bitcoin" validate:"required"`
	Limit  int    `query:"limit" default:"20" validate:"gte=1,lte=100"`
	Feed   string `query:"feed" default:"primary" validate:"oneof=primary secondary"`
}

type analyzeBody struct {
	Title       string `json:"title" validate:"required_without=Description,max=10"`
	Description string `json:"description"`
}

func bindRequest(method, target, body string) echo.Context {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateAppliesDefaults(t *testing.T) {
	var q sentimentQuery
	require.Nil(t, ReadAndValidateRequest(bindRequest(http.MethodGet, "/?coinId=ethereum", ""), &q))
	assert.Equal(t, sentimentQuery{CoinID: "ethereum", Limit: 20, Feed: "primary"}, q)
}

func TestReadAndValidateReportsWireNames(t *testing.T) {
	var q sentimentQuery
	errs := ReadAndValidateRequest(bindRequest(http.MethodGet, "/?limit=500&feed=tertiary", ""), &q)
	require.Len(t, errs, 2)

	assert.Equal(t, ValidationError{
		Code:    "ERR_LTE",
		Field:   "limit",
		Message: "limit must be at most 100",
		Params:  map[string]interface{}{"max": "100"},
	}, errs[0])
	assert.Equal(t, "feed", errs[1].Field)
	assert.Equal(t, "feed must be one of: primary, secondary", errs[1].Message)
	assert.Equal(t, []string{"primary", "secondary"}, errs[1].Params["options"])
}

func TestReadAndValidateBodyRules(t *testing.T) {
	var b analyzeBody
	errs := ReadAndValidateRequest(bindRequest(http.MethodPost, "/", `{}`), &b)
	require.Len(t, errs, 1)
	assert.Equal(t, "title is required when description is empty", errs[0].Message)

	errs = ReadAndValidateRequest(bindRequest(http.MethodPost, "/", `{"title":"far too long a title"}`), &analyzeBody{})
	require.Len(t, errs, 1)
	assert.Equal(t, "title must be at most 10 characters", errs[0].Message)
}

func TestReadAndValidateBindFailure(t *testing.T) {
	errs := ReadAndValidateRequest(bindRequest(http.MethodPost, "/", `{"title":`), &analyzeBody{})
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_BIND", errs[0].Code)
}
