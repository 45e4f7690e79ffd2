package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func testContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestPathUserID(t *testing.T) {
	c := testContext("/")
	c.SetParamNames("user")
	c.SetParamValues("user-1")

	userID, err := pathUserID(c)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestPathUserIDInvalid(t *testing.T) {
	for _, value := range []string{"", "undefined"} {
		c := testContext("/")
		c.SetParamNames("user")
		c.SetParamValues(value)

		_, err := pathUserID(c)
		require.Error(t, err, "value=%q", value)
	}
}

func TestPagingParams(t *testing.T) {
	limit, offset := pagingParams(testContext("/?limit=25&offset=50"))
	require.Equal(t, 25, limit)
	require.Equal(t, 50, offset)

	// missing or garbage query values fall back to zero, the services
	// apply their own defaults and caps
	limit, offset = pagingParams(testContext("/?limit=abc"))
	require.Equal(t, 0, limit)
	require.Equal(t, 0, offset)
}
