package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/penpal-app/penpal-api/internal/constants"
)

func paginationFor(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/documents/docs"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParams(t *testing.T) {
	params := paginationFor(t, "?page=3&limit=10")
	require.Equal(t, 3, params.Page)
	require.Equal(t, 10, params.Limit)
	require.Equal(t, 20, params.Offset)

	// Defaults and bounds.
	params = paginationFor(t, "")
	require.Equal(t, constants.MinPage, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)

	params = paginationFor(t, "?page=0&limit=9999")
	require.Equal(t, constants.MinPage, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)
	require.Equal(t, 0, params.Offset)
}

func TestPaginationResponse(t *testing.T) {
	params := paginationFor(t, "?page=2&limit=25")
	resp := params.Response(60)
	require.Equal(t, 2, resp.Page)
	require.Equal(t, 25, resp.Limit)
	require.Equal(t, int64(60), resp.Total)
}
