// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func paramsForQuery(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/devices?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paramsForQuery(t, "")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultPageSize, params.Limit)
	assert.Equal(t, "", params.Sort)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsClampsOutOfRange(t *testing.T) {
	params := paramsForQuery(t, "page=-3&limit=9999&order=sideways")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, MaxPageSize, params.Limit)
	assert.Equal(t, "desc", params.Order)
}

func TestApplySortFallsBackToDomainColumn(t *testing.T) {
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	type device struct{ ID uint }
	sortable := []string{"asset_tag", "model_name"}

	// Requested column is sortable: honored.
	stmt := ApplySort(db.Table("devices"), PaginationParams{Sort: "model_name", Order: "asc"}, sortable, "asset_tag").
		Find(&[]device{}).Statement
	assert.Contains(t, stmt.SQL.String(), "model_name asc")

	// Unknown column: the listing's fallback wins.
	stmt = ApplySort(db.Table("devices"), PaginationParams{Sort: "password_hash", Order: "desc"}, sortable, "asset_tag").
		Find(&[]device{}).Statement
	assert.Contains(t, stmt.SQL.String(), "asset_tag desc")
}

func TestCreatePaginationResultRoundsPagesUp(t *testing.T) {
	result := CreatePaginationResult(nil, 51, PaginationParams{Page: 2, Limit: 25})

	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, int64(51), result.Total)
	assert.Equal(t, 2, result.Page)
}
