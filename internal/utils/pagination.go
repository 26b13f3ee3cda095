// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Inventory tables are browsed page by page; these bounds keep the list
// endpoints predictable regardless of what the client asks for.
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

type PaginationParams struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

type PaginationResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

// GetPaginationParams reads page/limit/sort/order/search from the query
// string, clamping out-of-range values instead of erroring.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	order := c.DefaultQuery("order", "desc")
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Sort:   c.Query("sort"),
		Order:  order,
		Search: c.Query("search"),
	}
}

// ApplySort orders by the requested column when it is one of the
// caller's sortable columns, otherwise by the caller's fallback. Each
// listing picks the fallback that suits its table: asset tag for
// devices, product name for licenses, assignment date for histories.
func ApplySort(db *gorm.DB, params PaginationParams, sortable []string, fallback string) *gorm.DB {
	column := fallback
	for _, field := range sortable {
		if field == params.Sort {
			column = params.Sort
			break
		}
	}
	return db.Order(column + " " + params.Order)
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	return db.Offset((params.Page - 1) * params.Limit).Limit(params.Limit)
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	return PaginationResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		Data:       data,
	}
}
