package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// 分页参数默认值与上限
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// parsePagination 解析分页查询参数
// 非法或越界的值收敛到合法区间，page_size=0不会进入total_page除法。
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// paginationMeta 构造分页响应体
func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":       page,
		"page_size":  pageSize,
		"total":      total,
		"total_page": (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
