package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumaker/internal/dateutil"
)

// ListDateFormats 列出时间线可选的日期格式。
func ListDateFormats(c *gin.Context) {
	c.JSON(http.StatusOK, dateutil.Formats())
}

// PreviewDate 将任意输入规范化后按指定格式渲染，供编辑器即时预览。
func PreviewDate(c *gin.Context) {
	raw := c.Query("value")
	format := dateutil.DefaultFormat
	if q := c.Query("format"); q != "" {
		f, ok := dateutil.ParseFormat(q)
		if !ok {
			BadRequest(c, "unknown date format")
			return
		}
		format = f
	}
	canonical := dateutil.Migrate(raw)
	c.JSON(http.StatusOK, gin.H{
		"canonical": canonical,
		"display":   dateutil.Format(canonical, format),
		"hasDay":    format.HasDay(),
	})
}
