package imports

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ImportController struct {
	Service *ImportService
}

func (ic *ImportController) GetImports(c *gin.Context) {
	var input ImportFilterInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, total, totalPages, err := ic.Service.GetImports(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch imports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imports":    rows,
		"total":      total,
		"page":       input.Page,
		"totalPages": totalPages,
	})
}

func (ic *ImportController) ExportImports(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	contentType, filename, data, err := ic.Service.Export(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
