package registry

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type RegistryController struct {
	Service      *RegistryService
	BatchMaxSize int
}

func (rc *RegistryController) GetCNPJ(c *gin.Context) {
	cnpj := strings.TrimSpace(c.Param("cnpj"))

	resp, err := rc.Service.Lookup(c.Request.Context(), cnpj)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCNPJ):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (rc *RegistryController) GetBatch(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("cnpjs"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cnpjs query parameter is required"})
		return
	}

	parts := strings.Split(raw, ",")
	cnpjs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cnpjs = append(cnpjs, p)
		}
	}
	if len(cnpjs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cnpjs query parameter is required"})
		return
	}

	maxSize := rc.BatchMaxSize
	if maxSize <= 0 {
		maxSize = 1000
	}
	if len(cnpjs) > maxSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many cnpjs in one batch"})
		return
	}

	results, err := rc.Service.LookupBatch(c.Request.Context(), cnpjs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resultados": results})
}

func (rc *RegistryController) SearchEmpresas(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}

	limit := 20
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	rows, err := rc.Service.SearchCompanies(q, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SearchResult{Resultados: rows})
}
