// Package server exposes the exported products artifact over a read-only HTTP API.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/travischeung/generalized-web-scraper/internal/export"
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// Handler serves products from the artifact at exportPath. The file is read
// on every request so a new batch run is visible without a restart.
type Handler struct {
	exportPath string
	logger     logrus.FieldLogger
}

func NewHandler(exportPath string, logger logrus.FieldLogger) *Handler {
	return &Handler{exportPath: exportPath, logger: logger}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "product-distiller",
	})
}

// ListProducts returns every exported product, or [] before the first export
func (h *Handler) ListProducts(c *gin.Context) {
	entries, err := export.Load(h.exportPath)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetProduct returns one product by its zero-based id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	entries, err := export.Load(h.exportPath)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	entry, err := export.Find(entries, id)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
