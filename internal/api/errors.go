package api

import (
	"net/http" // HTTP status codes

	"banking_api/internal/service" // Core services

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusByKind maps core error kinds to HTTP statuses
var statusByKind = map[string]int{
	"InvalidRequest":                 http.StatusBadRequest,
	"InvalidAmount":                  http.StatusBadRequest,
	"SenderNotFound":                 http.StatusNotFound,
	"DestinationNotFound":            http.StatusNotFound,
	"AccountNotFound":                http.StatusNotFound,
	"FavoriteNotFound":               http.StatusNotFound,
	"UserNotFound":                   http.StatusNotFound,
	"SelfTransferForbidden":          http.StatusBadRequest,
	"SelfFavoriteForbidden":          http.StatusBadRequest,
	"InsufficientFunds":              http.StatusUnprocessableEntity,
	"FavoriteRequiredForLargeAmount": http.StatusForbidden,
	"AlreadyFavorite":                http.StatusConflict,
	"DuplicateEmail":                 http.StatusConflict,
	"AccountNumbersExhausted":        http.StatusServiceUnavailable,
}

// respondError writes the JSON error body for err
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err) // Classify the error
	if status, ok := statusByKind[kind]; ok {
		c.JSON(status, gin.H{"error": err.Error(), "code": kind})
		return
	}
	// Anything outside the taxonomy is an internal failure
	logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(), // Route
		"error": err.Error(),  // Error message
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
