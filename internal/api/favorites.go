package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"banking_api/internal/middleware" // Authenticated user
	"banking_api/internal/service"    // Core services

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// FavoriteRequest represents a request to save a favorite recipient
type FavoriteRequest struct {
	Account string `json:"account" binding:"required,len=6,numeric"` // Target account number
}

// AddFavoriteHandler saves an account as a favorite of the authenticated user
func AddFavoriteHandler(bank *service.Bank) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req FavoriteRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "InvalidRequest"})
			return
		}
		fav, err := bank.Favorites.Add(c.Request.Context(), ownerID, req.Account)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"owner_id":    ownerID,     // Owner user ID
			"favorite_id": fav.ID,      // Favorite ID
			"account":     fav.Account, // Target account
		}).Info("Favorite added")
		c.JSON(http.StatusCreated, fav)
	}
}

// ListFavoritesHandler returns the authenticated user's favorites with current names
func ListFavoritesHandler(bank *service.Bank) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		favs, err := bank.Favorites.List(c.Request.Context(), ownerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorites": favs})
	}
}

// RemoveFavoriteHandler deletes one of the authenticated user's favorites
func RemoveFavoriteHandler(bank *service.Bank) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		favoriteID, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse path id
		if err != nil || favoriteID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid favorite id", "code": "InvalidRequest"})
			return
		}
		if err := bank.Favorites.Remove(c.Request.Context(), ownerID, uint(favoriteID)); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"owner_id":    ownerID,    // Owner user ID
			"favorite_id": favoriteID, // Removed favorite
		}).Info("Favorite removed")
		c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
	}
}
