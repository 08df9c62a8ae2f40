package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"banking_api/internal/middleware" // Authenticated user
	"banking_api/internal/service"    // Core services
	"banking_api/internal/utils"      // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// userCacheKey is the cache key of a user's profile
func userCacheKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// UpdateMeRequest represents a profile update
type UpdateMeRequest struct {
	Name string `json:"name" binding:"required,max=100"` // New display name
}

// AccountLookupResponse confirms who holds an account before sending money
type AccountLookupResponse struct {
	Account string `json:"account"` // Account number
	Name    string `json:"name"`    // Holder's display name
}

// MeHandler returns the authenticated user's profile and balance
func MeHandler(bank *service.Bank, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := userCacheKey(userID) // Cache key for profile
		var cached UserResponse
		// If found in cache, return it
		if found, err := cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"user": cached, "cached": true})
			return
		}
		user, err := bank.Ledger.User(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := NewUserResponse(user)
		_ = cache.Set(ctx, cacheKey, resp, ttl) // Cache the profile
		c.JSON(http.StatusOK, gin.H{"user": resp, "cached": false})
	}
}

// UpdateMeHandler renames the authenticated user
func UpdateMeHandler(bank *service.Bank, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateMeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "InvalidRequest"})
			return
		}
		user, err := bank.Ledger.Rename(c.Request.Context(), userID, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = cache.Delete(c.Request.Context(), userCacheKey(userID)) // Invalidate profile cache
		logrus.WithFields(logrus.Fields{
			"user_id": userID, // User ID
		}).Info("Profile updated")
		c.JSON(http.StatusOK, gin.H{"user": NewUserResponse(user)})
	}
}

// LookupAccountHandler resolves an account number to its holder's name
func LookupAccountHandler(bank *service.Bank) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := bank.Ledger.UserByAccount(c.Request.Context(), c.Param("account"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AccountLookupResponse{Account: user.Account, Name: user.Name})
	}
}
