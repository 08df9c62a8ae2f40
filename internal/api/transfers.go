package api

import (
	"context"  // Context for cache operations
	"math"     // NaN for non-numeric amounts
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"banking_api/internal/domain"     // Domain models
	"banking_api/internal/middleware" // Authenticated user
	"banking_api/internal/service"    // Core services
	"banking_api/internal/utils"      // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// TransferRequest represents a transfer request; presence is checked by the engine
type TransferRequest struct {
	ToAccount   string `json:"toAccount"`                     // Destination account
	Amount      any    `json:"amount"`                        // Transfer amount, any JSON type
	Description string `json:"description" binding:"max=140"` // Optional description
}

// TransferHistoryResponse is one page of an account's transfers
type TransferHistoryResponse struct {
	Transfers  []TransferResponse `json:"transfers"`   // Transfers on this page, oldest first
	Page       int                `json:"page"`        // Current page
	PageSize   int                `json:"page_size"`   // Page size
	Total      int                `json:"total"`       // Total transfers
	TotalPages int                `json:"total_pages"` // Total pages
	Cached     bool               `json:"cached"`      // Served from cache
}

// rawAmount passes numbers through, keeps absence as nil and turns any other
// JSON type into NaN so the engine reports it as an invalid amount
func rawAmount(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil // Missing or null
	case float64:
		return &n
	default:
		nan := math.NaN()
		return &nan
	}
}

// historyCachePrefix prefixes every cached history page of an account
func historyCachePrefix(account string) string {
	return "transfers:" + account + ":"
}

// parsePage reads page and page_size with the defaults 1 and 20 (max 100)
func parsePage(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// CreateTransferHandler sends money from the authenticated user to another account
func CreateTransferHandler(bank *service.Bank, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "InvalidRequest"})
			return
		}
		ctx := c.Request.Context()
		tr, err := bank.Transfers.Create(ctx, senderID, service.TransferRequest{
			ToAccount:   req.ToAccount,
			Amount:      rawAmount(req.Amount),
			Description: req.Description,
		})
		if err != nil {
			// Log the rejection with context
			logrus.WithFields(logrus.Fields{
				"from_user_id": senderID,      // Sender user ID
				"to_account":   req.ToAccount, // Destination account
				"error":        err.Error(),   // Error message
			}).Warn("Transfer rejected")
			respondError(c, err)
			return
		}
		// Log successful transfer
		logrus.WithFields(logrus.Fields{
			"transfer_id":  tr.ID,          // Transfer ID
			"from_account": tr.FromAccount, // Source account
			"to_account":   tr.ToAccount,   // Destination account
			"amount":       tr.Amount,      // Transfer amount
			"is_favorite":  tr.IsFavorite,  // Favorite at validation time
		}).Info("Transfer completed")
		invalidateTransferCaches(ctx, bank, cache, senderID, tr)
		c.JSON(http.StatusCreated, NewTransferResponse(*tr))
	}
}

// invalidateTransferCaches drops profiles and history pages of both parties
func invalidateTransferCaches(ctx context.Context, bank *service.Bank, cache utils.Cache, senderID uint, tr *domain.Transfer) {
	_ = cache.Delete(ctx, userCacheKey(senderID))                   // Sender profile
	_ = cache.DeletePrefix(ctx, historyCachePrefix(tr.FromAccount)) // Sender history
	_ = cache.DeletePrefix(ctx, historyCachePrefix(tr.ToAccount))   // Recipient history
	if recipient, err := bank.Ledger.UserByAccount(ctx, tr.ToAccount); err == nil {
		_ = cache.Delete(ctx, userCacheKey(recipient.ID)) // Recipient profile
	}
}

// TransferHistoryHandler returns the authenticated user's transfers, paginated in insertion order
func TransferHistoryHandler(bank *service.Bank, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		user, err := bank.Ledger.User(ctx, userID) // Resolve the caller's account
		if err != nil {
			respondError(c, err)
			return
		}
		page, pageSize := parsePage(c)
		// Cache key per account and page
		cacheKey := historyCachePrefix(user.Account) + "page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var cached TransferHistoryResponse
		if found, err := cache.Get(ctx, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		all, err := bank.Transfers.ByAccount(ctx, user.Account)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := TransferHistoryResponse{
			Transfers:  []TransferResponse{},
			Page:       page,
			PageSize:   pageSize,
			Total:      len(all),
			TotalPages: (len(all) + pageSize - 1) / pageSize, // Calculate total pages
		}
		// Pages past the end are empty; checking first keeps the offset from overflowing
		if page <= resp.TotalPages {
			offset := (page - 1) * pageSize // Calculate offset
			for i := offset; i < len(all) && i < offset+pageSize; i++ {
				resp.Transfers = append(resp.Transfers, NewTransferResponse(all[i]))
			}
		}
		_ = cache.Set(ctx, cacheKey, resp, ttl) // Cache the page
		c.JSON(http.StatusOK, resp)
	}
}
