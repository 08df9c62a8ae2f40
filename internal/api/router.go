package api

import (
	"context"  // Hook context
	"net/http" // HTTP status codes
	"time"     // Cache lifetime

	"banking_api/internal/auth"       // Credentials and tokens
	"banking_api/internal/domain"     // Domain models
	"banking_api/internal/gql"        // GraphQL endpoint
	"banking_api/internal/middleware" // JWT middleware
	"banking_api/internal/service"    // Core services
	"banking_api/internal/utils"      // Cache

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps are the collaborators shared by every route
type Deps struct {
	Bank     *service.Bank
	Auth     *auth.Authenticator
	Cache    utils.Cache
	CacheTTL time.Duration
}

// NewRouter registers the REST and GraphQL routes on a fresh engine
func NewRouter(d Deps) (*gin.Engine, error) {
	// GraphQL mutations share the REST cache invalidation
	schema, err := gql.NewSchema(d.Bank, d.Auth, gql.Hooks{
		AfterTransfer: func(ctx context.Context, senderID uint, t *domain.Transfer) {
			invalidateTransferCaches(ctx, d.Bank, d.Cache, senderID, t)
		},
		AfterRename: func(ctx context.Context, userID uint) {
			_ = d.Cache.Delete(ctx, userCacheKey(userID))
		},
	})
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes
	users := r.Group("/users")
	users.POST("/register", RegisterHandler(d.Auth)) // Registration endpoint
	users.POST("/login", LoginHandler(d.Auth))       // Login endpoint

	// Everything below requires a bearer token
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(d.Auth))
	authed.GET("/users/me", MeHandler(d.Bank, d.Cache, d.CacheTTL))               // Profile and balance
	authed.PATCH("/users/me", UpdateMeHandler(d.Bank, d.Cache))                   // Rename
	authed.GET("/users/lookup/:account", LookupAccountHandler(d.Bank))            // Holder of an account
	authed.POST("/transfers", CreateTransferHandler(d.Bank, d.Cache))             // Send money
	authed.GET("/transfers", TransferHistoryHandler(d.Bank, d.Cache, d.CacheTTL)) // History
	authed.POST("/favorites", AddFavoriteHandler(d.Bank))                         // Save a recipient
	authed.GET("/favorites", ListFavoritesHandler(d.Bank))                        // Saved recipients
	authed.DELETE("/favorites/:id", RemoveFavoriteHandler(d.Bank))                // Forget a recipient

	// GraphQL resolves its own authentication per field
	r.POST("/graphql", middleware.OptionalJWTMiddleware(d.Auth), gql.Handler(schema))

	return r, nil
}
