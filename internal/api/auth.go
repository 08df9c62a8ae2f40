package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"banking_api/internal/auth" // Credentials and tokens

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Request struct for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`          // Display name must be provided
	Email    string `json:"email" binding:"required,email"`           // Email must be valid
	Password string `json:"password" binding:"required,min=6,max=72"` // bcrypt ignores bytes past 72
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string       `json:"token"` // JWT token
	User  UserResponse `json:"user"`  // Authenticated user
}

// RegisterHandler creates a user with a fresh account and the starting balance
func RegisterHandler(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "InvalidRequest"})
			return
		}
		user, err := authn.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondError(c, err) // Duplicate email and friends
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,      // New user ID
			"account": user.Account, // Allocated account number
		}).Info("User registered")
		c.JSON(http.StatusCreated, NewUserResponse(user))
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "InvalidRequest"})
			return
		}
		token, user, err := authn.Login(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: NewUserResponse(user)})
	}
}
