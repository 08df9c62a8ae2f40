package gql

import (
	"net/http" // HTTP status codes

	"banking_api/internal/middleware" // Authenticated user

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/graphql-go/graphql" // GraphQL executor
	"github.com/sirupsen/logrus"    // Logging library
)

// Request is the standard GraphQL-over-HTTP body
type Request struct {
	Query         string         `json:"query" binding:"required"` // Query document
	Variables     map[string]any `json:"variables"`                // Variable values
	OperationName string         `json:"operationName"`            // Operation to run
}

// Handler executes GraphQL requests. Mount it behind OptionalJWTMiddleware so
// register and login work without a token.
func Handler(schema graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "InvalidRequest"})
			return
		}
		ctx := c.Request.Context()
		if id, ok := middleware.UserID(c); ok {
			ctx = WithUserID(ctx, id) // Hand the caller to resolvers
		}
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})
		if result.HasErrors() {
			logrus.WithFields(logrus.Fields{
				"operation": req.OperationName,  // Operation name, may be empty
				"errors":    len(result.Errors), // Error count
			}).Debug("GraphQL request returned errors")
		}
		c.JSON(http.StatusOK, result)
	}
}
