// Package gql exposes the bank over GraphQL. Resolvers call the same services
// as the REST handlers and report core error kinds in extensions.code.
package gql

import (
	"context" // Request scope
	"errors"  // Error inspection
	"math"    // Defaults for missing arguments
	"time"    // Timestamp formatting

	"banking_api/internal/auth"    // Credentials and tokens
	"banking_api/internal/domain"  // Domain models
	"banking_api/internal/service" // Core services

	"github.com/graphql-go/graphql" // GraphQL schema and executor
)

// Hooks run after successful mutations so callers can drop cached reads
type Hooks struct {
	AfterTransfer func(ctx context.Context, senderID uint, t *domain.Transfer)
	AfterRename   func(ctx context.Context, userID uint)
}

// kindError carries a core error kind into the GraphQL response
type kindError struct {
	err  error
	code string
}

func (e kindError) Error() string { return e.err.Error() }

func (e kindError) Unwrap() error { return e.err }

// Extensions is read by graphql-go when formatting errors
func (e kindError) Extensions() map[string]any {
	return map[string]any{"code": e.code}
}

var errUnauthenticated = kindError{err: errors.New("authentication required"), code: "Unauthenticated"}

// classify tags err with its kind, hiding anything outside the taxonomy
func classify(err error) error {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return kindError{err: err, code: "InvalidCredentials"}
	}
	if kind := service.KindOf(err); kind != "" {
		return kindError{err: err, code: kind}
	}
	return kindError{err: errors.New("internal server error"), code: "Internal"}
}

type ctxKey struct{}

// WithUserID stores the authenticated user id for resolvers
func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// userID returns the authenticated caller or errUnauthenticated
func userID(ctx context.Context) (uint, error) {
	id, ok := ctx.Value(ctxKey{}).(uint)
	if !ok || id == 0 {
		return 0, errUnauthenticated
	}
	return id, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userView(u *domain.User) map[string]any {
	return map[string]any{
		"id":        int(u.ID),
		"name":      u.Name,
		"email":     u.Email,
		"account":   u.Account,
		"balance":   u.Balance.InexactFloat64(),
		"createdAt": timestamp(u.CreatedAt),
	}
}

func transferView(t domain.Transfer) map[string]any {
	return map[string]any{
		"id":          int(t.ID),
		"fromAccount": t.FromAccount,
		"toAccount":   t.ToAccount,
		"amount":      t.Amount.InexactFloat64(),
		"description": t.Description,
		"isFavorite":  t.IsFavorite,
		"status":      t.Status,
		"createdAt":   timestamp(t.CreatedAt),
	}
}

func favoriteView(f domain.FavoriteEntry) map[string]any {
	return map[string]any{
		"id":        int(f.ID),
		"account":   f.Account,
		"name":      f.Name,
		"createdAt": timestamp(f.CreatedAt),
	}
}

// NewSchema builds the GraphQL schema over bank
func NewSchema(bank *service.Bank, authn *auth.Authenticator, hooks Hooks) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"account":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"balance":   &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	transferType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transfer",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"fromAccount": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"toAccount":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"amount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"isFavorite":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"status":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	favoriteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Favorite",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"account":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	holderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AccountHolder",
		Fields: graphql.Fields{
			"account": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					u, err := bank.Ledger.User(p.Context, id)
					if err != nil {
						return nil, classify(err)
					}
					return userView(u), nil
				},
			},
			"transfers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(transferType))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					transfers, err := bank.Transfers.ByUser(p.Context, id)
					if err != nil {
						return nil, classify(err)
					}
					out := make([]any, 0, len(transfers))
					for _, t := range transfers {
						out = append(out, transferView(t))
					}
					return out, nil
				},
			},
			"favorites": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(favoriteType))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					favs, err := bank.Favorites.List(p.Context, id)
					if err != nil {
						return nil, classify(err)
					}
					out := make([]any, 0, len(favs))
					for _, f := range favs {
						out = append(out, favoriteView(f))
					}
					return out, nil
				},
			},
			"account": &graphql.Field{
				Type: graphql.NewNonNull(holderType),
				Args: graphql.FieldConfigArgument{
					"account": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if _, err := userID(p.Context); err != nil {
						return nil, err
					}
					account, _ := p.Args["account"].(string)
					u, err := bank.Ledger.UserByAccount(p.Context, account)
					if err != nil {
						return nil, classify(err)
					}
					return map[string]any{"account": u.Account, "name": u.Name}, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					name, _ := p.Args["name"].(string)
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)
					u, err := authn.Register(p.Context, name, email, password)
					if err != nil {
						return nil, classify(err)
					}
					return userView(u), nil
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)
					token, u, err := authn.Login(p.Context, email, password)
					if err != nil {
						return nil, classify(err)
					}
					return map[string]any{"token": token, "user": userView(u)}, nil
				},
			},
			"updateName": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					name, _ := p.Args["name"].(string)
					u, err := bank.Ledger.Rename(p.Context, id, name)
					if err != nil {
						return nil, classify(err)
					}
					if hooks.AfterRename != nil {
						hooks.AfterRename(p.Context, id)
					}
					return userView(u), nil
				},
			},
			"createTransfer": &graphql.Field{
				Type: graphql.NewNonNull(transferType),
				// Nullable so the engine decides what is missing
				Args: graphql.FieldConfigArgument{
					"toAccount":   &graphql.ArgumentConfig{Type: graphql.String},
					"amount":      &graphql.ArgumentConfig{Type: graphql.Float},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					req := service.TransferRequest{}
					req.ToAccount, _ = p.Args["toAccount"].(string)
					req.Description, _ = p.Args["description"].(string)
					if raw, ok := p.Args["amount"]; ok && raw != nil {
						amount := math.NaN() // Anything that is not a float is invalid
						if f, ok := raw.(float64); ok {
							amount = f
						}
						req.Amount = &amount
					}
					t, err := bank.Transfers.Create(p.Context, id, req)
					if err != nil {
						return nil, classify(err)
					}
					if hooks.AfterTransfer != nil {
						hooks.AfterTransfer(p.Context, id, t)
					}
					return transferView(*t), nil
				},
			},
			"addFavorite": &graphql.Field{
				Type: graphql.NewNonNull(favoriteType),
				Args: graphql.FieldConfigArgument{
					"account": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					account, _ := p.Args["account"].(string)
					f, err := bank.Favorites.Add(p.Context, id, account)
					if err != nil {
						return nil, classify(err)
					}
					return favoriteView(*f), nil
				},
			},
			"removeFavorite": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := userID(p.Context)
					if err != nil {
						return nil, err
					}
					favoriteID, _ := p.Args["id"].(int)
					if favoriteID <= 0 {
						return nil, classify(service.ErrFavoriteNotFound)
					}
					if err := bank.Favorites.Remove(p.Context, id, uint(favoriteID)); err != nil {
						return nil, classify(err)
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
