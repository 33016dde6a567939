package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"simop-pkpt/common"
)

// ContextIdentityKey is the gin context key holding the resolved Identity
const ContextIdentityKey = "identity"

// userRow is the subset of the users table the resolver needs. Queried by
// table name to keep this package independent of the users package.
type userRow struct {
	ID       string
	Name     string
	Username string
	Role     string
	Unit     string
}

// ResolveIdentity inspects the request's bearer token (or session cookie) and
// returns the identity it resolves to. Returns a domain error when no valid
// session is present.
func ResolveIdentity(db *gorm.DB, c *gin.Context) (Identity, error) {
	tokenString := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Identity{}, common.Unauthenticated("Authorization header format must be Bearer {token}")
		}
		tokenString = parts[1]
	} else if cookie, err := c.Cookie("token"); err == nil {
		tokenString = cookie
	}

	if tokenString == "" {
		return Identity{}, common.Unauthenticated("Authorization token is required")
	}

	userID, err := VerifyToken(tokenString)
	if err != nil {
		return Identity{}, common.Unauthenticated("Invalid or expired token")
	}

	var row userRow
	if err := db.Table("users").Where("id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, common.Unauthenticated("User not found")
		}
		return Identity{}, fmt.Errorf("resolve session user: %w", err)
	}

	return identityFromRow(row)
}

func identityFromRow(row userRow) (Identity, error) {
	switch Role(row.Role) {
	case RoleAdmin:
		return AdminIdentity(row.ID, row.Name, row.Username), nil
	case RoleOperator:
		identity, err := OperatorIdentity(row.ID, row.Name, row.Username, row.Unit)
		if err != nil {
			return Identity{}, common.Unauthenticated("Account has no assigned unit")
		}
		return identity, nil
	default:
		return Identity{}, common.Unauthenticated("Account has an unknown role")
	}
}

// RequireSession rejects unauthenticated requests and stores the resolved
// Identity in the gin context.
func RequireSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := ResolveIdentity(db, c)
		if err != nil {
			common.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin rejects requests whose identity is not admin-role. Must run
// after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := CurrentIdentity(c)
		if err != nil {
			common.Respond(c, common.Unauthenticated("User not authenticated"))
			c.Abort()
			return
		}

		if !identity.IsAdmin() {
			common.Respond(c, common.Forbidden("Admin access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentIdentity returns the Identity stored by RequireSession
func CurrentIdentity(c *gin.Context) (Identity, error) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return Identity{}, fmt.Errorf("no identity in request context")
	}

	identity, ok := value.(Identity)
	if !ok {
		return Identity{}, fmt.Errorf("invalid identity type in request context")
	}

	return identity, nil
}
