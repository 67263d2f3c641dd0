package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// Context keys set for authenticated admin requests.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWTMiddleware guards admin routes with bearer tokens issued at admin login.
type JWTMiddleware struct {
	jwt *utils.JWTManager
}

func NewJWTMiddleware(jwt *utils.JWTManager) *JWTMiddleware {
	return &JWTMiddleware{jwt: jwt}
}

// Handle requires `Authorization: Bearer <token>` with an admin role.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, utils.ErrMissingToken)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortWith(c, utils.ErrInvalidToken.WithMessage("Invalid authorization header"))
			return
		}

		m.authenticate(c, strings.TrimSpace(parts[1]))
	}
}

// HandleQuery is Handle for clients that cannot set headers (EventSource):
// the token may also be passed as the `token` query parameter.
func (m *JWTMiddleware) HandleQuery() gin.HandlerFunc {
	header := m.Handle()
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				m.authenticate(c, token)
				return
			}
		}
		header(c)
	}
}

func (m *JWTMiddleware) authenticate(c *gin.Context, token string) {
	claims, err := m.jwt.Validate(token)
	if err != nil {
		abortWith(c, utils.ErrInvalidToken.WithMessage("Invalid or expired token"))
		return
	}

	if !models.IsAdminRole(claims.Role) {
		abortWith(c, utils.ErrForbidden)
		return
	}

	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxRole, strings.ToUpper(claims.Role))
	c.Next()
}

// AdminIdentity is the verified identity of the current admin request.
type AdminIdentity struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// GetAdmin returns the identity set by the JWT middleware.
func GetAdmin(c *gin.Context) AdminIdentity {
	return AdminIdentity{
		UserID: c.GetInt(CtxUserID),
		Email:  c.GetString(CtxEmail),
		Role:   c.GetString(CtxRole),
	}
}

func abortWith(c *gin.Context, ae *utils.AppError) {
	utils.Error(c, ae.Status(), ae.Code, ae.Message)
	c.Abort()
}
