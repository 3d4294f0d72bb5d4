package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Waihonggg/leave-app-system/internal/auth"
	autherrors "github.com/Waihonggg/leave-app-system/internal/auth/errors"
	"github.com/Waihonggg/leave-app-system/internal/shared/contextutil"
	"github.com/Waihonggg/leave-app-system/internal/shared/response"
)

// SessionAuth resolves the session cookie against the session store and
// seeds the gin context with the session user. No global auth state: the
// store is injected.
func SessionAuth(sessions auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.SessionCookie)
		if err != nil || token == "" {
			e := autherrors.ErrSessionExpired
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			e := autherrors.ErrSessionExpired
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}

		c.Set("username", sess.Username)
		c.Set("ledger_row", sess.LedgerRow)

		ctx := contextutil.WithUsername(c.Request.Context(), sess.Username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
