package Middleware

import (
	"net/http"

	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/ArthurLima05/app.renatalyra/Utils/Token"
	"github.com/gin-gonic/gin"
)

func JwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := Token.TokenValid(c)
		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized Token Invalid")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PermissionCheckFinance gates the ledger and dashboard routes: only accounts
// with permission level 2 or higher see money.
func PermissionCheckFinance() gin.HandlerFunc {
	return func(c *gin.Context) {
		user_id, err := Token.ExtractTokenID(c)

		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized Token Extraction")
			c.Abort()
			return
		}

		user, err := Models.GetUserByID(user_id)
		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized User Extraction")
			c.Abort()
			return
		}

		if user.Permission >= 2 {
			c.Next()
		} else {
			c.String(http.StatusForbidden, "Unauthorized Not Enough Permission")
			c.Abort()
		}
	}
}
