package internal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "party_token"

type claims struct {
	UserID      int    `json:"uid"`
	AccountType string `json:"account_type"`
	jwt.RegisteredClaims
}

// Auth validates the capability token issued at login. Every party
// mutation sits behind it: registry identities come from the token, never
// from request bodies.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		cl, ok := tok.Claims.(*claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad claims"})
			return
		}

		c.Set("uid", cl.UserID)
		c.Set("account_type", cl.AccountType)
		c.Next()
	}
}

// RequireCompany guards endpoints only company accounts may use.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountType, _ := c.Get("account_type")
		if accountType != "company" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "company accounts only"})
			return
		}
		c.Next()
	}
}

func uid(c *gin.Context) int {
	v, _ := c.Get("uid")
	return v.(int)
}
