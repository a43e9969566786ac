package middleware

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"greencart_back_end/internal/config"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// tokenFromRequest cherche le JWT dans le cookie puis dans le header Bearer.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims invalides")
	}
	return claims, nil
}

// AuthRequired vérifie le JWT utilisateur (cookie `token` ou Bearer) et pose
// user_id / email dans le contexte Gin.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c, "token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
			c.Abort()
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token invalide"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		if email, ok := claims["email"].(string); ok {
			c.Set("email", email)
		}

		c.Next()
	}
}

// AuthSeller vérifie le JWT vendeur (cookie `sellerToken`) : l'e-mail du claim
// doit correspondre à SELLER_EMAIL.
func AuthSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c, "sellerToken")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
			c.Abort()
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			log.Printf("❌ Erreur parsing JWT vendeur: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token invalide"})
			c.Abort()
			return
		}

		email, _ := claims["email"].(string)
		if email == "" || email != config.SellerEmail() {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Non autorisé"})
			c.Abort()
			return
		}

		c.Next()
	}
}
