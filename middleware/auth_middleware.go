package middleware

import (
	"net/http"
	"strings"

	"biens-api/domain"
	"biens-api/utils"

	"github.com/gin-gonic/gin"
)

// UtilisateurKey est la clé du contexte Gin sous laquelle le middleware
// range l'appelant authentifié
const UtilisateurKey = "utilisateur"

// AuthMiddleware valide le token JWT sur chaque requête protégée
// Si le token est valide, l'appelant est posé dans le contexte
// Sinon, 401 et la requête s'arrête là
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Récupérer le header "Authorization"
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header required",
			})
			c.Abort()
			return
		}

		// Format attendu : "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]

		// Valider le token
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		// Construire l'appelant et le poser dans le contexte
		// Les handlers le passent ensuite explicitement au service
		c.Set(UtilisateurKey, domain.Utilisateur{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  domain.Role(claims.Role),
		})

		c.Next()
	}
}

// VendeurMiddleware vérifie que l'appelant a le rôle vendeur (ou admin)
// À utiliser APRÈS AuthMiddleware
func VendeurMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utilisateur, exists := Utilisateur(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "utilisateur not found in context",
			})
			c.Abort()
			return
		}

		if utilisateur.Role != domain.RoleVendeur && utilisateur.Role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "vendeur role required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Utilisateur récupère l'appelant authentifié posé par AuthMiddleware
func Utilisateur(c *gin.Context) (domain.Utilisateur, bool) {
	value, exists := c.Get(UtilisateurKey)
	if !exists {
		return domain.Utilisateur{}, false
	}
	utilisateur, ok := value.(domain.Utilisateur)
	return utilisateur, ok
}
