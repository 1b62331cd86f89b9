package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"biens-api/domain"
	"biens-api/utils"

	"github.com/gin-gonic/gin"
)

// routerProtege monte une route derrière les middlewares d'authentification
// et renvoie l'identifiant de l'appelant si tout passe
func routerProtege(avecRole bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{AuthMiddleware()}
	if avecRole {
		handlers = append(handlers, VendeurMiddleware())
	}
	handlers = append(handlers, func(c *gin.Context) {
		utilisateur, _ := Utilisateur(c)
		c.JSON(http.StatusOK, gin.H{"user_id": utilisateur.ID})
	})

	router.GET("/protege", handlers...)
	return router
}

// Test : un token valide passe et l'appelant est posé dans le contexte
func TestAuthMiddleware_TokenValide(t *testing.T) {
	router := routerProtege(false)

	token, err := utils.GenerateToken(5, "vendeur@example.com", string(domain.RoleVendeur))
	if err != nil {
		t.Fatalf("génération du token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"user_id":5}` {
		t.Errorf("Expected user_id 5 in context, got %s", body)
	}
}

// Test : sans header Authorization → 401
func TestAuthMiddleware_SansHeader(t *testing.T) {
	router := routerProtege(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protege", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

// Test : un header mal formé ou un token invalide → 401
func TestAuthMiddleware_TokenInvalide(t *testing.T) {
	router := routerProtege(false)

	cas := []string{
		"Bearer pas-un-token",
		"Basic abc123",
		"Bearer",
	}
	for _, header := range cas {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protege", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header=%q: expected 401, got %d", header, w.Code)
		}
	}
}

// Test : un token valide mais sans le rôle vendeur → 403
func TestVendeurMiddleware_RoleInsuffisant(t *testing.T) {
	router := routerProtege(true)

	token, err := utils.GenerateToken(7, "client@example.com", "normal")
	if err != nil {
		t.Fatalf("génération du token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}

// Test : le rôle admin passe la barrière vendeur
func TestVendeurMiddleware_Admin(t *testing.T) {
	router := routerProtege(true)

	token, err := utils.GenerateToken(8, "admin@example.com", string(domain.RoleAdmin))
	if err != nil {
		t.Fatalf("génération du token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}
