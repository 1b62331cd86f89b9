package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"biens-api/domain"
	"biens-api/dto"
	"biens-api/middleware"
	"biens-api/repositories"
	"biens-api/services"

	"github.com/gin-gonic/gin"
)

// errFausseBase simule une erreur de la couche de persistance
var errFausseBase = errors.New("fausse base: connexion sql perdue")

// ============================================
// MOCK du service pour les tests de handlers
// ============================================

type mockBienService struct {
	bien         *domain.Bien
	err          error
	createAppele bool
	deleteAppele bool
}

func (m *mockBienService) ListPublic(filtres dto.BienFilters, pagination dto.PaginationParams) (*dto.BienListResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	pagination.Normaliser()
	return &dto.BienListResponse{
		Biens:      []domain.Bien{},
		Pagination: dto.Pagination{Page: pagination.Page, PageSize: pagination.PageSize},
		Filtres:    filtres,
	}, nil
}

func (m *mockBienService) GetPublicByID(id uint) (*domain.Bien, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bien, nil
}

func (m *mockBienService) ListByProprietaire(utilisateur domain.Utilisateur) ([]domain.Bien, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Bien{}, nil
}

func (m *mockBienService) Create(utilisateur domain.Utilisateur, req dto.CreateBienRequest) (*domain.Bien, error) {
	m.createAppele = true
	if m.err != nil {
		return nil, m.err
	}
	return m.bien, nil
}

func (m *mockBienService) Update(utilisateur domain.Utilisateur, id uint, req dto.UpdateBienRequest) (*domain.Bien, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bien, nil
}

func (m *mockBienService) Delete(utilisateur domain.Utilisateur, id uint) error {
	m.deleteAppele = true
	return m.err
}

// setupRouter monte les routes comme en production, avec un middleware
// de test qui pose un vendeur authentifié dans le contexte
func setupRouter(service services.BienService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authTest := func(c *gin.Context) {
		c.Set(middleware.UtilisateurKey, domain.Utilisateur{
			ID:   1,
			Role: domain.RoleVendeur,
		})
		c.Next()
	}

	ctrl := NewBienController(service)
	biens := router.Group("/biens")
	{
		biens.GET("", ctrl.ListPublic)
		biens.GET("/:id", ctrl.GetByID)
		biens.GET("/mes-biens", authTest, ctrl.MesBiens)
		biens.POST("", authTest, ctrl.Create)
		biens.PUT("/:id", authTest, ctrl.Update)
		biens.DELETE("/:id", authTest, ctrl.Delete)
	}
	return router
}

func bodyValide() string {
	return `{
		"titre": "Appartement lumineux",
		"description": "Trois pièces au centre-ville",
		"categorie": "appartement",
		"statut": "location",
		"prix": 950,
		"modalite_paiement": "mensuel",
		"surface": 62,
		"nb_pieces": 3,
		"adresse": "12 rue de la Paix",
		"ville": "Paris",
		"code_postal": "75002",
		"latitude": 48.86,
		"longitude": 2.33
	}`
}

// remplacerChamp change la valeur d'un champ numérique du body valide
func remplacerChamp(body, avant, apres string) string {
	return strings.Replace(body, avant, apres, 1)
}

// ============================================
// TESTS
// ============================================

// Test : un id non numérique renvoie une erreur propre, jamais un crash
func TestGetByID_IDInvalide(t *testing.T) {
	router := setupRouter(&mockBienService{})

	for _, id := range []string{"abc", "-4", "1.5", "0"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/biens/"+id, nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("id=%q: expected 400, got %d", id, w.Code)
			continue
		}

		var resp dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("id=%q: réponse non JSON: %v", id, err)
		}
		if resp.Error != "invalid_id" {
			t.Errorf("id=%q: expected error invalid_id, got %s", id, resp.Error)
		}
	}
}

// Test : un bien absent (ou non publié) renvoie un 404 bien formé
func TestGetByID_Introuvable(t *testing.T) {
	router := setupRouter(&mockBienService{err: repositories.ErrBienIntrouvable})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/biens/42", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse non JSON: %v", err)
	}
	if resp.Error != "bien_not_found" || resp.Message == "" {
		t.Errorf("Expected {bien_not_found, message}, got %+v", resp)
	}
}

// Test : le détail d'un bien publié sort sous la clé "bien"
func TestGetByID_Envelope(t *testing.T) {
	service := &mockBienService{bien: &domain.Bien{ID: 7, Titre: "Villa"}}
	router := setupRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/biens/7", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse non JSON: %v", err)
	}
	if _, ok := resp["bien"]; !ok {
		t.Error("Expected payload under 'bien' key")
	}
}

// Test : prix=0 est rejeté avec une erreur de validation détaillée
func TestCreate_PrixZero(t *testing.T) {
	service := &mockBienService{}
	router := setupRouter(service)

	body := remplacerChamp(bodyValide(), `"prix": 950`, `"prix": 0`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/biens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if service.createAppele {
		t.Error("Create should not reach the service on validation failure")
	}

	var resp dto.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse non JSON: %v", err)
	}
	if resp.Error != "validation_error" {
		t.Errorf("Expected validation_error, got %s", resp.Error)
	}
	if _, ok := resp.Details["prix"]; !ok {
		t.Errorf("Expected itemized error on 'prix', got %v", resp.Details)
	}
}

// Test : surface=0 est rejetée de la même façon
func TestCreate_SurfaceZero(t *testing.T) {
	router := setupRouter(&mockBienService{})

	body := remplacerChamp(bodyValide(), `"surface": 62`, `"surface": 0`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/biens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp dto.ValidationErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if _, ok := resp.Details["surface"]; !ok {
		t.Errorf("Expected itemized error on 'surface', got %v", resp.Details)
	}
}

// Test : prix=0.01 passe la validation
func TestCreate_PrixUnCentime(t *testing.T) {
	service := &mockBienService{bien: &domain.Bien{ID: 1}}
	router := setupRouter(service)

	body := remplacerChamp(bodyValide(), `"prix": 950`, `"prix": 0.01`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/biens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (body: %s)", w.Code, w.Body.String())
	}
	if !service.createAppele {
		t.Error("Expected create to reach the service")
	}
}

// Test : une catégorie hors énumération est rejetée
func TestCreate_CategorieInconnue(t *testing.T) {
	router := setupRouter(&mockBienService{})

	body := remplacerChamp(bodyValide(), `"categorie": "appartement"`, `"categorie": "chateau"`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/biens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp dto.ValidationErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if _, ok := resp.Details["categorie"]; !ok {
		t.Errorf("Expected itemized error on 'categorie', got %v", resp.Details)
	}
}

// Test : un filtre d'énumération invalide sur la liste publique → 400
func TestListPublic_FiltreCategorieInvalide(t *testing.T) {
	router := setupRouter(&mockBienService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/biens?categorie=chateau", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp dto.ValidationErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "validation_error" {
		t.Errorf("Expected validation_error, got %s", resp.Error)
	}
	if _, ok := resp.Details["categorie"]; !ok {
		t.Errorf("Expected itemized error on 'categorie', got %v", resp.Details)
	}
}

// Test : un paramètre numérique non parsable → 400, pas de crash
func TestListPublic_ParamNonNumerique(t *testing.T) {
	router := setupRouter(&mockBienService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/biens?prixMin=abc", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp dto.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse non JSON: %v", err)
	}
	if resp.Error != "validation_error" {
		t.Errorf("Expected validation_error, got %s", resp.Error)
	}
}

// Test : la liste publique renvoie biens + pagination + filtres
func TestListPublic_Envelope(t *testing.T) {
	router := setupRouter(&mockBienService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/biens?ville=paris&page=2&pageSize=10", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Biens      []domain.Bien  `json:"biens"`
		Pagination dto.Pagination `json:"pagination"`
		Filtres    map[string]any `json:"filtres"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse non JSON: %v", err)
	}
	if resp.Biens == nil {
		t.Error("Expected 'biens' key, even empty")
	}
	if resp.Pagination.Page != 2 || resp.Pagination.PageSize != 10 {
		t.Errorf("Expected pagination 2/10 echoed, got %d/%d", resp.Pagination.Page, resp.Pagination.PageSize)
	}
	if resp.Filtres["ville"] != "paris" {
		t.Errorf("Expected ville filter echoed, got %v", resp.Filtres)
	}
}

// Test : la tentative de modification d'un bien d'autrui → 403
func TestUpdate_Interdit(t *testing.T) {
	router := setupRouter(&mockBienService{err: services.ErrAccesInterdit})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/biens/3", strings.NewReader(bodyValide()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}

	var resp dto.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "forbidden" {
		t.Errorf("Expected forbidden, got %s", resp.Error)
	}
}

// Test : la suppression d'un bien d'autrui → 403 aussi
func TestDelete_Interdit(t *testing.T) {
	router := setupRouter(&mockBienService{err: services.ErrAccesInterdit})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/biens/3", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}
}

// Test : une erreur de persistance → 500 avec message générique fixe
func TestListPublic_ErreurServeur(t *testing.T) {
	router := setupRouter(&mockBienService{err: errFausseBase})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/biens", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	var resp dto.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "server_error" {
		t.Errorf("Expected server_error, got %s", resp.Error)
	}
	// Le détail interne ne doit jamais fuiter
	if strings.Contains(resp.Message, "sql") || strings.Contains(resp.Message, "fausse base") {
		t.Errorf("Internal detail leaked to the client: %s", resp.Message)
	}
	if resp.Message != messageErreurInterne {
		t.Errorf("Expected fixed message, got %s", resp.Message)
	}
}
