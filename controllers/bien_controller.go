package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"biens-api/domain"
	"biens-api/dto"
	"biens-api/middleware"
	"biens-api/repositories"
	"biens-api/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// messageErreurInterne est le seul détail renvoyé sur une erreur serveur
// L'erreur réelle part dans les logs, jamais vers le client
const messageErreurInterne = "une erreur interne est survenue"

// BienController gère les endpoints HTTP des biens
type BienController struct {
	service services.BienService
}

// NewBienController crée une nouvelle instance du contrôleur
func NewBienController(service services.BienService) *BienController {
	return &BienController{service: service}
}

// detailsValidation transforme une erreur de binding en détail champ par champ
// Exemple : {"prix": "doit être strictement supérieur à 0"}
func detailsValidation(err error) map[string]string {
	details := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			champ := strings.ToLower(fieldErr.Field())
			switch fieldErr.Tag() {
			case "required":
				details[champ] = "champ obligatoire"
			case "gt":
				details[champ] = "doit être strictement supérieur à " + fieldErr.Param()
			case "gte":
				details[champ] = "doit être supérieur ou égal à " + fieldErr.Param()
			case "lte":
				details[champ] = "doit être inférieur ou égal à " + fieldErr.Param()
			case "oneof":
				details[champ] = "valeur attendue parmi : " + fieldErr.Param()
			case "min":
				details[champ] = "longueur minimale : " + fieldErr.Param()
			case "max":
				details[champ] = "longueur maximale : " + fieldErr.Param()
			case "url":
				details[champ] = "doit être une URL valide"
			default:
				details[champ] = "valeur invalide"
			}
		}
		return details
	}

	// JSON malformé ou type incompatible : pas de détail par champ
	details["body"] = err.Error()
	return details
}

// parseID lit et borne le paramètre :id de l'URL (entier strictement positif)
func parseID(c *gin.Context) (uint, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_id",
			Message: "identifiant de bien invalide",
		})
		return 0, false
	}
	return uint(id), true
}

// ListPublic gère GET /biens
// Liste publique : uniquement les biens publiés, filtrable et paginée
func (ctrl *BienController) ListPublic(c *gin.Context) {
	// 1. Binder les filtres UNE fois, typés (pointeur = filtre absent)
	var filtres dto.BienFilters
	if err := c.ShouldBindQuery(&filtres); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:   "validation_error",
			Details: detailsValidation(err),
		})
		return
	}

	// 2. Vérifier les filtres d'énumération
	details := make(map[string]string)
	if filtres.Categorie != nil && !domain.CategorieValide(domain.Categorie(*filtres.Categorie)) {
		details["categorie"] = "catégorie inconnue"
	}
	if filtres.TypeAnnonce != nil && !domain.TypeAnnonceValide(domain.TypeAnnonce(*filtres.TypeAnnonce)) {
		details["statut"] = "type d'annonce inconnu"
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:   "validation_error",
			Details: details,
		})
		return
	}

	// 3. Binder la pagination (défauts appliqués par le service)
	var pagination dto.PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:   "validation_error",
			Details: detailsValidation(err),
		})
		return
	}

	// 4. Exécuter la recherche
	response, err := ctrl.service.ListPublic(filtres, pagination)
	if err != nil {
		log.Printf("Erreur recherche biens: %v", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: messageErreurInterne,
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetByID gère GET /biens/:id
// Détail public d'un bien publié, photos comprises
func (ctrl *BienController) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	bien, err := ctrl.service.GetPublicByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrBienIntrouvable) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "bien_not_found",
				Message: "bien introuvable ou non publié",
			})
			return
		}
		log.Printf("Erreur lecture bien %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: messageErreurInterne,
		})
		return
	}

	c.JSON(http.StatusOK, dto.BienResponse{Bien: *bien})
}

// MesBiens gère GET /biens/mes-biens
// Liste les biens de l'appelant, publiés ou non (rôle vendeur requis)
func (ctrl *BienController) MesBiens(c *gin.Context) {
	utilisateur, exists := middleware.Utilisateur(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentification requise",
		})
		return
	}

	biens, err := ctrl.service.ListByProprietaire(utilisateur)
	if err != nil {
		log.Printf("Erreur liste des biens de %d: %v", utilisateur.ID, err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: messageErreurInterne,
		})
		return
	}

	if biens == nil {
		biens = []domain.Bien{}
	}
	c.JSON(http.StatusOK, dto.MesBiensResponse{Biens: biens})
}

// Create gère POST /biens
// Création d'un bien par un vendeur authentifié
func (ctrl *BienController) Create(c *gin.Context) {
	utilisateur, exists := middleware.Utilisateur(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentification requise",
		})
		return
	}

	// 1. Lire et valider le body (contraintes portées par les tags binding)
	var req dto.CreateBienRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:   "validation_error",
			Details: detailsValidation(err),
		})
		return
	}

	// 2. Créer le bien
	bien, err := ctrl.service.Create(utilisateur, req)
	if err != nil {
		log.Printf("Erreur création de bien: %v", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: messageErreurInterne,
		})
		return
	}

	// 3. Renvoyer le bien créé, statut 201
	c.JSON(http.StatusCreated, dto.BienResponse{Bien: *bien})
}

// Update gère PUT /biens/:id
// Remplacement complet des champs modifiables, propriétaire uniquement
func (ctrl *BienController) Update(c *gin.Context) {
	utilisateur, exists := middleware.Utilisateur(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentification requise",
		})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateBienRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:   "validation_error",
			Details: detailsValidation(err),
		})
		return
	}

	bien, err := ctrl.service.Update(utilisateur, id, req)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrBienIntrouvable):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "bien_not_found",
				Message: "bien introuvable",
			})
		case errors.Is(err, services.ErrAccesInterdit):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "forbidden",
				Message: "ce bien ne vous appartient pas",
			})
		default:
			log.Printf("Erreur modification du bien %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "server_error",
				Message: messageErreurInterne,
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BienResponse{Bien: *bien})
}

// Delete gère DELETE /biens/:id
// Suppression définitive, propriétaire uniquement
func (ctrl *BienController) Delete(c *gin.Context) {
	utilisateur, exists := middleware.Utilisateur(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentification requise",
		})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	err := ctrl.service.Delete(utilisateur, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrBienIntrouvable):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "bien_not_found",
				Message: "bien introuvable",
			})
		case errors.Is(err, services.ErrAccesInterdit):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "forbidden",
				Message: "ce bien ne vous appartient pas",
			})
		default:
			log.Printf("Erreur suppression du bien %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "server_error",
				Message: messageErreurInterne,
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Bien supprimé",
	})
}

// HealthCheck gère GET /health
// Endpoint simple pour vérifier que le service tourne
func (ctrl *BienController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "biens-api",
	})
}
