package dto

import "biens-api/domain"

// CreateBienRequest représente le body envoyé pour créer un bien
// Les tags "binding" portent les contraintes champ par champ :
// prix et surface strictement positifs, coordonnées bornées, enums fermées
type CreateBienRequest struct {
	Titre            string         `json:"titre" binding:"required,min=3,max=255"`
	Description      string         `json:"description" binding:"required"`
	Categorie        string         `json:"categorie" binding:"required,oneof=maison immeuble villa appartement terrain"`
	TypeAnnonce      string         `json:"statut" binding:"required,oneof=location vente"`
	Prix             float64        `json:"prix" binding:"required,gt=0"`
	ModalitePaiement string         `json:"modalite_paiement" binding:"required,oneof=mensuel trimestriel annuel unique"`
	Surface          float64        `json:"surface" binding:"required,gt=0"`
	NbPieces         int            `json:"nb_pieces" binding:"gte=0"`
	Adresse          string         `json:"adresse" binding:"required"`
	Ville            string         `json:"ville" binding:"required"`
	CodePostal       string         `json:"code_postal" binding:"required"`
	Latitude         float64        `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude        float64        `json:"longitude" binding:"gte=-180,lte=180"`
	Photos           []PhotoRequest `json:"photos" binding:"omitempty,dive"`
}

// UpdateBienRequest représente le body du PUT : remplacement complet
// des champs modifiables, mêmes contraintes qu'à la création
type UpdateBienRequest = CreateBienRequest

// PhotoRequest représente une photo envoyée avec le bien
type PhotoRequest struct {
	URL           string `json:"url" binding:"required,url"`
	EstPrincipale bool   `json:"est_principale"`
}

// BienFilters regroupe les filtres optionnels de la liste publique
// Chaque champ est un pointeur : nil = filtre absent, donc aucun prédicat
// Le binding se fait UNE fois à l'entrée, plus de coercition dispersée
type BienFilters struct {
	Ville       *string  `form:"ville" json:"ville,omitempty"`
	Categorie   *string  `form:"categorie" json:"categorie,omitempty"`
	TypeAnnonce *string  `form:"statut" json:"statut,omitempty"`
	PrixMin     *float64 `form:"prixMin" json:"prixMin,omitempty"`
	PrixMax     *float64 `form:"prixMax" json:"prixMax,omitempty"`
	SurfaceMin  *float64 `form:"surfaceMin" json:"surfaceMin,omitempty"`
	PiecesMin   *int     `form:"piecesMin" json:"piecesMin,omitempty"`
}

// PaginationParams regroupe page et pageSize, avec leurs défauts
type PaginationParams struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

// Normaliser applique les défauts : page 1, pageSize 20
// Pas de borne maximale sur pageSize (comportement assumé)
func (p *PaginationParams) Normaliser() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}

// Pagination représente les métadonnées de pagination renvoyées au client
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// BienListResponse représente la réponse de la liste publique :
// les biens, la pagination, et l'écho des filtres réellement appliqués
type BienListResponse struct {
	Biens      []domain.Bien `json:"biens"`
	Pagination Pagination    `json:"pagination"`
	Filtres    BienFilters   `json:"filtres"`
}

// BienResponse représente la réponse du détail d'un bien
type BienResponse struct {
	Bien domain.Bien `json:"bien"`
}

// MesBiensResponse représente la réponse de GET /mes-biens
type MesBiensResponse struct {
	Biens []domain.Bien `json:"biens"`
}

// ErrorResponse représente une réponse d'erreur générique
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse représente une erreur de validation
// avec le détail champ par champ
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// SuccessResponse représente une réponse de succès avec payload optionnel
type SuccessResponse struct {
	Message string      `json:"message"`
	Bien    interface{} `json:"bien,omitempty"`
}
