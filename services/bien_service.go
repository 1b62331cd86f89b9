package services

import (
	"errors"
	"fmt"
	"time"

	"biens-api/domain"
	"biens-api/dto"
	"biens-api/publishers"
	"biens-api/repositories"
)

// ErrAccesInterdit signale qu'un appelant tente de modifier un bien
// qui ne lui appartient pas
var ErrAccesInterdit = errors.New("ce bien ne vous appartient pas")

// BienService définit l'interface du service
type BienService interface {
	ListPublic(filtres dto.BienFilters, pagination dto.PaginationParams) (*dto.BienListResponse, error)
	GetPublicByID(id uint) (*domain.Bien, error)
	ListByProprietaire(utilisateur domain.Utilisateur) ([]domain.Bien, error)
	Create(utilisateur domain.Utilisateur, req dto.CreateBienRequest) (*domain.Bien, error)
	Update(utilisateur domain.Utilisateur, id uint, req dto.UpdateBienRequest) (*domain.Bien, error)
	Delete(utilisateur domain.Utilisateur, id uint) error
}

// bienService est l'implémentation réelle du service
// Il orchestre le repository, le cache et la publication d'événements
type bienService struct {
	repo      repositories.BienRepository
	cache     repositories.CacheRepository
	publisher publishers.EventPublisher
}

// NewBienService crée une nouvelle instance du service
func NewBienService(repo repositories.BienRepository, cache repositories.CacheRepository, publisher publishers.EventPublisher) BienService {
	return &bienService{repo: repo, cache: cache, publisher: publisher}
}

// cleCache construit la clé de cache d'une page de liste publique
// Tous les filtres et la pagination participent à la clé
func cleCache(filtres dto.BienFilters, pagination dto.PaginationParams) string {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	derefF := func(f *float64) string {
		if f == nil {
			return ""
		}
		return fmt.Sprintf("%g", *f)
	}
	derefI := func(i *int) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%d", *i)
	}
	return fmt.Sprintf("ville=%s:cat=%s:type=%s:pmin=%s:pmax=%s:smin=%s:pieces=%s:page=%d:size=%d",
		deref(filtres.Ville), deref(filtres.Categorie), deref(filtres.TypeAnnonce),
		derefF(filtres.PrixMin), derefF(filtres.PrixMax), derefF(filtres.SurfaceMin),
		derefI(filtres.PiecesMin), pagination.Page, pagination.PageSize)
}

// ListPublic renvoie les biens publiés, filtrés et paginés
// Lecture cache-aside : cache d'abord, base ensuite, mise en cache du résultat
func (s *bienService) ListPublic(filtres dto.BienFilters, pagination dto.PaginationParams) (*dto.BienListResponse, error) {
	// 1. Appliquer les défauts de pagination (page 1, taille 20)
	pagination.Normaliser()

	key := cleCache(filtres, pagination)

	// 2. Chercher la page en cache
	biens, total, hit := s.cache.Get(key)
	if !hit {
		// 3. Sinon interroger la base
		var err error
		biens, total, err = s.repo.Rechercher(filtres, pagination.Page, pagination.PageSize)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, biens, total)
	}

	// 4. Calculer le nombre total de pages (arrondi supérieur)
	totalPages := int((total + int64(pagination.PageSize) - 1) / int64(pagination.PageSize))

	if biens == nil {
		biens = []domain.Bien{}
	}

	// 5. Renvoyer les biens, la pagination et l'écho des filtres appliqués
	return &dto.BienListResponse{
		Biens: biens,
		Pagination: dto.Pagination{
			Page:       pagination.Page,
			PageSize:   pagination.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Filtres: filtres,
	}, nil
}

// GetPublicByID renvoie un bien publié avec ses photos
// Un bien non publié est introuvable pour le public
func (s *bienService) GetPublicByID(id uint) (*domain.Bien, error) {
	return s.repo.GetPublieByID(id)
}

// ListByProprietaire renvoie tous les biens de l'appelant,
// y compris ceux qui ne sont pas publiés
func (s *bienService) ListByProprietaire(utilisateur domain.Utilisateur) ([]domain.Bien, error) {
	return s.repo.ListByProprietaire(utilisateur.ID)
}

// bienDepuisRequest construit un Bien à partir d'un body déjà validé
// Les enums ont été vérifiées par le binding, la conversion est sûre
func bienDepuisRequest(req dto.CreateBienRequest) domain.Bien {
	photos := make([]domain.Photo, 0, len(req.Photos))
	for _, p := range req.Photos {
		photos = append(photos, domain.Photo{
			URL:           p.URL,
			EstPrincipale: p.EstPrincipale,
		})
	}

	return domain.Bien{
		Titre:            req.Titre,
		Description:      req.Description,
		Categorie:        domain.Categorie(req.Categorie),
		TypeAnnonce:      domain.TypeAnnonce(req.TypeAnnonce),
		Prix:             req.Prix,
		ModalitePaiement: domain.ModalitePaiement(req.ModalitePaiement),
		Surface:          req.Surface,
		NbPieces:         req.NbPieces,
		Adresse:          req.Adresse,
		Ville:            req.Ville,
		CodePostal:       req.CodePostal,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Photos:           photos,
	}
}

// Create crée un nouveau bien pour l'appelant
// Le bien est publié immédiatement, daté de maintenant
func (s *bienService) Create(utilisateur domain.Utilisateur, req dto.CreateBienRequest) (*domain.Bien, error) {
	bien := bienDepuisRequest(req)
	bien.ProprietaireID = utilisateur.ID
	bien.StatutPublication = domain.StatutPubliee
	bien.DatePublication = time.Now()

	// 1. Insérer le bien (et ses photos par association)
	if err := s.repo.Create(&bien); err != nil {
		return nil, err
	}

	// 2. Relire le bien inséré
	// Deux allers-retours sans transaction : une écriture concurrente
	// entre les deux peut apparaître dans la réponse
	created, err := s.repo.GetByID(bien.ID)
	if err != nil {
		return nil, err
	}

	// 3. Invalider le cache de liste et publier l'événement
	s.cache.InvalidateAll()
	s.publisher.Publish("create", created.ID)

	return created, nil
}

// Update remplace les champs modifiables d'un bien existant
// La vérification de propriété passe AVANT toute mutation
func (s *bienService) Update(utilisateur domain.Utilisateur, id uint, req dto.UpdateBienRequest) (*domain.Bien, error) {
	// 1. Vérifier que le bien existe
	existant, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	// 2. Vérifier la propriété : seul le propriétaire (ou un admin) modifie
	if existant.ProprietaireID != utilisateur.ID && !utilisateur.PeutModerer() {
		return nil, ErrAccesInterdit
	}

	// 3. Remplacement complet des champs modifiables
	remplacement := bienDepuisRequest(req)
	existant.Titre = remplacement.Titre
	existant.Description = remplacement.Description
	existant.Categorie = remplacement.Categorie
	existant.TypeAnnonce = remplacement.TypeAnnonce
	existant.Prix = remplacement.Prix
	existant.ModalitePaiement = remplacement.ModalitePaiement
	existant.Surface = remplacement.Surface
	existant.NbPieces = remplacement.NbPieces
	existant.Adresse = remplacement.Adresse
	existant.Ville = remplacement.Ville
	existant.CodePostal = remplacement.CodePostal
	existant.Latitude = remplacement.Latitude
	existant.Longitude = remplacement.Longitude

	if err := s.repo.Update(existant); err != nil {
		return nil, err
	}

	// 4. Remplacer l'ensemble des photos
	if err := s.repo.ReplacePhotos(id, remplacement.Photos); err != nil {
		return nil, err
	}

	// 5. Relire le bien à jour (mêmes réserves que pour la création)
	maj, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAll()
	s.publisher.Publish("update", maj.ID)

	return maj, nil
}

// Delete supprime un bien de l'appelant
// Vérification de propriété avant suppression, pas de soft-delete
func (s *bienService) Delete(utilisateur domain.Utilisateur, id uint) error {
	// 1. Vérifier que le bien existe
	existant, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	// 2. Vérifier la propriété
	if existant.ProprietaireID != utilisateur.ID && !utilisateur.PeutModerer() {
		return ErrAccesInterdit
	}

	// 3. Supprimer
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.cache.InvalidateAll()
	s.publisher.Publish("delete", id)

	return nil
}
