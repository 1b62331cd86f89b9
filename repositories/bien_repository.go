package repositories

import (
	"errors"
	"strings"

	"biens-api/domain"
	"biens-api/dto"

	"gorm.io/gorm"
)

// ErrBienIntrouvable signale un bien absent (ou non publié côté public)
var ErrBienIntrouvable = errors.New("bien introuvable")

// BienRepository définit le contrat d'accès aux données des biens
type BienRepository interface {
	Create(bien *domain.Bien) error
	GetByID(id uint) (*domain.Bien, error)
	GetPublieByID(id uint) (*domain.Bien, error)
	Rechercher(filtres dto.BienFilters, page, pageSize int) ([]domain.Bien, int64, error)
	ListByProprietaire(proprietaireID uint) ([]domain.Bien, error)
	Update(bien *domain.Bien) error
	ReplacePhotos(bienID uint, photos []domain.Photo) error
	Delete(id uint) error
}

// bienRepository est l'implémentation GORM du repository
type bienRepository struct {
	db *gorm.DB
}

// NewBienRepository crée une nouvelle instance du repository
func NewBienRepository(db *gorm.DB) BienRepository {
	return &bienRepository{db: db}
}

// Create insère un nouveau bien (et ses photos par association)
func (r *bienRepository) Create(bien *domain.Bien) error {
	return r.db.Create(bien).Error
}

// GetByID récupère un bien par son ID quel que soit son statut de
// publication ; sert aux vérifications de propriété avant modification
func (r *bienRepository) GetByID(id uint) (*domain.Bien, error) {
	var bien domain.Bien
	err := r.db.Preload("Photos").First(&bien, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBienIntrouvable
		}
		return nil, err
	}
	return &bien, nil
}

// GetPublieByID récupère un bien publié avec ses photos
// Un bien non publié est traité comme inexistant côté public
func (r *bienRepository) GetPublieByID(id uint) (*domain.Bien, error) {
	var bien domain.Bien
	err := r.db.Preload("Photos").
		Where("statut_publication = ?", domain.StatutPubliee).
		First(&bien, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBienIntrouvable
		}
		return nil, err
	}
	return &bien, nil
}

// requeteFiltree construit la requête filtrée sur un chain GORM neuf
//
// C'est le cœur du service : chaque filtre présent ajoute exactement un
// prédicat, combiné en AND avec les autres. Toutes les valeurs passent
// en paramètres liés ("?"), jamais concaténées dans le SQL.
// Le prédicat de base statut_publication = 'publiee' est posé en premier
// et n'est pas pilotable par l'appelant.
func (r *bienRepository) requeteFiltree(filtres dto.BienFilters) *gorm.DB {
	query := r.db.Model(&domain.Bien{}).
		Where("statut_publication = ?", domain.StatutPubliee)

	if filtres.Ville != nil {
		// Sous-chaîne insensible à la casse : "par" matche "Paris"
		query = query.Where("LOWER(ville) LIKE ?", "%"+strings.ToLower(*filtres.Ville)+"%")
	}
	if filtres.Categorie != nil {
		query = query.Where("categorie = ?", *filtres.Categorie)
	}
	if filtres.TypeAnnonce != nil {
		query = query.Where("type_annonce = ?", *filtres.TypeAnnonce)
	}
	if filtres.PrixMin != nil {
		query = query.Where("prix >= ?", *filtres.PrixMin)
	}
	if filtres.PrixMax != nil {
		query = query.Where("prix <= ?", *filtres.PrixMax)
	}
	if filtres.SurfaceMin != nil {
		query = query.Where("surface >= ?", *filtres.SurfaceMin)
	}
	if filtres.PiecesMin != nil {
		query = query.Where("nb_pieces >= ?", *filtres.PiecesMin)
	}

	return query
}

// Rechercher exécute la recherche filtrée et paginée
// La requête de comptage et la requête de lignes sortent du même
// constructeur de prédicats : les deux ne peuvent pas diverger
func (r *bienRepository) Rechercher(filtres dto.BienFilters, page, pageSize int) ([]domain.Bien, int64, error) {
	// 1. Compter le total sur l'ensemble filtré
	var total int64
	if err := r.requeteFiltree(filtres).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 2. Récupérer la page demandée, du plus récent au plus ancien
	var biens []domain.Bien
	err := r.requeteFiltree(filtres).
		Preload("Photos").
		Order("date_publication DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&biens).Error
	if err != nil {
		return nil, 0, err
	}

	return biens, total, nil
}

// ListByProprietaire liste tous les biens d'un propriétaire,
// publiés ou non, du plus récent au plus ancien
func (r *bienRepository) ListByProprietaire(proprietaireID uint) ([]domain.Bien, error) {
	var biens []domain.Bien
	err := r.db.Preload("Photos").
		Where("proprietaire_id = ?", proprietaireID).
		Order("date_publication DESC").
		Find(&biens).Error
	return biens, err
}

// Update sauvegarde tous les champs d'un bien existant
func (r *bienRepository) Update(bien *domain.Bien) error {
	return r.db.Omit("Photos").Save(bien).Error
}

// ReplacePhotos remplace l'ensemble des photos d'un bien
// Pas de vérification "une seule photo principale" ici
func (r *bienRepository) ReplacePhotos(bienID uint, photos []domain.Photo) error {
	if err := r.db.Where("bien_id = ?", bienID).Delete(&domain.Photo{}).Error; err != nil {
		return err
	}
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		photos[i].ID = 0
		photos[i].BienID = bienID
	}
	return r.db.Create(&photos).Error
}

// Delete supprime un bien et ses photos
// Deux DELETE successifs, pas de transaction : cohérent avec le reste
func (r *bienRepository) Delete(id uint) error {
	if err := r.db.Where("bien_id = ?", id).Delete(&domain.Photo{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&domain.Bien{}, id).Error
}
