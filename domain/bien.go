package domain

import "time"

// Categorie définit les catégories de biens disponibles sur la marketplace
type Categorie string

const (
	CategorieMaison      Categorie = "maison"
	CategorieImmeuble    Categorie = "immeuble"
	CategorieVilla       Categorie = "villa"
	CategorieAppartement Categorie = "appartement"
	CategorieTerrain     Categorie = "terrain"
)

// TypeAnnonce définit le type d'annonce : location ou vente
// (le paramètre s'appelle "statut" côté API, on garde ce nom sur le wire)
type TypeAnnonce string

const (
	TypeAnnonceLocation TypeAnnonce = "location"
	TypeAnnonceVente    TypeAnnonce = "vente"
)

// ModalitePaiement définit la fréquence de paiement d'une annonce
type ModalitePaiement string

const (
	ModaliteMensuel     ModalitePaiement = "mensuel"
	ModaliteTrimestriel ModalitePaiement = "trimestriel"
	ModaliteAnnuel      ModalitePaiement = "annuel"
	ModaliteUnique      ModalitePaiement = "unique"
)

// StatutPublication contrôle la visibilité publique d'un bien
type StatutPublication string

const (
	StatutPubliee   StatutPublication = "publiee"
	StatutBrouillon StatutPublication = "brouillon"
)

// Bien représente une annonce immobilière
type Bien struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	ProprietaireID    uint              `gorm:"not null;index" json:"proprietaire_id"`
	Titre             string            `gorm:"not null" json:"titre"`
	Description       string            `gorm:"type:text" json:"description"`
	Categorie         Categorie         `gorm:"type:varchar(20);not null" json:"categorie"`
	TypeAnnonce       TypeAnnonce       `gorm:"type:varchar(20);not null" json:"statut"`
	Prix              float64           `gorm:"not null" json:"prix"`
	ModalitePaiement  ModalitePaiement  `gorm:"type:varchar(20);not null" json:"modalite_paiement"`
	Surface           float64           `gorm:"not null" json:"surface"`
	NbPieces          int               `json:"nb_pieces"`
	Adresse           string            `json:"adresse"`
	Ville             string            `gorm:"index" json:"ville"`
	CodePostal        string            `json:"code_postal"`
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	StatutPublication StatutPublication `gorm:"type:varchar(20);default:'publiee';index" json:"statut_publication"`
	DatePublication   time.Time         `json:"date_publication"`
	Photos            []Photo           `gorm:"foreignKey:BienID" json:"photos,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TableName spécifie le nom de la table en MySQL
func (Bien) TableName() string {
	return "biens"
}

// Photo représente une photo rattachée à un bien
// L'invariant "une seule photo principale par bien" n'est PAS vérifié ici :
// c'est à la couche données (ou au client) de le garantir
type Photo struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	BienID        uint   `gorm:"not null;index" json:"bien_id"`
	URL           string `gorm:"not null" json:"url"`
	EstPrincipale bool   `gorm:"default:false" json:"est_principale"`
}

// TableName spécifie le nom de la table en MySQL
func (Photo) TableName() string {
	return "photos"
}

// CategorieValide vérifie qu'une catégorie fait partie de l'énumération
func CategorieValide(c Categorie) bool {
	switch c {
	case CategorieMaison, CategorieImmeuble, CategorieVilla, CategorieAppartement, CategorieTerrain:
		return true
	}
	return false
}

// TypeAnnonceValide vérifie qu'un type d'annonce fait partie de l'énumération
func TypeAnnonceValide(t TypeAnnonce) bool {
	return t == TypeAnnonceLocation || t == TypeAnnonceVente
}
