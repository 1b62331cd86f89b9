package domain

// Role définit les rôles portés par le token du users-service
type Role string

const (
	RoleVendeur Role = "vendeur"
	RoleAdmin   Role = "admin"
)

// Utilisateur représente l'appelant authentifié
// Construit par le middleware à partir des claims du token, puis passé
// explicitement aux services : pas d'état ambiant
type Utilisateur struct {
	ID    uint
	Email string
	Role  Role
}

// PeutModerer indique si l'utilisateur peut agir sur les biens des autres
func (u Utilisateur) PeutModerer() bool {
	return u.Role == RoleAdmin
}
