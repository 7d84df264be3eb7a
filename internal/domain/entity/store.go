package entity

// Roles de un miembro dentro de la tienda.
const (
	StoreRoleManager  = "manager"
	StoreRoleOperator = "operator"
	StoreRoleViewer   = "viewer"
)

// Store tienda (tenant) con su dueño y miembros.
type Store struct {
	ID      string
	Name    string
	OwnerID string
	Members []StoreMember
}

// StoreMember usuario con acceso a la tienda.
type StoreMember struct {
	UserID string
	Role   string
}

// HasAccess indica si el usuario es dueño o miembro de la tienda.
func (s *Store) HasAccess(userID string) bool {
	if userID == "" {
		return false
	}
	if s.OwnerID == userID {
		return true
	}
	for _, m := range s.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Recipients devuelve el dueño primero y luego los miembros, sin duplicados.
func (s *Store) Recipients() []string {
	out := make([]string, 0, len(s.Members)+1)
	seen := make(map[string]struct{}, len(s.Members)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(s.OwnerID)
	for _, m := range s.Members {
		add(m.UserID)
	}
	return out
}
