package domain

const (
	RoleStudent   = "user"
	RoleBendahara = "bendahara"
)

// User models the signed-in actor as reported by the backend.
type User struct {
	ID        string `json:"id"`
	NIM       string `json:"nim,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ClassID   string `json:"classId,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// IsBendahara reports whether the user may access treasurer routes.
func (u *User) IsBendahara() bool {
	return u != nil && u.Role == RoleBendahara
}

// Merge overlays the non-empty fields of patch onto u. Used to reflect a
// profile mutation in the session without a refetch.
func (u *User) Merge(patch *User) {
	if u == nil || patch == nil {
		return
	}
	if patch.ID != "" {
		u.ID = patch.ID
	}
	if patch.NIM != "" {
		u.NIM = patch.NIM
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Role != "" {
		u.Role = patch.Role
	}
	if patch.ClassID != "" {
		u.ClassID = patch.ClassID
	}
	if patch.AvatarURL != "" {
		u.AvatarURL = patch.AvatarURL
	}
}

// Student is a class member as listed for the treasurer.
type Student struct {
	ID        string `json:"id"`
	NIM       string `json:"nim"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	ClassID   string `json:"classId,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
