package domain

const (
	DefaultName     = "Anonymous"
	DefaultLanguage = "en"
)

// Profile is what other room members see about a connection.
type Profile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

func DefaultProfile() Profile {
	return Profile{Name: DefaultName, Language: DefaultLanguage}
}

// ProfileUpdate is a partial profile change. Nil or empty fields are left alone.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Language *string `json:"language,omitempty"`
}

// Apply returns p with the supplied fields of u replaced.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Name != nil && *u.Name != "" {
		p.Name = *u.Name
	}
	if u.Language != nil && *u.Language != "" {
		p.Language = *u.Language
	}
	return p
}

// MemberInfo is a snapshot of one room member.
type MemberInfo struct {
	ID      ConnectionID `json:"id"`
	Profile Profile      `json:"profile"`
}
