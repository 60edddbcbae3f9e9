package session

import "github.com/desertthunder/songbook/internal/models"

// DefaultCredentials returns the fixed credential table.
func DefaultCredentials() []models.Credential {
	return []models.Credential{
		{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin},
		{ID: 2, Username: "user", Password: "user123", Role: models.RoleUser},
	}
}

// lookup finds the record matching both username and password exactly.
func lookup(table []models.Credential, username, password string) (models.Credential, bool) {
	for _, c := range table {
		if c.Username == username && c.Password == password {
			return c, true
		}
	}
	return models.Credential{}, false
}
