package session

// Store is the single durable slot holding the encoded token.
//
// Implementations include repositories.Slot (SQLite) for the CLI and TUI and a per-request cookie store for the web shell.
type Store interface {
	Load() (token string, ok bool, err error) // Load returns the stored token; ok is false when the slot is empty
	Save(token string) error                  // Save replaces the stored token
	Clear() error                             // Clear empties the slot; clearing an empty slot is not an error
}

// MemoryStore keeps the token in memory for the lifetime of one exchange.
type MemoryStore struct {
	token  string
	stored bool
}

func (m *MemoryStore) Load() (string, bool, error) { return m.token, m.stored, nil }

func (m *MemoryStore) Save(token string) error {
	m.token, m.stored = token, true
	return nil
}

func (m *MemoryStore) Clear() error {
	m.token, m.stored = "", false
	return nil
}
