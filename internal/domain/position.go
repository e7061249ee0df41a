package domain

import "fmt"

// Scope selects which coordinate pair a layout run reads and writes
type Scope string

const (
	// ScopeLocal is a single space, persisted to x/y
	ScopeLocal Scope = "local"
	// ScopeGlobal is the whole graph, persisted to x_global/y_global
	ScopeGlobal Scope = "global"
)

// Valid reports whether s is a known scope
func (s Scope) Valid() bool {
	return s == ScopeLocal || s == ScopeGlobal
}

// ParseScope converts a string to a Scope
func ParseScope(s string) (Scope, error) {
	scope := Scope(s)
	if !scope.Valid() {
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalid, s)
	}
	return scope, nil
}

// BlockPosition is a new coordinate pair for one block
type BlockPosition struct {
	BlockID string  `json:"block_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}
