package scope

// Local is a variable or constant slot visible in a scope. The scope tree
// only reads its display name; everything else travels through to the
// debug-info writer untouched.
type Local interface {
	Name() string
}

// Definition is the concrete Local produced by the input decoder.
type Definition struct {
	Ident string `json:"name" yaml:"name"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Slot  int    `json:"slot,omitempty" yaml:"slot,omitempty"`
	// Value is the rendered value of a local constant. Empty for variables.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Name implements Local.
func (d Definition) Name() string { return d.Ident }
