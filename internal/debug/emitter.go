package debug

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	semver "github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/scopetree/internal/scope"
)

// FormatVersion is the version of the JSON scope dump produced by Serialize.
const FormatVersion = "1.1.0"

// formatConstraint lists the dump versions this writer can produce.
// Version 1.0 dumps carry no depth or parent links.
const formatConstraint = ">= 1.0.0, < 2.0.0"

// LocalEntry describes a variable or constant in a scope.
type LocalEntry struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Slot  int    `json:"slot,omitempty"`
	Value string `json:"value,omitempty"`
}

// ScopeEntry describes one emitted scope.
type ScopeEntry struct {
	Offset    uint32       `json:"offset"`
	Length    uint32       `json:"length"`
	Point     bool         `json:"point,omitempty"`
	Depth     *int         `json:"depth,omitempty"`
	Parent    *int         `json:"parent,omitempty"`
	Variables []LocalEntry `json:"variables"`
	Constants []LocalEntry `json:"constants"`
}

// MethodDebugInfo aggregates the scopes of one method body.
type MethodDebugInfo struct {
	Name   string       `json:"name"`
	Length uint32       `json:"length,omitempty"`
	Scopes []ScopeEntry `json:"scopes"`
	Error  string       `json:"error,omitempty"`
}

// ProgramDebugInfo is the top-level debug info artifact.
type ProgramDebugInfo struct {
	FormatVersion string            `json:"format_version"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Methods       []MethodDebugInfo `json:"methods"`
}

// CheckFormat reports whether version names a dump format this package can
// write.
func CheckFormat(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("parse format version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(formatConstraint)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("format version %s is not in %s", v, formatConstraint)
	}
	return v, nil
}

// ScopeDump is a scope.Writer that records every visited scope.
type ScopeDump struct {
	links   bool
	Entries []ScopeEntry
}

// NewScopeDump returns an empty dump. Depth and parent links are recorded
// only when links is set.
func NewScopeDump(links bool) *ScopeDump {
	return &ScopeDump{links: links, Entries: []ScopeEntry{}}
}

// WriteScope implements scope.Writer.
func (d *ScopeDump) WriteScope(v scope.Visit) error {
	e := ScopeEntry{
		Offset:    v.Scope.Offset(),
		Length:    v.Scope.Length(),
		Point:     v.Scope.Kind() == scope.KindPoint,
		Variables: entries(v.Scope.Variables()),
		Constants: entries(v.Scope.Constants()),
	}
	if d.links {
		depth, parent := v.Depth, v.Parent
		e.Depth = &depth
		e.Parent = &parent
	}
	d.Entries = append(d.Entries, e)
	return nil
}

func entries(locals []scope.Local) []LocalEntry {
	out := make([]LocalEntry, 0, len(locals))
	for _, l := range locals {
		e := LocalEntry{Name: l.Name()}
		if d, ok := l.(scope.Definition); ok {
			e.Type, e.Slot, e.Value = d.Type, d.Slot, d.Value
		}
		out = append(out, e)
	}
	return out
}

// Emitter builds debug information from finished scope trees.
type Emitter struct {
	links bool
	now   func() time.Time
}

// NewEmitter returns an Emitter writing the given dump format version.
func NewEmitter(version string) (*Emitter, error) {
	v, err := CheckFormat(version)
	if err != nil {
		return nil, err
	}
	return &Emitter{links: v.Minor() >= 1, now: time.Now}, nil
}

// EmitMethod walks tree and returns its debug info. A nil tree yields a
// method with no scopes.
func (e *Emitter) EmitMethod(name string, length uint32, tree *scope.Tree) (MethodDebugInfo, error) {
	if name == "" {
		return MethodDebugInfo{}, errors.New("method name is empty")
	}
	dump := NewScopeDump(e.links)
	if err := scope.Walk(tree, dump); err != nil {
		return MethodDebugInfo{}, fmt.Errorf("walk %s: %w", name, err)
	}
	return MethodDebugInfo{Name: name, Length: length, Scopes: dump.Entries}, nil
}

// Program wraps methods in a ProgramDebugInfo stamped with the emitter's
// format version.
func (e *Emitter) Program(methods []MethodDebugInfo) ProgramDebugInfo {
	version := "1.0.0"
	if e.links {
		version = FormatVersion
	}
	return ProgramDebugInfo{
		FormatVersion: version,
		GeneratedAt:   e.now().UTC(),
		Methods:       methods,
	}
}

// Serialize returns canonical JSON for the debug info.
func Serialize(info ProgramDebugInfo) ([]byte, error) {
	return json.MarshalIndent(info, "", "  ")
}
