// Package input decodes front-end scope records from YAML or JSON files.
package input

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orizon-lang/scopetree/internal/pipeline"
	"github.com/orizon-lang/scopetree/internal/scope"
)

// Document is the on-disk shape of a front-end scope dump.
type Document struct {
	Methods []MethodRecord `yaml:"methods"`
}

// MethodRecord lists the scopes of one method body.
type MethodRecord struct {
	Name         string        `yaml:"name"`
	Length       uint32        `yaml:"length"`
	StateMachine bool          `yaml:"state_machine"`
	Scopes       []ScopeRecord `yaml:"scopes"`
}

// ScopeRecord is one lexical block. Point marks a deliberate single-offset
// scope; a zero length without Point is an empty scope.
type ScopeRecord struct {
	Offset    uint32             `yaml:"offset"`
	Length    uint32             `yaml:"length"`
	Point     bool               `yaml:"point"`
	Variables []scope.Definition `yaml:"variables"`
	Constants []scope.Definition `yaml:"constants"`
}

// Load reads and decodes the file at path.
func Load(path string) ([]pipeline.Method, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	methods, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return methods, nil
}

// Decode reads a Document from r. JSON input is accepted as YAML.
func Decode(r io.Reader) ([]pipeline.Method, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return doc.ToMethods()
}

// ToMethods converts the decoded records into pipeline methods.
func (d Document) ToMethods() ([]pipeline.Method, error) {
	methods := make([]pipeline.Method, 0, len(d.Methods))
	for i, mr := range d.Methods {
		if mr.Name == "" {
			return nil, fmt.Errorf("method #%d has no name", i)
		}
		m := pipeline.Method{
			Name:         mr.Name,
			Length:       mr.Length,
			StateMachine: mr.StateMachine,
			Scopes:       make([]scope.Scope, 0, len(mr.Scopes)),
		}
		for j, sr := range mr.Scopes {
			s, err := sr.toScope()
			if err != nil {
				return nil, fmt.Errorf("method %s scope #%d: %w", mr.Name, j, err)
			}
			m.Scopes = append(m.Scopes, s)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func (sr ScopeRecord) toScope() (scope.Scope, error) {
	constants := locals(sr.Constants)
	variables := locals(sr.Variables)
	if sr.Point {
		if sr.Length != 0 {
			return scope.Scope{}, fmt.Errorf("point scope at %d has length %d", sr.Offset, sr.Length)
		}
		return scope.NewPoint(sr.Offset, constants, variables)
	}
	return scope.New(sr.Offset, sr.Length, constants, variables)
}

func locals(defs []scope.Definition) []scope.Local {
	if defs == nil {
		return nil
	}
	out := make([]scope.Local, len(defs))
	for i, d := range defs {
		out[i] = d
	}
	return out
}
