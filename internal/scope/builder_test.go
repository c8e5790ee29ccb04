package scope

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
)

// shape renders a tree as one "depth:scope[names]" line per node in walk
// order.
func shape(t *Tree) []string {
	var out []string
	for v := range t.All() {
		var names []string
		for _, l := range v.Scope.Variables() {
			names = append(names, l.Name())
		}
		for _, l := range v.Scope.Constants() {
			names = append(names, "const "+l.Name())
		}
		out = append(out, fmt.Sprintf("%d:%s[%s]", v.Depth, v.Scope, strings.Join(names, ",")))
	}
	return out
}

func TestBuild(t *testing.T) {
	for name, tc := range map[string]struct {
		records []Scope
		opts    []BuilderOption
		want    []string
	}{
		"degenerate": {},
		"root with two children": {
			records: []Scope{
				MustNew(0, 100, nil, nil),
				MustNew(10, 20, nil, defs("x")),
				MustNew(40, 10, defs("c"), nil),
			},
			want: []string{
				"0:0x0+0x64[]",
				"1:0xa+0x14[x]",
				"1:0x28+0xa[const c]",
			},
		},
		"unsorted input": {
			records: []Scope{
				MustNew(40, 10, defs("c"), nil),
				MustNew(12, 4, nil, defs("inner")),
				MustNew(0, 100, nil, nil),
				MustNew(10, 20, nil, defs("x")),
			},
			want: []string{
				"0:0x0+0x64[]",
				"1:0xa+0x14[x]",
				"2:0xc+0x4[inner]",
				"1:0x28+0xa[const c]",
			},
		},
		"outer scope sharing start offset sorts first": {
			records: []Scope{
				MustNew(0, 10, nil, defs("inner")),
				MustNew(0, 20, nil, defs("outer")),
			},
			want: []string{
				"0:0x0+0x14[outer]",
				"1:0x0+0xa[inner]",
			},
		},
		"co-located scopes are siblings": {
			records: []Scope{
				MustNew(0, 20, nil, nil),
				MustNew(5, 5, nil, defs("x")),
				MustNew(5, 5, nil, defs("y")),
			},
			want: []string{
				"0:0x0+0x14[]",
				"1:0x5+0x5[x]",
				"1:0x5+0x5[y]",
			},
		},
		"co-located roots": {
			records: []Scope{
				MustNew(5, 5, nil, defs("x")),
				MustNew(5, 5, nil, defs("y")),
			},
			want: []string{
				"0:0x5+0x5[x]",
				"0:0x5+0x5[y]",
			},
		},
		"siblings sharing a boundary": {
			records: []Scope{
				MustNew(0, 20, nil, nil),
				MustNew(10, 10, nil, defs("b")),
				MustNew(0, 10, nil, defs("a")),
			},
			want: []string{
				"0:0x0+0x14[]",
				"1:0x0+0xa[a]",
				"1:0xa+0xa[b]",
			},
		},
		"zero-length range is dropped": {
			records: []Scope{
				MustNew(0, 10, nil, nil),
				MustNew(4, 0, nil, defs("gone")),
			},
			want: []string{"0:0x0+0xa[]"},
		},
		"point scope is kept": {
			records: []Scope{
				MustNew(0, 10, nil, nil),
				MustNewPoint(9, nil, defs("last")),
			},
			want: []string{
				"0:0x0+0xa[]",
				"1:point@0x9[last]",
			},
		},
		"shadowing across nesting": {
			records: []Scope{
				MustNew(0, 10, nil, defs("x")),
				MustNew(2, 2, defs("x"), nil),
			},
			want: []string{
				"0:0x0+0xa[x]",
				"1:0x2+0x2[const x]",
			},
		},
		"state machine forest": {
			records: []Scope{
				MustNew(30, 10, nil, defs("b")),
				MustNew(0, 10, nil, defs("a")),
			},
			opts: []BuilderOption{WithStateMachine()},
			want: []string{
				"0:0x0+0xa[a]",
				"0:0x1e+0xa[b]",
			},
		},
		"scope ending at method length": {
			records: []Scope{MustNew(0, 10, nil, defs("x"))},
			opts:    []BuilderOption{WithMethodLength(10)},
			want:    []string{"0:0x0+0xa[x]"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			tree, err := NewBuilder(tc.opts...).Build(tc.records)
			require.NoError(t, err)
			require.NoError(t, Validate(tree))

			if diff := cmp.Diff(tc.want, shape(tree)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tc.want), tree.Len())
		})
	}
}

func TestBuildRejects(t *testing.T) {
	for name, tc := range map[string]struct {
		records []Scope
		opts    []BuilderOption
		code    string
	}{
		"partial overlap": {
			records: []Scope{
				MustNew(0, 10, nil, nil),
				MustNew(5, 10, nil, nil),
			},
			code: "PARTIAL_OVERLAP",
		},
		"nested partial overlap": {
			records: []Scope{
				MustNew(0, 100, nil, nil),
				MustNew(10, 20, nil, nil),
				MustNew(25, 10, nil, nil),
			},
			code: "PARTIAL_OVERLAP",
		},
		"point past method end": {
			records: []Scope{
				MustNew(0, 10, nil, nil),
				MustNewPoint(10, nil, nil),
			},
			opts: []BuilderOption{WithMethodLength(10)},
			code: "EXCEEDS_METHOD",
		},
		"past method length": {
			records: []Scope{MustNew(0, 11, nil, nil)},
			opts:    []BuilderOption{WithMethodLength(10)},
			code:    "EXCEEDS_METHOD",
		},
		"disjoint roots in an ordinary method": {
			records: []Scope{
				MustNew(0, 10, nil, nil),
				MustNew(10, 10, nil, nil),
			},
			code: "MULTIPLE_ROOTS",
		},
		"duplicate name in one scope": {
			records: []Scope{
				MustNew(0, 10, nil, nil),
				MustNew(2, 4, defs("x"), defs("x")),
			},
			code: "DUPLICATE_NAME",
		},
	} {
		t.Run(name, func(t *testing.T) {
			tree, err := NewBuilder(tc.opts...).Build(tc.records)
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.True(t, scopeerrors.IsStructural(err), "error %v", err)

			var se *scopeerrors.ScopeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.code, se.Code)
		})
	}
}

func TestBuildLogsDroppedScopes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := NewBuilder(WithLogger(logger)).Build([]Scope{
		MustNew(0, 10, nil, nil),
		MustNew(3, 0, nil, nil),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"dropping zero-length scope"`)
	assert.Contains(t, buf.String(), `"offset":3`)
}

func TestBuilderIsReusable(t *testing.T) {
	b := NewBuilder(WithMethodLength(100))
	records := []Scope{
		MustNew(0, 100, nil, nil),
		MustNew(10, 20, nil, defs("x")),
	}
	first, err := b.Build(records)
	require.NoError(t, err)
	second, err := b.Build(records)
	require.NoError(t, err)

	if diff := cmp.Diff(shape(first), shape(second)); diff != "" {
		t.Errorf("(-first +second):\n%s", diff)
	}
	n, ok := first.MethodLength()
	assert.True(t, ok)
	assert.Equal(t, uint32(100), n)
}

// randomNested produces a well-formed scope list by recursively splitting
// a range into disjoint child ranges.
func randomNested(r *rand.Rand, offset, length uint32, depth int, out *[]Scope) {
	*out = append(*out, MustNew(offset, length, nil, defs(fmt.Sprintf("v%d", len(*out)))))
	if depth == 0 || length < 4 {
		return
	}
	cursor := offset
	end := offset + length
	for cursor < end {
		gap := uint32(r.Intn(3))
		size := uint32(r.Intn(int(length)/2) + 1)
		if cursor+gap+size > end {
			break
		}
		randomNested(r, cursor+gap, size, depth-1, out)
		cursor += gap + size
	}
}

func TestBuildContainmentProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		var records []Scope
		randomNested(r, 0, 200, 4, &records)
		r.Shuffle(len(records), func(a, b int) { records[a], records[b] = records[b], records[a] })

		tree, err := NewBuilder(WithMethodLength(200)).Build(records)
		require.NoError(t, err)
		require.Equal(t, len(records), tree.Len())

		var check func(n *Node)
		check = func(n *Node) {
			kids := n.Children()
			for j, c := range kids {
				assert.True(t, n.Span().Contains(c.Span()), "%s should contain %s", n.Span(), c.Span())
				assert.Same(t, n, c.Parent())
				if j > 0 {
					assert.False(t, kids[j-1].Span().PartiallyOverlaps(c.Span()))
					assert.LessOrEqual(t, kids[j-1].Span().Start, c.Span().Start)
				}
				check(c)
			}
		}
		for _, root := range tree.Roots() {
			check(root)
		}
	}
}
