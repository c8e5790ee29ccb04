package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
	"github.com/orizon-lang/scopetree/internal/scope"
)

func vars(names ...string) []scope.Local {
	out := make([]scope.Local, 0, len(names))
	for _, n := range names {
		out = append(out, scope.Definition{Ident: n})
	}
	return out
}

func goodMethod(name string) Method {
	return Method{
		Name:   name,
		Length: 100,
		Scopes: []scope.Scope{
			scope.MustNew(0, 100, nil, vars("this")),
			scope.MustNew(10, 20, nil, vars("x")),
		},
	}
}

func badMethod(name string) Method {
	return Method{
		Name: name,
		Scopes: []scope.Scope{
			scope.MustNew(0, 10, nil, nil),
			scope.MustNew(5, 10, nil, nil),
		},
	}
}

func TestRunKeepsInputOrder(t *testing.T) {
	var methods []Method
	for i := 0; i < 32; i++ {
		methods = append(methods, goodMethod(fmt.Sprintf("M%02d", i)))
	}

	res, err := New(WithConcurrency(4)).Run(context.Background(), methods)
	require.NoError(t, err)
	require.Len(t, res.Methods, len(methods))
	for i, m := range res.Methods {
		assert.Equal(t, methods[i].Name, m.Name)
		require.NoError(t, m.Err)
		assert.Equal(t, 2, m.Tree.Len())
	}
	assert.Empty(t, res.Failed())
}

func TestRunAbortPolicy(t *testing.T) {
	res, err := New(WithPolicy(PolicyAbort)).Run(context.Background(), []Method{
		goodMethod("A"),
		badMethod("B"),
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, scopeerrors.IsStructural(err))
	assert.Contains(t, err.Error(), "method B")
}

func TestRunOmitPolicy(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	res, err := New(WithPolicy(PolicyOmit), WithLogger(logger)).Run(context.Background(), []Method{
		goodMethod("A"),
		badMethod("B"),
		goodMethod("C"),
	})
	require.NoError(t, err)

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "B", failed[0].Name)
	assert.Nil(t, failed[0].Tree)
	assert.True(t, scopeerrors.IsStructural(failed[0].Err))
	assert.NotNil(t, res.Methods[2].Tree)

	assert.Contains(t, buf.String(), `"method":"B"`)
	assert.Contains(t, buf.String(), "omitting debug scopes")
}

func TestRunStateMachineAndUnboundedMethods(t *testing.T) {
	res, err := New().Run(context.Background(), []Method{
		{
			Name:         "MoveNext",
			StateMachine: true,
			Scopes: []scope.Scope{
				scope.MustNew(0, 10, nil, vars("a")),
				scope.MustNew(20, 10, nil, vars("b")),
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Methods[0].Tree.Roots(), 2)
	_, bounded := res.Methods[0].Tree.MethodLength()
	assert.False(t, bounded)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Run(ctx, []Method{goodMethod("A")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"":       PolicyAbort,
		"abort":  PolicyAbort,
		" Omit ": PolicyOmit,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePolicy("retry")
	assert.True(t, scopeerrors.IsCategory(err, scopeerrors.CategoryConfiguration))
	assert.Equal(t, "omit", PolicyOmit.String())
}

func TestBuildConcurrencyFromEnv(t *testing.T) {
	t.Setenv("SCOPETREE_MAX_CONCURRENCY", "3")
	assert.Equal(t, 3, buildConcurrency())

	t.Setenv("SCOPETREE_MAX_CONCURRENCY", "99999")
	assert.Equal(t, 1024, buildConcurrency())

	t.Setenv("SCOPETREE_MAX_CONCURRENCY", "nope")
	assert.Positive(t, buildConcurrency())
}
