package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelia/pkg/graph"
)

func noopHandler(_ context.Context, s graph.State) (graph.State, error) { return s, nil }

func TestRegister_DuplicateIsError(t *testing.T) {
	r := New("unified_response")
	require.NoError(t, r.Register(graph.NodeInfo{Name: "weather_search", Handler: noopHandler}))
	err := r.Register(graph.NodeInfo{Name: "weather_search", Handler: noopHandler})
	require.Error(t, err)
}

func TestRegister_RequiresHandler(t *testing.T) {
	r := New()
	err := r.Register(graph.NodeInfo{Name: "weather_search"})
	require.Error(t, err)
}

func TestListPublic_HidesDecisionNodeAndSynonyms(t *testing.T) {
	r := New("unified_response", "decision")
	require.NoError(t, r.Register(graph.NodeInfo{Name: "unified_response", Handler: noopHandler}))
	require.NoError(t, r.Register(graph.NodeInfo{Name: "decision", Handler: noopHandler}))
	require.NoError(t, r.Register(graph.NodeInfo{Name: "weather_search", Handler: noopHandler}))

	public := r.ListPublic()
	assert.Len(t, public, 1)
	_, ok := public["weather_search"]
	assert.True(t, ok)
	_, ok = public["unified_response"]
	assert.False(t, ok)
}

func TestListPublic_StripsHandler(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(graph.NodeInfo{Name: "weather_search", Handler: noopHandler}))
	public := r.ListPublic()
	assert.Nil(t, public["weather_search"].Handler)
}

func TestSeal_RejectsLateRegistration(t *testing.T) {
	r := New()
	r.Seal()
	err := r.Register(graph.NodeInfo{Name: "weather_search", Handler: noopHandler})
	require.Error(t, err)
}
