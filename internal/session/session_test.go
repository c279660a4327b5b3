package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Unknown user is idle.
	state, err := store.Get(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, state)

	err = store.Set(ctx, 100, State{Name: StateAwaitingPrompt}.With("kind", "text"))
	require.NoError(t, err)

	state, err = store.Get(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, StateAwaitingPrompt, state.Name)
	assert.Equal(t, "text", state.Value("kind"))

	// Other users are unaffected.
	other, err := store.Get(ctx, 200)
	require.NoError(t, err)
	assert.Nil(t, other)

	err = store.Clear(ctx, 100)
	require.NoError(t, err)

	state, err = store.Get(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestStateWith(t *testing.T) {
	tests := []struct {
		name        string
		description string
		base        State
		key         string
		value       string
		wantData    map[string]string
	}{
		{
			name:        "add to empty state",
			description: "With on a state without data allocates the map",
			base:        State{Name: StateInQuiz},
			key:         "quiz_id",
			value:       "3",
			wantData:    map[string]string{"quiz_id": "3"},
		},
		{
			name:        "keep existing values",
			description: "With copies prior entries instead of dropping them",
			base:        State{Name: StateInQuiz, Data: map[string]string{"quiz_id": "3"}},
			key:         "attempt_id",
			value:       "7",
			wantData:    map[string]string{"quiz_id": "3", "attempt_id": "7"},
		},
		{
			name:        "overwrite value",
			description: "setting the same key again replaces it",
			base:        State{Name: StateAwaitingPrompt, Data: map[string]string{"kind": "text"}},
			key:         "kind",
			value:       "image",
			wantData:    map[string]string{"kind": "image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.With(tt.key, tt.value)
			assert.Equal(t, tt.wantData, got.Data, tt.description)
			assert.Equal(t, tt.base.Name, got.Name)
		})
	}
}

func TestStateWithDoesNotMutateOriginal(t *testing.T) {
	base := State{Name: StateInQuiz, Data: map[string]string{"quiz_id": "3"}}
	_ = base.With("attempt_id", "7")
	assert.Equal(t, map[string]string{"quiz_id": "3"}, base.Data)
}

func TestStateValueNilSafe(t *testing.T) {
	var state *State
	assert.Equal(t, "", state.Value("anything"))
}
