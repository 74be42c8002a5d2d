package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionKind_Opposite(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ReactionDislike, ReactionLike.Opposite())
	assert.Equal(t, ReactionLike, ReactionDislike.Opposite())
	assert.Equal(t, ReactionNone, ReactionNone.Opposite())
	assert.False(t, ReactionNone.Valid())
	assert.False(t, ReactionKind("love").Valid())
}

func TestPost_SplitReactions(t *testing.T) {
	t.Parallel()
	p := &Post{Reactions: []Reaction{
		{UserID: 1, Kind: ReactionLike},
		{UserID: 2, Kind: ReactionDislike},
		{UserID: 3, Kind: ReactionLike},
	}}
	p.SplitReactions()

	assert.Equal(t, []uint{1, 3}, p.Likes)
	assert.Equal(t, []uint{2}, p.Dislikes)
	assert.Equal(t, ReactionLike, p.ReactionOf(3))
	assert.Equal(t, ReactionDislike, p.ReactionOf(2))
	assert.Equal(t, ReactionNone, p.ReactionOf(9))
}

func TestPost_EmptyCollectionsRenderAsArrays(t *testing.T) {
	t.Parallel()
	p := &Post{ID: 1, Text: "hello", PostedBy: 1}
	p.SplitReactions()

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, []any{}, out["likes"])
	assert.Equal(t, []any{}, out["dislikes"])
	assert.Equal(t, []any{}, out["replies"])
	assert.NotContains(t, out, "Reactions")
}

func TestPost_FindReply(t *testing.T) {
	t.Parallel()
	p := &Post{Replies: []Reply{{ID: 4, Text: "a"}, {ID: 9, Text: "b"}}}
	require.NotNil(t, p.FindReply(9))
	assert.Equal(t, "b", p.FindReply(9).Text)
	assert.Nil(t, p.FindReply(5))
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(User{ID: 1, Username: "alice", Password: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "password")
}
