package policy

import (
	"testing"

	"threads/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanModifyPost(t *testing.T) {
	t.Parallel()
	post := &models.Post{ID: 1, PostedBy: 7}

	tests := []struct {
		name  string
		actor uint
		post  *models.Post
		want  bool
	}{
		{"owner", 7, post, true},
		{"other user", 8, post, false},
		{"anonymous", 0, post, false},
		{"missing post", 7, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyPost(tt.actor, tt.post))
		})
	}
}

func TestCanDeleteReply(t *testing.T) {
	t.Parallel()
	post := &models.Post{ID: 1, PostedBy: 7}
	reply := &models.Reply{ID: 3, PostID: 1, UserID: 9, Username: "bob"}

	tests := []struct {
		name  string
		actor uint
		reply *models.Reply
		want  bool
	}{
		{"post owner", 7, reply, true},
		{"reply author", 9, reply, true},
		{"bystander", 11, reply, false},
		{"anonymous", 0, reply, false},
		{"missing reply", 7, nil, false},
		// A later identity that took over the old username is not the author.
		{"username reuse", 12, &models.Reply{ID: 4, UserID: 9, Username: "carol"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDeleteReply(tt.actor, post, tt.reply))
		})
	}
}

func TestCanModifyProfile(t *testing.T) {
	t.Parallel()
	assert.True(t, CanModifyProfile(5, 5))
	assert.False(t, CanModifyProfile(5, 6))
	assert.False(t, CanModifyProfile(0, 0))
}
