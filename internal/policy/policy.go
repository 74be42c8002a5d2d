// Package policy decides whether an acting identity may mutate an entity.
// Every predicate is pure and never fails; callers turn a deny into a
// forbidden error.
package policy

import "threads/internal/models"

// CanModifyPost allows only the post's owner.
func CanModifyPost(actorID uint, post *models.Post) bool {
	return post != nil && actorID != 0 && actorID == post.PostedBy
}

// CanDeleteReply allows the owner of the parent post or the reply's author.
// Authorship is the immutable author id, never the username snapshot.
func CanDeleteReply(actorID uint, post *models.Post, reply *models.Reply) bool {
	if post == nil || reply == nil || actorID == 0 {
		return false
	}
	return actorID == post.PostedBy || actorID == reply.UserID
}

// CanModifyProfile allows an identity to change only itself.
func CanModifyProfile(actorID, targetUserID uint) bool {
	return actorID != 0 && actorID == targetUserID
}
