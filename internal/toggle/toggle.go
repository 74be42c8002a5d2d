// Package toggle holds the state transitions behind reactions and follows.
// The repository layer applies the chosen transition inside one transaction.
package toggle

import "threads/internal/models"

// ReactionOutcome names the transition applied by a reaction toggle.
type ReactionOutcome string

const (
	ReactionAdded    ReactionOutcome = "added"
	ReactionRemoved  ReactionOutcome = "removed"
	ReactionSwitched ReactionOutcome = "switched"
)

// Message is the human-readable result returned to clients.
func (o ReactionOutcome) Message() string {
	switch o {
	case ReactionAdded:
		return "Reaction added"
	case ReactionRemoved:
		return "Reaction removed"
	case ReactionSwitched:
		return "Reaction switched"
	default:
		return ""
	}
}

// NextReaction returns the reaction an identity holds after requesting
// requested while holding current:
//
//	current == requested  -> none      (removed)
//	current == opposite   -> requested (switched)
//	current == none       -> requested (added)
func NextReaction(current, requested models.ReactionKind) (models.ReactionKind, ReactionOutcome) {
	switch current {
	case requested:
		return models.ReactionNone, ReactionRemoved
	case models.ReactionNone:
		return requested, ReactionAdded
	default:
		return requested, ReactionSwitched
	}
}

// FollowOutcome names the transition applied by a follow toggle.
type FollowOutcome string

const (
	Followed   FollowOutcome = "followed"
	Unfollowed FollowOutcome = "unfollowed"
)

// Message is the human-readable result returned to clients.
func (o FollowOutcome) Message() string {
	if o == Followed {
		return "User followed successfully"
	}
	return "User unfollowed successfully"
}

// NextFollow returns whether the edge actor -> target exists after the
// toggle. Following oneself is a validation error.
func NextFollow(actorID, targetID uint, following bool) (bool, FollowOutcome, error) {
	if actorID == targetID {
		return following, "", models.NewValidationError("You cannot follow or unfollow yourself")
	}
	if following {
		return false, Unfollowed, nil
	}
	return true, Followed, nil
}
