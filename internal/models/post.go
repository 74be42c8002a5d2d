package models

import "time"

// MaxPostTextLength is the longest post body accepted, counted in runes.
const MaxPostTextLength = 500

// ReactionKind is the kind of reaction an identity holds on a post.
type ReactionKind string

const (
	// ReactionNone means the identity has not reacted.
	ReactionNone    ReactionKind = ""
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is a reaction a client may request.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Opposite returns the mutually exclusive counterpart of k.
func (k ReactionKind) Opposite() ReactionKind {
	switch k {
	case ReactionLike:
		return ReactionDislike
	case ReactionDislike:
		return ReactionLike
	default:
		return ReactionNone
	}
}

// Post is a short text entry with an optional image.
// Likes and Dislikes are rendered from Reactions by the repository.
type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	PostedBy  uint       `gorm:"column:user_id;not null;index" json:"postedBy"`
	Img       string     `json:"img,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:PostID" json:"-"`
	Likes     []uint     `gorm:"-" json:"likes"`
	Dislikes  []uint     `gorm:"-" json:"dislikes"`
	Replies   []Reply    `gorm:"foreignKey:PostID" json:"replies"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Reaction is the single reaction row an identity holds on a post.
// The composite key keeps likes and dislikes disjoint.
type Reaction struct {
	PostID    uint         `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint         `gorm:"primaryKey;autoIncrement:false;index"`
	Kind      ReactionKind `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
}

// TableName keeps the reaction table name explicit.
func (Reaction) TableName() string {
	return "post_reactions"
}

// Reply is a comment on a post. Username and UserProfilePic are a snapshot
// of the author taken when the reply was written; ownership uses UserID.
type Reply struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PostID         uint      `gorm:"not null;index" json:"-"`
	UserID         uint      `gorm:"not null;index" json:"userId"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Username       string    `json:"username"`
	UserProfilePic string    `json:"userProfilePic"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SplitReactions fills Likes and Dislikes from Reactions and makes every
// collection non-nil so it renders as [] rather than null.
func (p *Post) SplitReactions() {
	p.Likes = make([]uint, 0, len(p.Reactions))
	p.Dislikes = make([]uint, 0)
	for _, r := range p.Reactions {
		switch r.Kind {
		case ReactionLike:
			p.Likes = append(p.Likes, r.UserID)
		case ReactionDislike:
			p.Dislikes = append(p.Dislikes, r.UserID)
		}
	}
	if p.Replies == nil {
		p.Replies = []Reply{}
	}
}

// ReactionOf returns the reaction userID currently holds on the post.
func (p *Post) ReactionOf(userID uint) ReactionKind {
	for _, id := range p.Likes {
		if id == userID {
			return ReactionLike
		}
	}
	for _, id := range p.Dislikes {
		if id == userID {
			return ReactionDislike
		}
	}
	return ReactionNone
}

// FindReply returns the reply with the given id, or nil.
func (p *Post) FindReply(replyID uint) *Reply {
	for i := range p.Replies {
		if p.Replies[i].ID == replyID {
			return &p.Replies[i]
		}
	}
	return nil
}
