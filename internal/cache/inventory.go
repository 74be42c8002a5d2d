package cache

import (
	"fmt"
	"strings"
)

// Key families, also used as metric labels.
const (
	FamilyProfile = "profile"
	FamilyPost    = "post"
)

// ProfileKey is the cache key of a public profile. Usernames are matched
// case-sensitively, so the key keeps the exact spelling.
func ProfileKey(username string) string {
	return FamilyProfile + ":" + username
}

// PostKey is the cache key of a single rendered post.
func PostKey(postID uint) string {
	return fmt.Sprintf("%s:%d", FamilyPost, postID)
}

// BlacklistKey marks a revoked session token id.
func BlacklistKey(jti string) string {
	return "blacklist:" + strings.TrimSpace(jti)
}
