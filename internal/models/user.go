package models

import "time"

// User is a registered identity. Followers and Following are derived from
// the follows edge table and are not columns.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Username   string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	Bio        string    `gorm:"size:500" json:"bio"`
	ProfilePic string    `json:"profilePic"`
	Followers  []uint    `gorm:"-" json:"followers"`
	Following  []uint    `gorm:"-" json:"following"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

// Follow is one directed edge of the social graph: FollowerID follows FolloweeID.
// The same row answers both "who does X follow" and "who follows Y".
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"followerId"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}
