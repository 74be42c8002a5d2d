// Package seed populates a database with fake users, follow edges, posts,
// reactions and replies for local development and demos.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"threads/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

const maxUsernameLen = 30

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_.-]+`)

// Summary counts the rows a run created.
type Summary struct {
	Users     int
	Follows   int
	Posts     int
	Reactions int
	Replies   int
}

// Seeder writes generated rows through a Gorm handle.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewSeeder returns a Seeder for db. opts must already be valid.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
	}
}

// ClearAll removes every row the application owns, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	all := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Reply{},
		&models.Reaction{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds users, then the follow graph, then posts with their engagement.
func (s *Seeder) Run() (*Summary, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	summary := &Summary{}

	users, err := s.SeedUsers(s.opts.Users)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	summary.Users = len(users)
	log.Printf("✓ %d users created", summary.Users)

	if summary.Follows, err = s.SeedFollows(users, s.opts.FollowsPerUser); err != nil {
		return nil, fmt.Errorf("seed follows: %w", err)
	}
	log.Printf("✓ %d follow edges created", summary.Follows)

	posts, err := s.SeedPosts(users, s.opts.PostsPerUser)
	if err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	summary.Posts = len(posts)
	log.Printf("✓ %d posts created", summary.Posts)

	if summary.Reactions, err = s.SeedReactions(users, posts, s.opts.ReactionsPerPost); err != nil {
		return nil, fmt.Errorf("seed reactions: %w", err)
	}
	if summary.Replies, err = s.SeedReplies(users, posts, s.opts.RepliesPerPost); err != nil {
		return nil, fmt.Errorf("seed replies: %w", err)
	}
	log.Printf("✓ %d reactions and %d replies created", summary.Reactions, summary.Replies)

	return summary, nil
}

// SeedUsers creates count accounts sharing DefaultPassword.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		username := s.username(i)
		user := &models.User{
			Name:       s.faker.Name(),
			Username:   username,
			Email:      username + "@example.com",
			Password:   string(hashed),
			Bio:        s.faker.Sentence(10),
			ProfilePic: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		}
		users = append(users, user)
	}

	if err := s.db.CreateInBatches(users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SeedFollows gives every user up to perUser distinct followees.
func (s *Seeder) SeedFollows(users []*models.User, perUser int) (int, error) {
	var edges []models.Follow
	for _, follower := range users {
		for _, followee := range s.pick(users, perUser, follower.ID) {
			edges = append(edges, models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID})
		}
	}
	if len(edges) == 0 {
		return 0, nil
	}
	if err := s.db.CreateInBatches(edges, 500).Error; err != nil {
		return 0, err
	}
	return len(edges), nil
}

// SeedPosts writes perUser posts for every user, spread over the last 90 days.
func (s *Seeder) SeedPosts(users []*models.User, perUser int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			post := &models.Post{
				PostedBy:  user.ID,
				Text:      s.postText(),
				CreatedAt: s.recentTime(),
			}
			if s.rng.Float64() < s.opts.ImageRatio {
				post.Img = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", s.faker.UUID())
			}
			posts = append(posts, post)
		}
	}
	if len(posts) == 0 {
		return posts, nil
	}
	if err := s.db.Omit("Reactions", "Replies").CreateInBatches(posts, 200).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedReactions adds up to perPost reactions on each post, roughly four
// likes to every dislike.
func (s *Seeder) SeedReactions(users []*models.User, posts []*models.Post, perPost int) (int, error) {
	var reactions []models.Reaction
	for _, post := range posts {
		for _, user := range s.pick(users, perPost, 0) {
			kind := models.ReactionLike
			if s.rng.Intn(5) == 0 {
				kind = models.ReactionDislike
			}
			reactions = append(reactions, models.Reaction{PostID: post.ID, UserID: user.ID, Kind: kind})
		}
	}
	if len(reactions) == 0 {
		return 0, nil
	}
	if err := s.db.CreateInBatches(reactions, 500).Error; err != nil {
		return 0, err
	}
	return len(reactions), nil
}

// SeedReplies adds up to perPost replies on each post. Each reply carries
// the author snapshot the API would have taken.
func (s *Seeder) SeedReplies(users []*models.User, posts []*models.Post, perPost int) (int, error) {
	var replies []models.Reply
	for _, post := range posts {
		n := 0
		if perPost > 0 {
			n = s.rng.Intn(perPost + 1)
		}
		for i := 0; i < n; i++ {
			author := users[s.rng.Intn(len(users))]
			replies = append(replies, models.Reply{
				PostID:         post.ID,
				UserID:         author.ID,
				Text:           s.faker.Sentence(s.rng.Intn(10) + 3),
				Username:       author.Username,
				UserProfilePic: author.ProfilePic,
				CreatedAt:      post.CreatedAt.Add(time.Duration(i+1) * time.Minute),
			})
		}
	}
	if len(replies) == 0 {
		return 0, nil
	}
	if err := s.db.CreateInBatches(replies, 500).Error; err != nil {
		return 0, err
	}
	return len(replies), nil
}

// username derives a valid, unique handle from a fake one. The index suffix
// keeps names unique within a run.
func (s *Seeder) username(i int) string {
	base := usernameUnsafe.ReplaceAllString(strings.ToLower(s.faker.Username()), "")
	base = strings.Trim(base, "_.-")
	if len(base) < 3 {
		base = "user" + base
	}
	suffix := fmt.Sprintf("%d", i+1)
	if len(base)+len(suffix) > maxUsernameLen {
		base = strings.TrimRight(base[:maxUsernameLen-len(suffix)], "_.-")
	}
	return base + suffix
}

func (s *Seeder) postText() string {
	text := s.faker.Paragraph(1, s.rng.Intn(3)+1, s.rng.Intn(8)+4, " ")
	runes := []rune(text)
	if len(runes) > models.MaxPostTextLength {
		text = strings.TrimSpace(string(runes[:models.MaxPostTextLength]))
	}
	return text
}

func (s *Seeder) recentTime() time.Time {
	back := time.Duration(s.rng.Int63n(int64(90 * 24 * time.Hour)))
	return time.Now().Add(-back)
}

// pick returns up to n distinct users in random order, skipping excludeID.
func (s *Seeder) pick(users []*models.User, n int, excludeID uint) []*models.User {
	if n <= 0 {
		return nil
	}
	out := make([]*models.User, 0, n)
	for _, idx := range s.rng.Perm(len(users)) {
		if users[idx].ID == excludeID {
			continue
		}
		out = append(out, users[idx])
		if len(out) == n {
			break
		}
	}
	return out
}
