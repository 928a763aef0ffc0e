// Package seed fills a database with fake users, posts and interactions for
// development and demos.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"creepycorners/internal/middleware"
	"creepycorners/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options control how much data the seeder creates.
type Options struct {
	NumUsers       int
	NumPosts       int
	MaxLikes       int
	MaxComments    int
	FollowsPerUser int
	MaxDays        int
	Seed           int64
	HashCost       int
}

// DefaultOptions is a small but lively dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:       25,
		NumPosts:       120,
		MaxLikes:       10,
		MaxComments:    5,
		FollowsPerUser: 6,
		MaxDays:        60,
		HashCost:       bcrypt.DefaultCost,
	}
}

// Result counts what Run created.
type Result struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
	Follows  int
}

var (
	places = []string{
		"abandoned asylum", "flooded basement", "old lighthouse", "forest clearing", "attic",
		"empty playground", "motel hallway", "crossroads", "cemetery gate", "root cellar",
		"mall after closing", "mirror maze", "boarded-up church", "tunnel under the tracks",
	}
	sightings = []string{
		"something was already looking back", "the lights flickered twice", "we heard whistling",
		"the door was open again", "there were footprints on the ceiling", "the radio turned itself on",
		"the temperature dropped ten degrees", "my phone recorded a voice", "nobody else saw it",
	}
)

// Seeder creates fake data through a gorm handle.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewSeeder returns a Seeder. A zero opts.Seed seeds from the clock.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Seeder{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// ClearAll removes every row the application owns, children first.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.Notification{}, &models.Like{}, &models.Comment{},
		&models.Follow{}, &models.Post{}, &models.User{},
	}
	for _, t := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	return nil
}

// Run creates users, then posts, then likes, comments and follows between them.
func (s *Seeder) Run() (Result, error) {
	var res Result

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return res, err
	}
	res.Users = len(users)

	posts, err := s.SeedPosts(users, s.opts.NumPosts)
	if err != nil {
		return res, err
	}
	res.Posts = len(posts)

	if res.Likes, res.Comments, err = s.SeedEngagement(users, posts); err != nil {
		return res, err
	}
	if res.Follows, err = s.SeedFollows(users); err != nil {
		return res, err
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("users", res.Users), slog.Int("posts", res.Posts),
		slog.Int("likes", res.Likes), slog.Int("comments", res.Comments), slog.Int("follows", res.Follows))
	return res, nil
}

// SeedUsers creates n users sharing DefaultPassword.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s_%d", strings.ToLower(s.faker.FirstName()), i+1)
		users = append(users, models.User{
			Email:          fmt.Sprintf("%s@creepycorners.test", username),
			Password:       string(hash),
			Username:       &username,
			DisplayName:    s.faker.Name(),
			Bio:            s.faker.Sentence(8),
			ProfilePicture: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", s.faker.UUID()),
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

// SeedPosts spreads n posts over users with creation times in the last MaxDays days.
func (s *Seeder) SeedPosts(users []models.User, n int) ([]models.Post, error) {
	if len(users) == 0 || n <= 0 {
		return nil, nil
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.rng.Intn(len(users))]
		post := models.Post{
			UserID:    owner.ID,
			Content:   s.caption(),
			MediaURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", s.faker.UUID()),
			MediaType: models.MediaKindImage,
			CreatedAt: s.pastTime(),
		}
		if s.rng.Intn(6) == 0 {
			post.MediaURL = fmt.Sprintf("https://example.com/media/%s.mp4", s.faker.UUID())
			post.MediaType = models.MediaKindVideo
		}
		posts = append(posts, post)
	}
	if err := s.db.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// SeedEngagement adds up to MaxLikes likes and MaxComments comments per post.
func (s *Seeder) SeedEngagement(users []models.User, posts []models.Post) (likes, comments int, err error) {
	if len(users) == 0 {
		return 0, 0, nil
	}

	var likeRows []models.Like
	var commentRows []models.Comment
	for _, p := range posts {
		for _, idx := range s.rng.Perm(len(users))[:s.rng.Intn(min(s.opts.MaxLikes, len(users))+1)] {
			likeRows = append(likeRows, models.Like{UserID: users[idx].ID, PostID: p.ID})
		}
		for c := s.rng.Intn(s.opts.MaxComments + 1); c > 0; c-- {
			commentRows = append(commentRows, models.Comment{
				PostID:    p.ID,
				UserID:    users[s.rng.Intn(len(users))].ID,
				Text:      s.faker.Sentence(s.rng.Intn(10) + 3),
				CreatedAt: p.CreatedAt.Add(time.Duration(s.rng.Intn(72)+1) * time.Hour),
			})
		}
	}

	if len(likeRows) > 0 {
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&likeRows, 200).Error; err != nil {
			return 0, 0, fmt.Errorf("create likes: %w", err)
		}
	}
	if len(commentRows) > 0 {
		if err := s.db.CreateInBatches(&commentRows, 200).Error; err != nil {
			return 0, 0, fmt.Errorf("create comments: %w", err)
		}
	}
	return len(likeRows), len(commentRows), nil
}

// SeedFollows makes every user follow up to FollowsPerUser others.
func (s *Seeder) SeedFollows(users []models.User) (int, error) {
	var edges []models.Follow
	for _, u := range users {
		for _, idx := range s.rng.Perm(len(users))[:min(s.opts.FollowsPerUser+1, len(users))] {
			if users[idx].ID == u.ID {
				continue
			}
			edges = append(edges, models.Follow{FollowerID: u.ID, FolloweeID: users[idx].ID})
		}
	}
	if len(edges) == 0 {
		return 0, nil
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&edges, 200).Error; err != nil {
		return 0, fmt.Errorf("create follows: %w", err)
	}
	return len(edges), nil
}

func (s *Seeder) caption() string {
	if s.rng.Intn(5) == 0 {
		return ""
	}
	return fmt.Sprintf("Went to the %s. %s.",
		places[s.rng.Intn(len(places))], capitalize(sightings[s.rng.Intn(len(sightings))]))
}

func (s *Seeder) pastTime() time.Time {
	back := time.Duration(s.rng.Int63n(int64(s.opts.MaxDays) * int64(24*time.Hour)))
	return time.Now().Add(-back)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
