package seed

import (
	"fmt"
	"log"

	"quayside/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumFezzes   int
	ShouldClean bool
}

// Run seeds the database with demo users, fezzes, rosters, and discussion
// posts. Existing data is wiped first when ShouldClean is set.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumFezzes <= 0 {
		opts.NumFezzes = 40
	}

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		for _, model := range []any{&models.FezPost{}, &models.Barrel{}, &models.User{}} {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return fmt.Errorf("clean failed: %w", err)
			}
		}
	}

	factory := NewFactory(db)

	log.Printf("Creating %d users...", opts.NumUsers)
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	log.Printf("Creating %d fezzes...", opts.NumFezzes)
	for i := 0; i < opts.NumFezzes; i++ {
		owner := users[factory.rand.Intn(len(users))]
		barrel, err := factory.CreateFez(owner)
		if err != nil {
			return fmt.Errorf("create fez: %w", err)
		}

		// A handful of joiners; some fezzes end up overfull so waitlists
		// show up in demo data.
		joiners := factory.rand.Intn(6)
		for j := 0; j < joiners; j++ {
			user := users[factory.rand.Intn(len(users))]
			if err := factory.JoinFez(barrel, user); err != nil {
				return fmt.Errorf("join fez: %w", err)
			}
		}

		posts := factory.rand.Intn(4)
		for j := 0; j < posts; j++ {
			idx := factory.rand.Intn(len(barrel.MemberIDs))
			author := findUser(users, barrel.MemberIDs[idx])
			if author == nil {
				continue
			}
			if _, err := factory.CreateFezPost(barrel, author); err != nil {
				return fmt.Errorf("create fez post: %w", err)
			}
		}
	}

	log.Println("Seeding complete")
	return nil
}

func findUser(users []*models.User, id uint) *models.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
