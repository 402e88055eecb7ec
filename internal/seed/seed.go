// Package seed fills a development database with users, homes, panes and
// dashlets. It goes through the dashboard engine so seeded rows carry the
// same identifiers real ones do.
package seed

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/database"
	"dashkeeper/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	PanesPerUser    int
	DashletsPerPane int
	ShouldClean     bool
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed int64
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Panes    int
	Dashlets int
	Shared   int
}

var roles = []string{"admins", "operators", "network", "storage", "finance", "support"}

var homes = []string{dashboard.DefaultHome, "Team", "Infrastructure"}

// Seed populates the database with test data
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	log.Printf("🌱 Seeding %d users with %d panes of %d dashlets each...", opts.NumUsers, opts.PanesPerUser, opts.DashletsPerPane)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	faker := gofakeit.New(opts.Seed)
	store := repository.NewStore(db)
	var summary Summary

	usernames := make(map[string]struct{})
	for i := 0; i < opts.NumUsers; i++ {
		username := unique(usernames, func() string { return strings.ToLower(faker.Username()) })
		userRoles := pickRoles(faker)
		if err := store.Roles.Assign(ctx, username, userRoles...); err != nil {
			return summary, fmt.Errorf("failed to assign roles to %s: %w", username, err)
		}

		d := dashboard.New(dashboard.NewSession(store, auth.NewUser(username, userRoles...), nil))
		if err := d.Load(ctx); err != nil {
			return summary, fmt.Errorf("failed to load dashboard of %s: %w", username, err)
		}

		shared, err := seedPanes(ctx, faker, d, opts, &summary)
		if err != nil {
			return summary, fmt.Errorf("failed to seed panes of %s: %w", username, err)
		}
		summary.Shared += shared
		summary.Users++
	}

	log.Printf("✓ %d users, %d panes, %d dashlets, %d shared", summary.Users, summary.Panes, summary.Dashlets, summary.Shared)
	log.Println("🎉 Database seeding completed successfully!")
	return summary, nil
}

func seedPanes(ctx context.Context, faker *gofakeit.Faker, d *dashboard.Dashboard, opts Options, summary *Summary) (int, error) {
	panes := make(map[string]struct{})
	shared := 0
	for p := 0; p < opts.PanesPerUser; p++ {
		home := faker.RandomString(homes)
		pane := unique(panes, func() string { return titleCase(faker.BuzzWord() + " " + faker.HackerNoun()) })

		dashlets := make(map[string]struct{})
		for n := 0; n < opts.DashletsPerPane; n++ {
			_, err := d.CreateDashlet(ctx, dashboard.CreateDashletInput{
				Home:        home,
				Pane:        pane,
				Dashlet:     unique(dashlets, faker.AppName),
				URL:         fmt.Sprintf("%s/%s", strings.ToLower(faker.HackerVerb()), strings.ToLower(faker.HackerNoun())),
				Description: faker.Sentence(8),
			})
			if err != nil {
				return shared, err
			}
			summary.Dashlets++
		}
		if opts.DashletsPerPane > 0 {
			summary.Panes++
		}

		if opts.DashletsPerPane > 0 && faker.Bool() {
			h, err := d.OpenHome(ctx, home)
			if err != nil {
				return shared, err
			}
			if err := h.MarkSubscribable(ctx, pane); err != nil {
				return shared, err
			}
			shared++
		}
	}
	return shared, nil
}

func pickRoles(faker *gofakeit.Faker) []string {
	picked := []string{faker.RandomString(roles)}
	if faker.Bool() {
		if second := faker.RandomString(roles); !slices.Contains(picked, second) {
			picked = append(picked, second)
		}
	}
	return picked
}

// unique draws from gen until it returns a value not in seen, suffixing a
// counter after a few collisions.
func unique(seen map[string]struct{}, gen func() string) string {
	for attempt := 0; ; attempt++ {
		v := gen()
		if attempt >= 3 {
			v = fmt.Sprintf("%s %d", v, attempt)
		}
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			return v
		}
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	tables := database.PersistentModels()
	slices.Reverse(tables)
	for _, model := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
