package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"socio-service/internal/domain"
	"socio-service/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var foundingMembers = []struct {
	FirstName string
	LastName  string
	Category  string
}{
	{"Mario", "Kempes", domain.CategoryLifetime},
	{"Aldo", "Poy", domain.CategoryLifetime},
	{"Omar", "Palma", domain.CategoryLifetime},
	{"Edgardo", "Bauza", domain.CategoryLifetime},
	{"Marco", "Ruben", domain.CategoryFull},
	{"Eduardo", "Coudet", domain.CategoryFull},
	{"Cristian", "Gonzalez", domain.CategoryFull},
	{"Cesar", "Delgado", domain.CategoryFull},
	{"Angel", "Di Maria", domain.CategoryFull},
	{"Giovani", "Lo Celso", domain.CategoryFull},
}

var (
	firstNames = []string{"Juan", "Pedro", "Luis", "Carlos", "Jorge", "Miguel", "Fernando", "Roberto", "Diego", "Martin"}
	lastNames  = []string{"Garcia", "Rodriguez", "Martinez", "Lopez", "Gonzalez", "Perez", "Sanchez", "Ramirez", "Torres", "Flores"}
)

// Members populates an empty registry with development fixtures: the
// founding members plus 90 randomized entries with a mix of standings and
// dues dates.
func Members(ctx context.Context, repo repository.MemberRepository) error {
	stats, err := repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to check member count before seeding: %w", err)
	}
	if stats.Total > 0 {
		log.WithField("count", stats.Total).Info("Registry already populated, skipping seed")
		return nil
	}

	log.Info("Seeding member data...")

	now := time.Now()
	number := 1000
	created := 0

	for i, f := range foundingMembers {
		member := &domain.Member{
			ID:             uuid.NewString(),
			MemberNumber:   fmt.Sprintf("%d", number),
			FirstName:      f.FirstName,
			LastName:       f.LastName,
			DNI:            fmt.Sprintf("1000000%d", i),
			Email:          seedEmail(f.FirstName, f.LastName, i),
			Phone:          "341-0000000",
			Category:       f.Category,
			Standing:       domain.StandingActive,
			JoinedAt:       now,
			DuesExpiryDate: now.AddDate(0, 1, 0),
			SeasonTicket:   true,
		}
		if err := repo.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to seed member %s: %w", member.MemberNumber, err)
		}
		number++
		created++
	}

	for i := 0; i < 90; i++ {
		firstName := firstNames[rand.Intn(len(firstNames))]
		lastName := lastNames[rand.Intn(len(lastNames))]

		standing := domain.StandingActive
		if rand.Float64() > 0.8 {
			standing = domain.StandingDelinquent
		}

		category := domain.CategoryFull
		if rand.Float64() > 0.7 {
			category = domain.CategoryLifetime
		}

		member := &domain.Member{
			ID:             uuid.NewString(),
			MemberNumber:   fmt.Sprintf("%d", number),
			FirstName:      firstName,
			LastName:       lastName,
			DNI:            fmt.Sprintf("2%07d", i),
			Email:          seedEmail(firstName, lastName, number),
			Phone:          fmt.Sprintf("341-%07d", rand.Intn(9000000)+1000000),
			Category:       category,
			Standing:       standing,
			JoinedAt:       now,
			DuesExpiryDate: now.AddDate(0, rand.Intn(3)-1, 0),
			SeasonTicket:   rand.Float64() > 0.5,
		}
		if err := repo.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to seed member %s: %w", member.MemberNumber, err)
		}
		number++
		created++
	}

	log.WithField("count", created).Info("Member data seeded successfully")
	return nil
}

func seedEmail(firstName, lastName string, n int) string {
	clean := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, " ", ""))
	}
	return fmt.Sprintf("%s.%s%d@club.local", clean(firstName), clean(lastName), n)
}
