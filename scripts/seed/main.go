package main

import (
	"fmt"
	"log"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-recorder/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-recorder/pkg/jwt"
)

// Seeds a handful of meetings for one test organization and prints an
// operator bearer token for exercising the API by hand.
func main() {
	log.Println("🚀 Seeding test meetings...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	orgID := uuid.New()

	testMeetings := []struct {
		Title string
		URL   string
	}{
		{Title: "Weekly Planning", URL: "https://meet.google.com/abc-defg-hij"},
		{Title: "Roadmap Review", URL: "https://zoom.us/j/123456789"},
		{Title: "Retro", URL: "https://teams.microsoft.com/l/meetup-join/xyz"},
	}

	log.Println("🗑️  Cleaning up previous seed data...")
	db.Where("title IN ?", []string{"Weekly Planning", "Roadmap Review", "Retro"}).Delete(&entities.Meeting{})

	for _, tm := range testMeetings {
		meeting := entities.NewMeeting(orgID, tm.Title, tm.URL)
		if err := db.Create(meeting).Error; err != nil {
			log.Printf("❌ Failed to create meeting %q: %v", tm.Title, err)
			continue
		}
		fmt.Printf("🟢 %-16s %s\n", tm.Title, meeting.ID)
	}

	now := time.Now()
	claims := pkgjwt.Claims{
		Role: "operator",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "seed-operator",
			Issuer:    cfg.JWT.Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		log.Fatalf("Failed to sign operator token: %v", err)
	}

	fmt.Printf("\n📋 Operator token (24h):\n%s\n", token)
	fmt.Printf("\n💡 Usage: Authorization: Bearer <token>\n")
	fmt.Printf("   Organization ID: %s\n", orgID)

	log.Println("✅ Seed complete")
}
