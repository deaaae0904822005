package db

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/logger"
)

var (
	seedCities    = []string{"Madrid - Centro", "Madrid - Sol", "Barcelona - Gracia", "Valencia - Ruzafa", "Sevilla - Triana"}
	seedInterests = []string{"Musica", "Sport", "Cine", "Viajes", "Cocina", "Tecnologia", "Lectura"}
	seedLanguages = []string{"Espanol", "Ingles", "Italiano", "Frances"}
	seedGoals     = []string{"TRANQUILO", "SOCIAL", "ESTUDIO", "TELETRABAJO"}
	seedAppModes  = []AppMode{AppModeRoomOnly, AppModeRoomAndFriends, AppModeRoomAndDating}
)

// clearTables empties every table, children first.
func clearTables(db *gorm.DB) error {
	for _, table := range []string{"matches", "likes", "listings", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range []string{"matches", "likes", "listings", "users"} {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('matches', 'likes', 'listings', 'users')")
	}
	return nil
}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears users, listings, likes and matches.
//  2. Creates 20 users: 1-6 are owners, 7-18 seekers, 19-20 both.
//  3. Gives every owner-capable user one listing.
//  4. Seekers like a few random listings; owners like back roughly a third of
//     the seekers that liked them. Matches are left to the resolver: the
//     seeded rows only prepare one-sided and reciprocal likes.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearTables(db); err != nil {
		return err
	}
	logger.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Users ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		role := RoleSeeker
		switch {
		case i <= 6:
			role = RoleOwner
		case i > 18:
			role = RoleBoth
		}

		gender := GenderMale
		if i%2 == 0 {
			gender = GenderFemale
		}

		birth := time.Date(1985+r.Intn(20), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)
		budget := float64(350 + r.Intn(8)*50)

		users = append(users, User{
			Email:             fmt.Sprintf("user%d@example.com", i),
			PasswordHash:      string(hash),
			Name:              fmt.Sprintf("User %d", i),
			Avatar:            fmt.Sprintf("https://i.pravatar.cc/300?u=user%d", i),
			Role:              role,
			BirthDate:         &birth,
			Gender:            gender,
			Bio:               "Demo profile",
			CurrentCity:       pick(r, seedCities),
			TargetCity:        pick(r, seedCities),
			SharePreference:   ShareWithAnyone,
			AppModes:          []AppMode{pick(r, seedAppModes)},
			CohabitationGoals: sample(r, seedGoals, 2),
			Interests:         sample(r, seedInterests, 3),
			Languages:         sample(r, seedLanguages, 2),
			Budget:            &budget,
			Lifestyle:         map[string]any{"smoker": r.Intn(4) == 0, "pets": r.Intn(3) == 0},
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	logger.Info("seeded users", "count", len(users))

	// --- Listings ---
	var listings []Listing
	for _, u := range users {
		if u.Role == RoleSeeker {
			continue
		}
		listings = append(listings, Listing{
			OwnerID:   u.ID,
			Title:     fmt.Sprintf("Room offered by %s", u.Name),
			Price:     float64(300 + r.Intn(10)*50),
			Location:  u.CurrentCity,
			Amenities: []string{"wifi", "lavadora"},
			Rules:     []string{"no fumar"},
			RoomType:  "individual",
		})
	}
	if err := db.Create(&listings).Error; err != nil {
		return fmt.Errorf("failed to seed listings: %w", err)
	}

	// --- Likes ---
	counter := 0
	for _, seeker := range users {
		if seeker.Role == RoleOwner {
			continue
		}
		for j := 0; j < 3; j++ {
			listing := listings[r.Intn(len(listings))]
			if listing.OwnerID == seeker.ID {
				continue
			}
			listingID := listing.ID
			if err := db.Create(&Like{FromUserID: seeker.ID, ToListingID: &listingID}).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			// every 3rd like gets a like back from the owner
			if counter%3 == 0 {
				seekerID := seeker.ID
				if err := db.Create(&Like{FromUserID: listing.OwnerID, ToUserID: &seekerID}).Error; err != nil {
					return fmt.Errorf("failed to seed like: %w", err)
				}
			}
			counter++
		}
	}
	logger.Info("seeded listings", "listings", len(listings), "listing_likes", counter)

	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic dataset.
//
// Dataset:
//   - user1: seeker in "Madrid - Centro" looking in "Madrid - Sol"
//   - user2: owner of listing 1, lives in "Madrid - Sol"
//   - user3: seeker in "Barcelona"
//   - user4: owner of listing 2
//   - user1 → listing 1 (one-sided; user2 has not liked user1 yet)
//   - user3 → user1 (user-targeted like)
func SeedMinimalTestData(db *gorm.DB) error {
	if err := clearTables(db); err != nil {
		return err
	}

	born := func(year int) *time.Time {
		t := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	users := []User{
		{ID: 1, Email: "u1@test.com", PasswordHash: "x", Name: "Ana", Avatar: "a.png", Role: RoleSeeker, Gender: GenderFemale,
			BirthDate: born(1998), CurrentCity: "Madrid - Centro", TargetCity: "Madrid - Sol", SharePreference: ShareWithAnyone,
			AppModes: []AppMode{AppModeRoomOnly}, Interests: []string{"Cine"}, Languages: []string{"Espanol"}},
		{ID: 2, Email: "u2@test.com", PasswordHash: "x", Name: "Bruno", Avatar: "b.png", Role: RoleOwner, Gender: GenderMale,
			BirthDate: born(1997), CurrentCity: "Madrid - Sol", TargetCity: "Madrid - Sol", SharePreference: ShareWithAnyone,
			AppModes: []AppMode{AppModeRoomOnly}, Interests: []string{"Cine"}, Languages: []string{"Espanol"}},
		{ID: 3, Email: "u3@test.com", PasswordHash: "x", Name: "Carla", Avatar: "c.png", Role: RoleSeeker, Gender: GenderFemale,
			BirthDate: born(1980), CurrentCity: "Barcelona", TargetCity: "Barcelona", SharePreference: ShareWithWomenOnly,
			AppModes: []AppMode{AppModeRoomAndDating}},
		{ID: 4, Email: "u4@test.com", PasswordHash: "x", Name: "Dario", Avatar: "d.png", Role: RoleOwner, Gender: GenderMale,
			CurrentCity: "Valencia", TargetCity: "Valencia", AppModes: []AppMode{AppModeRoomAndFriends}},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	listings := []Listing{
		{ID: 1, OwnerID: 2, Title: "Sunny room", Price: 500, Location: "Madrid - Sol"},
		{ID: 2, OwnerID: 4, Title: "Quiet room", Price: 400, Location: "Valencia"},
	}
	if err := db.Create(&listings).Error; err != nil {
		return err
	}

	listingID, userID := uint64(1), uint64(1)
	likes := []Like{
		{FromUserID: 1, ToListingID: &listingID}, // user1 → listing 1 (owner user2)
		{FromUserID: 3, ToUserID: &userID},       // user3 → user1
	}
	return db.Create(&likes).Error
}

func pick[T any](r *rand.Rand, from []T) T {
	return from[r.Intn(len(from))]
}

func sample[T any](r *rand.Rand, from []T, n int) []T {
	idx := r.Perm(len(from))
	out := make([]T, 0, n)
	for _, i := range idx[:min(n, len(from))] {
		out = append(out, from[i])
	}
	return out
}
