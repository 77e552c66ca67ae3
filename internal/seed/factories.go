// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"quayside/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123456!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:       gofakeit.Email(),
		Password:    string(hashed),
		DisplayName: gofakeit.Name(),
		Bio:         gofakeit.Sentence(10),
		Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		AccessLevel: models.AccessVerified,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFez constructs and persists a fez barrel owned by the given user.
// The owner is the first roster member, matching creation semantics.
func (f *Factory) CreateFez(owner *models.User, overrides ...func(*models.Barrel)) (*models.Barrel, error) {
	fezType := models.FezTypes[f.rand.Intn(len(models.FezTypes))]
	start := time.Now().Add(time.Duration(1+f.rand.Intn(240)) * time.Hour)

	barrel := &models.Barrel{
		OwnerID:   owner.ID,
		Type:      models.BarrelTypeFriendFez,
		Name:      gofakeit.Sentence(4),
		MemberIDs: models.UintList{owner.ID},
	}
	info := models.FezInfo{
		FezType:     fezType,
		Info:        gofakeit.Paragraph(1, 2, 8, " "),
		StartTime:   strconv.FormatInt(start.Unix(), 10),
		EndTime:     strconv.FormatInt(start.Add(2*time.Hour).Unix(), 10),
		Location:    gofakeit.City(),
		MinCapacity: 2,
		MaxCapacity: 2 + f.rand.Intn(8),
	}
	info.ApplyToBarrel(barrel)

	for _, override := range overrides {
		override(barrel)
	}

	if err := f.db.Create(barrel).Error; err != nil {
		return nil, err
	}
	return barrel, nil
}

// JoinFez appends a user to a fez roster directly in the database.
func (f *Factory) JoinFez(barrel *models.Barrel, user *models.User) error {
	if !barrel.AddMember(user.ID) {
		return nil
	}
	return f.db.Save(barrel).Error
}

// CreateFezPost constructs and persists a discussion post on a fez.
func (f *Factory) CreateFezPost(barrel *models.Barrel, author *models.User) (*models.FezPost, error) {
	post := &models.FezPost{
		BarrelID: barrel.ID,
		AuthorID: author.ID,
		Text:     gofakeit.Sentence(12),
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}
