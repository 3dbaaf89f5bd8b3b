// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/ecohistorias/eco-api/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plaintext password of every fixture user.
const Password = "supersecret"

// NewDB opens a migrated in-memory SQLite database and installs it as the
// global handle. A single connection keeps every query on the same memory
// database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	database.SetDB(db)

	return db
}

// CreateUser inserts a user whose email is derived from the codinome.
func CreateUser(t testing.TB, db *gorm.DB, codename string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        codename + "@example.com",
		PasswordHash: string(hash),
		Codename:     codename,
		Gender:       models.GenderOther,
		AvatarURL:    "https://cdn.example.com/" + codename + ".png",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTag(t testing.TB, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateEco inserts an eco and links it to the given tags.
func CreateEco(t testing.TB, db *gorm.DB, authorID, thread1 string, tagIDs ...string) *models.Eco {
	t.Helper()

	eco := &models.Eco{AuthorID: authorID, Thread1: thread1}
	require.NoError(t, db.Create(eco).Error)
	for _, tagID := range tagIDs {
		require.NoError(t, db.Create(&models.EcoTag{EcoID: eco.ID, TagID: tagID}).Error)
	}
	return eco
}

func CreateSussurro(t testing.TB, db *gorm.DB, ecoID, authorID, content string) *models.Sussurro {
	t.Helper()

	sussurro := &models.Sussurro{EcoID: ecoID, AuthorID: authorID, Content: content}
	require.NoError(t, db.Create(sussurro).Error)
	return sussurro
}
