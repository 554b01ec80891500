package models

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models-test.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

// An explicit false must survive the insert; a column default would make gorm
// drop the zero value and persist true instead.
func TestCreatePersistsInactiveUser(t *testing.T) {
	db := newTestDB(t)

	user := User{
		Email:        "inactive@example.com",
		Name:         "Inactive",
		PasswordHash: "x",
		IsActive:     false,
	}
	require.NoError(t, db.Create(&user).Error)

	var got User
	require.NoError(t, db.First(&got, "email = ?", "inactive@example.com").Error)
	require.False(t, got.IsActive)
}

func TestCreatePersistsInactiveDocumentType(t *testing.T) {
	db := newTestDB(t)

	dt := DocumentType{Code: "OF", Name: "Ofício", IsActive: false}
	require.NoError(t, db.Create(&dt).Error)

	var got DocumentType
	require.NoError(t, db.First(&got, "code = ?", "OF").Error)
	require.False(t, got.IsActive)
}

func TestBeforeCreateAssignsULID(t *testing.T) {
	db := newTestDB(t)

	user := User{Email: "a@example.com", Name: "A", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	require.Len(t, user.ID, 26)
}
