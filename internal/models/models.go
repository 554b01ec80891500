// Package models defines the stub server's persistence schema.
package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actions recorded in the numbering history.
const (
	ActionGenerated = "generated"
	ActionCorrected = "corrected"
)

// BaseModel provides common fields and an auto-generated ULID for all models.
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is an operator of the numbering tool.
//
// IsActive carries no column default: gorm drops zero-valued fields when a
// default tag is present, which would turn an explicit false into true on
// create. Creators set the flag themselves.
type User struct {
	BaseModel
	Email              string `json:"email" gorm:"uniqueIndex;not null"`
	Name               string `json:"name" gorm:"not null"`
	PasswordHash       string `json:"-" gorm:"not null"`
	Role               string `json:"role" gorm:"not null;default:user"`
	IsActive           bool   `json:"is_active" gorm:"not null"`
	MustChangePassword bool   `json:"must_change_password" gorm:"not null;default:false"`
}

// DocumentType is a category of documents that receives its own number
// sequence per year.
type DocumentType struct {
	BaseModel
	Code     string `json:"code" gorm:"uniqueIndex;not null"`
	Name     string `json:"name" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"not null"`
}

// Sequence is the monotonic counter for one (document type, year) pair.
type Sequence struct {
	BaseModel
	DocumentTypeCode string `json:"document_type_code" gorm:"index:idx_seq_type_year,unique;not null"`
	Year             int    `json:"year" gorm:"index:idx_seq_type_year,unique;not null"`
	CurrentNumber    int    `json:"current_number" gorm:"not null;default:0"`
}

// NumberLog is the audit trail of generated and corrected numbers.
type NumberLog struct {
	BaseModel
	DocumentTypeCode string  `json:"document_type_code" gorm:"index;not null"`
	Year             int     `json:"year" gorm:"index;not null"`
	Number           int     `json:"number" gorm:"not null"`
	Action           string  `json:"action" gorm:"index;not null"`
	UserID           string  `json:"user_id" gorm:"index;not null"`
	UserName         string  `json:"user_name" gorm:"not null"`
	PreviousNumber   *int    `json:"previous_number"`
	Notes            *string `json:"notes"`
}

// AutoMigrate creates or updates the database schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&DocumentType{},
		&Sequence{},
		&NumberLog{},
	)
}
