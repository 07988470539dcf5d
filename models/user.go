package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Catalog permission strings. Mutating catalog endpoints each require one.
const (
	PermAddBook        = "add_book"
	PermChangeBook     = "change_book"
	PermDeleteBook     = "delete_book"
	PermAddAuthor      = "add_author"
	PermChangeAuthor   = "change_author"
	PermDeleteAuthor   = "delete_author"
	PermAddBookCopy    = "add_bookcopy"
	PermChangeBookCopy = "change_bookcopy"
	PermDeleteBookCopy = "delete_bookcopy"
	PermViewLoan       = "view_loan"
	PermChangeLoan     = "change_loan"
	PermDeleteLoan     = "delete_loan"
)

// User is a library member. Permissions is a JSON-encoded list of the
// capability strings above; regular members have none.
type User struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username    string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"`
	Permissions string         `gorm:"type:text" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Loans   []Loan   `gorm:"foreignKey:BorrowerID" json:"loans,omitempty"`
	Reviews []Review `gorm:"foreignKey:UserID" json:"reviews,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

// PermissionList decodes the stored capability strings.
func (u *User) PermissionList() []string {
	if u.Permissions == "" {
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(u.Permissions), &perms); err != nil {
		return nil
	}
	return perms
}

// SetPermissions encodes and stores the capability strings.
func (u *User) SetPermissions(perms []string) error {
	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	u.Permissions = string(data)
	return nil
}
