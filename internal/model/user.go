package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type User struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash   string      `gorm:"size:255;not null" json:"-"`
	RoleID         *uint       `json:"role_id"`
	Role           Role        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	ProfilePicture *string     `gorm:"type:text" json:"profile_picture,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Detail         *UserDetail `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"detail,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserDetail is the public directory record joined into leaderboard views.
type UserDetail struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	QID       *string   `gorm:"size:50;uniqueIndex" json:"qid,omitempty"`
	Course    *string   `gorm:"size:100" json:"course,omitempty"`
	Session   *string   `gorm:"size:20" json:"session,omitempty"`
	Branch    *string   `gorm:"size:100" json:"branch,omitempty"`
	Bio       *string   `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
