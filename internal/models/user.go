package models

import "time"

type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	HashedPassword    string    `gorm:"type:varchar(255);not null" json:"-"`
	IsSubscribed      bool      `gorm:"not null;default:false" json:"is_subscribed"`
	RemainingAttempts *int      `json:"remaining_attempts"` // nil means unlimited
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Reports []InterviewReport `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasUnlimitedAttempts reports whether report generation is never gated.
func (u *User) HasUnlimitedAttempts() bool {
	return u.IsSubscribed
}
