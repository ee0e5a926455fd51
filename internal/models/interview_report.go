package models

import "time"

type InterviewReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	FilePath  string    `gorm:"type:text;not null" json:"file_path"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (InterviewReport) TableName() string {
	return "interview_reports"
}
