package models

import (
	"strings"
	"time"
)

// ListSeparator joins list fields in the stored text columns.
const ListSeparator = ", "

type ResumeAnalysis struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Filename        string     `gorm:"type:varchar(255);not null" json:"filename"`
	StoredFilename  string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"stored_filename"`
	OverallScore    float64    `json:"overall_score"`
	Relevance       float64    `json:"relevance"`
	SkillsFit       float64    `json:"skills_fit"`
	ExperienceMatch float64    `json:"experience_match"`
	CulturalFit     float64    `json:"cultural_fit"`
	Strengths       string     `gorm:"type:text" json:"strengths"`
	Weaknesses      string     `gorm:"type:text" json:"weaknesses"`
	MissingElements string     `gorm:"type:text" json:"missing_elements"`
	Recommendations string     `gorm:"type:text" json:"recommendations"`
	CandidateName   string     `gorm:"type:varchar(100)" json:"candidate_name"`
	CandidateEmail  string     `gorm:"type:varchar(100)" json:"candidate_email"`
	CandidatePhone  string     `gorm:"type:varchar(32)" json:"candidate_phone"`
	ResumeText      string     `gorm:"type:text" json:"-"`
	IndexedAt       *time.Time `gorm:"index" json:"indexed_at,omitempty"`
	IndexAttempts   int        `gorm:"not null;default:0" json:"-"`
	IndexRetryAt    *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (ResumeAnalysis) TableName() string {
	return "resume_analyses"
}

// JoinList flattens a list field into its stored form.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// SplitList is the inverse of JoinList. Empty input yields an empty slice.
func SplitList(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return []string{}
	}
	parts := strings.Split(stored, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
