package models

// CandidateInfo is the contact block returned by the model.
type CandidateInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ResumeEvaluation is the validated shape of a model response.
type ResumeEvaluation struct {
	OverallScore    float64       `json:"overall_score"`
	Relevance       float64       `json:"relevance"`
	SkillsFit       float64       `json:"skills_fit"`
	ExperienceMatch float64       `json:"experience_match"`
	CulturalFit     float64       `json:"cultural_fit"`
	Strengths       []string      `json:"strengths"`
	Weaknesses      []string      `json:"weaknesses"`
	MissingElements []string      `json:"missing_elements"`
	Recommendations []string      `json:"recommendations"`
	CandidateInfo   CandidateInfo `json:"candidate_info"`
}

// ToAnalysis maps an evaluation onto a storable row.
func (e *ResumeEvaluation) ToAnalysis(filename, storedFilename, resumeText string) *ResumeAnalysis {
	return &ResumeAnalysis{
		Filename:        filename,
		StoredFilename:  storedFilename,
		OverallScore:    e.OverallScore,
		Relevance:       e.Relevance,
		SkillsFit:       e.SkillsFit,
		ExperienceMatch: e.ExperienceMatch,
		CulturalFit:     e.CulturalFit,
		Strengths:       JoinList(e.Strengths),
		Weaknesses:      JoinList(e.Weaknesses),
		MissingElements: JoinList(e.MissingElements),
		Recommendations: JoinList(e.Recommendations),
		CandidateName:   e.CandidateInfo.Name,
		CandidateEmail:  e.CandidateInfo.Email,
		CandidatePhone:  e.CandidateInfo.Phone,
		ResumeText:      resumeText,
	}
}

// EvaluationFromAnalysis rebuilds the list form of a stored row.
func EvaluationFromAnalysis(a *ResumeAnalysis) ResumeEvaluation {
	return ResumeEvaluation{
		OverallScore:    a.OverallScore,
		Relevance:       a.Relevance,
		SkillsFit:       a.SkillsFit,
		ExperienceMatch: a.ExperienceMatch,
		CulturalFit:     a.CulturalFit,
		Strengths:       SplitList(a.Strengths),
		Weaknesses:      SplitList(a.Weaknesses),
		MissingElements: SplitList(a.MissingElements),
		Recommendations: SplitList(a.Recommendations),
		CandidateInfo: CandidateInfo{
			Name:  a.CandidateName,
			Email: a.CandidateEmail,
			Phone: a.CandidatePhone,
		},
	}
}

type AnalysisData struct {
	ID uint `json:"id"`
	ResumeEvaluation
	ResumeURL string `json:"resume_url"`
}

type AnalyzeResponse struct {
	Message string       `json:"message"`
	Data    AnalysisData `json:"data"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SubscriptionStatus carries either the string "Unlimited" or a count (possibly null)
// in RemainingAttempts.
type SubscriptionStatus struct {
	IsSubscribed      bool `json:"is_subscribed"`
	RemainingAttempts any  `json:"remaining_attempts"`
}

type ReportRequest struct {
	Score      *int     `json:"score" validate:"required"`
	Strengths  []string `json:"strengths" validate:"required"`
	Weaknesses []string `json:"weaknesses" validate:"required"`
}

type ReportResponse struct {
	Message   string `json:"message"`
	ReportURL string `json:"report_url"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type SearchHit struct {
	Score    float32      `json:"score"`
	Analysis AnalysisData `json:"analysis"`
}
