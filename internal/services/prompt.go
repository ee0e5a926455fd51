package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeAnalysisPrompt asks for the fixed JSON shape ResumeAnalyzer validates.
func (pb *PromptBuilder) BuildResumeAnalysisPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an experienced technical recruiter. Analyze the following resume and return a JSON response with:

- overall_score (0-100)
- relevance (0-10)
- skills_fit (0-10)
- experience_match (0-10)
- cultural_fit (0-10)
- strengths (list of short strings)
- weaknesses (list of short strings)
- missing_elements (list of short strings)
- recommendations (list of short strings)
- candidate_info (object with name, email, phone; use an empty string when unknown)

Return ONLY the JSON object, with no commentary.

Example:
{
  "overall_score": 78,
  "relevance": 8,
  "skills_fit": 7,
  "experience_match": 8,
  "cultural_fit": 7,
  "strengths": ["Strong backend experience", "Clear project descriptions"],
  "weaknesses": ["Little cloud exposure"],
  "missing_elements": ["Certifications"],
  "recommendations": ["Quantify achievements"],
  "candidate_info": {"name": "Jane Doe", "email": "jane@example.com", "phone": "+1 555 0100"}
}

RESUME:
%s`, resumeText)
}

// BuildSearchQuery normalizes a free-text recruiter query before it is embedded.
func (pb *PromptBuilder) BuildSearchQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	return fmt.Sprintf("Resume of a candidate matching: %s", query)
}
