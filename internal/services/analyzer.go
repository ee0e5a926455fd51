package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/apperror"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// ResponseParseError is returned when the model answer is not the expected JSON shape.
type ResponseParseError struct {
	Field string // empty when the payload itself is not JSON
	Raw   string
	Err   error
}

func (e *ResponseParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid model response: %v", e.Err)
	}
	return fmt.Sprintf("invalid model response: field %q: %v", e.Field, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

type ResumeAnalyzer interface {
	Analyze(ctx context.Context, resumeText string) (*models.ResumeEvaluation, error)
}

type resumeAnalyzer struct {
	generator     TextGenerator
	promptBuilder *PromptBuilder
	log           logrus.FieldLogger
}

func NewResumeAnalyzer(generator TextGenerator, log logrus.FieldLogger) ResumeAnalyzer {
	return &resumeAnalyzer{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		log:           log.WithField("component", "analyzer"),
	}
}

func (a *resumeAnalyzer) Analyze(ctx context.Context, resumeText string) (*models.ResumeEvaluation, error) {
	const op = "ResumeAnalyzer.Analyze"

	raw, err := a.generator.GenerateText(ctx, a.promptBuilder.BuildResumeAnalysisPrompt(resumeText))
	if err != nil {
		return nil, apperror.E(apperror.CodeUnavailable, op, fmt.Sprintf("Error analyzing resume: %v", err), err)
	}

	eval, err := ParseModelResponse(raw)
	if err != nil {
		a.log.WithError(err).WithField("response_len", len(raw)).Error("model response rejected")
		return nil, apperror.E(apperror.CodeInternal, op, fmt.Sprintf("Error analyzing resume: %v", err), err)
	}
	return eval, nil
}

// CleanModelResponse strips code fences and "json" labels around the payload.
func CleanModelResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "`")
	s = strings.ReplaceAll(s, "json", "")
	return strings.TrimSpace(s)
}

type scoreField struct {
	name string
	max  float64
	dst  *float64
}

// ParseModelResponse cleans raw and validates every field of the evaluation.
func ParseModelResponse(raw string) (*models.ResumeEvaluation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(CleanModelResponse(raw)), &fields); err != nil {
		return nil, &ResponseParseError{Raw: raw, Err: err}
	}
	fail := func(field string, err error) error {
		return &ResponseParseError{Field: field, Raw: raw, Err: err}
	}

	eval := &models.ResumeEvaluation{}
	scores := []scoreField{
		{"overall_score", 100, &eval.OverallScore},
		{"relevance", 10, &eval.Relevance},
		{"skills_fit", 10, &eval.SkillsFit},
		{"experience_match", 10, &eval.ExperienceMatch},
		{"cultural_fit", 10, &eval.CulturalFit},
	}
	for _, sf := range scores {
		v, ok := fields[sf.name]
		if !ok || isNull(v) {
			return nil, fail(sf.name, fmt.Errorf("missing"))
		}
		if err := json.Unmarshal(v, sf.dst); err != nil {
			return nil, fail(sf.name, fmt.Errorf("not a number"))
		}
		if *sf.dst < 0 || *sf.dst > sf.max {
			return nil, fail(sf.name, fmt.Errorf("%v out of range 0-%v", *sf.dst, sf.max))
		}
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"strengths", &eval.Strengths},
		{"weaknesses", &eval.Weaknesses},
		{"missing_elements", &eval.MissingElements},
		{"recommendations", &eval.Recommendations},
	}
	for _, lf := range lists {
		*lf.dst = []string{}
		v, ok := fields[lf.name]
		if !ok || isNull(v) {
			continue
		}
		if err := json.Unmarshal(v, lf.dst); err != nil {
			return nil, fail(lf.name, fmt.Errorf("not a list of strings"))
		}
		if *lf.dst == nil {
			*lf.dst = []string{}
		}
	}

	info, err := parseCandidateInfo(fields["candidate_info"])
	if err != nil {
		return nil, fail("candidate_info", err)
	}
	eval.CandidateInfo = info

	return eval, nil
}

func parseCandidateInfo(v json.RawMessage) (models.CandidateInfo, error) {
	var info models.CandidateInfo
	if len(v) == 0 || isNull(v) {
		return info, fmt.Errorf("missing")
	}

	var obj map[string]*string
	if err := json.Unmarshal(v, &obj); err != nil {
		return info, fmt.Errorf("not an object of strings")
	}

	// older prompts asked for "gmail" instead of "email"
	email, ok := obj["email"]
	if !ok {
		email, ok = obj["gmail"]
	}
	if !ok {
		return info, fmt.Errorf("email missing")
	}
	name, ok := obj["name"]
	if !ok {
		return info, fmt.Errorf("name missing")
	}
	phone, ok := obj["phone"]
	if !ok {
		return info, fmt.Errorf("phone missing")
	}

	info.Name = deref(name)
	info.Email = deref(email)
	info.Phone = deref(phone)
	return info, nil
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
