// File path: internal/grader/grader.go
package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/llm"
)

const (
	gradeTemperature = 0.3
	gradeMaxTokens   = 1000
)

// Request describes one grading call. Criteria defaults to the base rubric
// when empty; Context and ReferenceAnswer are optional framing.
type Request struct {
	Response        string            `json:"response"`
	Context         string            `json:"context,omitempty"`
	ReferenceAnswer string            `json:"reference_answer,omitempty"`
	Criteria        map[string]string `json:"criteria,omitempty"`
}

// Result is the parsed grading verdict.
type Result struct {
	Score       float64  `json:"score"`
	Feedback    string   `json:"feedback"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	RawResponse string   `json:"raw_response,omitempty"`
}

// Grader evaluates user responses through the completion provider.
type Grader struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Grader {
	return &Grader{provider: provider}
}

// Grade scores a response against the request's criteria. An empty response
// short-circuits to a zero score; provider failures are returned as errors
// so callers can surface them as warnings.
func (g *Grader) Grade(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Response) == "" {
		return &Result{Feedback: "No response provided.", Strengths: []string{}, Weaknesses: []string{}, Suggestions: []string{}}, nil
	}
	if g.provider == nil {
		return nil, errors.New("no completion provider configured")
	}
	criteria := req.Criteria
	if len(criteria) == 0 {
		criteria = BaseCriteria()
	}
	reply, err := g.provider.Chat(ctx, llm.ChatRequest{
		Messages:    []llm.Message{{Role: "user", Content: buildPrompt(req, criteria)}},
		Temperature: gradeTemperature,
		MaxTokens:   gradeMaxTokens,
	})
	if err != nil {
		common.Logger().Error("grader: grading request failed", "error", err)
		return nil, err
	}
	result, err := ParseResult(reply)
	if err != nil {
		common.Logger().Warn("grader: could not parse grading reply", "error", err)
		return &Result{
			Feedback:    "Error parsing grading result.",
			Strengths:   []string{},
			Weaknesses:  []string{},
			Suggestions: []string{},
			RawResponse: reply,
		}, nil
	}
	return result, nil
}

func buildPrompt(req Request, criteria map[string]string) string {
	var b strings.Builder
	b.WriteString("You are an expert evaluator tasked with grading a user's response objectively and providing constructive feedback.\n\n")
	if req.Context != "" {
		fmt.Fprintf(&b, "CONTEXT/QUESTION:\n%s\n\n", req.Context)
	}
	if req.ReferenceAnswer != "" {
		fmt.Fprintf(&b, "REFERENCE ANSWER (for comparison):\n%s\n\n", req.ReferenceAnswer)
	}
	b.WriteString("GRADING CRITERIA:\n")
	names := make([]string, 0, len(criteria))
	for name := range criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", capitalize(name), criteria[name])
	}
	fmt.Fprintf(&b, `
USER'S RESPONSE TO EVALUATE:
%s

INSTRUCTIONS:
1. Score the response on a scale of 1-10.
2. Provide a brief overall assessment (1-2 sentences).
3. List 2-3 strengths of the response.
4. List 2-3 areas for improvement.
5. Provide 1-2 specific suggestions to improve the response.

Format your evaluation as a JSON object with the following structure:
{
    "score": [score as a number between 1-10],
    "feedback": "[brief overall assessment]",
    "strengths": ["strength1", "strength2"],
    "weaknesses": ["weakness1", "weakness2"],
    "suggestions": ["suggestion1", "suggestion2"]
}

Return ONLY the JSON object, with no additional text.
`, req.Response)
	return b.String()
}

// ParseResult extracts the JSON verdict from a grading reply, tolerating
// markdown code fences and a string-typed score.
func ParseResult(reply string) (*Result, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw struct {
		Score       json.RawMessage `json:"score"`
		Feedback    string          `json:"feedback"`
		Strengths   []string        `json:"strengths"`
		Weaknesses  []string        `json:"weaknesses"`
		Suggestions []string        `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("parse grading json: %w", err)
	}
	result := &Result{
		Feedback:    raw.Feedback,
		Strengths:   raw.Strengths,
		Weaknesses:  raw.Weaknesses,
		Suggestions: raw.Suggestions,
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Weaknesses == nil {
		result.Weaknesses = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	if len(raw.Score) > 0 {
		var num float64
		if err := json.Unmarshal(raw.Score, &num); err == nil {
			result.Score = num
		} else {
			var str string
			if err := json.Unmarshal(raw.Score, &str); err == nil {
				if parsed, perr := strconv.ParseFloat(strings.TrimSpace(str), 64); perr == nil {
					result.Score = parsed
				}
			}
		}
	}
	return result, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
