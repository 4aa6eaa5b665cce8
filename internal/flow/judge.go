// File path: internal/flow/judge.go
package flow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/llm"
)

// Verdict is the outcome of judging a stage's completion criteria against
// the latest user message.
type Verdict struct {
	Complete  bool
	NextStage string
}

// Judge decides whether a stage's completion criteria are satisfied. The
// LLM-backed judge is the production implementation; tests substitute
// deterministic ones.
type Judge interface {
	JudgeStage(ctx context.Context, stage Stage, userMessage string) (Verdict, error)
}

const (
	judgeTemperature = 0.3
	judgeMaxTokens   = 50
)

const judgePrompt = `You are evaluating if a conversation has met the completion criteria for a stage.

Conversation stage: %s

User's message: "%s"

Completion criteria:
%s
Based on the user's message, determine if the completion criteria have been met.
If the criteria have been met, respond with "COMPLETE: next_stage_id" where next_stage_id is the ID of the next stage.
If the criteria have not been met, respond with "INCOMPLETE".
If the criteria have been partially met but more information is needed, respond with "INCOMPLETE".

Response format:
COMPLETE: [next_stage_id] or INCOMPLETE`

// LLMJudge asks the completion provider to evaluate stage criteria and
// parses the constrained reply. Anything it cannot parse is incomplete.
type LLMJudge struct {
	provider llm.Provider
}

func NewLLMJudge(provider llm.Provider) *LLMJudge {
	return &LLMJudge{provider: provider}
}

func (j *LLMJudge) JudgeStage(ctx context.Context, stage Stage, userMessage string) (Verdict, error) {
	if j.provider == nil {
		return Verdict{}, fmt.Errorf("no completion provider configured")
	}
	var criteria strings.Builder
	names := make([]string, 0, len(stage.CompletionCriteria))
	for name := range stage.CompletionCriteria {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&criteria, "- %s: %s\n", name, stage.CompletionCriteria[name])
	}
	prompt := fmt.Sprintf(judgePrompt, stage.Name, userMessage, criteria.String())
	reply, err := j.provider.Chat(ctx, llm.ChatRequest{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: judgeTemperature,
		MaxTokens:   judgeMaxTokens,
	})
	if err != nil {
		common.Logger().Error("flow: stage judgment request failed", "stage", stage.StageID, "error", err)
		return Verdict{}, err
	}
	return ParseVerdict(reply), nil
}

// ParseVerdict interprets a judge reply against the documented grammar:
// "COMPLETE: <next_stage_id>" or "INCOMPLETE", keyword match
// case-insensitive, surrounding whitespace ignored. Any other reply is
// incomplete; the conversation fails closed rather than advancing on an
// ambiguous judgment.
func ParseVerdict(reply string) Verdict {
	trimmed := strings.TrimSpace(reply)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "INCOMPLETE") {
		return Verdict{}
	}
	if !strings.HasPrefix(upper, "COMPLETE") {
		return Verdict{}
	}
	rest := trimmed[len("COMPLETE"):]
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, ":") {
		rest = strings.TrimSpace(rest[1:])
	}
	// The judge sometimes echoes the prompt's bracket notation.
	rest = strings.Trim(rest, "[]")
	return Verdict{Complete: true, NextStage: strings.TrimSpace(rest)}
}
