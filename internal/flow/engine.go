// File path: internal/flow/engine.go
package flow

import (
	"context"
	"fmt"

	"github.com/quillon/docchat/internal/common"
)

// Engine advances conversation states through their flow's stage graph. It
// is stateless itself; all mutable state lives in the caller's State.
type Engine struct {
	judge Judge
}

func NewEngine(judge Judge) *Engine {
	return &Engine{judge: judge}
}

// CheckStageCompletion decides whether the current stage is finished and
// where to go next. Rule order, first match wins:
//
//  1. Turn budget exhausted with exactly one candidate next stage: force
//     the transition without consulting the judge.
//  2. No completion criteria declared: the stage can only complete via
//     rule 1, so report incomplete.
//  3. Ask the judge. A COMPLETE verdict naming a declared next stage
//     transitions there; a COMPLETE verdict with a missing or undeclared
//     id falls back to the first declared next stage, or to terminal
//     completion when the stage declares none. Judge failure is
//     incomplete.
func (e *Engine) CheckStageCompletion(ctx context.Context, stage Stage, userMessage string, state *State) (bool, string) {
	logger := common.Logger()
	if state.StageTurns[stage.StageID] >= stage.MaxTurns && len(stage.NextStages) == 1 {
		logger.Info("flow: turn budget exhausted, forcing transition", "stage", stage.StageID, "next", stage.NextStages[0])
		return true, stage.NextStages[0]
	}
	if len(stage.CompletionCriteria) == 0 {
		return false, ""
	}
	if e.judge == nil {
		logger.Error("flow: no judge configured", "stage", stage.StageID)
		return false, ""
	}
	verdict, err := e.judge.JudgeStage(ctx, stage, userMessage)
	if err != nil {
		// Fail closed: stay in the current stage on ambiguous judgment.
		return false, ""
	}
	if !verdict.Complete {
		return false, ""
	}
	if verdict.NextStage != "" && containsStage(stage.NextStages, verdict.NextStage) {
		return true, verdict.NextStage
	}
	if len(stage.NextStages) > 0 {
		logger.Debug("flow: judge named invalid next stage, using first declared", "stage", stage.StageID, "claimed", verdict.NextStage)
		return true, stage.NextStages[0]
	}
	// Terminal stage: complete with nowhere to go.
	return true, ""
}

// ProcessTurn handles one conversation turn: resolve the current stage,
// count the turn, check completion, advance if warranted, and return the
// system prompt to drive the assistant's reply. Only the latest user
// message and the state are consulted, never the transcript.
func (e *Engine) ProcessTurn(ctx context.Context, userMessage string, state *State, f *Flow) (string, error) {
	if state == nil || f == nil {
		return "", fmt.Errorf("state and flow required")
	}
	current, ok := f.GetStage(state.CurrentStageID)
	if !ok {
		return "", fmt.Errorf("invalid stage id: %q", state.CurrentStageID)
	}
	state.IncrementTurns()

	isComplete, nextStageID := e.CheckStageCompletion(ctx, current, userMessage, state)
	if isComplete && nextStageID != "" {
		next, ok := f.GetStage(nextStageID)
		if !ok {
			return "", fmt.Errorf("stage %q references unknown next stage %q", current.StageID, nextStageID)
		}
		state.AdvanceStage(nextStageID)
		common.Logger().Info("flow: advanced stage", "flow", f.FlowID, "from", current.StageID, "to", nextStageID)
		current = next
	}
	return current.SystemPrompt, nil
}

func containsStage(stages []string, id string) bool {
	for _, s := range stages {
		if s == id {
			return true
		}
	}
	return false
}
