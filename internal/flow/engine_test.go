// File path: internal/flow/engine_test.go
package flow

import (
	"context"
	"errors"
	"testing"
)

// fixedJudge returns a canned verdict for every stage.
type fixedJudge struct {
	verdict Verdict
	err     error
	calls   int
}

func (j *fixedJudge) JudgeStage(ctx context.Context, stage Stage, userMessage string) (Verdict, error) {
	j.calls++
	if j.err != nil {
		return Verdict{}, j.err
	}
	return j.verdict, nil
}

func twoStageFlow() *Flow {
	return &Flow{
		FlowID:       "support",
		Name:         "Support",
		InitialStage: "greeting",
		Stages: map[string]Stage{
			"greeting": {
				StageID:            "greeting",
				Name:               "Greeting",
				SystemPrompt:       "Greet the customer.",
				NextStages:         []string{"problem"},
				CompletionCriteria: map[string]string{"greeted": "The user said hello."},
				MaxTurns:           2,
			},
			"problem": {
				StageID:            "problem",
				Name:               "Problem",
				SystemPrompt:       "Identify the problem.",
				NextStages:         nil,
				CompletionCriteria: map[string]string{"identified": "The problem is clear."},
				MaxTurns:           3,
			},
		},
	}
}

func TestCheckStageCompletionForcesTransitionOnTurnBudget(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	state := NewState(f)
	stage, _ := f.GetStage("greeting")

	state.StageTurns["greeting"] = 2
	complete, next := engine.CheckStageCompletion(context.Background(), stage, "still chatting", state)
	if !complete || next != "problem" {
		t.Fatalf("expected forced transition to problem, got (%v, %q)", complete, next)
	}
	if judge.calls != 0 {
		t.Fatalf("judge should not be consulted on a forced transition, called %d times", judge.calls)
	}
}

func TestCheckStageCompletionNoCriteria(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{Complete: true, NextStage: "problem"}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	stage, _ := f.GetStage("greeting")
	stage.CompletionCriteria = nil
	state := NewState(f)

	complete, next := engine.CheckStageCompletion(context.Background(), stage, "hello", state)
	if complete || next != "" {
		t.Fatalf("stage without criteria should not complete, got (%v, %q)", complete, next)
	}
	if judge.calls != 0 {
		t.Fatalf("judge should not run without criteria, called %d times", judge.calls)
	}
}

func TestCheckStageCompletionJudgeVerdict(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{Complete: true, NextStage: "problem"}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	stage, _ := f.GetStage("greeting")
	state := NewState(f)
	state.StageTurns["greeting"] = 1

	complete, next := engine.CheckStageCompletion(context.Background(), stage, "hi there", state)
	if !complete || next != "problem" {
		t.Fatalf("expected transition to problem, got (%v, %q)", complete, next)
	}
}

func TestCheckStageCompletionInvalidNextFallsBack(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{Complete: true, NextStage: "made_up"}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	stage, _ := f.GetStage("greeting")
	state := NewState(f)

	complete, next := engine.CheckStageCompletion(context.Background(), stage, "hi", state)
	if !complete || next != "problem" {
		t.Fatalf("expected fallback to first declared next stage, got (%v, %q)", complete, next)
	}
}

func TestCheckStageCompletionTerminalStage(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{Complete: true}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	stage, _ := f.GetStage("problem")
	state := NewState(f)

	complete, next := engine.CheckStageCompletion(context.Background(), stage, "done", state)
	if !complete || next != "" {
		t.Fatalf("terminal stage should complete with no next, got (%v, %q)", complete, next)
	}
}

func TestCheckStageCompletionJudgeFailureFailsClosed(t *testing.T) {
	judge := &fixedJudge{err: errors.New("provider down")}
	engine := NewEngine(judge)
	f := twoStageFlow()
	stage, _ := f.GetStage("greeting")
	state := NewState(f)

	complete, next := engine.CheckStageCompletion(context.Background(), stage, "hi", state)
	if complete || next != "" {
		t.Fatalf("judge failure should leave the stage incomplete, got (%v, %q)", complete, next)
	}
}

func TestProcessTurnAdvancesAndCountsTurns(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{Complete: true, NextStage: "problem"}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	state := NewState(f)

	prompt, err := engine.ProcessTurn(context.Background(), "hello!", state, f)
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if prompt != "Identify the problem." {
		t.Fatalf("expected the new stage's prompt, got %q", prompt)
	}
	if state.CurrentStageID != "problem" {
		t.Fatalf("state not advanced: %q", state.CurrentStageID)
	}
	if len(state.CompletedStages) != 1 || state.CompletedStages[0] != "greeting" {
		t.Fatalf("completed stages = %v", state.CompletedStages)
	}
	if state.StageTurns["greeting"] != 1 {
		t.Fatalf("greeting turn count = %d, want 1", state.StageTurns["greeting"])
	}
	if state.StageTurns["problem"] != 0 {
		t.Fatalf("new stage turn count = %d, want 0", state.StageTurns["problem"])
	}
}

func TestProcessTurnStaysWhenIncomplete(t *testing.T) {
	judge := &fixedJudge{verdict: Verdict{}}
	engine := NewEngine(judge)
	f := twoStageFlow()
	state := NewState(f)

	prompt, err := engine.ProcessTurn(context.Background(), "uh", state, f)
	if err != nil {
		t.Fatalf("ProcessTurn failed: %v", err)
	}
	if prompt != "Greet the customer." {
		t.Fatalf("expected to stay on greeting, got %q", prompt)
	}
	if state.StageTurns["greeting"] != 1 {
		t.Fatalf("turn not counted: %d", state.StageTurns["greeting"])
	}
}

func TestProcessTurnInvalidStage(t *testing.T) {
	engine := NewEngine(&fixedJudge{})
	f := twoStageFlow()
	state := NewState(f)
	state.CurrentStageID = "nonexistent"

	if _, err := engine.ProcessTurn(context.Background(), "hi", state, f); err == nil {
		t.Fatal("expected error for unknown stage id")
	}
}

func TestProcessTurnCycleResetsTurnCounter(t *testing.T) {
	f := &Flow{
		FlowID:       "loop",
		InitialStage: "a",
		Stages: map[string]Stage{
			"a": {
				StageID: "a", Name: "A", SystemPrompt: "Stage A.",
				NextStages:         []string{"b"},
				CompletionCriteria: map[string]string{"done": "A is done."},
				MaxTurns:           5,
			},
			"b": {
				StageID: "b", Name: "B", SystemPrompt: "Stage B.",
				NextStages:         []string{"a"},
				CompletionCriteria: map[string]string{"done": "B is done."},
				MaxTurns:           5,
			},
		},
	}
	judge := &fixedJudge{verdict: Verdict{Complete: true}}
	engine := NewEngine(judge)
	state := NewState(f)

	// a -> b -> a: revisiting a starts its budget over.
	if _, err := engine.ProcessTurn(context.Background(), "one", state, f); err != nil {
		t.Fatalf("turn 1 failed: %v", err)
	}
	if _, err := engine.ProcessTurn(context.Background(), "two", state, f); err != nil {
		t.Fatalf("turn 2 failed: %v", err)
	}
	if state.CurrentStageID != "a" {
		t.Fatalf("expected to cycle back to a, got %q", state.CurrentStageID)
	}
	if state.StageTurns["a"] != 0 {
		t.Fatalf("revisited stage turn count = %d, want 0", state.StageTurns["a"])
	}
	if len(state.CompletedStages) != 2 {
		t.Fatalf("completed stages = %v", state.CompletedStages)
	}
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  Verdict
	}{
		{"complete with stage", "COMPLETE: problem", Verdict{Complete: true, NextStage: "problem"}},
		{"complete bracketed", "COMPLETE: [problem]", Verdict{Complete: true, NextStage: "problem"}},
		{"complete lower case", "complete: closing", Verdict{Complete: true, NextStage: "closing"}},
		{"complete bare", "COMPLETE", Verdict{Complete: true}},
		{"complete padded", "  COMPLETE: next_stage  ", Verdict{Complete: true, NextStage: "next_stage"}},
		{"incomplete", "INCOMPLETE", Verdict{}},
		{"incomplete with reason", "INCOMPLETE: user has not answered", Verdict{}},
		{"garbage", "I think the user is ready to move on", Verdict{}},
		{"empty", "", Verdict{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseVerdict(tc.reply); got != tc.want {
				t.Fatalf("ParseVerdict(%q) = %+v, want %+v", tc.reply, got, tc.want)
			}
		})
	}
}
