// File path: internal/flow/flow.go
package flow

// Stage is one named state in a conversation flow. Definitions are
// immutable once loaded; the runtime cursor lives in State.
type Stage struct {
	StageID            string            `json:"stage_id"`
	Name               string            `json:"name"`
	SystemPrompt       string            `json:"system_prompt"`
	UserPrompt         string            `json:"user_prompt,omitempty"`
	NextStages         []string          `json:"next_stages"`
	CompletionCriteria map[string]string `json:"completion_criteria,omitempty"`
	MaxTurns           int               `json:"max_turns"`
}

// Flow is a declarative stage graph. The graph may contain cycles; a stage
// pointing back to an earlier one models a retry loop.
type Flow struct {
	FlowID       string           `json:"flow_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	InitialStage string           `json:"initial_stage"`
	Stages       map[string]Stage `json:"stages"`
}

// GetStage looks up a stage definition by id.
func (f *Flow) GetStage(stageID string) (Stage, bool) {
	stage, ok := f.Stages[stageID]
	return stage, ok
}

// AddStage registers a stage definition, replacing any previous one with
// the same id.
func (f *Flow) AddStage(stage Stage) {
	if f.Stages == nil {
		f.Stages = make(map[string]Stage)
	}
	f.Stages[stage.StageID] = stage
}

// State is the mutable cursor of one in-progress conversation. It is owned
// by the caller's session and mutated only by AdvanceStage and
// IncrementTurns.
type State struct {
	FlowID          string                 `json:"flow_id"`
	CurrentStageID  string                 `json:"current_stage_id"`
	CompletedStages []string               `json:"completed_stages"`
	StageTurns      map[string]int         `json:"stage_turns"`
	Data            map[string]interface{} `json:"data,omitempty"`
}

// NewState positions a fresh cursor at the flow's initial stage.
func NewState(f *Flow) *State {
	return &State{
		FlowID:         f.FlowID,
		CurrentStageID: f.InitialStage,
		StageTurns:     make(map[string]int),
	}
}

// AdvanceStage appends the current stage to the completion history and
// moves the cursor, resetting the new stage's turn counter. Entering a
// stage always starts its count fresh, even on a repeat visit via a cycle.
func (s *State) AdvanceStage(newStageID string) {
	if s.CurrentStageID != "" {
		s.CompletedStages = append(s.CompletedStages, s.CurrentStageID)
	}
	s.CurrentStageID = newStageID
	if s.StageTurns == nil {
		s.StageTurns = make(map[string]int)
	}
	s.StageTurns[newStageID] = 0
}

// IncrementTurns bumps the current stage's turn counter, creating it at 1
// if absent.
func (s *State) IncrementTurns() {
	if s.StageTurns == nil {
		s.StageTurns = make(map[string]int)
	}
	s.StageTurns[s.CurrentStageID]++
}

// SetData stores an extension value on the state.
func (s *State) SetData(key string, value interface{}) {
	if s.Data == nil {
		s.Data = make(map[string]interface{})
	}
	s.Data[key] = value
}

// GetData retrieves an extension value from the state.
func (s *State) GetData(key string) (interface{}, bool) {
	value, ok := s.Data[key]
	return value, ok
}
