package pipeline

// RunState tracks the artifacts declared by completed stages. It is written
// only by the orchestrator, after a stage succeeds, and read by later stages
// when building their command lines. After stage k completes it contains
// exactly the declared outputs of stages 1 through k.
type RunState struct {
	order   []string
	outputs map[string][]string
}

// NewRunState returns an empty RunState.
func NewRunState() *RunState {
	return &RunState{
		outputs: make(map[string][]string),
	}
}

// Record stores the declared outputs of a completed stage. Recording the
// same stage twice replaces its outputs.
func (s *RunState) Record(stage string, outputs []string) {
	if _, exists := s.outputs[stage]; !exists {
		s.order = append(s.order, stage)
	}
	s.outputs[stage] = outputs
}

// Outputs returns the declared outputs of a completed stage, or nil when the
// stage has not completed.
func (s *RunState) Outputs(stage string) []string {
	return s.outputs[stage]
}

// First returns the first declared output of a completed stage, or "" when
// the stage has not completed or declared no outputs.
func (s *RunState) First(stage string) string {
	return s.Path(stage, 0)
}

// Path returns the i-th declared output of a completed stage, or "" when out
// of range.
func (s *RunState) Path(stage string, i int) string {
	outs := s.outputs[stage]
	if i < 0 || i >= len(outs) {
		return ""
	}
	return outs[i]
}

// Stages returns the names of completed stages in completion order.
func (s *RunState) Stages() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}
