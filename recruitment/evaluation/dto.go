package evaluation

// CreateEvaluationRequest opens a new evaluation grid for an application.
// The evaluator is the authenticated caller.
type CreateEvaluationRequest struct {
	Protocol Protocol `json:"protocol"`
}

// UpdateEvaluationRequest merges scores and optionally advances the state.
type UpdateEvaluationRequest struct {
	Scores PhaseScores      `json:"scores,omitempty"`
	State  *EvaluationState `json:"state,omitempty"`
}
