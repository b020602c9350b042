package evaluation

import (
	"time"

	"github.com/meridian-hr/funnel/pkg/kernel"
)

// Protocol selects the evaluation grid applied to an application. Protocol 1
// reviews the submitted MTP answers; protocol 2 covers the interview round.
type Protocol string

const (
	Protocol1 Protocol = "protocol_1"
	Protocol2 Protocol = "protocol_2"
)

func (p Protocol) IsValid() bool {
	return p == Protocol1 || p == Protocol2
}

// Phase names one scored section of a protocol.
type Phase string

const (
	PhaseMetier     Phase = "metier"
	PhaseTalent     Phase = "talent"
	PhaseParadigme  Phase = "paradigme"
	PhaseEntretien  Phase = "entretien"
	PhaseTechnique  Phase = "technique"
	PhaseMotivation Phase = "motivation"
)

// Scores run on a 0..20 scale, halves allowed.
const (
	MinScore = 0.0
	MaxScore = 20.0
)

// protocolPhases fixes the phase order and weight of each protocol. Weights
// sum to 1 per protocol; the aggregate stays on the 0..20 scale.
var protocolPhases = map[Protocol][]PhaseWeight{
	Protocol1: {
		{Phase: PhaseMetier, Weight: 0.4},
		{Phase: PhaseTalent, Weight: 0.3},
		{Phase: PhaseParadigme, Weight: 0.3},
	},
	Protocol2: {
		{Phase: PhaseEntretien, Weight: 0.5},
		{Phase: PhaseTechnique, Weight: 0.3},
		{Phase: PhaseMotivation, Weight: 0.2},
	},
}

// PhaseWeight pairs a phase with its fixed share of the aggregate.
type PhaseWeight struct {
	Phase  Phase   `json:"phase"`
	Weight float64 `json:"weight"`
}

// Phases returns the protocol's phases in grid order.
func (p Protocol) Phases() []PhaseWeight {
	return protocolPhases[p]
}

// HasPhase reports whether a phase belongs to the protocol's grid.
func (p Protocol) HasPhase(phase Phase) bool {
	for _, pw := range protocolPhases[p] {
		if pw.Phase == phase {
			return true
		}
	}
	return false
}

// PhaseScores maps scored phases to their 0..20 value.
type PhaseScores map[Phase]float64

// EvaluationState is the lifecycle state of an evaluation.
type EvaluationState string

const (
	StatePending    EvaluationState = "pending"
	StateInProgress EvaluationState = "in_progress"
	StateCompleted  EvaluationState = "completed"
)

func (s EvaluationState) IsValid() bool {
	switch s {
	case StatePending, StateInProgress, StateCompleted:
		return true
	}
	return false
}

// stateTransitions is the allowed forward path. Completed is terminal.
var stateTransitions = map[EvaluationState][]EvaluationState{
	StatePending:    {StateInProgress},
	StateInProgress: {StateCompleted},
	StateCompleted:  {},
}

// Evaluation is one evaluator's scored grid for an application under a
// protocol. Scoring formulas beyond the weighted aggregate live outside the
// system; this is the persistence model.
type Evaluation struct {
	ID            kernel.EvaluationID  `db:"id" json:"id"`
	ApplicationID kernel.ApplicationID `db:"application_id" json:"application_id"`
	Protocol      Protocol             `db:"protocol" json:"protocol"`
	EvaluatorID   kernel.UserID        `db:"evaluator_id" json:"evaluator_id"`
	State         EvaluationState      `db:"state" json:"state"`
	Scores        PhaseScores          `json:"scores"`
	Aggregate     *float64             `db:"aggregate" json:"aggregate,omitempty"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

func (e *Evaluation) IsCompleted() bool {
	return e.State == StateCompleted
}

// IsEvaluator reports whether the given user owns this evaluation.
func (e *Evaluation) IsEvaluator(userID kernel.UserID) bool {
	return e.EvaluatorID == userID
}

// RecordScores merges phase scores into the evaluation and recomputes the
// aggregate. Scoring a pending evaluation moves it to in_progress; completed
// evaluations are frozen.
func (e *Evaluation) RecordScores(scores PhaseScores) error {
	if e.IsCompleted() {
		return ErrEvaluationCompleted().
			WithDetail("evaluation_id", e.ID.String())
	}

	for phase, score := range scores {
		if !e.Protocol.HasPhase(phase) {
			return ErrUnknownPhase().
				WithDetail("protocol", string(e.Protocol)).
				WithDetail("phase", string(phase))
		}
		if score < MinScore || score > MaxScore {
			return ErrScoreOutOfRange().
				WithDetail("phase", string(phase)).
				WithDetail("score", score)
		}
	}

	if e.Scores == nil {
		e.Scores = make(PhaseScores, len(scores))
	}
	for phase, score := range scores {
		e.Scores[phase] = score
	}

	e.Aggregate = e.computeAggregate()
	if e.State == StatePending && len(e.Scores) > 0 {
		e.State = StateInProgress
	}
	e.UpdatedAt = time.Now()

	return nil
}

// Transition moves the evaluation along pending -> in_progress -> completed.
// Completing requires every phase of the protocol scored.
func (e *Evaluation) Transition(to EvaluationState) error {
	if !to.IsValid() {
		return ErrInvalidEvaluationData().
			WithDetail("field", "state").
			WithDetail("got", string(to))
	}

	allowed := false
	for _, next := range stateTransitions[e.State] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidStateTransition().
			WithDetail("from", string(e.State)).
			WithDetail("to", string(to))
	}

	if to == StateCompleted {
		for _, pw := range e.Protocol.Phases() {
			if _, scored := e.Scores[pw.Phase]; !scored {
				return ErrIncompleteScores().
					WithDetail("missing_phase", string(pw.Phase))
			}
		}
	}

	e.State = to
	e.UpdatedAt = time.Now()

	return nil
}

// computeAggregate derives the weighted 0..20 aggregate over the scored
// phases, normalized by their weights so a partial grid still reads on the
// same scale. Nil until the first score lands.
func (e *Evaluation) computeAggregate() *float64 {
	var sum, weight float64
	for _, pw := range e.Protocol.Phases() {
		score, scored := e.Scores[pw.Phase]
		if !scored {
			continue
		}
		sum += score * pw.Weight
		weight += pw.Weight
	}
	if weight == 0 {
		return nil
	}
	aggregate := sum / weight
	return &aggregate
}

// Validate enforces the structural invariants of an evaluation.
func (e *Evaluation) Validate() error {
	if !e.Protocol.IsValid() {
		return ErrInvalidEvaluationData().
			WithDetail("field", "protocol").
			WithDetail("got", string(e.Protocol))
	}
	if !e.State.IsValid() {
		return ErrInvalidEvaluationData().
			WithDetail("field", "state").
			WithDetail("got", string(e.State))
	}
	if e.ApplicationID.IsEmpty() {
		return ErrInvalidEvaluationData().WithDetail("field", "application_id")
	}
	if e.EvaluatorID.IsEmpty() {
		return ErrInvalidEvaluationData().WithDetail("field", "evaluator_id")
	}
	for phase, score := range e.Scores {
		if !e.Protocol.HasPhase(phase) {
			return ErrUnknownPhase().
				WithDetail("protocol", string(e.Protocol)).
				WithDetail("phase", string(phase))
		}
		if score < MinScore || score > MaxScore {
			return ErrScoreOutOfRange().
				WithDetail("phase", string(phase)).
				WithDetail("score", score)
		}
	}
	return nil
}
