package evaluation

import (
	"net/http"

	"github.com/meridian-hr/funnel/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("EVALUATION")

var (
	CodeEvaluationNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Evaluation not found")
	CodeDuplicateEvaluation    = ErrRegistry.Register("DUPLICATE", errx.TypeConflict, http.StatusConflict, "An evaluation for this protocol already exists")
	CodeEvaluationCompleted    = ErrRegistry.Register("COMPLETED", errx.TypeConflict, http.StatusConflict, "Completed evaluations cannot change")
	CodeInvalidStateTransition = ErrRegistry.Register("INVALID_TRANSITION", errx.TypeConflict, http.StatusConflict, "Invalid evaluation state transition")
	CodeIncompleteScores       = ErrRegistry.Register("INCOMPLETE_SCORES", errx.TypeConflict, http.StatusConflict, "Every phase must be scored before completion")
	CodeUnknownPhase           = ErrRegistry.Register("UNKNOWN_PHASE", errx.TypeValidation, http.StatusUnprocessableEntity, "Phase does not belong to the protocol")
	CodeScoreOutOfRange        = ErrRegistry.Register("SCORE_OUT_OF_RANGE", errx.TypeValidation, http.StatusUnprocessableEntity, "Scores must lie between 0 and 20")
	CodeNotEvaluator           = ErrRegistry.Register("NOT_EVALUATOR", errx.TypeAuthorization, http.StatusForbidden, "Only the evaluator may modify this evaluation")
	CodeInvalidEvaluationData  = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation, http.StatusUnprocessableEntity, "Invalid evaluation data")
	CodeInvalidRequest         = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
)

func ErrEvaluationNotFound() *errx.Error {
	return ErrRegistry.New(CodeEvaluationNotFound)
}

func ErrDuplicateEvaluation() *errx.Error {
	return ErrRegistry.New(CodeDuplicateEvaluation)
}

func ErrEvaluationCompleted() *errx.Error {
	return ErrRegistry.New(CodeEvaluationCompleted)
}

func ErrInvalidStateTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStateTransition)
}

func ErrIncompleteScores() *errx.Error {
	return ErrRegistry.New(CodeIncompleteScores)
}

func ErrUnknownPhase() *errx.Error {
	return ErrRegistry.New(CodeUnknownPhase)
}

func ErrScoreOutOfRange() *errx.Error {
	return ErrRegistry.New(CodeScoreOutOfRange)
}

func ErrNotEvaluator() *errx.Error {
	return ErrRegistry.New(CodeNotEvaluator)
}

func ErrInvalidEvaluationData() *errx.Error {
	return ErrRegistry.New(CodeInvalidEvaluationData)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}
