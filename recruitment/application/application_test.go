package application

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

func TestApplication_UpdateStatus(t *testing.T) {
	tests := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusInterview, false},
		{StatusSubmitted, StatusAccepted, false},
		{StatusUnderReview, StatusInterview, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusUnderReview, StatusAccepted, false},
		{StatusUnderReview, StatusSubmitted, false},
		{StatusInterview, StatusAccepted, true},
		{StatusInterview, StatusRejected, true},
		{StatusInterview, StatusUnderReview, false},
		{StatusAccepted, StatusRejected, false},
		{StatusRejected, StatusUnderReview, false},
		{StatusWithdrawn, StatusUnderReview, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			app := &Application{Status: tt.from}
			err := app.UpdateStatus(tt.to)

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, app.Status)
				require.NotNil(t, app.StatusChangedAt)
			} else {
				assert.True(t, errx.IsCode(err, CodeInvalidStatusTransition))
				assert.Equal(t, tt.from, app.Status)
			}
		})
	}

	t.Run("withdrawal is never a review transition", func(t *testing.T) {
		app := &Application{Status: StatusSubmitted}
		err := app.UpdateStatus(StatusWithdrawn)
		assert.True(t, errx.IsCode(err, CodeInvalidStatusTransition))
	})

	t.Run("unknown statuses are refused", func(t *testing.T) {
		app := &Application{Status: StatusSubmitted}
		err := app.UpdateStatus(ApplicationStatus("archived"))
		assert.True(t, errx.IsCode(err, CodeInvalidStatusTransition))
	})
}

func TestApplication_Withdraw(t *testing.T) {
	t.Run("candidates can withdraw while undecided", func(t *testing.T) {
		for _, status := range []ApplicationStatus{StatusSubmitted, StatusUnderReview, StatusInterview} {
			app := &Application{Status: status}
			require.NoError(t, app.Withdraw())
			assert.Equal(t, StatusWithdrawn, app.Status)
			assert.NotNil(t, app.StatusChangedAt)
		}
	})

	t.Run("decided applications stay decided", func(t *testing.T) {
		for _, status := range []ApplicationStatus{StatusAccepted, StatusRejected, StatusWithdrawn} {
			app := &Application{Status: status}
			err := app.Withdraw()
			assert.True(t, errx.IsCode(err, CodeCannotWithdraw), "status %s", status)
			assert.Equal(t, status, app.Status)
		}
	})
}

func TestFlexibleStrings_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"a list stays a list", `{"metier": ["a", "b"]}`, []string{"a", "b"}},
		{"a legacy flat string becomes a one-element list", `{"metier": "only answer"}`, []string{"only answer"}},
		{"a blank flat string becomes an empty list", `{"metier": "   "}`, []string{}},
		{"an absent dimension stays nil", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var answers MTPAnswers
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &answers))
			assert.Equal(t, tt.want, []string(answers.Metier))
		})
	}

	t.Run("non-string payloads are rejected", func(t *testing.T) {
		var answers MTPAnswers
		err := json.Unmarshal([]byte(`{"metier": 42}`), &answers)
		assert.Error(t, err)
	})
}

func TestMTPAnswers_ValidateAgainst(t *testing.T) {
	questions := &offer.MTPQuestions{
		Metier:    []string{"q1", "q2"},
		Talent:    []string{"q1"},
		Paradigme: nil,
	}

	t.Run("a full answer sheet passes", func(t *testing.T) {
		answers := &MTPAnswers{
			Metier: flexibleStrings{"a1", "a2"},
			Talent: flexibleStrings{"a1"},
		}
		assert.NoError(t, answers.ValidateAgainst(questions))
	})

	t.Run("unanswered questions are allowed", func(t *testing.T) {
		answers := &MTPAnswers{Metier: flexibleStrings{"a1"}}
		assert.NoError(t, answers.ValidateAgainst(questions))
	})

	t.Run("an empty sheet is allowed", func(t *testing.T) {
		answers := &MTPAnswers{}
		assert.NoError(t, answers.ValidateAgainst(questions))
	})

	t.Run("extra answers name the offending dimension", func(t *testing.T) {
		answers := &MTPAnswers{
			Metier:    flexibleStrings{"a1"},
			Paradigme: flexibleStrings{"unexpected"},
		}
		err := answers.ValidateAgainst(questions)
		require.True(t, errx.IsCode(err, CodeAnswerShapeMismatch))

		var e *errx.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "paradigme", e.Details["dimension"])
		assert.Equal(t, 1, e.Details["answers"])
		assert.Equal(t, 0, e.Details["questions"])
	})
}

func TestValidateContacts(t *testing.T) {
	contact := func(name, email string) ReferenceContact {
		return ReferenceContact{Company: "Acme", FullName: name, Email: email}
	}

	t.Run("a short well-formed list passes", func(t *testing.T) {
		contacts := []ReferenceContact{
			contact("Ada Lovelace", "ada@acme.example"),
			contact("Grace Hopper", ""),
		}
		assert.NoError(t, ValidateContacts(contacts))
	})

	t.Run("the list is capped", func(t *testing.T) {
		contacts := make([]ReferenceContact, MaxReferenceContacts+1)
		for i := range contacts {
			contacts[i] = contact(fmt.Sprintf("Person %d", i), "")
		}
		err := ValidateContacts(contacts)
		require.True(t, errx.IsCode(err, CodeInvalidApplicationData))

		var e *errx.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, MaxReferenceContacts, e.Details["max"])
	})

	t.Run("a blank name is refused with its position", func(t *testing.T) {
		contacts := []ReferenceContact{
			contact("Ada Lovelace", ""),
			contact("   ", ""),
		}
		err := ValidateContacts(contacts)
		require.True(t, errx.IsCode(err, CodeInvalidApplicationData))

		var e *errx.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 1, e.Details["position"])
	})

	t.Run("a malformed email is refused", func(t *testing.T) {
		contacts := []ReferenceContact{contact("Ada Lovelace", "not-an-email")}
		err := ValidateContacts(contacts)
		assert.True(t, errx.IsCode(err, CodeInvalidApplicationData))
	})
}
