package offer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

func questionList(n int) []string {
	qs := make([]string, n)
	for i := range qs {
		qs[i] = fmt.Sprintf("Question %d?", i+1)
	}
	return qs
}

func validOffer() *Offer {
	return &Offer{
		ID:           kernel.NewOfferID("offer-1"),
		CreatedBy:    kernel.NewUserID("rec-1"),
		Title:        "Backend Engineer",
		ContractType: ContractCDI,
		Visibility:   VisibilityAll,
		Status:       StatusDraft,
		Questions: MTPQuestions{
			Metier:    questionList(2),
			Talent:    questionList(1),
			Paradigme: questionList(1),
		},
	}
}

func TestMTPQuestions_Validate(t *testing.T) {
	t.Run("caps are inclusive", func(t *testing.T) {
		q := MTPQuestions{
			Metier:    questionList(MaxMetierQuestions),
			Talent:    questionList(MaxTalentQuestions),
			Paradigme: questionList(MaxParadigmeQuestions),
		}
		assert.NoError(t, q.Validate())
	})

	t.Run("one question over the cap fails", func(t *testing.T) {
		tests := []struct {
			dimension Dimension
			questions MTPQuestions
		}{
			{DimensionMetier, MTPQuestions{Metier: questionList(MaxMetierQuestions + 1)}},
			{DimensionTalent, MTPQuestions{Talent: questionList(MaxTalentQuestions + 1)}},
			{DimensionParadigme, MTPQuestions{Paradigme: questionList(MaxParadigmeQuestions + 1)}},
		}

		for _, tt := range tests {
			t.Run(string(tt.dimension), func(t *testing.T) {
				err := tt.questions.Validate()
				require.True(t, errx.IsCode(err, CodeInvalidOfferData))

				var e *errx.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, string(tt.dimension), e.Details["dimension"])
			})
		}
	})

	t.Run("blank questions fail with their position", func(t *testing.T) {
		q := MTPQuestions{Metier: []string{"Fine?", "   "}}

		err := q.Validate()
		require.True(t, errx.IsCode(err, CodeInvalidOfferData))

		var e *errx.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 1, e.Details["position"])
	})

	t.Run("an empty bundle is allowed", func(t *testing.T) {
		assert.NoError(t, (&MTPQuestions{}).Validate())
	})
}

func TestMTPQuestions_Equal(t *testing.T) {
	base := MTPQuestions{Metier: []string{"a", "b"}, Talent: []string{"c"}}

	t.Run("same content in order is equal", func(t *testing.T) {
		other := MTPQuestions{Metier: []string{"a", "b"}, Talent: []string{"c"}}
		assert.True(t, base.Equal(&other))
	})

	t.Run("order matters", func(t *testing.T) {
		other := MTPQuestions{Metier: []string{"b", "a"}, Talent: []string{"c"}}
		assert.False(t, base.Equal(&other))
	})

	t.Run("length matters", func(t *testing.T) {
		other := MTPQuestions{Metier: []string{"a"}, Talent: []string{"c"}}
		assert.False(t, base.Equal(&other))
	})
}

func TestOffer_Lifecycle(t *testing.T) {
	t.Run("publish opens a draft and freezes the timestamp", func(t *testing.T) {
		o := validOffer()

		require.NoError(t, o.Publish())

		assert.Equal(t, StatusOpen, o.Status)
		assert.NotNil(t, o.PublishedAt)
		assert.True(t, o.AcceptsApplications())
	})

	t.Run("publishing twice conflicts", func(t *testing.T) {
		o := validOffer()
		require.NoError(t, o.Publish())

		assert.True(t, errx.IsCode(o.Publish(), CodeInvalidTransition))
	})

	t.Run("close ends an open offer", func(t *testing.T) {
		o := validOffer()
		require.NoError(t, o.Publish())

		require.NoError(t, o.Close())

		assert.Equal(t, StatusClosed, o.Status)
		assert.NotNil(t, o.ClosedAt)
		assert.False(t, o.AcceptsApplications())
	})

	t.Run("a draft cannot close", func(t *testing.T) {
		o := validOffer()
		assert.True(t, errx.IsCode(o.Close(), CodeInvalidTransition))
	})

	t.Run("a closed offer cannot reopen", func(t *testing.T) {
		o := validOffer()
		require.NoError(t, o.Publish())
		require.NoError(t, o.Close())

		assert.True(t, errx.IsCode(o.Publish(), CodeInvalidTransition))
	})
}

func TestOffer_VisibleTo(t *testing.T) {
	tests := []struct {
		visibility Visibility
		status     auth.CandidateStatus
		visible    bool
	}{
		{VisibilityAll, auth.CandidateInternal, true},
		{VisibilityAll, auth.CandidateExternal, true},
		{VisibilityInternal, auth.CandidateInternal, true},
		{VisibilityInternal, auth.CandidateExternal, false},
		{VisibilityExternal, auth.CandidateExternal, true},
		{VisibilityExternal, auth.CandidateInternal, false},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s offer for %s candidate", tt.visibility, tt.status)
		t.Run(name, func(t *testing.T) {
			o := validOffer()
			o.Visibility = tt.visibility
			assert.Equal(t, tt.visible, o.VisibleTo(tt.status))
		})
	}
}

func TestOffer_Validate(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	t.Run("a well-formed offer passes", func(t *testing.T) {
		assert.NoError(t, validOffer().Validate())
	})

	t.Run("a blank title fails", func(t *testing.T) {
		o := validOffer()
		o.Title = "   "
		assert.True(t, errx.IsCode(o.Validate(), CodeInvalidOfferData))
	})

	t.Run("an unknown contract type fails", func(t *testing.T) {
		o := validOffer()
		o.ContractType = ContractType("Gig")
		assert.True(t, errx.IsCode(o.Validate(), CodeInvalidOfferData))
	})

	t.Run("an unknown visibility fails", func(t *testing.T) {
		o := validOffer()
		o.Visibility = Visibility("secret")
		assert.True(t, errx.IsCode(o.Validate(), CodeInvalidOfferData))
	})

	t.Run("a negative salary fails", func(t *testing.T) {
		o := validOffer()
		o.SalaryMin = intPtr(-100)
		assert.True(t, errx.IsCode(o.Validate(), CodeInvalidOfferData))
	})

	t.Run("an inverted salary range fails", func(t *testing.T) {
		o := validOffer()
		o.SalaryMin = intPtr(60000)
		o.SalaryMax = intPtr(50000)
		assert.True(t, errx.IsCode(o.Validate(), CodeInvalidOfferData))
	})

	t.Run("question caps are enforced through the offer", func(t *testing.T) {
		o := validOffer()
		o.Questions.Metier = questionList(MaxMetierQuestions + 1)
		assert.True(t, errx.IsCode(o.Validate(), CodeInvalidOfferData))
	})
}
