package offersrv

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

var (
	recruiter = &auth.Principal{
		UserID: kernel.NewUserID("rec-1"),
		Role:   auth.RoleRecruiter,
		Status: auth.StatusActive,
	}
	otherRecruiter = &auth.Principal{
		UserID: kernel.NewUserID("rec-2"),
		Role:   auth.RoleRecruiter,
		Status: auth.StatusActive,
	}
	admin = &auth.Principal{
		UserID: kernel.NewUserID("admin-1"),
		Role:   auth.RoleAdmin,
		Status: auth.StatusActive,
	}
	internalCandidate = &auth.Principal{
		UserID:          kernel.NewUserID("cand-int"),
		Role:            auth.RoleCandidate,
		CandidateStatus: auth.CandidateInternal,
		Status:          auth.StatusActive,
	}
	externalCandidate = &auth.Principal{
		UserID:          kernel.NewUserID("cand-ext"),
		Role:            auth.RoleCandidate,
		CandidateStatus: auth.CandidateExternal,
		Status:          auth.StatusActive,
	}
)

func TestOfferService_CreateOffer(t *testing.T) {
	svc, repo := newOfferService(t)

	t.Run("new offers start as drafts owned by the caller", func(t *testing.T) {
		created, err := svc.CreateOffer(context.Background(), offer.CreateOfferRequest{
			Title:        "Backend Engineer",
			ContractType: offer.ContractCDI,
			Visibility:   offer.VisibilityAll,
		}, recruiter.UserID)
		require.NoError(t, err)

		assert.Equal(t, offer.StatusDraft, created.Status)
		assert.Equal(t, recruiter.UserID, created.CreatedBy)
		assert.NotEmpty(t, created.ID)

		stored, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Title, stored.Title)
	})

	t.Run("invalid offers are refused before the store", func(t *testing.T) {
		_, err := svc.CreateOffer(context.Background(), offer.CreateOfferRequest{
			Title:        "",
			ContractType: offer.ContractCDI,
			Visibility:   offer.VisibilityAll,
		}, recruiter.UserID)
		assert.True(t, errx.IsCode(err, offer.CodeInvalidOfferData))
	})
}

func TestOfferService_GetOffer(t *testing.T) {
	svc, repo := newOfferService(t)
	draft := repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)
	internalOnly := repo.seed(t, offer.StatusOpen, offer.VisibilityInternal, recruiter.UserID)

	t.Run("staff read drafts", func(t *testing.T) {
		got, err := svc.GetOffer(context.Background(), draft.ID, recruiter)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, got.ID)
	})

	t.Run("candidates never learn that drafts exist", func(t *testing.T) {
		_, err := svc.GetOffer(context.Background(), draft.ID, externalCandidate)
		assert.True(t, errx.IsCode(err, offer.CodeOfferNotFound))
	})

	t.Run("the other population gets a visibility refusal, not a 404", func(t *testing.T) {
		_, err := svc.GetOffer(context.Background(), internalOnly.ID, externalCandidate)
		assert.True(t, errx.IsCode(err, offer.CodeOfferNotVisible))
	})

	t.Run("the targeted population reads the offer", func(t *testing.T) {
		got, err := svc.GetOffer(context.Background(), internalOnly.ID, internalCandidate)
		require.NoError(t, err)
		assert.Equal(t, internalOnly.ID, got.ID)
	})
}

func TestOfferService_ListOffers(t *testing.T) {
	t.Run("candidate requests cannot widen the window", func(t *testing.T) {
		svc, repo := newOfferService(t)

		_, err := svc.ListOffers(context.Background(), offer.ListOffersRequest{
			Status: offer.StatusDraft,
		}, externalCandidate)
		require.NoError(t, err)

		require.NotNil(t, repo.lastList)
		assert.Empty(t, repo.lastList.Status)
		assert.Equal(t, []offer.OfferStatus{offer.StatusOpen}, repo.lastList.Statuses)
		assert.Equal(t, []offer.Visibility{offer.VisibilityAll, offer.VisibilityExternal}, repo.lastList.Visibilities)
	})

	t.Run("internal candidates see the internal window", func(t *testing.T) {
		svc, repo := newOfferService(t)

		_, err := svc.ListOffers(context.Background(), offer.ListOffersRequest{}, internalCandidate)
		require.NoError(t, err)

		assert.Equal(t, []offer.Visibility{offer.VisibilityAll, offer.VisibilityInternal}, repo.lastList.Visibilities)
	})

	t.Run("staff filters pass through untouched", func(t *testing.T) {
		svc, repo := newOfferService(t)

		_, err := svc.ListOffers(context.Background(), offer.ListOffersRequest{
			Status: offer.StatusDraft,
		}, admin)
		require.NoError(t, err)

		assert.Equal(t, offer.StatusDraft, repo.lastList.Status)
		assert.Empty(t, repo.lastList.Visibilities)
	})
}

func TestOfferService_UpdateOffer(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("drafts are fully editable", func(t *testing.T) {
		svc, repo := newOfferService(t)
		draft := repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)

		updated, err := svc.UpdateOffer(context.Background(), draft.ID, offer.UpdateOfferRequest{
			Title:     strPtr("Senior Backend Engineer"),
			Questions: &offer.MTPQuestions{Metier: []string{"Why Go?"}},
		}, recruiter)
		require.NoError(t, err)

		assert.Equal(t, "Senior Backend Engineer", updated.Title)
		assert.Equal(t, []string{"Why Go?"}, updated.Questions.Metier)
	})

	t.Run("questions freeze once the offer opens", func(t *testing.T) {
		svc, repo := newOfferService(t)
		open := repo.seed(t, offer.StatusOpen, offer.VisibilityAll, recruiter.UserID)

		_, err := svc.UpdateOffer(context.Background(), open.ID, offer.UpdateOfferRequest{
			Questions: &offer.MTPQuestions{Metier: []string{"New question?"}},
		}, recruiter)
		assert.True(t, errx.IsCode(err, offer.CodeQuestionsFrozen))
	})

	t.Run("open offers still take non-question edits", func(t *testing.T) {
		svc, repo := newOfferService(t)
		open := repo.seed(t, offer.StatusOpen, offer.VisibilityAll, recruiter.UserID)

		updated, err := svc.UpdateOffer(context.Background(), open.ID, offer.UpdateOfferRequest{
			Description: strPtr("Now with more context."),
		}, recruiter)
		require.NoError(t, err)
		assert.Equal(t, "Now with more context.", updated.Description)
	})

	t.Run("resubmitting identical questions is not a freeze violation", func(t *testing.T) {
		svc, repo := newOfferService(t)
		open := repo.seed(t, offer.StatusOpen, offer.VisibilityAll, recruiter.UserID)
		same := open.Questions

		_, err := svc.UpdateOffer(context.Background(), open.ID, offer.UpdateOfferRequest{
			Questions: &same,
		}, recruiter)
		assert.NoError(t, err)
	})

	t.Run("closed offers are immutable", func(t *testing.T) {
		svc, repo := newOfferService(t)
		closed := repo.seed(t, offer.StatusClosed, offer.VisibilityAll, recruiter.UserID)

		_, err := svc.UpdateOffer(context.Background(), closed.ID, offer.UpdateOfferRequest{
			Title: strPtr("Too late"),
		}, recruiter)
		assert.True(t, errx.IsCode(err, offer.CodeInvalidTransition))
	})

	t.Run("only the owner or an admin may edit", func(t *testing.T) {
		svc, repo := newOfferService(t)
		draft := repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)

		_, err := svc.UpdateOffer(context.Background(), draft.ID, offer.UpdateOfferRequest{
			Title: strPtr("Hijacked"),
		}, otherRecruiter)
		assert.True(t, errx.IsCode(err, offer.CodeNotOwner))

		_, err = svc.UpdateOffer(context.Background(), draft.ID, offer.UpdateOfferRequest{
			Title: strPtr("Admin override"),
		}, admin)
		assert.NoError(t, err)
	})
}

func TestOfferService_PublishAndClose(t *testing.T) {
	t.Run("publish then close walks the lifecycle", func(t *testing.T) {
		svc, repo := newOfferService(t)
		draft := repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)

		published, err := svc.PublishOffer(context.Background(), draft.ID, recruiter)
		require.NoError(t, err)
		assert.Equal(t, offer.StatusOpen, published.Status)

		closed, err := svc.CloseOffer(context.Background(), draft.ID, recruiter)
		require.NoError(t, err)
		assert.Equal(t, offer.StatusClosed, closed.Status)
	})

	t.Run("non-owners cannot publish", func(t *testing.T) {
		svc, repo := newOfferService(t)
		draft := repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)

		_, err := svc.PublishOffer(context.Background(), draft.ID, otherRecruiter)
		assert.True(t, errx.IsCode(err, offer.CodeNotOwner))
	})
}

func TestOfferService_DeleteOffer(t *testing.T) {
	t.Run("drafts can be deleted by their owner", func(t *testing.T) {
		svc, repo := newOfferService(t)
		draft := repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)

		require.NoError(t, svc.DeleteOffer(context.Background(), draft.ID, recruiter))

		_, err := repo.GetByID(context.Background(), draft.ID)
		assert.True(t, errx.IsCode(err, offer.CodeOfferNotFound))
	})

	t.Run("anything that ever opened stays", func(t *testing.T) {
		svc, repo := newOfferService(t)
		open := repo.seed(t, offer.StatusOpen, offer.VisibilityAll, recruiter.UserID)

		err := svc.DeleteOffer(context.Background(), open.ID, recruiter)
		assert.True(t, errx.IsCode(err, offer.CodeInvalidTransition))
	})
}

func TestOfferService_GetStats(t *testing.T) {
	svc, repo := newOfferService(t)
	repo.seed(t, offer.StatusDraft, offer.VisibilityAll, recruiter.UserID)
	repo.seed(t, offer.StatusOpen, offer.VisibilityAll, recruiter.UserID)
	repo.seed(t, offer.StatusOpen, offer.VisibilityInternal, recruiter.UserID)
	repo.seed(t, offer.StatusClosed, offer.VisibilityAll, recruiter.UserID)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Draft)
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 1, stats.Closed)
}

// ============================================================================
// Fakes
// ============================================================================

func newOfferService(t *testing.T) (*OfferService, *fakeOfferRepo) {
	t.Helper()
	repo := &fakeOfferRepo{byID: make(map[kernel.OfferID]*offer.Offer)}
	return NewOfferService(repo), repo
}

type fakeOfferRepo struct {
	mu   sync.Mutex
	byID map[kernel.OfferID]*offer.Offer
	seq  int

	lastList *offer.ListOffersRequest
}

func (r *fakeOfferRepo) seed(t *testing.T, status offer.OfferStatus, visibility offer.Visibility, owner kernel.UserID) *offer.Offer {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o := &offer.Offer{
		ID:           kernel.NewOfferID(fmt.Sprintf("offer-%d", r.seq)),
		CreatedBy:    owner,
		Title:        "Backend Engineer",
		ContractType: offer.ContractCDI,
		Visibility:   visibility,
		Status:       status,
		Questions: offer.MTPQuestions{
			Metier: []string{"Why us?"},
		},
	}
	r.byID[o.ID] = o
	return o
}

func (r *fakeOfferRepo) Create(_ context.Context, o *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = o
	return nil
}

func (r *fakeOfferRepo) Update(_ context.Context, o *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[o.ID]; !ok {
		return offer.ErrOfferNotFound()
	}
	r.byID[o.ID] = o
	return nil
}

func (r *fakeOfferRepo) GetByID(_ context.Context, id kernel.OfferID) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, offer.ErrOfferNotFound().WithDetail("offer_id", id.String())
	}
	clone := *o
	return &clone, nil
}

func (r *fakeOfferRepo) List(_ context.Context, req offer.ListOffersRequest) (*kernel.Paginated[offer.Offer], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = &req
	return &kernel.Paginated[offer.Offer]{
		Page:  kernel.NewPage(req.Pagination, 0),
		Empty: true,
	}, nil
}

func (r *fakeOfferRepo) Delete(_ context.Context, id kernel.OfferID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *fakeOfferRepo) Stats(context.Context) (*offer.StatsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &offer.StatsResponse{}
	for _, o := range r.byID {
		stats.Total++
		switch o.Status {
		case offer.StatusDraft:
			stats.Draft++
		case offer.StatusOpen:
			stats.Open++
		case offer.StatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}
