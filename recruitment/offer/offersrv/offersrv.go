package offersrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

// OfferService provides business operations for job offers.
type OfferService struct {
	offerRepo offer.Repository
}

// NewOfferService creates a new instance of the offer service
func NewOfferService(offerRepo offer.Repository) *OfferService {
	return &OfferService{
		offerRepo: offerRepo,
	}
}

// CreateOffer drafts a new offer owned by the caller. Offers always start
// as drafts; publishing is a separate transition.
func (s *OfferService) CreateOffer(ctx context.Context, req offer.CreateOfferRequest, createdBy kernel.UserID) (*offer.Offer, error) {
	now := time.Now()
	newOffer := &offer.Offer{
		ID:             kernel.NewOfferID(uuid.NewString()),
		CreatedBy:      createdBy,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		Department:     req.Department,
		ContractType:   req.ContractType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		SalaryCurrency: req.SalaryCurrency,
		Visibility:     req.Visibility,
		Questions:      req.Questions,
		Status:         offer.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := newOffer.Validate(); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Create(ctx, newOffer); err != nil {
		return nil, errx.Wrap(err, "failed to create offer", errx.TypeInternal)
	}

	return newOffer, nil
}

// GetOffer retrieves one offer through the caller's visibility window.
// Staff read everything. Candidates never learn that drafts exist, and an
// offer aimed at the other population is a visibility refusal, not a 404,
// so the candidate knows the posting is real but out of reach.
func (s *OfferService) GetOffer(ctx context.Context, id kernel.OfferID, principal *auth.Principal) (*offer.Offer, error) {
	offerEntity, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if principal.HasRole(auth.RoleCandidate) {
		if offerEntity.IsDraft() {
			return nil, offer.ErrOfferNotFound().WithDetail("offer_id", id.String())
		}
		if !offerEntity.VisibleTo(principal.CandidateStatus) {
			return nil, offer.ErrOfferNotVisible().WithDetail("offer_id", id.String())
		}
	}

	return offerEntity, nil
}

// ListOffers retrieves offers with pagination. The visibility and status
// windows are derived from the principal here and pushed into the query;
// candidate requests cannot widen them.
func (s *OfferService) ListOffers(ctx context.Context, req offer.ListOffersRequest, principal *auth.Principal) (*offer.PaginatedOffersResponse, error) {
	req.Pagination = req.Pagination.Normalized()

	if principal.HasRole(auth.RoleCandidate) {
		req.Status = ""
		req.Statuses = []offer.OfferStatus{offer.StatusOpen}
		req.Visibilities = []offer.Visibility{offer.VisibilityAll}
		switch principal.CandidateStatus {
		case auth.CandidateInternal:
			req.Visibilities = append(req.Visibilities, offer.VisibilityInternal)
		case auth.CandidateExternal:
			req.Visibilities = append(req.Visibilities, offer.VisibilityExternal)
		}
	}

	offers, err := s.offerRepo.List(ctx, req)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list offers", errx.TypeInternal)
	}

	return offers, nil
}

// UpdateOffer applies a partial update. Drafts are fully editable; once the
// offer opens the question bundle is frozen because submitted answers
// reference questions by position. Closed offers are immutable.
func (s *OfferService) UpdateOffer(ctx context.Context, id kernel.OfferID, req offer.UpdateOfferRequest, principal *auth.Principal) (*offer.Offer, error) {
	offerEntity, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(offerEntity, principal); err != nil {
		return nil, err
	}

	if offerEntity.IsClosed() {
		return nil, offer.ErrInvalidTransition().
			WithDetail("offer_id", id.String()).
			WithDetail("reason", "closed offers cannot be edited")
	}

	updated := false

	if req.Title != nil && *req.Title != offerEntity.Title {
		offerEntity.Title = *req.Title
		updated = true
	}

	if req.Description != nil && *req.Description != offerEntity.Description {
		offerEntity.Description = *req.Description
		updated = true
	}

	if req.Location != nil && *req.Location != offerEntity.Location {
		offerEntity.Location = *req.Location
		updated = true
	}

	if req.Department != nil && *req.Department != offerEntity.Department {
		offerEntity.Department = *req.Department
		updated = true
	}

	if req.ContractType != nil && *req.ContractType != offerEntity.ContractType {
		offerEntity.ContractType = *req.ContractType
		updated = true
	}

	if req.SalaryMin != nil {
		offerEntity.SalaryMin = req.SalaryMin
		updated = true
	}

	if req.SalaryMax != nil {
		offerEntity.SalaryMax = req.SalaryMax
		updated = true
	}

	if req.SalaryCurrency != nil && *req.SalaryCurrency != offerEntity.SalaryCurrency {
		offerEntity.SalaryCurrency = *req.SalaryCurrency
		updated = true
	}

	if req.Visibility != nil && *req.Visibility != offerEntity.Visibility {
		offerEntity.Visibility = *req.Visibility
		updated = true
	}

	if req.Questions != nil && !req.Questions.Equal(&offerEntity.Questions) {
		if !offerEntity.IsDraft() {
			return nil, offer.ErrQuestionsFrozen().WithDetail("offer_id", id.String())
		}
		offerEntity.Questions = *req.Questions
		updated = true
	}

	if updated {
		offerEntity.UpdatedAt = time.Now()

		if err := offerEntity.Validate(); err != nil {
			return nil, err
		}

		if err := s.offerRepo.Update(ctx, offerEntity); err != nil {
			return nil, errx.Wrap(err, "failed to update offer", errx.TypeInternal)
		}
	}

	return offerEntity, nil
}

// PublishOffer moves a draft offer to open, freezing its question bundle.
func (s *OfferService) PublishOffer(ctx context.Context, id kernel.OfferID, principal *auth.Principal) (*offer.Offer, error) {
	offerEntity, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(offerEntity, principal); err != nil {
		return nil, err
	}

	if err := offerEntity.Publish(); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Update(ctx, offerEntity); err != nil {
		return nil, errx.Wrap(err, "failed to publish offer", errx.TypeInternal)
	}

	return offerEntity, nil
}

// CloseOffer moves an open offer to closed. Existing applications survive;
// new submissions are refused from this point on.
func (s *OfferService) CloseOffer(ctx context.Context, id kernel.OfferID, principal *auth.Principal) (*offer.Offer, error) {
	offerEntity, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwnership(offerEntity, principal); err != nil {
		return nil, err
	}

	if err := offerEntity.Close(); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Update(ctx, offerEntity); err != nil {
		return nil, errx.Wrap(err, "failed to close offer", errx.TypeInternal)
	}

	return offerEntity, nil
}

// DeleteOffer removes a draft. Anything that ever opened stays in the
// system because applications and lake projections may reference it.
func (s *OfferService) DeleteOffer(ctx context.Context, id kernel.OfferID, principal *auth.Principal) error {
	offerEntity, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireOwnership(offerEntity, principal); err != nil {
		return err
	}

	if !offerEntity.IsDraft() {
		return offer.ErrInvalidTransition().
			WithDetail("offer_id", id.String()).
			WithDetail("reason", "only draft offers can be deleted")
	}

	if err := s.offerRepo.Delete(ctx, id); err != nil {
		return errx.Wrap(err, "failed to delete offer", errx.TypeInternal)
	}

	return nil
}

// GetStats counts offers per lifecycle state.
func (s *OfferService) GetStats(ctx context.Context) (*offer.StatsResponse, error) {
	stats, err := s.offerRepo.Stats(ctx)
	if err != nil {
		return nil, errx.Wrap(err, "failed to get offer stats", errx.TypeInternal)
	}

	return stats, nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// requireOwnership allows mutations by the offer owner or an admin.
func (s *OfferService) requireOwnership(o *offer.Offer, principal *auth.Principal) error {
	if principal.HasRole(auth.RoleAdmin) || o.CreatedBy == principal.UserID {
		return nil
	}
	return offer.ErrNotOwner().
		WithDetail("offer_id", o.ID.String()).
		WithDetail("user_id", principal.UserID.String())
}
