package applicationsrv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/notification"
	"github.com/meridian-hr/funnel/recruitment/offer"
)

// Dispatcher hands a committed application id to the fan-out pipeline. The
// call must never block or fail the submission; implementations deliver
// asynchronously.
type Dispatcher interface {
	Dispatch(applicationID kernel.ApplicationID)
}

// ApplicationService is the application writer plus the read/review
// operations built around it.
type ApplicationService struct {
	applicationRepo  application.Repository
	offerRepo        offer.Repository
	notificationRepo notification.Repository
	idempotency      application.IdempotencyStore
	validator        *application.DocumentValidator
	dispatcher       Dispatcher
}

// NewApplicationService creates a new instance of the application service.
// idempotency and dispatcher may be nil; submission then runs without
// request dedup respectively without fan-out.
func NewApplicationService(
	applicationRepo application.Repository,
	offerRepo offer.Repository,
	notificationRepo notification.Repository,
	idempotency application.IdempotencyStore,
	validator *application.DocumentValidator,
	dispatcher Dispatcher,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo:  applicationRepo,
		offerRepo:        offerRepo,
		notificationRepo: notificationRepo,
		idempotency:      idempotency,
		validator:        validator,
		dispatcher:       dispatcher,
	}
}

// SubmitApplication runs the full submission pipeline: offer gate, candidate
// gate, duplicate check, answer and document validation, then the single
// transaction that persists the aggregate. The response is built from the
// committed state; notifications and fan-out happen after commit and cannot
// fail the submission.
func (s *ApplicationService) SubmitApplication(ctx context.Context, req application.SubmitApplicationRequest, principal *auth.Principal) (*application.ApplicationResponse, error) {
	offerEntity, err := s.offerRepo.GetByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}

	// Candidates never learn that drafts exist.
	if offerEntity.IsDraft() {
		return nil, offer.ErrOfferNotFound().WithDetail("offer_id", req.OfferID.String())
	}
	if offerEntity.IsClosed() {
		return nil, offer.ErrOfferClosed().WithDetail("offer_id", req.OfferID.String())
	}
	if !offerEntity.VisibleTo(principal.CandidateStatus) {
		return nil, offer.ErrOfferNotVisible().WithDetail("offer_id", req.OfferID.String())
	}

	// The route guard already filters, but the gate belongs to the writer:
	// a stale token must not slip a pending candidate through.
	if principal.Status == auth.StatusPending {
		return nil, auth.ErrAccountPending()
	}
	if !principal.IsActiveCandidate() {
		return nil, auth.ErrForbidden().WithDetail("reason", "only active candidates may apply")
	}

	newID := kernel.NewApplicationID(uuid.NewString())

	// Request dedup. A lost claim means a retry of an earlier submission:
	// return that application instead of racing it. Store failures only
	// degrade to non-idempotent; the live-duplicate index still holds.
	ownedClaim := false
	if req.RequestID != "" && s.idempotency != nil {
		claimed, owned, err := s.idempotency.Claim(ctx, req.RequestID, newID)
		switch {
		case err != nil:
			logx.Warnf("idempotency store unavailable, submitting without dedup: %v", err)
		case !owned:
			return s.replayClaim(ctx, req.RequestID, claimed)
		default:
			ownedClaim = true
		}
	}

	duplicate, err := s.applicationRepo.HasActiveForOffer(ctx, principal.UserID, req.OfferID)
	if err != nil {
		s.releaseClaim(ctx, ownedClaim, req.RequestID)
		return nil, errx.Wrap(err, "failed to check for duplicate application", errx.TypeInternal)
	}
	if duplicate {
		s.releaseClaim(ctx, ownedClaim, req.RequestID)
		return nil, application.ErrDuplicateApplication().
			WithDetail("offer_id", req.OfferID.String())
	}

	if err := req.Answers.ValidateAgainst(&offerEntity.Questions); err != nil {
		s.releaseClaim(ctx, ownedClaim, req.RequestID)
		return nil, err
	}

	if err := application.ValidateContacts(req.Contacts); err != nil {
		s.releaseClaim(ctx, ownedClaim, req.RequestID)
		return nil, err
	}

	documents, err := s.validator.Validate(req.Documents)
	if err != nil {
		s.releaseClaim(ctx, ownedClaim, req.RequestID)
		return nil, err
	}

	now := time.Now()
	for i := range documents {
		documents[i].ID = kernel.NewDocumentID(uuid.NewString())
		documents[i].ApplicationID = newID
		documents[i].UploadedAt = now
	}

	newApplication := &application.Application{
		ID:          newID,
		OfferID:     req.OfferID,
		CandidateID: principal.UserID,
		Status:      application.StatusSubmitted,
		Answers:     req.Answers,
		Management:  req.Management,
		Contacts:    req.Contacts,
		Documents:   documents,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	if err := s.applicationRepo.Submit(ctx, newApplication); err != nil {
		s.releaseClaim(ctx, ownedClaim, req.RequestID)
		return nil, errx.Wrap(err, "failed to submit application", errx.TypeInternal)
	}

	s.notifySubmitted(ctx, newApplication, offerEntity)

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(newApplication.ID)
	}

	return toApplicationResponse(newApplication), nil
}

// GetApplication retrieves one application. Candidates only reach their own.
func (s *ApplicationService) GetApplication(ctx context.Context, id kernel.ApplicationID, principal *auth.Principal) (*application.ApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if principal.HasRole(auth.RoleCandidate) && !app.IsOwnedBy(principal.UserID) {
		return nil, application.ErrInsufficientPermissions().
			WithDetail("application_id", id.String())
	}

	return toApplicationResponse(app), nil
}

// ListApplications retrieves applications with pagination. Candidate
// principals are pinned to their own submissions regardless of filters.
func (s *ApplicationService) ListApplications(ctx context.Context, req application.ListApplicationsRequest, principal *auth.Principal) (*application.PaginatedApplicationsResponse, error) {
	req.Pagination = req.Pagination.Normalized()

	if principal.HasRole(auth.RoleCandidate) {
		req.CandidateID = principal.UserID
	}

	apps, err := s.applicationRepo.List(ctx, req)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list applications", errx.TypeInternal)
	}

	responses := make([]application.ApplicationResponse, 0, len(apps.Items))
	for i := range apps.Items {
		responses = append(responses, *toApplicationResponse(&apps.Items[i]))
	}

	return &kernel.Paginated[application.ApplicationResponse]{
		Items: responses,
		Page:  apps.Page,
		Empty: apps.Empty,
	}, nil
}

// UpdateStatus applies a recruiter-driven transition and notifies the
// candidate after the update lands.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id kernel.ApplicationID, req application.UpdateStatusRequest, principal *auth.Principal) (*application.ApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := app.UpdateStatus(req.Status); err != nil {
		return nil, err
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, errx.Wrap(err, "failed to update application status", errx.TypeInternal)
	}

	s.notifyStatusChanged(ctx, app, req.Reason)

	return toApplicationResponse(app), nil
}

// Withdraw retracts the caller's own application.
func (s *ApplicationService) Withdraw(ctx context.Context, id kernel.ApplicationID, principal *auth.Principal) (*application.ApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !app.IsOwnedBy(principal.UserID) {
		return nil, application.ErrInsufficientPermissions().
			WithDetail("application_id", id.String())
	}

	if err := app.Withdraw(); err != nil {
		return nil, err
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, errx.Wrap(err, "failed to withdraw application", errx.TypeInternal)
	}

	return toApplicationResponse(app), nil
}

// GetDocument retrieves one attachment with content for download.
// Candidates only reach documents of their own applications.
func (s *ApplicationService) GetDocument(ctx context.Context, applicationID kernel.ApplicationID, documentID kernel.DocumentID, principal *auth.Principal) (*application.Document, error) {
	doc, err := s.applicationRepo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.ApplicationID != applicationID {
		return nil, application.ErrDocumentNotFound().
			WithDetail("document_id", documentID.String())
	}

	if principal.HasRole(auth.RoleCandidate) {
		app, err := s.applicationRepo.GetByID(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		if !app.IsOwnedBy(principal.UserID) {
			return nil, application.ErrInsufficientPermissions().
				WithDetail("application_id", applicationID.String())
		}
	}

	return doc, nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// replayClaim resolves a lost idempotency claim to the original response.
func (s *ApplicationService) replayClaim(ctx context.Context, requestID string, claimed kernel.ApplicationID) (*application.ApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, claimed)
	if err != nil {
		// Claimed but not committed: the first request is still in flight
		// or died before releasing. Either way this retry must not race it.
		if errx.IsCode(err, application.CodeApplicationNotFound) {
			return nil, application.ErrDuplicateApplication().
				WithDetail("request_id", requestID).
				WithDetail("reason", "original submission still in flight")
		}
		return nil, err
	}

	logx.Infof("replayed submission for request id %s -> application %s", requestID, app.ID)
	return toApplicationResponse(app), nil
}

// releaseClaim drops an owned idempotency claim after a failed submit.
func (s *ApplicationService) releaseClaim(ctx context.Context, owned bool, requestID string) {
	if !owned || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, requestID); err != nil {
		logx.Warnf("failed to release idempotency claim %s: %v", requestID, err)
	}
}

func (s *ApplicationService) notifySubmitted(ctx context.Context, app *application.Application, offerEntity *offer.Offer) {
	now := time.Now()

	candidateNote := &notification.Notification{
		ID:        kernel.NewNotificationID(uuid.NewString()),
		UserID:    app.CandidateID,
		Type:      notification.TypeApplicationSubmitted,
		Title:     "Application received",
		Body:      fmt.Sprintf("Your application for %q was received and is awaiting review.", offerEntity.Title),
		CreatedAt: now,
	}
	if err := s.notificationRepo.Create(ctx, candidateNote); err != nil {
		logx.Warnf("failed to append submission notification for candidate %s: %v", app.CandidateID, err)
	}

	recruiterNote := &notification.Notification{
		ID:        kernel.NewNotificationID(uuid.NewString()),
		UserID:    offerEntity.CreatedBy,
		Type:      notification.TypeNewApplication,
		Title:     "New application",
		Body:      fmt.Sprintf("A new application arrived for %q.", offerEntity.Title),
		CreatedAt: now,
	}
	if err := s.notificationRepo.Create(ctx, recruiterNote); err != nil {
		logx.Warnf("failed to append submission notification for recruiter %s: %v", offerEntity.CreatedBy, err)
	}
}

func (s *ApplicationService) notifyStatusChanged(ctx context.Context, app *application.Application, reason string) {
	body := fmt.Sprintf("Your application moved to %s.", app.Status)
	if reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, reason)
	}

	n := &notification.Notification{
		ID:        kernel.NewNotificationID(uuid.NewString()),
		UserID:    app.CandidateID,
		Type:      notification.TypeApplicationStatus,
		Title:     "Application status changed",
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logx.Warnf("failed to append status notification for candidate %s: %v", app.CandidateID, err)
	}
}

// toApplicationResponse converts an Application entity to its response DTO,
// stripping document content.
func toApplicationResponse(app *application.Application) *application.ApplicationResponse {
	docs := make([]application.DocumentResponse, 0, len(app.Documents))
	for _, doc := range app.Documents {
		docs = append(docs, application.DocumentResponse{
			ID:           doc.ID,
			DocumentType: doc.Type,
			FileName:     doc.FileName,
			MimeType:     doc.MimeType,
			SizeBytes:    doc.SizeBytes,
			UploadedAt:   doc.UploadedAt,
		})
	}

	return &application.ApplicationResponse{
		ID:              app.ID,
		OfferID:         app.OfferID,
		CandidateID:     app.CandidateID,
		Status:          app.Status,
		Answers:         app.Answers,
		Management:      app.Management,
		Contacts:        app.Contacts,
		Documents:       docs,
		StatusChangedAt: app.StatusChangedAt,
		SubmittedAt:     app.SubmittedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}
