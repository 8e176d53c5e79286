package service

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
	"github.com/AHMED-techNOP/01BLOG/internal/validation"
)

// ModerationService covers the admin surface (hide/ban/delete) and the
// user-facing report flow.
type ModerationService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	reportRepo repository.ReportRepository
}

func NewModerationService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	reportRepo repository.ReportRepository,
) *ModerationService {
	return &ModerationService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		reportRepo: reportRepo,
	}
}

// SetPostHidden hides or unhides a post. Hiding keeps the row; the post
// simply drops out of feeds and public reads until unhidden.
func (s *ModerationService) SetPostHidden(ctx context.Context, principal *models.User, postID uint, hidden bool) error {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID(principal))
	if err != nil {
		return err
	}
	if !CanAct(principal, ActionModeratePost, post) {
		return models.NewForbiddenError("Moderator access required")
	}
	return s.postRepo.SetHidden(ctx, postID, hidden)
}

// DeletePostAsModerator removes a post and its dependents regardless of
// ownership.
func (s *ModerationService) DeletePostAsModerator(ctx context.Context, principal *models.User, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID(principal))
	if err != nil {
		return err
	}
	if !CanAct(principal, ActionModeratePost, post) {
		return models.NewForbiddenError("Moderator access required")
	}
	return s.postRepo.Delete(ctx, postID)
}

// SetUserBanned bans or unbans an account. Admin accounts are never valid
// targets.
func (s *ModerationService) SetUserBanned(ctx context.Context, principal *models.User, userID uint, banned bool) error {
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CanAct(principal, ActionModerateUser, target) {
		return models.NewForbiddenError("Cannot moderate this account")
	}
	return s.userRepo.SetBanned(ctx, userID, banned)
}

// DeleteUser removes an account and everything it produced. Admin accounts
// are never valid targets.
func (s *ModerationService) DeleteUser(ctx context.Context, principal *models.User, userID uint) error {
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CanAct(principal, ActionModerateUser, target) {
		return models.NewForbiddenError("Cannot moderate this account")
	}
	return s.userRepo.Delete(ctx, userID)
}

// CreateReportInput carries a report submission. The target is the tagged
// variant resolved at the API boundary.
type CreateReportInput struct {
	Reporter *models.User
	Target   models.ReportTarget
	Reason   string
}

// CreateReport files a report against a user or one of their posts.
// Reporting a post reports its author; reporting yourself or your own post
// is rejected.
func (s *ModerationService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if in.Reporter == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if in.Reporter.IsBanned {
		return nil, models.NewForbiddenError("Account is banned")
	}
	if err := validation.ValidateReason(in.Reason); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	report := &models.Report{
		ReporterID: in.Reporter.ID,
		Reason:     in.Reason,
		Status:     models.ReportStatusPending,
	}

	switch in.Target.Kind {
	case models.ReportTargetPost:
		post, err := s.postRepo.GetByID(ctx, in.Target.PostID, in.Reporter.ID)
		if err != nil {
			return nil, err
		}
		if !IsPostVisible(in.Reporter, post) {
			return nil, models.NewNotFoundError("Post", in.Target.PostID)
		}
		if post.UserID == in.Reporter.ID {
			return nil, models.NewValidationError("You cannot report your own post")
		}
		postID := post.ID
		report.PostID = &postID
		report.ReportedUserID = post.UserID
	case models.ReportTargetUser:
		target, err := s.userRepo.GetByID(ctx, in.Target.UserID)
		if err != nil {
			return nil, err
		}
		if target.ID == in.Reporter.ID {
			return nil, models.NewValidationError("You cannot report yourself")
		}
		report.ReportedUserID = target.ID
	default:
		return nil, models.NewValidationError("Report target must be a user or a post")
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return s.reportRepo.GetByID(ctx, report.ID)
}

// isActiveModerator gates the report queue: an authenticated, unbanned
// admin.
func isActiveModerator(principal *models.User) bool {
	return principal != nil && principal.IsAdmin() && !principal.IsBanned
}

// ListReports returns reports for the moderation queue, optionally filtered
// by status.
func (s *ModerationService) ListReports(ctx context.Context, principal *models.User, status string, limit, offset int) ([]*models.Report, error) {
	if !isActiveModerator(principal) {
		return nil, models.NewForbiddenError("Moderator access required")
	}
	if status != "" && !models.ValidReportStatus(status) {
		return nil, models.NewValidationError("Status must be PENDING, REVIEWED or RESOLVED")
	}
	return s.reportRepo.List(ctx, status, limit, offset)
}

// UpdateReportStatus moves a report to a new lifecycle status.
func (s *ModerationService) UpdateReportStatus(ctx context.Context, principal *models.User, reportID uint, status string) (*models.Report, error) {
	if !isActiveModerator(principal) {
		return nil, models.NewForbiddenError("Moderator access required")
	}
	if !models.ValidReportStatus(status) {
		return nil, models.NewValidationError("Status must be PENDING, REVIEWED or RESOLVED")
	}
	if err := s.reportRepo.UpdateStatus(ctx, reportID, status); err != nil {
		return nil, err
	}
	return s.reportRepo.GetByID(ctx, reportID)
}

// DeleteReport removes a report from the queue.
func (s *ModerationService) DeleteReport(ctx context.Context, principal *models.User, reportID uint) error {
	if !isActiveModerator(principal) {
		return models.NewForbiddenError("Moderator access required")
	}
	return s.reportRepo.Delete(ctx, reportID)
}
