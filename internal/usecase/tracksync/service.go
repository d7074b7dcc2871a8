package tracksync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recorder/errors"
	"github.com/johnquangdev/meeting-recorder/internal/domain/entities"
	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/tracker"
)

// CredentialSource hands out a valid tracker access token
type CredentialSource interface {
	Get(ctx context.Context, orgID uuid.UUID, provider entities.IntegrationProvider) (string, error)
}

// SyncOptions tunes how items are pushed
type SyncOptions struct {
	SummaryPriority string
	ActionPriority  string
}

func (o *SyncOptions) applyDefaults() {
	if o.SummaryPriority == "" {
		o.SummaryPriority = "Medium"
	}
	// action items default above the summary so they surface in triage
	if o.ActionPriority == "" {
		o.ActionPriority = "High"
	}
}

// SyncResult reports what a sync call pushed
type SyncResult struct {
	SummaryKey     string
	ActionItemKeys []string
	FailedItems    []string
}

// Service pushes meeting insights into the issue tracker. Repeated calls for
// an unchanged meeting update the existing items instead of duplicating
// them: the persisted SyncRecord mapping decides create vs update, with
// title search as a recovery path when no record exists.
type Service struct {
	credentials CredentialSource
	tracker     tracker.Client
	records     repositories.SyncRecordRepository
	logger      *zap.Logger
}

// NewService creates a sync dispatcher
func NewService(credentials CredentialSource, trackerClient tracker.Client, records repositories.SyncRecordRepository, logger *zap.Logger) *Service {
	return &Service{
		credentials: credentials,
		tracker:     trackerClient,
		records:     records,
		logger:      logger,
	}
}

// SyncToTracker pushes the meeting summary and each action item. Action-item
// failures are logged and skipped; they never abort the rest of the sync.
// A credential failure aborts everything: it is a configuration problem the
// operator has to fix, not something retrying helps.
func (s *Service) SyncToTracker(ctx context.Context, meeting *entities.Meeting, projectKey string, opts SyncOptions) (*SyncResult, error) {
	if meeting == nil || !meeting.HasInsights() {
		return nil, apperrors.ErrInvalidArgument("meeting has no insights to sync")
	}
	opts.applyDefaults()

	token, err := s.credentials.Get(ctx, meeting.OrganizationID, entities.ProviderTracker)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}

	summaryTitle := "Meeting Summary: " + meeting.Title
	summaryKey, err := s.syncItem(ctx, token, meeting.ID, entities.SyncItemSummary, projectKey, summaryTitle, s.summaryBody(meeting), opts.SummaryPriority)
	if err != nil {
		s.logger.Error("Summary sync failed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err))
		result.FailedItems = append(result.FailedItems, summaryTitle)
	} else {
		result.SummaryKey = summaryKey
	}

	for _, item := range s.actionItems(meeting) {
		title := "Action: " + item
		key, err := s.syncItem(ctx, token, meeting.ID, entities.SyncItemActionItem, projectKey, title, item, opts.ActionPriority)
		if err != nil {
			s.logger.Warn("Action item sync failed, skipping",
				zap.String("meeting_id", meeting.ID.String()),
				zap.String("title", title),
				zap.Error(err))
			result.FailedItems = append(result.FailedItems, title)
			continue
		}
		result.ActionItemKeys = append(result.ActionItemKeys, key)
	}

	s.logger.Info("📤 Tracker sync finished",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("project_key", projectKey),
		zap.Int("pushed", len(result.ActionItemKeys)),
		zap.Int("failed", len(result.FailedItems)))

	return result, nil
}

// ListProjects returns the tracker projects the organization's credential
// can see, so operators can pick a project key before syncing
func (s *Service) ListProjects(ctx context.Context, orgID uuid.UUID) ([]tracker.Project, error) {
	token, err := s.credentials.Get(ctx, orgID, entities.ProviderTracker)
	if err != nil {
		return nil, err
	}

	var projects []tracker.Project
	err = s.withRetry(ctx, func() error {
		var lerr error
		projects, lerr = s.tracker.ListProjects(ctx, token)
		return lerr
	})
	if err != nil {
		return nil, apperrors.ErrExternalAPIFailed("tracker", err)
	}
	return projects, nil
}

// syncItem finds or creates the tracker item for (meeting, kind, title) and
// records the mapping for the next sync
func (s *Service) syncItem(ctx context.Context, token string, meetingID uuid.UUID, kind entities.SyncItemKind, projectKey, title, description, priority string) (string, error) {
	record, err := s.records.Find(ctx, meetingID, kind, title)
	if err != nil {
		return "", apperrors.ErrDBQueryFailed(err)
	}

	if record != nil {
		if err := s.updateWithRetry(ctx, token, record.ExternalKey, description); err != nil {
			return "", apperrors.ErrSyncFailed(title, err)
		}
		return record.ExternalKey, s.saveRecord(ctx, meetingID, kind, title, record.ExternalKey, projectKey)
	}

	// no mapping yet: a matching item may still exist from before the
	// mapping was introduced, so fall back to a title search
	existing, err := s.searchExact(ctx, token, projectKey, title)
	if err != nil {
		return "", apperrors.ErrSyncFailed(title, err)
	}
	if existing != nil {
		if err := s.updateWithRetry(ctx, token, existing.Key, description); err != nil {
			return "", apperrors.ErrSyncFailed(title, err)
		}
		return existing.Key, s.saveRecord(ctx, meetingID, kind, title, existing.Key, projectKey)
	}

	created, err := s.tracker.CreateIssue(ctx, token, tracker.Issue{
		ProjectKey:  projectKey,
		Title:       title,
		Description: description,
		Priority:    priority,
	})
	if err != nil {
		return "", apperrors.ErrSyncFailed(title, err)
	}
	return created.Key, s.saveRecord(ctx, meetingID, kind, title, created.Key, projectKey)
}

func (s *Service) searchExact(ctx context.Context, token, projectKey, title string) (*tracker.Issue, error) {
	var issues []tracker.Issue
	err := s.withRetry(ctx, func() error {
		var serr error
		issues, serr = s.tracker.SearchIssues(ctx, token, projectKey, title)
		return serr
	})
	if err != nil {
		return nil, err
	}
	for i := range issues {
		if issues[i].Title == title {
			return &issues[i], nil
		}
	}
	return nil, nil
}

func (s *Service) updateWithRetry(ctx context.Context, token, issueKey, description string) error {
	return s.withRetry(ctx, func() error {
		return s.tracker.UpdateIssue(ctx, token, issueKey, description)
	})
}

func (s *Service) saveRecord(ctx context.Context, meetingID uuid.UUID, kind entities.SyncItemKind, title, externalKey, projectKey string) error {
	record := entities.NewSyncRecord(meetingID, kind, title, externalKey, projectKey)
	if err := s.records.Save(ctx, record); err != nil {
		return apperrors.ErrDBQueryFailed(err)
	}
	return nil
}

func (s *Service) summaryBody(meeting *entities.Meeting) string {
	var b strings.Builder
	b.WriteString(*meeting.Summary)

	if decisions := decodeList(meeting.Decisions); len(decisions) > 0 {
		b.WriteString("\n\nDecisions:\n")
		for _, d := range decisions {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if takeaways := decodeList(meeting.Takeaways); len(takeaways) > 0 {
		b.WriteString("\nTakeaways:\n")
		for _, t := range takeaways {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

func (s *Service) actionItems(meeting *entities.Meeting) []string {
	return decodeList(meeting.ActionItems)
}

func decodeList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// withRetry wraps an idempotent tracker call with bounded backoff
func (s *Service) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}
