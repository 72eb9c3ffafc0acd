package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
)

const (
	TriggerManual    = "manual"
	TriggerQueued    = "queued"
	TriggerScheduled = "scheduled"
)

// SyncService mirrors a user's Acumbamail account into the local store.
type SyncService struct {
	UserRepo       repository.UserRepositoryInterface
	ListRepo       repository.ListRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
	TemplateRepo   repository.TemplateRepositoryInterface
	CampaignRepo   repository.CampaignRepositoryInterface
	SyncRunRepo    repository.SyncRunRepositoryInterface
	// Lock, when set, also excludes syncs of the same user running in other processes.
	Lock           repository.SyncLockRepositoryInterface
	NewClient      ClientFactory
	Now            func() time.Time

	mu       sync.Mutex
	inFlight map[int]bool
}

// SyncAll runs a manual sync for the user.
func (s *SyncService) SyncAll(ctx context.Context, userID int) (*model.SyncReport, error) {
	return s.Run(ctx, userID, TriggerManual)
}

// Run reconciles lists, subscribers, templates and campaigns in that order.
// Only pre-flight failures are returned as errors; phase and entity failures
// are recorded in the report.
func (s *SyncService) Run(ctx context.Context, userID int, trigger string) (*model.SyncReport, error) {
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}
	if !s.acquire(userID) {
		return nil, appErrors.ErrSyncInProgress
	}
	defer s.release(userID)
	if s.Lock != nil {
		unlock, ok, err := s.Lock.TryLock(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !ok {
			return nil, appErrors.ErrSyncInProgress
		}
		defer unlock()
	}

	log.Printf("🔄 [Sync] user %d: starting %s sync", userID, trigger)

	api := s.NewClient(user.AuthToken())
	report := model.NewSyncReport(s.now())

	s.runPhase(report, model.PhaseLists, func() error { return s.syncLists(ctx, api, userID, report) })
	s.runPhase(report, model.PhaseSubscribers, func() error { return s.syncSubscribers(ctx, api, userID, report) })
	s.runPhase(report, model.PhaseTemplates, func() error { return s.syncTemplates(ctx, api, userID, report) })
	s.runPhase(report, model.PhaseCampaigns, func() error { return s.syncCampaigns(ctx, api, userID, report) })

	report.FinishedAt = s.now()
	log.Printf("✅ [Sync] user %d: created %d, updated %d, failed %d, phase errors %d",
		userID, report.TotalCreated(), report.TotalUpdated(), report.TotalFailed(), len(report.PhaseErrors))

	s.recordRun(ctx, userID, trigger, report)
	return report, nil
}

func (s *SyncService) acquire(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = map[int]bool{}
	}
	if s.inFlight[userID] {
		return false
	}
	s.inFlight[userID] = true
	return true
}

func (s *SyncService) release(userID int) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}

var errMissingRemoteID = errors.New("missing remote id")

// runPhase isolates one phase so its failure or panic never stops the next.
func (s *SyncService) runPhase(report *model.SyncReport, phase string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [Sync] phase %s panicked: %v\n%s", phase, r, debug.Stack())
			report.PhaseErrors[phase] = fmt.Sprintf("panic: %v", r)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("⚠️ [Sync] phase %s failed: %v", phase, err)
		report.PhaseErrors[phase] = err.Error()
	}
}

func (s *SyncService) entityFailed(report *model.SyncReport, phase, remoteID string, err error) {
	report.Tally(phase).Failed++
	msg := fmt.Sprintf("%s %s: %v", phase, remoteID, err)
	report.Errors = append(report.Errors, msg)
	log.Printf("⚠️ [Sync] %s", msg)
}

// Lists are created on first sight and never updated afterwards.
func (s *SyncService) syncLists(ctx context.Context, api acumbamail.API, userID int, report *model.SyncReport) error {
	remote, err := api.GetLists(ctx)
	if err != nil {
		return fmt.Errorf("fetch lists: %w", err)
	}

	for i, rl := range remote {
		id := rl.ID.String()
		if id == "" {
			s.entityFailed(report, model.PhaseLists, fmt.Sprintf("#%d", i), errMissingRemoteID)
			continue
		}
		existing, err := s.ListRepo.FindByRemoteID(ctx, userID, id)
		if err != nil {
			s.entityFailed(report, model.PhaseLists, id, err)
			continue
		}
		if existing != nil {
			continue
		}
		list := &model.AcumbamailList{
			UserID:           userID,
			AcumbamailListID: id,
			Name:             rl.Name,
			Description:      rl.Description,
		}
		if err := s.ListRepo.Create(ctx, list); err != nil {
			s.entityFailed(report, model.PhaseLists, id, err)
			continue
		}
		report.Lists.Created++
	}
	return nil
}

// Subscribers are mirrored per local list; remote fields overwrite local ones.
func (s *SyncService) syncSubscribers(ctx context.Context, api acumbamail.API, userID int, report *model.SyncReport) error {
	lists, err := s.ListRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load local lists: %w", err)
	}

	for _, list := range lists {
		remote, err := api.GetSubscribers(ctx, list.AcumbamailListID)
		if err != nil {
			msg := fmt.Sprintf("%s of list %s: %v", model.PhaseSubscribers, list.AcumbamailListID, err)
			report.Errors = append(report.Errors, msg)
			log.Printf("⚠️ [Sync] %s", msg)
			continue
		}

		for i, rs := range remote {
			if rs.ID == "" {
				ref := fmt.Sprintf("#%d of list %s", i, list.AcumbamailListID)
				s.entityFailed(report, model.PhaseSubscribers, ref, errMissingRemoteID)
				continue
			}
			s.syncSubscriber(ctx, userID, list.ID, rs, report)
		}
	}
	return nil
}

func (s *SyncService) syncSubscriber(ctx context.Context, userID, listID int, rs acumbamail.RemoteSubscriber, report *model.SyncReport) {
	id := rs.ID.String()
	if rs.Email == "" {
		s.entityFailed(report, model.PhaseSubscribers, id, fmt.Errorf("missing email"))
		return
	}

	_, created, err := upsertSubscriber(ctx, s.SubscriberRepo, userID, listID, rs)
	if err != nil {
		s.entityFailed(report, model.PhaseSubscribers, id, err)
		return
	}
	if created {
		report.Subscribers.Created++
	} else {
		report.Subscribers.Updated++
	}
}

// upsertSubscriber creates the subscriber on first sight, keyed by remote id,
// and otherwise overwrites email, names and status with the remote values.
func upsertSubscriber(ctx context.Context, repo repository.SubscriberRepositoryInterface, userID, listID int, rs acumbamail.RemoteSubscriber) (*model.Subscriber, bool, error) {
	status := rs.Status
	if status == "" {
		status = "active"
	}

	existing, err := repo.FindByRemoteID(ctx, userID, rs.ID.String())
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		sub := &model.Subscriber{
			UserID:                 userID,
			ListID:                 listID,
			AcumbamailSubscriberID: rs.ID.String(),
			Email:                  rs.Email,
			FirstName:              optional(rs.FirstName),
			LastName:               optional(rs.LastName),
			Status:                 status,
		}
		if err := repo.Create(ctx, sub); err != nil {
			return nil, false, err
		}
		return sub, true, nil
	}

	existing.Email = rs.Email
	existing.FirstName = optional(rs.FirstName)
	existing.LastName = optional(rs.LastName)
	existing.Status = status
	if err := repo.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Templates are created on first sight. An existing template only gains a body
// when its local body is empty.
func (s *SyncService) syncTemplates(ctx context.Context, api acumbamail.API, userID int, report *model.SyncReport) error {
	remote, err := api.GetAllTemplates(ctx)
	if err != nil {
		return fmt.Errorf("fetch templates: %w", err)
	}

	available := make([]acumbamail.RemoteTemplate, 0, len(remote))
	ids := make([]string, 0, len(remote))
	for i, rt := range remote {
		if rt.Available && rt.ID == "" {
			s.entityFailed(report, model.PhaseTemplates, fmt.Sprintf("#%d", i), errMissingRemoteID)
			continue
		}
		if rt.Available {
			available = append(available, rt)
			ids = append(ids, rt.ID.String())
		}
	}

	known, err := s.TemplateRepo.FindByRemoteIDs(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("load local templates: %w", err)
	}

	for _, rt := range available {
		id := rt.ID.String()
		existing := known[id]
		if existing != nil && existing.HTMLContent != "" {
			continue
		}

		body := fetchTemplateBody(ctx, api, id)

		if existing == nil {
			tmpl := importedTemplate(userID, rt, body)
			if err := s.TemplateRepo.Create(ctx, tmpl); err != nil {
				s.entityFailed(report, model.PhaseTemplates, id, err)
				continue
			}
			known[id] = tmpl
			report.Templates.Created++
			continue
		}

		if body == "" {
			continue
		}
		if err := s.TemplateRepo.UpdateHTML(ctx, existing.ID, body); err != nil {
			s.entityFailed(report, model.PhaseTemplates, id, err)
			continue
		}
		existing.HTMLContent = body
		report.Templates.Updated++
	}
	return nil
}

// Campaigns discovered remotely are recorded as drafts and never updated.
func (s *SyncService) syncCampaigns(ctx context.Context, api acumbamail.API, userID int, report *model.SyncReport) error {
	remote, err := api.GetCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("fetch campaigns: %w", err)
	}

	for i, rc := range remote {
		id := rc.ID.String()
		if id == "" {
			s.entityFailed(report, model.PhaseCampaigns, fmt.Sprintf("#%d", i), errMissingRemoteID)
			continue
		}
		existing, err := s.CampaignRepo.FindByRemoteID(ctx, userID, id)
		if err != nil {
			s.entityFailed(report, model.PhaseCampaigns, id, err)
			continue
		}
		if existing != nil {
			continue
		}
		campaign := &model.EmailCampaign{
			UserID:               userID,
			AcumbamailCampaignID: id,
			Name:                 rc.Name,
			Subject:              rc.Name,
			Status:               model.CampaignStatusDraft,
			TargetAllSubscribers: true,
		}
		if err := s.CampaignRepo.Create(ctx, campaign); err != nil {
			s.entityFailed(report, model.PhaseCampaigns, id, err)
			continue
		}
		report.Campaigns.Created++
	}
	return nil
}

func (s *SyncService) recordRun(ctx context.Context, userID int, trigger string, report *model.SyncReport) {
	if s.SyncRunRepo == nil {
		return
	}
	run := &model.SyncRun{
		UserID:     userID,
		Trigger:    trigger,
		Report:     report,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	if err := s.SyncRunRepo.Create(ctx, run); err != nil {
		log.Printf("⚠️ [Sync] user %d: failed to record sync run: %v", userID, err)
	}
}

// History returns the most recent sync runs for the user.
func (s *SyncService) History(ctx context.Context, userID, limit int) ([]model.SyncRun, error) {
	return s.SyncRunRepo.ListByUser(ctx, userID, limit)
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
