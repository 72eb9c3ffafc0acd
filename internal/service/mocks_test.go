package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

// ---- repositories ----

type MockUserRepo struct {
	users map[int]*model.User
}

func newMockUserRepo(users ...*model.User) *MockUserRepo {
	m := &MockUserRepo{users: map[int]*model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, appErrors.NewUserNotFound(id)
	}
	copied := *u
	return &copied, nil
}

func (m *MockUserRepo) UpdateAuthToken(ctx context.Context, id int, token string) error {
	u, ok := m.users[id]
	if !ok {
		return appErrors.NewUserNotFound(id)
	}
	u.AcumbamailAuthToken = &token
	return nil
}

func (m *MockUserRepo) ListConfigured(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	for _, u := range m.users {
		if u.AuthToken() != "" {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type MockListRepo struct {
	mu         sync.Mutex
	lists      []*model.AcumbamailList
	failCreate map[string]error
}

func (m *MockListRepo) FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.AcumbamailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		if l.UserID == userID && l.AcumbamailListID == remoteID {
			return l, nil
		}
	}
	return nil, nil
}

func (m *MockListRepo) GetByID(ctx context.Context, userID, id int) (*model.AcumbamailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		if l.UserID == userID && l.ID == id {
			return l, nil
		}
	}
	return nil, appErrors.NewListNotFound(id)
}

func (m *MockListRepo) ListByUser(ctx context.Context, userID int) ([]model.AcumbamailList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AcumbamailList{}
	for _, l := range m.lists {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *MockListRepo) Create(ctx context.Context, l *model.AcumbamailList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failCreate[l.AcumbamailListID]; err != nil {
		return err
	}
	l.ID = len(m.lists) + 1
	m.lists = append(m.lists, l)
	return nil
}

type MockSubscriberRepo struct {
	mu          sync.Mutex
	subscribers []*model.Subscriber
}

func (m *MockSubscriberRepo) FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subscribers {
		if s.UserID == userID && s.AcumbamailSubscriberID == remoteID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriberRepo) Create(ctx context.Context, s *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = len(m.subscribers) + 1
	copied := *s
	m.subscribers = append(m.subscribers, &copied)
	return nil
}

func (m *MockSubscriberRepo) Update(ctx context.Context, s *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.subscribers {
		if existing.ID == s.ID {
			copied := *s
			m.subscribers[i] = &copied
			return nil
		}
	}
	return fmt.Errorf("subscriber %d not stored", s.ID)
}

func (m *MockSubscriberRepo) ListByList(ctx context.Context, userID, listID int) ([]model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscriber{}
	for _, s := range m.subscribers {
		if s.UserID == userID && s.ListID == listID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type MockTemplateRepo struct {
	mu        sync.Mutex
	templates []*model.EmailTemplate
	updates   int
}

func (m *MockTemplateRepo) find(match func(t *model.EmailTemplate) bool) *model.EmailTemplate {
	for _, t := range m.templates {
		if match(t) {
			copied := *t
			return &copied
		}
	}
	return nil
}

// byRemoteID looks a stored template up by its Acumbamail id.
func (m *MockTemplateRepo) byRemoteID(userID int, remoteID string) *model.EmailTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(t *model.EmailTemplate) bool {
		return t.UserID == userID && t.AcumbamailTemplateID != nil && *t.AcumbamailTemplateID == remoteID
	})
}

func (m *MockTemplateRepo) FindByRemoteIDs(ctx context.Context, userID int, remoteIDs []string) (map[string]*model.EmailTemplate, error) {
	found := map[string]*model.EmailTemplate{}
	for _, id := range remoteIDs {
		if t := m.byRemoteID(userID, id); t != nil {
			found[id] = t
		}
	}
	return found, nil
}

func (m *MockTemplateRepo) FindByName(ctx context.Context, userID int, name string) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(t *model.EmailTemplate) bool { return t.UserID == userID && t.Name == name }), nil
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, userID, id int) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(func(t *model.EmailTemplate) bool { return t.UserID == userID && t.ID == id })
	if t == nil {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	return t, nil
}

func (m *MockTemplateRepo) ListByUser(ctx context.Context, userID int) ([]model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.EmailTemplate{}
	for _, t := range m.templates {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *MockTemplateRepo) Create(ctx context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = len(m.templates) + 1
	copied := *t
	m.templates = append(m.templates, &copied)
	return nil
}

func (m *MockTemplateRepo) UpdateHTML(ctx context.Context, id int, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.templates {
		if t.ID == id {
			t.HTMLContent = html
			m.updates++
			return nil
		}
	}
	return fmt.Errorf("template %d not stored", id)
}

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns []*model.EmailCampaign
}

func (m *MockCampaignRepo) FindByRemoteID(ctx context.Context, userID int, remoteID string) (*model.EmailCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.UserID == userID && c.AcumbamailCampaignID == remoteID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, userID, id int) (*model.EmailCampaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.UserID == userID && c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

// ListByUser returns campaigns newest first, like the SQL implementation.
func (m *MockCampaignRepo) ListByUser(ctx context.Context, userID, offset, limit int, status string) ([]*model.EmailCampaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.EmailCampaign{}
	for i := len(m.campaigns) - 1; i >= 0; i-- {
		c := m.campaigns[i]
		if c.UserID == userID && (status == "" || c.Status == status) {
			all = append(all, c)
		}
	}
	start := offset
	end := offset + limit
	if start >= len(all) {
		return []*model.EmailCampaign{}, len(all), nil
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.EmailCampaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = len(m.campaigns) + 1
	copied := *c
	m.campaigns = append(m.campaigns, &copied)
	return nil
}

func (m *MockCampaignRepo) UpdateDispatchOutcome(ctx context.Context, c *model.EmailCampaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.campaigns {
		if existing.ID == c.ID {
			copied := *c
			m.campaigns[i] = &copied
			return nil
		}
	}
	return appErrors.NewCampaignNotFound(c.ID)
}

func (m *MockCampaignRepo) stored(id int) *model.EmailCampaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

type MockSyncRunRepo struct {
	mu   sync.Mutex
	runs []model.SyncRun
}

func (m *MockSyncRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = len(m.runs) + 1
	m.runs = append(m.runs, *run)
	return nil
}

func (m *MockSyncRunRepo) ListByUser(ctx context.Context, userID, limit int) ([]model.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.SyncRun{}
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].UserID == userID {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

// MockSyncLock stands in for the cross-process lock. Users in heldElsewhere
// are locked by another process.
type MockSyncLock struct {
	mu            sync.Mutex
	heldElsewhere map[int]bool
	err           error
	released      []int
}

func (m *MockSyncLock) TryLock(ctx context.Context, userID int) (func(), bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if m.heldElsewhere[userID] {
		return nil, false, nil
	}
	return func() {
		m.mu.Lock()
		m.released = append(m.released, userID)
		m.mu.Unlock()
	}, true, nil
}

// ---- remote ----

var errRelayInactive = &acumbamail.TransportError{Endpoint: "send", StatusCode: 400, Body: "SMTP is not active"}

// FakeAcumbamail is an in-memory account. Zero values mean empty collections and success.
type FakeAcumbamail struct {
	mu sync.Mutex

	lists          []acumbamail.RemoteList
	listsErr       error
	subscribers    map[string][]acumbamail.RemoteSubscriber
	subscribersErr map[string]error
	templates      []acumbamail.RemoteTemplate
	templatesErr   error
	bodies         map[string]string
	bodyErr        map[string]error
	campaigns      []acumbamail.RemoteCampaign
	campaignsErr   error
	panicOn        string
	blockLists     chan struct{}
	enteredLists   chan struct{}

	emailErr   map[string]error
	createdID  acumbamail.RemoteID
	createErr  error
	sendErr    error
	sendAltErr error
	sendToErr  error
	stats      map[string]any

	connLists int
	connErr   error

	createListErr error
	addErr        error
	nextID        int
	createdLists  []string

	calls  []string
	emails []acumbamail.Email
	drafts []acumbamail.CampaignDraft
}

func (f *FakeAcumbamail) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.panicOn == call {
		panic("unexpected payload from " + call)
	}
}

func (f *FakeAcumbamail) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *FakeAcumbamail) GetLists(ctx context.Context) ([]acumbamail.RemoteList, error) {
	f.record("GetLists")
	if f.enteredLists != nil {
		f.enteredLists <- struct{}{}
	}
	if f.blockLists != nil {
		<-f.blockLists
	}
	return f.lists, f.listsErr
}

func (f *FakeAcumbamail) CreateList(ctx context.Context, name, description string) (acumbamail.RemoteID, error) {
	f.record("CreateList")
	if f.createListErr != nil {
		return "", f.createListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdLists = append(f.createdLists, name)
	f.nextID++
	id := acumbamail.RemoteID(fmt.Sprintf("L%d", f.nextID))
	f.lists = append(f.lists, acumbamail.RemoteList{ID: id, Name: name, Description: description})
	return id, nil
}

func (f *FakeAcumbamail) GetSubscribers(ctx context.Context, listID string) ([]acumbamail.RemoteSubscriber, error) {
	f.record("GetSubscribers")
	if err := f.subscribersErr[listID]; err != nil {
		return nil, err
	}
	return f.subscribers[listID], nil
}

// AddSubscribers assigns ids the way the remote does, visible on the next GetSubscribers.
func (f *FakeAcumbamail) AddSubscribers(ctx context.Context, listID string, subs []acumbamail.RemoteSubscriber) error {
	f.record("AddSubscribers")
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribers == nil {
		f.subscribers = map[string][]acumbamail.RemoteSubscriber{}
	}
	for _, sub := range subs {
		f.nextID++
		sub.ID = acumbamail.RemoteID(fmt.Sprintf("S%d", f.nextID))
		f.subscribers[listID] = append(f.subscribers[listID], sub)
	}
	return nil
}

func (f *FakeAcumbamail) GetTemplates(ctx context.Context, page, pageSize int) ([]acumbamail.RemoteTemplate, error) {
	f.record("GetTemplates")
	if f.templatesErr != nil {
		return nil, f.templatesErr
	}
	start := (page - 1) * pageSize
	if start >= len(f.templates) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(f.templates) {
		end = len(f.templates)
	}
	return f.templates[start:end], nil
}

func (f *FakeAcumbamail) GetAllTemplates(ctx context.Context) ([]acumbamail.RemoteTemplate, error) {
	f.record("GetAllTemplates")
	return acumbamail.FetchAllTemplates(ctx, f)
}

func (f *FakeAcumbamail) GetTemplate(ctx context.Context, templateID string) (string, error) {
	f.record("GetTemplate")
	if err := f.bodyErr[templateID]; err != nil {
		return "", err
	}
	return f.bodies[templateID], nil
}

func (f *FakeAcumbamail) GetCampaigns(ctx context.Context) ([]acumbamail.RemoteCampaign, error) {
	f.record("GetCampaigns")
	return f.campaigns, f.campaignsErr
}

func (f *FakeAcumbamail) GetCampaignStats(ctx context.Context, campaignID string) (map[string]any, error) {
	f.record("GetCampaignStats")
	return f.stats, nil
}

func (f *FakeAcumbamail) CreateCampaign(ctx context.Context, draft acumbamail.CampaignDraft) (acumbamail.RemoteID, error) {
	f.record("CreateCampaign")
	f.mu.Lock()
	f.drafts = append(f.drafts, draft)
	f.mu.Unlock()
	return f.createdID, f.createErr
}

func (f *FakeAcumbamail) SendCampaign(ctx context.Context, id acumbamail.RemoteID) error {
	f.record("SendCampaign")
	return f.sendErr
}

func (f *FakeAcumbamail) SendCampaignAlt(ctx context.Context, id acumbamail.RemoteID) error {
	f.record("SendCampaignAlt")
	return f.sendAltErr
}

func (f *FakeAcumbamail) SendCampaignToList(ctx context.Context, id acumbamail.RemoteID, listID string) error {
	f.record("SendCampaignToList")
	return f.sendToErr
}

func (f *FakeAcumbamail) SendEmail(ctx context.Context, email acumbamail.Email) error {
	f.record("SendEmail")
	if err := f.emailErr[email.To]; err != nil {
		return err
	}
	f.mu.Lock()
	f.emails = append(f.emails, email)
	f.mu.Unlock()
	return nil
}

func (f *FakeAcumbamail) TestConnection(ctx context.Context) (int, error) {
	f.record("TestConnection")
	return f.connLists, f.connErr
}

var _ acumbamail.API = (*FakeAcumbamail)(nil)

// factoryFor hands out the same fake for every token and records the tokens seen.
func factoryFor(api *FakeAcumbamail, tokens *[]string) service.ClientFactory {
	return func(token string) acumbamail.API {
		if tokens != nil {
			*tokens = append(*tokens, token)
		}
		return api
	}
}

func strPtr(s string) *string { return &s }

func configuredUser(id int) *model.User {
	return &model.User{ID: id, Email: fmt.Sprintf("user%d@example.com", id), AcumbamailAuthToken: strPtr("tok-" + fmt.Sprint(id))}
}

var errBoom = errors.New("boom")
