package acumbamail_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
}

// fakeAcumbamail serves canned responses per endpoint path and records every call.
type fakeAcumbamail struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeAcumbamail(t *testing.T) (*fakeAcumbamail, *acumbamail.Client) {
	t.Helper()
	f := &fakeAcumbamail{routes: map[string]func(w http.ResponseWriter, r *http.Request){}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, acumbamail.NewClient("secret-token-123", acumbamail.WithBaseURL(srv.URL))
}

func (f *fakeAcumbamail) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Form:   form,
		Header: r.Header.Clone(),
	})
	handler := f.routes[r.URL.Path]
	f.mu.Unlock()

	if handler == nil {
		http.Error(w, "unknown endpoint", http.StatusNotFound)
		return
	}
	handler(w, r)
}

func (f *fakeAcumbamail) handle(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func (f *fakeAcumbamail) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func TestRequest_GetCarriesTokenInQuery(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getLists/", http.StatusOK, `{}`)

	_, err := client.Request(context.Background(), "getLists", http.MethodGet, nil)
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "secret-token-123", req.Query.Get("auth_token"))
}

func TestRequest_PostCarriesTokenAndNestedParamsInForm(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/createCampaign/", http.StatusOK, `123`)

	_, err := client.Request(context.Background(), "createCampaign", http.MethodPost, acumbamail.Params{
		"lists": map[int]string{0: "L1"},
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "secret-token-123", req.Form.Get("auth_token"))
	assert.Equal(t, "L1", req.Form.Get("lists[0]"))
	assert.Empty(t, req.Query.Get("auth_token"))
}

func TestRequest_Non2xxIsTransportErrorWithBody(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/send/", http.StatusBadRequest, `SMTP is not active`)

	_, err := client.Request(context.Background(), "send", http.MethodPost, acumbamail.Params{"campaign_id": "1"})
	require.Error(t, err)

	var te *acumbamail.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Equal(t, "SMTP is not active", te.Body)
	assert.True(t, acumbamail.IsRelayInactive(err))
}

func TestRequest_UnparsableBodyIsTransportError(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getLists/", http.StatusOK, `<html>maintenance</html>`)

	_, err := client.Request(context.Background(), "getLists", http.MethodGet, nil)

	var te *acumbamail.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusOK, te.StatusCode)
	assert.Error(t, te.Err)
}

func TestRequest_NetworkFailureIsTransportError(t *testing.T) {
	client := acumbamail.NewClient("tok", acumbamail.WithBaseURL("http://127.0.0.1:1"))

	_, err := client.Request(context.Background(), "getLists", http.MethodGet, nil)

	var te *acumbamail.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestGetLists_KeepsDiscoveryOrder(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getLists/", http.StatusOK, `{
		"9": {"name": "Newsletter", "description": "Weekly"},
		"3": {"name": "Customers"},
		"12": {"name": "Partners", "description": ""}
	}`)

	lists, err := client.GetLists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 3)

	assert.Equal(t, acumbamail.RemoteID("9"), lists[0].ID)
	assert.Equal(t, "Newsletter", lists[0].Name)
	assert.Equal(t, "Weekly", lists[0].Description)
	assert.Equal(t, acumbamail.RemoteID("3"), lists[1].ID)
	assert.Equal(t, acumbamail.RemoteID("12"), lists[2].ID)
}

func TestGetSubscribers_DefaultsStatus(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getSubscribers/", http.StatusOK, `{
		"501": {"email": "a@example.com", "first_name": "Ann", "status": "unsubscribed"},
		"502": {"email": "b@example.com"}
	}`)

	subs, err := client.GetSubscribers(context.Background(), "9")
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "9", fake.last().Query.Get("list_id"))
	assert.Equal(t, acumbamail.RemoteID("501"), subs[0].ID)
	assert.Equal(t, "Ann", subs[0].FirstName)
	assert.Equal(t, "unsubscribed", subs[0].Status)
	assert.Equal(t, "active", subs[1].Status)
}

func TestGetTemplates_OnlyLiteralTrueIsAvailable(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getTemplates/", http.StatusOK, `[
		{"id": 1, "name": "A", "available": true},
		{"id": "2", "name": "B", "available": false},
		{"id": 3, "name": "C", "available": "yes"}
	]`)

	templates, err := client.GetTemplates(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, templates, 3)

	req := fake.last()
	assert.Equal(t, "1", req.Query.Get("page"))
	assert.Equal(t, "100", req.Query.Get("page_size"))
	assert.True(t, templates[0].Available)
	assert.Equal(t, acumbamail.RemoteID("2"), templates[1].ID)
	assert.False(t, templates[1].Available)
	assert.False(t, templates[2].Available)
}

func TestGetTemplate_FallsBackToContent(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getTemplate/", http.StatusOK, `{"content": "<p>hi</p>"}`)

	body, err := client.GetTemplate(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", body)
	assert.Equal(t, "7", fake.last().Query.Get("template_id"))
}

func TestGetCampaigns_ExtractsSingleKeyMaps(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getCampaigns/", http.StatusOK, `[
		{"1001": "Spring sale"},
		{"1002": "Summer sale"},
		{},
		{"id": 1003, "name": "Autumn", "status": "sent"}
	]`)

	campaigns, err := client.GetCampaigns(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []acumbamail.RemoteCampaign{
		{ID: "1001", Name: "Spring sale"},
		{ID: "1002", Name: "Summer sale"},
		{ID: "1003", Name: "Autumn"},
	}, campaigns)
}

func TestCreateCampaign_SendsSingleListAndSender(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/createCampaign/", http.StatusOK, `4711`)

	id, err := client.CreateCampaign(context.Background(), acumbamail.CampaignDraft{
		Name:    "Spring",
		Subject: "Hello",
		HTML:    "<p>x</p>",
		ListID:  "9",
		Sender:  acumbamail.Sender{Name: "Shop", Email: "shop@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, acumbamail.RemoteID("4711"), id)

	form := fake.last().Form
	assert.Equal(t, "9", form.Get("lists[0]"))
	assert.Equal(t, "<p>x</p>", form.Get("content"))
	assert.Equal(t, "Shop", form.Get("from_name"))
	assert.Equal(t, "shop@example.com", form.Get("from_email"))
}

func TestSendCampaignToList_AddsListParameter(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/sendCampaign/", http.StatusOK, `"ok"`)

	require.NoError(t, client.SendCampaignToList(context.Background(), "4711", "9"))

	form := fake.last().Form
	assert.Equal(t, "4711", form.Get("campaign_id"))
	assert.Equal(t, "9", form.Get("list_id"))
}

func TestTestConnection_CountsLists(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getLists/", http.StatusOK, `{"1": {"name": "A"}, "2": {"name": "B"}}`)

	n, err := client.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreateList_ReturnsWrappedID(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/createList/", http.StatusOK, `{"list_id": 88}`)

	id, err := client.CreateList(context.Background(), "VIP", "")
	require.NoError(t, err)
	assert.Equal(t, acumbamail.RemoteID("88"), id)

	form := fake.last().Form
	assert.Equal(t, "VIP", form.Get("name"))
	_, hasDescription := form["description"]
	assert.False(t, hasDescription)
}

func TestAddSubscribers_SendsIndexedSubscriberFields(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/addSubscribers/", http.StatusOK, `{"added": 2}`)

	err := client.AddSubscribers(context.Background(), "9", []acumbamail.RemoteSubscriber{
		{Email: "a@example.com", FirstName: "Ann"},
		{Email: "b@example.com", LastName: "Bee"},
	})
	require.NoError(t, err)

	form := fake.last().Form
	assert.Equal(t, "9", form.Get("list_id"))
	assert.Equal(t, "a@example.com", form.Get("subscribers[0][email]"))
	assert.Equal(t, "Ann", form.Get("subscribers[0][first_name]"))
	assert.Empty(t, form.Get("subscribers[0][last_name]"))
	assert.Equal(t, "b@example.com", form.Get("subscribers[1][email]"))
	assert.Equal(t, "Bee", form.Get("subscribers[1][last_name]"))
}

func TestGetCampaigns_ScalarPayloadIsError(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getCampaigns/", http.StatusOK, `"Invalid auth token"`)

	campaigns, err := client.GetCampaigns(context.Background())
	assert.ErrorContains(t, err, "unexpected payload")
	assert.Nil(t, campaigns)
}

func TestGetSubscribers_ArrayWithoutIDsKeepsEmptyIDs(t *testing.T) {
	fake, client := newFakeAcumbamail(t)
	fake.handle("/getSubscribers/", http.StatusOK, `[{"email": "a@x.com"}, {"email": "b@x.com"}]`)

	subs, err := client.GetSubscribers(context.Background(), "9")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Empty(t, subs[0].ID)
	assert.Empty(t, subs[1].ID)
}
