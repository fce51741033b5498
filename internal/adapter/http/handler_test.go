package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	adapter "github.com/neomorfeo/habitta/internal/adapter/http"
	"github.com/neomorfeo/habitta/internal/adapter/auth"
	"github.com/neomorfeo/habitta/internal/adapter/fsm"
	"github.com/neomorfeo/habitta/internal/adapter/sqlite"
	"github.com/neomorfeo/habitta/internal/app"
	"github.com/neomorfeo/habitta/internal/config"
	"github.com/neomorfeo/habitta/internal/domain"
	"github.com/neomorfeo/habitta/internal/logger"
)

const (
	renterID   = "0b6f3c1e-2a41-4c7e-9d35-6f1a2b3c4d01"
	renter2ID  = "0b6f3c1e-2a41-4c7e-9d35-6f1a2b3c4d02"
	ownerID    = "0b6f3c1e-2a41-4c7e-9d35-6f1a2b3c4d03"
	adminID    = "0b6f3c1e-2a41-4c7e-9d35-6f1a2b3c4d04"
	strangerID = "0b6f3c1e-2a41-4c7e-9d35-6f1a2b3c4d05"
	propertyID = "7c2e9a40-5b1d-4f6e-8a3c-1d2e3f4a5b01"
	missingID  = "7c2e9a40-5b1d-4f6e-8a3c-1d2e3f4a5bff"
)

// inboxNotifier delivers notifications straight into the store's inbox.
type inboxNotifier struct {
	store *sqlite.Store
}

func (n *inboxNotifier) Notify(ctx context.Context, note domain.Notification) error {
	return n.store.Notifications().Create(ctx, note)
}

type testServer struct {
	*httptest.Server
	tokens map[string]string
}

// newTestServer creates a full-stack httptest.Server with SQLite in-memory,
// seeded with users of every role and one property.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	users := []domain.User{
		{ID: renterID, Name: "Laura", Email: "laura@example.com", Role: domain.RoleUser, CreatedAt: now},
		{ID: renter2ID, Name: "Mateo", Email: "mateo@example.com", Role: domain.RoleUser, CreatedAt: now},
		{ID: ownerID, Name: "Oscar", Email: "oscar@example.com", Role: domain.RoleOwner, CreatedAt: now},
		{ID: adminID, Name: "Ana", Email: "ana@example.com", Role: domain.RoleAdmin, CreatedAt: now},
		{ID: strangerID, Name: "Sara", Email: "sara@example.com", Role: domain.RoleUser, CreatedAt: now},
	}
	for _, u := range users {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("seeding user: %v", err)
		}
	}
	err = store.CreateProperty(ctx, domain.Property{
		ID:        propertyID,
		OwnerID:   ownerID,
		Title:     "Loft in Chapinero",
		Address:   "Calle 60 #7-20",
		Price:     2500000,
		Images:    []string{"https://img.example.com/front.jpg", "https://img.example.com/kitchen.jpg"},
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding property: %v", err)
	}

	tokens, err := auth.NewTokens(config.AuthConfig{JWTSecret: "test-secret-0123456789", Issuer: "habitta", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("creating tokens: %v", err)
	}
	minted := map[string]string{}
	for _, u := range users {
		tok, err := tokens.Mint(domain.Actor{ID: u.ID, Role: u.Role}, time.Now())
		if err != nil {
			t.Fatalf("minting token: %v", err)
		}
		minted[u.ID] = tok
	}

	svc := adapter.Services{
		Applications: app.NewApplicationService(store, fsm.New(), &inboxNotifier{store: store}, app.Options{AtomicEffects: true}),
		Reviews:      app.NewReviewService(store),
		Inbox:        app.NewInboxService(store),
	}

	log := logger.Nop()
	router := adapter.NewRouter("habitta-test", log)
	api := humachi.New(router, adapter.APIConfig("habitta", "0.1.0"))
	adapter.Register(api, svc, tokens, log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, tokens: minted}
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

// call performs a request as userID, checks the status and decodes the body into out.
func (s *testServer) call(t *testing.T, userID, method, path, body string, wantStatus int, out any) {
	t.Helper()

	resp := doRequest(t, method, s.URL+path, s.tokens[userID], body)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d (body %s)", method, path, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
}

func (s *testServer) mustApply(t *testing.T, userID string) adapter.ApplicationResponse {
	t.Helper()

	var env adapter.ApplicationEnvelope
	s.call(t, userID, http.MethodPost, "/api/applications", fmt.Sprintf(`{"id_property":%q}`, propertyID), http.StatusCreated, &env)
	return env.Data
}

func (s *testServer) move(t *testing.T, userID, appID string, status domain.Status) adapter.ApplicationEnvelope {
	t.Helper()

	var env adapter.ApplicationEnvelope
	s.call(t, userID, http.MethodPut, "/api/applications/"+appID, fmt.Sprintf(`{"status":%q}`, status), http.StatusOK, &env)
	return env
}

func decodeError(t *testing.T, resp *http.Response) adapter.ErrorResponse {
	t.Helper()

	var body adapter.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

// --- Create ---

func TestCreateApplication(t *testing.T) {
	srv := newTestServer(t)

	var env adapter.ApplicationEnvelope
	srv.call(t, renterID, http.MethodPost, "/api/applications",
		fmt.Sprintf(`{"id_property":%q,"description":"Quiet, no pets"}`, propertyID), http.StatusCreated, &env)

	a := env.Data
	if !env.Success {
		t.Error("success should be true")
	}
	if a.ID == "" {
		t.Error("ID should not be empty")
	}
	if a.Status != "pending" {
		t.Errorf("Status = %q, want %q", a.Status, "pending")
	}
	if a.Description == nil || *a.Description != "Quiet, no pets" {
		t.Errorf("Description = %v, want %q", a.Description, "Quiet, no pets")
	}
	if a.Renter.Name != "Laura" {
		t.Errorf("Renter.Name = %q, want %q", a.Renter.Name, "Laura")
	}
	if a.Property.Image != "https://img.example.com/front.jpg" {
		t.Errorf("Property.Image = %q, want first image", a.Property.Image)
	}
	if a.RentAmount != nil || a.StartDate != nil {
		t.Error("contract terms should be empty before signing")
	}

	var inbox adapter.NotificationListEnvelope
	srv.call(t, ownerID, http.MethodGet, "/api/notifications", "", http.StatusOK, &inbox)
	if len(inbox.Data) != 1 || inbox.Data[0].Kind != "new_application" {
		t.Errorf("owner inbox = %+v, want one new_application", inbox.Data)
	}
}

func TestCreateApplication_Duplicate(t *testing.T) {
	srv := newTestServer(t)
	srv.mustApply(t, renterID)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/applications", srv.tokens[renterID], fmt.Sprintf(`{"id_property":%q}`, propertyID))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	body := decodeError(t, resp)
	if body.Success {
		t.Error("success should be false")
	}
	if body.Message == "" {
		t.Error("message should not be empty")
	}
}

func TestCreateApplication_UnknownProperty(t *testing.T) {
	srv := newTestServer(t)
	srv.call(t, renterID, http.MethodPost, "/api/applications", fmt.Sprintf(`{"id_property":%q}`, missingID), http.StatusNotFound, nil)
}

func TestCreateApplication_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	tests := map[string]string{
		"malformed property id": `{"id_property":"not-a-uuid"}`,
		"missing property id":   `{}`,
		"description too long":  fmt.Sprintf(`{"id_property":%q,"description":%q}`, propertyID, strings.Repeat("x", 151)),
		"unknown field":         fmt.Sprintf(`{"id_property":%q,"status":"signed"}`, propertyID),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, srv.URL+"/api/applications", srv.tokens[renterID], body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
			if got := decodeError(t, resp); got.Success || len(got.Errors) == 0 {
				t.Errorf("error body = %+v, want success=false with details", got)
			}
		})
	}
}

// --- Auth ---

func TestAuth_MissingToken(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/applications/my", "", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if body := decodeError(t, resp); body.Message != "authentication required" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/applications/my", "not.a.jwt", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

// --- Lifecycle ---

func TestLifecycle_SignAndTerminate(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	env := srv.move(t, ownerID, a.ID, domain.StatusDocumentsRequired)
	if env.Message != domain.StatusMessage(domain.StatusDocumentsRequired) {
		t.Errorf("message = %q", env.Message)
	}
	srv.move(t, ownerID, a.ID, domain.StatusPreApproved)
	srv.move(t, renterID, a.ID, domain.StatusApproved)

	signed := srv.move(t, ownerID, a.ID, domain.StatusSigned).Data
	if signed.Status != "signed" {
		t.Fatalf("Status = %q, want signed", signed.Status)
	}
	if signed.RentAmount == nil || *signed.RentAmount != 2500000 {
		t.Errorf("RentAmount = %v, want 2500000", signed.RentAmount)
	}
	if signed.PaymentFrequency == nil || *signed.PaymentFrequency != "monthly" {
		t.Errorf("PaymentFrequency = %v, want monthly", signed.PaymentFrequency)
	}
	if signed.StartDate == nil || signed.EndDate == nil {
		t.Error("contract dates should be set after signing")
	}
	if signed.Version != 5 {
		t.Errorf("Version = %d, want 5", signed.Version)
	}

	var payments adapter.PaymentListEnvelope
	srv.call(t, renterID, http.MethodGet, "/api/applications/"+a.ID+"/payments", "", http.StatusOK, &payments)
	if len(payments.Data) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments.Data))
	}
	p := payments.Data[0]
	if p.Amount != 2500000 || p.PayerID != renterID || p.ReceiverID != ownerID {
		t.Errorf("payment = %+v", p)
	}
	if !strings.HasPrefix(p.ReferenceCode, "RENT-") {
		t.Errorf("ReferenceCode = %q, want RENT- prefix", p.ReferenceCode)
	}

	srv.move(t, renterID, a.ID, domain.StatusTerminated)

	var reviews adapter.ReviewListEnvelope
	srv.call(t, ownerID, http.MethodGet, "/api/applications/"+a.ID+"/reviews", "", http.StatusOK, &reviews)
	if len(reviews.Data) != 2 {
		t.Fatalf("reviews = %d, want 2", len(reviews.Data))
	}
	for _, r := range reviews.Data {
		if r.ContextType != "normal" || r.Status != "pending" || r.Rating != nil {
			t.Errorf("review = %+v, want pending normal review", r)
		}
	}

	var inbox adapter.NotificationListEnvelope
	srv.call(t, renterID, http.MethodGet, "/api/notifications", "", http.StatusOK, &inbox)
	if len(inbox.Data) == 0 {
		t.Fatal("renter inbox should not be empty")
	}
	if inbox.Data[0].Kind != "contract_terminated" {
		t.Errorf("latest kind = %q, want contract_terminated", inbox.Data[0].Kind)
	}
}

func TestUpdate_IllegalTransition(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/applications/"+a.ID, srv.tokens[ownerID], `{"status":"signed"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if body := decodeError(t, resp); !strings.Contains(body.Message, "signed") {
		t.Errorf("message = %q, want it to name the requested status", body.Message)
	}
}

func TestUpdate_RenterCannotPreApprove(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)
	srv.move(t, ownerID, a.ID, domain.StatusDocumentsRequired)

	srv.call(t, renterID, http.MethodPut, "/api/applications/"+a.ID, `{"status":"pre_approved"}`, http.StatusBadRequest, nil)
}

func TestUpdate_UnknownStatus(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	srv.call(t, ownerID, http.MethodPut, "/api/applications/"+a.ID, `{"status":"archived"}`, http.StatusBadRequest, nil)
}

func TestUpdate_DescriptionOnly(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	var env adapter.ApplicationEnvelope
	srv.call(t, renterID, http.MethodPut, "/api/applications/"+a.ID, `{"description":"Updated note"}`, http.StatusOK, &env)
	if env.Data.Status != "pending" {
		t.Errorf("Status = %q, want pending", env.Data.Status)
	}
	if env.Data.Description == nil || *env.Data.Description != "Updated note" {
		t.Errorf("Description = %v, want %q", env.Data.Description, "Updated note")
	}
}

func TestUpdate_ClearDescription(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	var env adapter.ApplicationEnvelope
	srv.call(t, renterID, http.MethodPut, "/api/applications/"+a.ID, `{"description":"Moving in March"}`, http.StatusOK, &env)
	if env.Data.Description == nil {
		t.Fatal("Description not stored")
	}

	env = adapter.ApplicationEnvelope{}
	srv.call(t, renterID, http.MethodPut, "/api/applications/"+a.ID, `{"description":""}`, http.StatusOK, &env)
	if env.Data.Description != nil {
		t.Errorf("Description = %q, want cleared", *env.Data.Description)
	}
	if env.Data.Status != "pending" {
		t.Errorf("Status = %q, want pending", env.Data.Status)
	}
}

func TestUpdate_Stranger(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	srv.call(t, strangerID, http.MethodPut, "/api/applications/"+a.ID, `{"status":"rejected"}`, http.StatusForbidden, nil)
}

// --- Get ---

func TestGetApplication(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	for _, who := range []string{renterID, ownerID, adminID} {
		var env adapter.ApplicationEnvelope
		srv.call(t, who, http.MethodGet, "/api/applications/"+a.ID, "", http.StatusOK, &env)
		if env.Data.ID != a.ID {
			t.Errorf("ID = %q, want %q", env.Data.ID, a.ID)
		}
	}
	srv.call(t, strangerID, http.MethodGet, "/api/applications/"+a.ID, "", http.StatusForbidden, nil)
}

func TestGetApplication_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/applications/"+missingID, srv.tokens[adminID], "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if body := decodeError(t, resp); body.Message != "application not found" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestGetApplication_MalformedID(t *testing.T) {
	srv := newTestServer(t)
	srv.call(t, adminID, http.MethodGet, "/api/applications/abc", "", http.StatusBadRequest, nil)
}

// --- List ---

func TestListMineAndOwner(t *testing.T) {
	srv := newTestServer(t)
	srv.mustApply(t, renterID)
	srv.mustApply(t, renter2ID)

	var mine adapter.ApplicationListEnvelope
	srv.call(t, renterID, http.MethodGet, "/api/applications/my", "", http.StatusOK, &mine)
	if mine.Count != 1 || mine.Data[0].RenterID != renterID {
		t.Errorf("my = %+v, want one application of the caller", mine)
	}

	var owned adapter.ApplicationListEnvelope
	srv.call(t, ownerID, http.MethodGet, "/api/applications/my-owner", "", http.StatusOK, &owned)
	if owned.Count != 2 {
		t.Errorf("my-owner count = %d, want 2", owned.Count)
	}
}

func TestListAll(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)
	srv.mustApply(t, renter2ID)
	srv.move(t, ownerID, a.ID, domain.StatusRejected)

	srv.call(t, ownerID, http.MethodGet, "/api/applications", "", http.StatusForbidden, nil)

	var all adapter.ApplicationListEnvelope
	srv.call(t, adminID, http.MethodGet, "/api/applications", "", http.StatusOK, &all)
	if all.Count != 2 {
		t.Errorf("count = %d, want 2", all.Count)
	}

	var rejected adapter.ApplicationListEnvelope
	srv.call(t, adminID, http.MethodGet, "/api/applications?status=rejected", "", http.StatusOK, &rejected)
	if rejected.Count != 1 || rejected.Data[0].ID != a.ID {
		t.Errorf("rejected = %+v, want only %s", rejected.Data, a.ID)
	}

	srv.call(t, adminID, http.MethodGet, "/api/applications?status=archived", "", http.StatusBadRequest, nil)
}

func TestListForProperty(t *testing.T) {
	srv := newTestServer(t)
	srv.mustApply(t, renterID)

	var env adapter.ApplicationListEnvelope
	srv.call(t, ownerID, http.MethodGet, "/api/applications/property/"+propertyID, "", http.StatusOK, &env)
	if env.Count != 1 {
		t.Errorf("count = %d, want 1", env.Count)
	}

	srv.call(t, renterID, http.MethodGet, "/api/applications/property/"+propertyID, "", http.StatusForbidden, nil)
	srv.call(t, ownerID, http.MethodGet, "/api/applications/property/"+missingID, "", http.StatusNotFound, nil)
}

// --- Delete ---

func TestDeleteApplication(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)

	srv.call(t, ownerID, http.MethodDelete, "/api/applications/"+a.ID, "", http.StatusForbidden, nil)

	var env adapter.MessageEnvelope
	srv.call(t, renterID, http.MethodDelete, "/api/applications/"+a.ID, "", http.StatusOK, &env)
	if !env.Success {
		t.Error("success should be true")
	}

	srv.call(t, renterID, http.MethodGet, "/api/applications/"+a.ID, "", http.StatusNotFound, nil)
}

func TestDeleteApplication_SignedWithPayments(t *testing.T) {
	srv := newTestServer(t)
	a := srv.mustApply(t, renterID)
	srv.move(t, ownerID, a.ID, domain.StatusDocumentsRequired)
	srv.move(t, ownerID, a.ID, domain.StatusPreApproved)
	srv.move(t, renterID, a.ID, domain.StatusApproved)
	srv.move(t, ownerID, a.ID, domain.StatusSigned)

	srv.call(t, adminID, http.MethodDelete, "/api/applications/"+a.ID, "", http.StatusConflict, nil)
}

// --- Reviews ---

func TestReviewSummary(t *testing.T) {
	srv := newTestServer(t)

	var env adapter.ReviewSummaryEnvelope
	srv.call(t, strangerID, http.MethodGet, "/api/users/"+ownerID+"/review-summary", "", http.StatusOK, &env)
	if env.Data.UserID != ownerID || env.Data.TotalReviews != 0 {
		t.Errorf("summary = %+v, want empty summary for owner", env.Data)
	}

	srv.call(t, strangerID, http.MethodGet, "/api/users/"+missingID+"/review-summary", "", http.StatusNotFound, nil)
}

// --- OpenAPI ---

func TestAPIConfig_InstallsErrorEnvelope(t *testing.T) {
	router := adapter.NewRouter("habitta-test", logger.Nop())
	api := humachi.New(router, adapter.APIConfig("habitta", "0.1.0"))

	huma.Register(api, huma.Operation{
		OperationID: "missing-thing",
		Method:      http.MethodGet,
		Path:        "/things/{id}",
	}, func(_ context.Context, _ *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		return nil, huma.Error404NotFound("thing not found")
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp := doRequest(t, http.MethodGet, srv.URL+"/things/1", "", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	body := decodeError(t, resp)
	if body.Success || body.Message != "thing not found" {
		t.Errorf("body = %+v, want success=false with the handler message", body)
	}
}

func TestOpenAPI_DeclaresBearerScheme(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/openapi.json", "", "")
	defer resp.Body.Close()

	var doc struct {
		Components struct {
			SecuritySchemes map[string]struct {
				Scheme string `json:"scheme"`
			} `json:"securitySchemes"`
		} `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode openapi: %v", err)
	}
	if doc.Components.SecuritySchemes["bearer"].Scheme != "bearer" {
		t.Errorf("securitySchemes = %+v, want bearer", doc.Components.SecuritySchemes)
	}
}
