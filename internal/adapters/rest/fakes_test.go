package rest

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeVerifier принимает токены из карты.
type fakeVerifier map[string]*domain.Principal

func (v fakeVerifier) VerifyToken(_ context.Context, token string) (*domain.Principal, error) {
	if p, ok := v[token]; ok {
		return p, nil
	}
	return nil, domain.Errorf(domain.ErrTokenInvalid, "invalid token")
}

var testVerifier = fakeVerifier{
	"user-token":  {UID: "u1", Email: "buyer@x.io"},
	"admin-token": {UID: "a1", Email: "admin@x.io"},
}

type fakeRoleUC map[string]domain.Role

func (f fakeRoleUC) Execute(_ context.Context, email string) (domain.Role, error) {
	if role, ok := f[email]; ok {
		return role, nil
	}
	return "", domain.Errorf(domain.ErrNotFound, "User not found")
}

var testRoles = fakeRoleUC{"buyer@x.io": domain.RoleUser, "admin@x.io": domain.RoleAdmin}

type fakeSubmitOfferUC struct {
	got domain.OfferSubmission
	err error
}

func (f *fakeSubmitOfferUC) Execute(_ context.Context, s domain.OfferSubmission) (*domain.Offer, error) {
	f.got = s
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Offer{ID: "o-1", PropertyID: s.PropertyID, BuyerEmail: s.BuyerEmail, OfferAmount: s.OfferAmount, Status: domain.OfferPending}, nil
}

type fakeAcceptOfferUC struct{ plan *domain.AcceptPlan }

func (f fakeAcceptOfferUC) Execute(_ context.Context, id string) (*domain.AcceptPlan, error) {
	if f.plan == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "Offer not found")
	}
	return f.plan, nil
}

type fakeIntentUC struct{ calls int }

func (f *fakeIntentUC) Execute(_ context.Context, amount int64) (*domain.PaymentIntent, error) {
	f.calls++
	return &domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: "usd"}, nil
}

type fakeRecordPaymentUC struct{ got domain.PaymentRecord }

func (f *fakeRecordPaymentUC) Execute(_ context.Context, r domain.PaymentRecord) (string, error) {
	f.got = r
	return "pay-1", nil
}

type fakeFraudUC struct {
	result *domain.FraudMarkResult
	err    error
}

func (f fakeFraudUC) Execute(_ context.Context, _ string) (*domain.FraudMarkResult, error) {
	return f.result, f.err
}

type fakeSetRoleUC struct{ calls int }

func (f *fakeSetRoleUC) Execute(_ context.Context, _ string, _ domain.Role) (domain.UpdateResult, error) {
	f.calls++
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

type fakeStatusUC struct{ got domain.PropertyStatus }

func (f *fakeStatusUC) Execute(_ context.Context, _ string, target domain.PropertyStatus) error {
	f.got = target
	if !target.IsModerationTarget() {
		return domain.Errorf(domain.ErrInvalidArgument, "Invalid status")
	}
	return nil
}

type fakeCreatePropertyUC struct{ got domain.Property }

func (f *fakeCreatePropertyUC) Execute(_ context.Context, p domain.Property) (string, error) {
	f.got = p
	return "prop-1", nil
}

type fakeListPropertiesUC struct{ got domain.PropertyFilter }

func (f *fakeListPropertiesUC) Execute(_ context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	f.got = filter
	return []domain.Property{{ID: "p1", Title: "Flat", Status: domain.PropertyVerified}}, nil
}

// testDeps - обработчики с фейковыми use case; незаданные поля остаются nil.
type testDeps struct {
	submit      *fakeSubmitOfferUC
	accept      fakeAcceptOfferUC
	intent      *fakeIntentUC
	record      *fakeRecordPaymentUC
	fraud       fakeFraudUC
	setRole     *fakeSetRoleUC
	status      *fakeStatusUC
	create      *fakeCreatePropertyUC
	list        *fakeListPropertiesUC
	subscriber  OfferEventsSubscriber
	enforceRole bool
}

func newTestRouter(t *testing.T, d testDeps) http.Handler {
	t.Helper()
	if d.submit == nil {
		d.submit = &fakeSubmitOfferUC{}
	}
	if d.intent == nil {
		d.intent = &fakeIntentUC{}
	}
	if d.record == nil {
		d.record = &fakeRecordPaymentUC{}
	}
	if d.setRole == nil {
		d.setRole = &fakeSetRoleUC{}
	}
	if d.status == nil {
		d.status = &fakeStatusUC{}
	}
	if d.create == nil {
		d.create = &fakeCreatePropertyUC{}
	}
	if d.list == nil {
		d.list = &fakeListPropertiesUC{}
	}

	handlers := Handlers{
		Users: NewUserHandler(nil, testRoles, nil, d.setRole, d.fraud, nil),
		Properties: NewPropertyHandler(PropertyUseCases{
			Create:       d.create,
			List:         d.list,
			ChangeStatus: d.status,
		}),
		Offers: NewOfferHandler(OfferUseCases{
			Submit: d.submit,
			Accept: d.accept,
		}, d.subscriber),
		Payments: NewPaymentHandler(d.intent, d.record, nil),
		Wishlist: NewWishlistHandler(nil, nil, nil),
		Reviews:  NewReviewHandler(nil, nil, nil, nil),
	}

	cfg := ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}, EnforceAdminRole: d.enforceRole}
	return NewRouter(cfg, handlers, testVerifier, testRoles, contextkeys.LoggerFromContext(context.Background()))
}

func doRequest(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
