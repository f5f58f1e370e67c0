package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/internal/agreements"
	"github.com/krishimitra/marketplace-backend/internal/auth"
	"github.com/krishimitra/marketplace-backend/internal/deals"
	"github.com/krishimitra/marketplace-backend/internal/history"
	"github.com/krishimitra/marketplace-backend/internal/realtime"
	pkgAuth "github.com/krishimitra/marketplace-backend/pkg/auth"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/metrics"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) RegisterFarmer(ctx context.Context, req auth.RegisterFarmerRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) RegisterDealer(ctx context.Context, req auth.RegisterDealerRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

type stubDealsService struct{}

func (stubDealsService) CreateDeal(ctx context.Context, input deals.CreateDealInput) (*models.Deal, error) {
	return &models.Deal{ID: uuid.New(), Status: enums.DealStatusNew}, nil
}

func (stubDealsService) Decide(ctx context.Context, input deals.DecisionInput) (*models.Deal, error) {
	return &models.Deal{ID: input.DealID}, nil
}

func (stubDealsService) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	return &models.Deal{ID: id}, nil
}

func (stubDealsService) ListOpenDeals(ctx context.Context, params pagination.Params, filters deals.OpenDealFilters) (*deals.DealList, error) {
	return &deals.DealList{Deals: []models.Deal{{Crop: "Wheat"}}}, nil
}

func (stubDealsService) ListFarmerDeals(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*deals.DealList, error) {
	return &deals.DealList{}, nil
}

type stubHistoryService struct{}

func (stubHistoryService) DealerHistory(ctx context.Context, dealerUID uuid.UUID, params pagination.Params) (*history.HistoryList, error) {
	return &history.HistoryList{}, nil
}

func (stubHistoryService) FarmerHistory(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*deals.DealList, error) {
	return &deals.DealList{}, nil
}

type stubAgreementsService struct{}

func (stubAgreementsService) Snapshot(ctx context.Context, dealID uuid.UUID) (*agreements.AgreementSnapshot, error) {
	return &agreements.AgreementSnapshot{DealID: dealID}, nil
}

func (stubAgreementsService) RequestRender(ctx context.Context, dealID uuid.UUID) (*agreements.RenderReceipt, error) {
	return &agreements.RenderReceipt{DealID: dealID}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "krishimitra-test",
			ExpirationMinutes: 15,
		},
		Realtime: config.RealtimeConfig{
			DealsChannel:     "km:deals:changed",
			KeepAliveSeconds: 25,
			SnapshotLimit:    50,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	return NewRouter(
		cfg,
		nil,
		stubPinger{},
		nil,
		stubPinger{},
		stubAuthService{},
		stubDealsService{},
		stubHistoryService{},
		stubAgreementsService{},
		realtime.NewHub(metrics.NewDealMetrics(nil), nil),
		metrics.NewDealMetrics(nil),
		nil,
	)
}

func bearerFor(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      uuid.New(),
		Role:        role,
		DisplayName: "Test Actor",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testRouterConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-KrishiMitra-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := newTestRouter(testRouterConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dealer/deals", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDealerRouteBlocksFarmer(t *testing.T) {
	cfg := testRouterConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dealer/deals", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.ActorRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestDealerCanListOpenDeals(t *testing.T) {
	cfg := testRouterConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dealer/deals", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.ActorRoleDealer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data deals.DealList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Deals) != 1 || envelope.Data.Deals[0].Crop != "Wheat" {
		t.Fatalf("unexpected deals payload")
	}
}

func TestFarmerCanCreateDeal(t *testing.T) {
	cfg := testRouterConfig()
	router := newTestRouter(cfg)
	body := `{"location":"Pune","crop":"Wheat","quantity":"80 qtl","askPrice":"₹2,600/qtl","harvestDate":"10 Mar 2026","transportDate":"12 Mar 2026"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/farmer/deals", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.ActorRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLoginRouteIsPublic(t *testing.T) {
	router := newTestRouter(testRouterConfig())
	body := `{"phone":"9876543210","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
