package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	agentsvc "github.com/greenbasket/greenbasket-backend/internal/agents"
	areasvc "github.com/greenbasket/greenbasket-backend/internal/areas"
	authsvc "github.com/greenbasket/greenbasket-backend/internal/auth"
	cartsvc "github.com/greenbasket/greenbasket-backend/internal/cart"
	fulfillmentsvc "github.com/greenbasket/greenbasket-backend/internal/fulfillment"
	notificationsvc "github.com/greenbasket/greenbasket-backend/internal/notifications"
	orderssvc "github.com/greenbasket/greenbasket-backend/internal/orders"
	productsvc "github.com/greenbasket/greenbasket-backend/internal/products"
	userssvc "github.com/greenbasket/greenbasket-backend/internal/users"
	pkgauth "github.com/greenbasket/greenbasket-backend/pkg/auth"
	"github.com/greenbasket/greenbasket-backend/pkg/auth/session"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
	pkgredis "github.com/greenbasket/greenbasket-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) AdminLogin(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.TokenPair, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	panic("unimplemented")
}

type stubUsersService struct{}

func (stubUsersService) Profile(ctx context.Context, userID uuid.UUID) (*userssvc.UserDTO, error) {
	return &userssvc.UserDTO{ID: userID, Email: "shopper@example.com"}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, dto userssvc.UpdateProfileDTO) (*userssvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	panic("unimplemented")
}

type stubProductsService struct{}

func (stubProductsService) Create(ctx context.Context, input productsvc.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) List(ctx context.Context, filters productsvc.ListFilters) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubProductsService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error) {
	return &cartsvc.CartView{}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.CartView, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.CartView, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.CartView, error) {
	panic("unimplemented")
}

type stubAreasService struct{}

func (stubAreasService) Create(ctx context.Context, input areasvc.CreateAreaInput) (*models.ServiceableArea, error) {
	panic("unimplemented")
}

func (stubAreasService) Get(ctx context.Context, id uuid.UUID) (*models.ServiceableArea, error) {
	panic("unimplemented")
}

func (stubAreasService) List(ctx context.Context, includeInactive bool) ([]models.ServiceableArea, error) {
	return []models.ServiceableArea{}, nil
}

func (stubAreasService) Update(ctx context.Context, id uuid.UUID, input areasvc.UpdateAreaInput) (*models.ServiceableArea, error) {
	panic("unimplemented")
}

func (stubAreasService) AssignAgent(ctx context.Context, areaID, agentID uuid.UUID) error {
	panic("unimplemented")
}

func (stubAreasService) UnassignAgent(ctx context.Context, areaID, agentID uuid.UUID) error {
	panic("unimplemented")
}

func (stubAreasService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubSettingsService struct{}

func (stubSettingsService) ShippingCharge(ctx context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(40), nil
}

func (stubSettingsService) SetShippingCharge(ctx context.Context, amount decimal.Decimal) error {
	panic("unimplemented")
}

type stubFulfillmentService struct{}

func (stubFulfillmentService) CreateOrder(ctx context.Context, input fulfillmentsvc.CreateOrderInput) (*fulfillmentsvc.CreateOrderResult, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) ReconcileUnassigned(ctx context.Context) (int, error) {
	return 0, nil
}

func (stubFulfillmentService) CompleteDeliveries(ctx context.Context, input fulfillmentsvc.CompleteDeliveriesInput) (*fulfillmentsvc.CompleteDeliveriesResult, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) UpdateOrderStatus(ctx context.Context, input fulfillmentsvc.UpdateOrderStatusInput) error {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) ListForUser(ctx context.Context, userID uuid.UUID) ([]orderssvc.OrderSummaryDTO, error) {
	return []orderssvc.OrderSummaryDTO{}, nil
}

func (stubOrdersService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*orderssvc.OrderDetailDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) DeliveryCalendar(ctx context.Context, userID uuid.UUID) ([]orderssvc.CalendarEntryDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) AgentDashboard(ctx context.Context, agentID uuid.UUID) ([]orderssvc.OrderSummaryDTO, error) {
	return []orderssvc.OrderSummaryDTO{}, nil
}

func (stubOrdersService) DailyRoute(ctx context.Context, agentID uuid.UUID) ([]orderssvc.RouteStopDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) AdminList(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*orderssvc.OrderListDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) AdminGet(ctx context.Context, orderID uuid.UUID) (*orderssvc.OrderDetailDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) DashboardStats(ctx context.Context) (*orderssvc.DashboardStatsDTO, error) {
	return &orderssvc.DashboardStatsDTO{}, nil
}

type stubAgentsService struct{}

func (stubAgentsService) Signup(ctx context.Context, req agentsvc.SignupRequest) (*agentsvc.AgentDTO, error) {
	panic("unimplemented")
}

func (stubAgentsService) Profile(ctx context.Context, agentID uuid.UUID) (*agentsvc.AgentDTO, error) {
	return &agentsvc.AgentDTO{ID: agentID}, nil
}

func (stubAgentsService) List(ctx context.Context, status *enums.AgentStatus) ([]agentsvc.AgentDTO, error) {
	panic("unimplemented")
}

func (stubAgentsService) PhotoUploadURL(ctx context.Context, agentID uuid.UUID, contentType string) (*agentsvc.PhotoUploadDTO, error) {
	panic("unimplemented")
}

func (stubAgentsService) SetPhoto(ctx context.Context, agentID uuid.UUID, objectKey string) error {
	panic("unimplemented")
}

func (stubAgentsService) UpdateCapacity(ctx context.Context, agentID uuid.UUID, input agentsvc.UpdateCapacityInput) error {
	panic("unimplemented")
}

func (stubAgentsService) Approve(ctx context.Context, adminUserID, agentID uuid.UUID) error {
	panic("unimplemented")
}

func (stubAgentsService) Reject(ctx context.Context, adminUserID, agentID uuid.UUID) error {
	panic("unimplemented")
}

type stubNotificationsService struct{}

func (stubNotificationsService) Inbox(ctx context.Context, userID uuid.UUID) (*notificationsvc.InboxDTO, error) {
	return &notificationsvc.InboxDTO{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	panic("unimplemented")
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	panic("unimplemented")
}

func (stubNotificationsService) Record(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, body string) error {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "greenbasket-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("error"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*pkgredis.Client)(nil),
		stubSessionChecker{},
		nil, // payment links disabled
		Services{
			Auth:          stubAuthService{},
			Users:         stubUsersService{},
			Products:      stubProductsService{},
			Cart:          stubCartService{},
			Areas:         stubAreasService{},
			Settings:      stubSettingsService{},
			Fulfillment:   stubFulfillmentService{},
			Orders:        stubOrdersService{},
			Agents:        stubAgentsService{},
			Notifications: stubNotificationsService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	payload := pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	}
	if role == enums.RoleAgent {
		agentID := uuid.New()
		payload.AgentID = &agentID
	}
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/v1/products", "/v1/areas"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestAuthedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAuthedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d", resp.Code)
	}
}

func TestAgentGroupRequiresAgentRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/v1/agent/profile", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodGet, "/v1/agent/profile", nil)
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAgent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent got %d", resp.Code)
	}
}

func TestAgentOrdersRequiresAgentRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/agent/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodGet, "/v1/agent/orders", nil)
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAgent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent orders got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	agent := httptest.NewRequest(http.MethodGet, "/v1/admin/dashboard", nil)
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAgent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for agent got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/v1/admin/dashboard", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}
