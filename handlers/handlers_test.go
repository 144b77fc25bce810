package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"logistics-api/auth"
	"logistics-api/events"
	"logistics-api/handlers"
	"logistics-api/metrics"
	"logistics-api/routes"
	"logistics-api/services"
	"logistics-api/store"
	"logistics-api/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(db)
	log := zap.NewNop()
	m := metrics.NewServerMetrics(prometheus.NewRegistry())
	tokens := auth.NewTokenIssuer("handler-secret", time.Hour, "test")
	orders := services.NewOrderService(st, events.NewLogPublisher(log), m, log, 3)
	h := handlers.New(handlers.Services{
		Users:      services.NewUserService(st, tokens),
		Orders:     orders,
		Warehouses: services.NewWarehouseService(st),
		Deliveries: services.NewDeliveryService(st, orders),
	}, st, log)

	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{Handler: h, Tokens: tokens, Users: st.Users, Metrics: m, Log: log})
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

type account struct {
	id    uint
	token string
}

// signup registers and logs in a user through the public endpoints.
func (s *testServer) signup(username, role, phone string) account {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/user/register", "", gin.H{
		"username": username, "password": "secret123", "role": role, "phone": phone,
	})
	if code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %v", username, code, body)
	}
	code, body = s.do(http.MethodPost, "/api/v1/user/login", "", gin.H{"username": username, "password": "secret123"})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: %d %v", username, code, body)
	}
	info := body["user_info"].(map[string]any)
	return account{id: uint(info["id"].(float64)), token: body["access_token"].(string)}
}

func orderBody() gin.H {
	return gin.H{
		"sender_name": "Zhang San", "sender_phone": "13800000001",
		"sender_province": "Zhejiang", "sender_city": "Hangzhou", "sender_district": "Xihu",
		"sender_address": "1 Lake Rd",
		"receiver_name": "Li Si", "receiver_phone": "13900000002",
		"receiver_province": "Shanghai", "receiver_city": "Shanghai", "receiver_district": "Pudong",
		"receiver_address": "8 Century Ave",
		"goods_type": "documents",
	}
}

func (s *testServer) createOrder(token string) uint {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/order/create", token, orderBody())
	if code != http.StatusCreated {
		s.t.Fatalf("create order: %d %v", code, body)
	}
	return uint(body["id"].(float64))
}

func TestLoginResponseShape(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice", "customer", "13811112222")

	code, body := s.do(http.MethodPost, "/api/v1/user/login", "", gin.H{"username": "alice", "password": "secret123"})
	if code != http.StatusOK || body["token_type"] != "bearer" || body["access_token"] == "" {
		t.Fatalf("login: %d %v", code, body)
	}
	info := body["user_info"].(map[string]any)
	if _, leaked := info["password"]; leaked {
		t.Fatal("password serialized")
	}

	code, _ = s.do(http.MethodPost, "/api/v1/user/login", "", gin.H{"username": "alice", "password": "wrong!"})
	if code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"bad phone", gin.H{"username": "bob", "password": "secret123", "role": "driver", "phone": "12345"}, http.StatusBadRequest},
		{"short password", gin.H{"username": "bob", "password": "123", "role": "driver"}, http.StatusBadRequest},
		{"unknown role", gin.H{"username": "bob", "password": "secret123", "role": "root"}, http.StatusBadRequest},
		{"ok", gin.H{"username": "bob", "password": "secret123", "role": "driver", "phone": "13912345678"}, http.StatusCreated},
		{"duplicate phone", gin.H{"username": "bob2", "password": "secret123", "role": "driver", "phone": "13912345678"}, http.StatusConflict},
		{"duplicate username", gin.H{"username": "bob", "password": "secret123", "role": "customer"}, http.StatusConflict},
	}
	for _, tc := range cases {
		code, body := s.do(http.MethodPost, "/api/v1/user/register", "", tc.body)
		if code != tc.want {
			t.Errorf("%s: status %d, want %d (%v)", tc.name, code, tc.want, body)
		}
	}
}

func TestProfileUpdateIgnoresPrivilegedFields(t *testing.T) {
	s := newTestServer(t)
	carol := s.signup("carol", "customer", "")

	code, body := s.do(http.MethodPut, "/api/v1/user/info", carol.token, gin.H{
		"role": "admin", "password": "hijacked", "username": "root", "real_name": "Carol",
	})
	if code != http.StatusOK {
		t.Fatalf("update: %d %v", code, body)
	}
	if body["role"] != "customer" || body["username"] != "carol" || body["real_name"] != "Carol" {
		t.Fatalf("privileged fields changed: %v", body)
	}
	code, _ = s.do(http.MethodPost, "/api/v1/user/login", "", gin.H{"username": "carol", "password": "secret123"})
	if code != http.StatusOK {
		t.Fatal("password changed through profile update")
	}

	code, _ = s.do(http.MethodGet, "/api/v1/user/list", carol.token, nil)
	if code != http.StatusForbidden {
		t.Fatalf("customer listed users: %d", code)
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup("admin", "admin", "")
	driver := s.signup("driver", "driver", "")
	customer := s.signup("customer", "customer", "")

	body := orderBody()
	body["create_user_id"] = 999
	body["order_status"] = "signed"
	code, created := s.do(http.MethodPost, "/api/v1/order/create", customer.token, body)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, created)
	}
	if uint(created["create_user_id"].(float64)) != customer.id || created["order_status"] != "pending" {
		t.Fatalf("client fields honored: %v", created)
	}
	if created["sender_address"] != "ZhejiangHangzhouXihu1 Lake Rd" {
		t.Errorf("sender_address = %v", created["sender_address"])
	}
	id := uint(created["id"].(float64))
	statusPath := fmt.Sprintf("/api/v1/order/status/%d", id)
	detailPath := fmt.Sprintf("/api/v1/order/detail/%d", id)

	if code, _ := s.do(http.MethodPut, statusPath, customer.token, gin.H{"order_status": "cancelled"}); code != http.StatusForbidden {
		t.Fatalf("customer transition: %d", code)
	}
	if code, _ := s.do(http.MethodPut, statusPath, admin.token, gin.H{"order_status": "delivering"}); code != http.StatusBadRequest {
		t.Fatalf("delivering without driver: %d", code)
	}
	if code, _ := s.do(http.MethodGet, detailPath, driver.token, nil); code != http.StatusNotFound {
		t.Fatalf("unassigned driver detail: %d", code)
	}

	code, resp := s.do(http.MethodPut, statusPath, admin.token, gin.H{"order_status": "delivering", "driver_id": driver.id})
	if code != http.StatusOK {
		t.Fatalf("assign driver: %d %v", code, resp)
	}
	if code, _ := s.do(http.MethodGet, detailPath, driver.token, nil); code != http.StatusOK {
		t.Fatalf("assigned driver detail: %d", code)
	}

	code, resp = s.do(http.MethodPut, statusPath, admin.token, gin.H{"order_status": "pending"})
	if code != http.StatusConflict || resp["current_status"] != "delivering" || resp["requested_status"] != "pending" {
		t.Fatalf("invalid transition: %d %v", code, resp)
	}
	next := resp["valid_next_states"].([]any)
	if len(next) != 2 {
		t.Fatalf("valid_next_states = %v", next)
	}

	if code, _ := s.do(http.MethodPut, statusPath, admin.token, gin.H{"order_status": "signed"}); code != http.StatusOK {
		t.Fatalf("sign: %d", code)
	}
	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/order/history/%d", id), customer.token, nil)
	if code != http.StatusOK || resp["count"].(float64) != 3 {
		t.Fatalf("history: %d %v", code, resp)
	}
}

func TestQueryScopingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup("admin", "admin", "")
	c1 := s.signup("cust1", "customer", "")
	c2 := s.signup("cust2", "customer", "")
	s.createOrder(c1.token)
	s.createOrder(c1.token)
	s.createOrder(c2.token)

	code, page := s.do(http.MethodGet, "/api/v1/order/query?page=1&page_size=1", c1.token, nil)
	if code != http.StatusOK || page["total"].(float64) != 2 || len(page["data"].([]any)) != 1 {
		t.Fatalf("customer page: %d %v", code, page)
	}
	code, page = s.do(http.MethodGet, "/api/v1/order/query", admin.token, nil)
	if code != http.StatusOK || page["total"].(float64) != 3 {
		t.Fatalf("admin page: %d %v", code, page)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/order/query?page_size=51", admin.token, nil); code != http.StatusBadRequest {
		t.Fatalf("oversized page: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/order/query?order_status=lost", admin.token, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", code)
	}
}

func TestWarehouseAndDeliveryRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup("admin", "admin", "")
	driver := s.signup("driver", "driver", "")
	customer := s.signup("customer", "customer", "")
	orderID := s.createOrder(customer.token)

	wh := gin.H{"warehouse_name": "East hub", "province": "Zhejiang", "city": "Hangzhou",
		"district": "Xihu", "address": "9 Depot Rd", "capacity_limit": 5}
	if code, _ := s.do(http.MethodPost, "/api/v1/warehouse/create", customer.token, wh); code != http.StatusForbidden {
		t.Fatalf("customer created warehouse: %d", code)
	}
	code, resp := s.do(http.MethodPost, "/api/v1/warehouse/create", admin.token, wh)
	if code != http.StatusCreated {
		t.Fatalf("create warehouse: %d %v", code, resp)
	}
	whID := uint(resp["warehouse"].(map[string]any)["id"].(float64))

	inbound := fmt.Sprintf("/api/v1/warehouse/inbound/%d", whID)
	if code, resp := s.do(http.MethodPost, inbound, admin.token, gin.H{"order_id": orderID, "goods_quantity": 6}); code != http.StatusBadRequest {
		t.Fatalf("over capacity: %d %v", code, resp)
	}
	if code, resp := s.do(http.MethodPost, inbound, admin.token, gin.H{"order_id": orderID, "goods_quantity": 5}); code != http.StatusCreated {
		t.Fatalf("inbound: %d %v", code, resp)
	}

	s.do(http.MethodPut, fmt.Sprintf("/api/v1/order/status/%d", orderID), admin.token,
		gin.H{"order_status": "delivering", "driver_id": driver.id})

	code, resp = s.do(http.MethodGet, "/api/v1/delivery/tasks", driver.token, nil)
	if code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("driver tasks: %d %v", code, resp)
	}
	taskID := uint(resp["tasks"].([]any)[0].(map[string]any)["id"].(float64))
	if code, _ := s.do(http.MethodGet, "/api/v1/delivery/tasks", customer.token, nil); code != http.StatusForbidden {
		t.Fatalf("customer listed tasks: %d", code)
	}

	trackPath := fmt.Sprintf("/api/v1/delivery/tasks/%d/track", taskID)
	if code, resp := s.do(http.MethodPost, trackPath, driver.token, gin.H{"track_node": "left hub"}); code != http.StatusCreated {
		t.Fatalf("track: %d %v", code, resp)
	}
	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/order/tracks/%d", orderID), customer.token, nil)
	if code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("order tracks: %d %v", code, resp)
	}

	code, resp = s.do(http.MethodGet, "/api/v1/delivery/stats", driver.token, nil)
	if code != http.StatusOK || resp["task_count"].(float64) != 1 || resp["delivering"].(float64) != 1 || resp["efficiency"].(float64) != 0 {
		t.Fatalf("driver stats: %d %v", code, resp)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/delivery/stats", admin.token, nil); code != http.StatusForbidden {
		t.Fatalf("admin read driver stats: %d", code)
	}
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	s := newTestServer(t)
	if code, body := s.do(http.MethodGet, "/health", "", nil); code != http.StatusOK || body["database"] != "ok" {
		t.Fatalf("health: %d %v", code, body)
	}
	code, body := s.do(http.MethodGet, "/api/v1/state-machine", "", nil)
	if code != http.StatusOK || len(body["state_machine"].([]any)) != 4 {
		t.Fatalf("state machine: %d %v", code, body)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/order/query", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/v1/order/detail/abc", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("auth must run before parameter parsing: %d", code)
	}
}
