package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/retail/storefront/internal/application/catalog"
	appidentity "github.com/retail/storefront/internal/application/identity"
	"github.com/retail/storefront/internal/application/report"
	"github.com/retail/storefront/internal/application/trade"
	"github.com/retail/storefront/internal/domain/cart"
	"github.com/retail/storefront/internal/domain/catalog"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/domain/notification"
	"github.com/retail/storefront/internal/domain/order"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/config"
	"github.com/retail/storefront/internal/infrastructure/session"
	"github.com/retail/storefront/internal/interfaces/http/middleware"
	"github.com/retail/storefront/internal/interfaces/http/router"
	"github.com/retail/storefront/internal/interfaces/http/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	customerUser = identity.User{ID: 7, Email: "jo@shop.com", FirstName: "Jo", Role: identity.RoleCustomer}
	adminUser    = identity.User{ID: 1, Email: "admin@shop.com", FirstName: "Ada", Role: identity.RoleAdmin}
)

type fakeAccount struct {
	user     identity.User
	password string
}

// fakeBackend is an in-memory retail backend speaking the /api wire contract
type fakeBackend struct {
	mu            sync.Mutex
	accounts      map[string]fakeAccount
	categories    []catalog.Category
	products      []catalog.Product
	carts         map[int64][]cart.Item
	orders        []order.Order
	payments      []backend.PaymentRequest
	stock         map[int64]int
	notifications []notification.Notification
	calls         []string
	failPayments  bool
	nextID        int64
	srv           *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	electronics := catalog.Category{ID: 1, Name: "Electronics"}
	books := catalog.Category{ID: 2, Name: "Books"}

	fb := &fakeBackend{
		accounts: map[string]fakeAccount{
			customerUser.Email: {user: customerUser, password: "secret"},
			adminUser.Email:    {user: adminUser, password: "admin123"},
		},
		categories: []catalog.Category{electronics, books},
		products: []catalog.Product{
			{ID: 10, Name: "Headphones", Description: "Wireless", Price: decimal.NewFromInt(500), Quantity: 5, Category: &electronics},
			{ID: 11, Name: "Go in Action", Description: "Programming book", Price: decimal.NewFromInt(800), Quantity: 2, Category: &books},
			{ID: 12, Name: "Camera", Description: "Mirrorless", Price: decimal.NewFromInt(30000), Quantity: 0, Category: &electronics},
		},
		carts:  make(map[int64][]cart.Item),
		stock:  make(map[int64]int),
		nextID: 100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", fb.login)
	mux.HandleFunc("POST /api/auth/register", fb.register)
	mux.HandleFunc("GET /api/products", fb.listProducts)
	mux.HandleFunc("GET /api/products/{id}", fb.getProduct)
	mux.HandleFunc("POST /api/products", fb.saveProduct)
	mux.HandleFunc("PUT /api/products/{id}", fb.saveProduct)
	mux.HandleFunc("DELETE /api/products/{id}", fb.deleteProduct)
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) { fb.reply(w, fb.categories) })
	mux.HandleFunc("PUT /api/inventory/{id}", fb.updateStock)
	mux.HandleFunc("GET /api/cart/{uid}", fb.getCart)
	mux.HandleFunc("POST /api/cart", fb.addToCart)
	mux.HandleFunc("PUT /api/cart/{uid}/items/{pid}", fb.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/{uid}/items/{pid}", fb.removeCartItem)
	mux.HandleFunc("DELETE /api/cart/{uid}", fb.clearCart)
	mux.HandleFunc("POST /api/payments", fb.pay)
	mux.HandleFunc("POST /api/orders", fb.createOrder)
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) { fb.reply(w, fb.orders) })
	mux.HandleFunc("GET /api/orders/user/{uid}", fb.userOrders)
	mux.HandleFunc("PUT /api/orders/{id}/status", fb.updateOrderStatus)
	mux.HandleFunc("POST /api/notifications", fb.notify)
	mux.HandleFunc("GET /api/notifications/user/{uid}", fb.userNotifications)

	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.calls = append(fb.calls, r.Method+" "+r.URL.Path)
		fb.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

// called reports how many calls matched "METHOD path-prefix"
func (fb *fakeBackend) called(method, pathPrefix string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, c := range fb.calls {
		if strings.HasPrefix(c, method+" "+pathPrefix) {
			n++
		}
	}
	return n
}

func (fb *fakeBackend) setCart(userID int64, items ...cart.Item) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.carts[userID] = items
}

func (fb *fakeBackend) cartOf(userID int64) []cart.Item {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]cart.Item(nil), fb.carts[userID]...)
}

func (fb *fakeBackend) addOrder(o order.Order) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.orders = append(fb.orders, o)
}

func (fb *fakeBackend) reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if message != "" {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	}
}

func pathInt(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

func authResponse(u identity.User) backend.AuthResponse {
	return backend.AuthResponse{
		Token:     fmt.Sprintf("token-%d", u.ID),
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role.String(),
		FirstName: u.FirstName,
	}
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&body)
	fb.mu.Lock()
	acct, ok := fb.accounts[body.Email]
	fb.mu.Unlock()
	if !ok || acct.password != body.Password {
		fb.fail(w, http.StatusUnauthorized, "")
		return
	}
	fb.reply(w, authResponse(acct.user))
}

func (fb *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req backend.RegisterRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.accounts[req.Email]; exists {
		fb.fail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	fb.nextID++
	u := identity.User{ID: fb.nextID, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName, Role: req.Role}
	fb.accounts[req.Email] = fakeAccount{user: u, password: req.Password}
	fb.reply(w, authResponse(u))
}

func (fb *fakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.reply(w, fb.products)
}

func (fb *fakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := pathInt(r, "id")
	for _, p := range fb.products {
		if p.ID == id {
			fb.reply(w, p)
			return
		}
	}
	fb.fail(w, http.StatusNotFound, "product 404: no such id")
}

func (fb *fakeBackend) saveProduct(w http.ResponseWriter, r *http.Request) {
	var req backend.ProductRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	fb.mu.Lock()
	defer fb.mu.Unlock()

	p := catalog.Product{Name: req.Name, Description: req.Description, Price: req.Price, Quantity: req.Quantity, ImageURL: req.ImageURL}
	for _, c := range fb.categories {
		if c.ID == req.CategoryID {
			c := c
			p.Category = &c
		}
	}
	if r.Method == http.MethodPost {
		fb.nextID++
		p.ID = fb.nextID
		fb.products = append(fb.products, p)
		fb.reply(w, p)
		return
	}
	p.ID = pathInt(r, "id")
	for i := range fb.products {
		if fb.products[i].ID == p.ID {
			fb.products[i] = p
			fb.reply(w, p)
			return
		}
	}
	fb.fail(w, http.StatusNotFound, "Product not found")
}

func (fb *fakeBackend) deleteProduct(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := pathInt(r, "id")
	for i, p := range fb.products {
		if p.ID == id {
			fb.products = append(fb.products[:i], fb.products[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	fb.fail(w, http.StatusNotFound, "Product not found")
}

func (fb *fakeBackend) updateStock(w http.ResponseWriter, r *http.Request) {
	qty, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
	fb.mu.Lock()
	fb.stock[pathInt(r, "id")] = qty
	fb.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (fb *fakeBackend) getCart(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.reply(w, fb.carts[pathInt(r, "uid")])
}

func (fb *fakeBackend) addToCart(w http.ResponseWriter, r *http.Request) {
	var item cart.Item
	_ = json.NewDecoder(r.Body).Decode(&item)
	fb.mu.Lock()
	defer fb.mu.Unlock()
	items := fb.carts[item.UserID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			fb.reply(w, items[i])
			return
		}
	}
	fb.nextID++
	item.ID = fb.nextID
	fb.carts[item.UserID] = append(items, item)
	fb.reply(w, item)
}

func (fb *fakeBackend) updateCartItem(w http.ResponseWriter, r *http.Request) {
	qty, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
	fb.mu.Lock()
	defer fb.mu.Unlock()
	items := fb.carts[pathInt(r, "uid")]
	for i := range items {
		if items[i].ProductID == pathInt(r, "pid") {
			items[i].Quantity = qty
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (fb *fakeBackend) removeCartItem(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	uid, pid := pathInt(r, "uid"), pathInt(r, "pid")
	kept := fb.carts[uid][:0]
	for _, it := range fb.carts[uid] {
		if it.ProductID != pid {
			kept = append(kept, it)
		}
	}
	fb.carts[uid] = kept
	w.WriteHeader(http.StatusNoContent)
}

func (fb *fakeBackend) clearCart(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	delete(fb.carts, pathInt(r, "uid"))
	fb.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (fb *fakeBackend) pay(w http.ResponseWriter, r *http.Request) {
	var req backend.PaymentRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.failPayments {
		fb.fail(w, http.StatusBadGateway, "Payment gateway unavailable")
		return
	}
	fb.payments = append(fb.payments, req)
	fb.reply(w, backend.PaymentResponse{ID: int64(len(fb.payments)), TransactionID: fmt.Sprintf("TXN-%d", len(fb.payments)), Status: req.Status})
}

func (fb *fakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var req backend.CreateOrderRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	o := order.Order{
		ID:              fb.nextID,
		UserID:          req.UserID,
		Items:           req.Items,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		Status:          order.StatusPending,
		PaymentID:       req.PaymentID,
		TransactionID:   req.TransactionID,
		CreatedAt:       shared.NewTimestamp(time.Now()),
	}
	fb.orders = append(fb.orders, o)
	fb.reply(w, o)
}

func (fb *fakeBackend) userOrders(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	uid := pathInt(r, "uid")
	out := []order.Order{}
	for _, o := range fb.orders {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	fb.reply(w, out)
}

func (fb *fakeBackend) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := pathInt(r, "id")
	for i := range fb.orders {
		if fb.orders[i].ID == id {
			fb.orders[i].Status = order.Status(r.URL.Query().Get("status"))
			fb.reply(w, fb.orders[i])
			return
		}
	}
	fb.fail(w, http.StatusNotFound, "Order not found")
}

func (fb *fakeBackend) notify(w http.ResponseWriter, r *http.Request) {
	var n notification.Notification
	_ = json.NewDecoder(r.Body).Decode(&n)
	fb.mu.Lock()
	fb.notifications = append(fb.notifications, n)
	fb.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (fb *fakeBackend) userNotifications(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	uid := pathInt(r, "uid")
	out := []notification.Notification{}
	for _, n := range fb.notifications {
		if n.UserID == uid || n.UserID == notification.BroadcastUserID {
			out = append(out, n)
		}
	}
	fb.reply(w, out)
}

// testApp is the storefront wired against a fakeBackend
type testApp struct {
	engine   *gin.Engine
	backend  *fakeBackend
	sessions *session.Manager
	store    *session.InMemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	fb := newFakeBackend(t)
	api, err := backend.New(config.BackendConfig{BaseURL: fb.srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	collections := cache.NewCollections(time.Minute)
	t.Cleanup(func() { _ = collections.Close() })

	store := session.NewInMemoryStore()
	manager := session.NewManager(store,
		config.SessionConfig{Secret: "handler-test-secret-at-least-32-chars", TTL: time.Hour, CookieName: "sf", Issuer: "test"},
		config.CookieConfig{Path: "/", SameSite: "lax"})

	catalogService := appcatalog.NewCatalogService(api.Products, api.Categories, collections)
	products := appcatalog.NewProductService(catalogService, api.Products, api.Inventory, api.Notifications, nil)
	carts := trade.NewCartService(api.Cart, collections)
	orders := trade.NewOrderService(api.Orders, collections)
	checkout := trade.NewCheckoutService(carts, api.Payments, api.Orders, collections, cache.NewInMemoryInFlightGuard(), nil)
	dashboards := report.NewDashboardService(catalogService, carts, orders, api.Notifications, collections)
	auth := appidentity.NewAuthService(api.Auth, manager)

	home := NewHomeHandler(manager)
	handlers := Handlers{
		Home:     home,
		Auth:     NewAuthHandler(auth, manager),
		Customer: NewCustomerHandler(manager, dashboards, catalogService, carts, checkout, orders, config.PaymentConfig{UPIPayee: "retail@upi", UPIPayeeName: "RetailShop"}),
		Admin:    NewAdminHandler(manager, dashboards, products, orders),
	}

	engine := gin.New()
	engine.SetHTMLTemplate(view.MustLoad())
	engine.Use(middleware.Session(manager))
	_, err = router.Mount(engine, Routes(handlers, nil)...)
	require.NoError(t, err)
	engine.NoRoute(home.NotFound)

	return &testApp{engine: engine, backend: fb, sessions: manager, store: store}
}

// signIn opens a session directly and returns its cookie
func (a *testApp) signIn(t *testing.T, u identity.User) *http.Cookie {
	t.Helper()
	sess, err := a.sessions.Create(t.Context(), u, fmt.Sprintf("token-%d", u.ID))
	require.NoError(t, err)
	cookie, err := a.sessions.Cookie(sess)
	require.NoError(t, err)
	return cookie
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// follow loads the redirect target of w, where queued flashes are shown
func (a *testApp) follow(t *testing.T, w *httptest.ResponseRecorder, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code)
	return a.get(w.Header().Get("Location"), cookie)
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "sf" {
			return c
		}
	}
	return nil
}
