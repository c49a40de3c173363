// internal/api/router_test.go
package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopbot/internal/api"
	"shopbot/internal/api/handler"
	"shopbot/internal/domain"
	"shopbot/internal/service"
	"shopbot/internal/util"
)

type MockLedgerService struct{ mock.Mock }

func (m *MockLedgerService) Register(ctx context.Context, userID int64, name string) (*domain.User, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockLedgerService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) History(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

type MockPaymentService struct{ mock.Mock }

func (m *MockPaymentService) RequestTopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.TopUp, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopUp), args.Error(1)
}

func (m *MockPaymentService) ConfirmTopUp(ctx context.Context, label string) (bool, error) {
	args := m.Called(ctx, label)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentService) PendingIntents(ctx context.Context, afterID int64, limit int) ([]domain.PaymentIntent, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentIntent), args.Error(1)
}

func (m *MockPaymentService) GetIntent(ctx context.Context, label string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

type MockCatalogService struct{ mock.Mock }

func (m *MockCatalogService) ListProducts(ctx context.Context, page int) (*service.ProductPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductPage), args.Error(1)
}

func (m *MockCatalogService) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) AddProduct(ctx context.Context, in service.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) EditProduct(ctx context.Context, id int64, in service.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) Restock(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	args := m.Called(ctx, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Purchase(ctx context.Context, userID, productID int64, price decimal.Decimal) (domain.PurchaseResult, error) {
	args := m.Called(ctx, userID, productID, price)
	return args.Get(0).(domain.PurchaseResult), args.Error(1)
}

func (m *MockOrderService) details(args mock.Arguments) (*domain.OrderDetails, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetails), args.Error(1)
}

func (m *MockOrderService) list(args mock.Arguments) ([]domain.OrderDetails, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderDetails), args.Error(1)
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, orderID int64) (*domain.OrderDetails, error) {
	return m.details(m.Called(ctx, orderID))
}

func (m *MockOrderService) GetOrderByCode(ctx context.Context, code string) (*domain.OrderDetails, error) {
	return m.details(m.Called(ctx, code))
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID int64) ([]domain.OrderDetails, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *MockOrderService) LastOrder(ctx context.Context, userID int64) (*domain.OrderDetails, error) {
	return m.details(m.Called(ctx, userID))
}

func (m *MockOrderService) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.OrderDetails, error) {
	return m.details(m.Called(ctx, orderID, status))
}

func (m *MockOrderService) SetOrderStatusByCode(ctx context.Context, code string, status domain.OrderStatus) (*domain.OrderDetails, error) {
	return m.details(m.Called(ctx, code, status))
}

func (m *MockOrderService) ListActiveOrders(ctx context.Context) ([]domain.OrderDetails, error) {
	return m.list(m.Called(ctx))
}

type routerFixture struct {
	ledger   *MockLedgerService
	payments *MockPaymentService
	catalog  *MockCatalogService
	orders   *MockOrderService
	router   http.Handler
}

const adminToken = "admin-secret"

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		ledger:   new(MockLedgerService),
		payments: new(MockPaymentService),
		catalog:  new(MockCatalogService),
		orders:   new(MockOrderService),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHandler(f.ledger, f.payments, f.catalog, f.orders, logger)
	f.router = api.NewRouter(h, adminToken, logger)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestUserRoutes(t *testing.T) {
	t.Run("Register", func(t *testing.T) {
		f := newRouterFixture()
		f.ledger.On("Register", mock.Anything, int64(42), "alice").
			Return(&domain.User{ID: 42, Name: "alice", Balance: decimal.Zero}, nil).Once()

		rec := f.do(t, http.MethodPost, "/users", `{"id":42,"name":"alice"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(42), decodeBody(t, rec)["id"])
	})

	t.Run("RegisterRejectsUnknownFields", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/users", `{"id":42,"balance":"1000"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.ledger.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Balance", func(t *testing.T) {
		f := newRouterFixture()
		f.ledger.On("GetBalance", mock.Anything, int64(42)).Return(decimal.NewFromInt(70), nil).Once()

		rec := f.do(t, http.MethodGet, "/users/42/balance", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "70.00", decodeBody(t, rec)["balance"])
	})

	t.Run("BadUserID", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodGet, "/users/abc/balance", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newRouterFixture()
		f.ledger.On("GetUser", mock.Anything, int64(7)).Return(nil, util.ErrUserNotFound).Once()

		rec := f.do(t, http.MethodGet, "/users/7", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("TransactionsPaginated", func(t *testing.T) {
		f := newRouterFixture()
		f.ledger.On("History", mock.Anything, int64(42), 2, 4).
			Return([]domain.Transaction{{ID: 5}, {ID: 4}}, int64(6), nil).Once()

		rec := f.do(t, http.MethodGet, "/users/42/transactions?limit=2&offset=4", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(6), body["total_count"])
		assert.Len(t, body["data"], 2)
	})
}

func TestTopUpRoutes(t *testing.T) {
	t.Run("AcceptsCommaAmount", func(t *testing.T) {
		f := newRouterFixture()
		amount := decimal.RequireFromString("150.5")
		f.payments.On("RequestTopUp", mock.Anything, int64(42), mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(amount) })).
			Return(&domain.TopUp{PayURL: "https://pay.example", Label: "lbl", Amount: amount}, nil).Once()

		rec := f.do(t, http.MethodPost, "/users/42/topups", `{"amount":"150,50"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "lbl", decodeBody(t, rec)["label"])
	})

	t.Run("RejectsBadAmount", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/users/42/topups", `{"amount":"-5"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ConfirmProviderDown", func(t *testing.T) {
		f := newRouterFixture()
		f.payments.On("ConfirmTopUp", mock.Anything, "lbl").Return(false, util.ErrProviderUnavailable).Once()
		f.payments.On("GetIntent", mock.Anything, "lbl").
			Return(&domain.PaymentIntent{Label: "lbl", Amount: decimal.NewFromInt(100)}, nil).Once()

		rec := f.do(t, http.MethodPost, "/topups/lbl/confirm", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["credited"])
		assert.Equal(t, false, body["paid"])
	})

	t.Run("ConfirmUnknownLabel", func(t *testing.T) {
		f := newRouterFixture()
		f.payments.On("ConfirmTopUp", mock.Anything, "nope").Return(false, util.ErrPaymentNotFound).Once()

		rec := f.do(t, http.MethodPost, "/topups/nope/confirm", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPurchaseRoute(t *testing.T) {
	product := &domain.Product{ID: 9, Name: "Book", Price: decimal.NewFromInt(30), Stock: 1}

	tests := []struct {
		name   string
		result domain.PurchaseResult
		err    error
		status int
	}{
		{"Success", domain.PurchaseResult{Outcome: domain.PurchaseSuccess, Order: &domain.Order{OrderCode: "ABCD1234"}}, nil, http.StatusCreated},
		{"InsufficientFunds", domain.PurchaseResult{Outcome: domain.PurchaseInsufficientFunds}, nil, http.StatusPaymentRequired},
		{"OutOfStock", domain.PurchaseResult{Outcome: domain.PurchaseOutOfStock}, nil, http.StatusConflict},
		{"CodesExhausted", domain.PurchaseResult{Outcome: domain.PurchaseCodeGenerationFails}, util.ErrCodeGenerationExhausted, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			f.catalog.On("GetProduct", mock.Anything, int64(9)).Return(product, nil).Once()
			f.orders.On("Purchase", mock.Anything, int64(42), int64(9), product.Price).Return(tt.result, tt.err).Once()

			rec := f.do(t, http.MethodPost, "/users/42/purchases", `{"product_id":9}`)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, string(tt.result.Outcome), body["outcome"])
			assert.Equal(t, tt.result.OrderCode(), body["order_code"])
		})
	}

	t.Run("UnknownProduct", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("GetProduct", mock.Anything, int64(9)).Return(nil, util.ErrProductNotFound).Once()

		rec := f.do(t, http.MethodPost, "/users/42/purchases", `{"product_id":9}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		f.orders.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ExplicitPrice", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("GetProduct", mock.Anything, int64(9)).Return(product, nil).Once()
		f.orders.On("Purchase", mock.Anything, int64(42), int64(9), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.RequireFromString("25.50"))
		})).Return(domain.PurchaseResult{Outcome: domain.PurchaseSuccess, Order: &domain.Order{OrderCode: "WXYZ5678"}}, nil).Once()

		rec := f.do(t, http.MethodPost, "/users/42/purchases", `{"product_id":9,"price":"25.50"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "WXYZ5678", decodeBody(t, rec)["order_code"])
		f.orders.AssertExpectations(t)
	})

	t.Run("MalformedPrice", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("GetProduct", mock.Anything, int64(9)).Return(product, nil)

		for _, body := range []string{`{"product_id":9,"price":"abc"}`, `{"product_id":9,"price":"-5"}`} {
			rec := f.do(t, http.MethodPost, "/users/42/purchases", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
		f.orders.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("GetProduct", mock.Anything, int64(9)).Return(product, nil).Once()
		f.orders.On("Purchase", mock.Anything, int64(42), int64(9), product.Price).
			Return(domain.PurchaseResult{}, errors.New("connection reset")).Once()

		rec := f.do(t, http.MethodPost, "/users/42/purchases", `{"product_id":9}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
	})
}

func TestCatalogRoutes(t *testing.T) {
	t.Run("PagesStartAtOne", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("ListProducts", mock.Anything, 0).
			Return(&service.ProductPage{Products: []domain.Product{{ID: 1}}, Page: 0, PageSize: 5, TotalCount: 6}, nil).Once()

		rec := f.do(t, http.MethodGet, "/products", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(1), body["page"])
		assert.Equal(t, true, body["has_next"])
	})

	t.Run("AdminRoutesRequireToken", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/products", `{"type":"book","name":"X","price":"10","stock":1}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = f.do(t, http.MethodPost, "/products", `{"type":"book","name":"X","price":"10","stock":1}`,
			"Authorization", "Bearer wrong")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.catalog.AssertNotCalled(t, "AddProduct", mock.Anything, mock.Anything)
	})

	t.Run("AddProduct", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("AddProduct", mock.Anything, mock.MatchedBy(func(in service.ProductInput) bool {
			return in.Name == "X" && in.Stock == 1 && in.Price.Equal(decimal.NewFromInt(10))
		})).Return(&domain.Product{ID: 3, Name: "X"}, nil).Once()

		rec := f.do(t, http.MethodPost, "/products", `{"type":"book","name":"X","price":"10","stock":1}`,
			"Authorization", "Bearer "+adminToken)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("AddProduct", mock.Anything, mock.Anything).Return(nil, util.ErrDuplicateEntry).Once()

		rec := f.do(t, http.MethodPost, "/products", `{"type":"book","name":"X","price":"10","stock":1}`,
			"Authorization", "Bearer "+adminToken)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Restock", func(t *testing.T) {
		f := newRouterFixture()
		f.catalog.On("Restock", mock.Anything, int64(3), 4).Return(&domain.Product{ID: 3, Stock: 4}, nil).Once()

		rec := f.do(t, http.MethodPost, "/products/3/restock", `{"quantity":4}`, "Authorization", "Bearer "+adminToken)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(4), decodeBody(t, rec)["stock"])
	})
}

func TestOrderRoutes(t *testing.T) {
	order := &domain.OrderDetails{Order: domain.Order{ID: 4, OrderCode: "ABCD1234", Status: domain.OrderStatusShipping}, ProductName: "Book"}

	t.Run("ByCode", func(t *testing.T) {
		f := newRouterFixture()
		f.orders.On("GetOrderByCode", mock.Anything, "ABCD1234").Return(order, nil).Once()

		rec := f.do(t, http.MethodGet, "/orders/ABCD1234", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Book", decodeBody(t, rec)["product_name"])
	})

	t.Run("SetStatus", func(t *testing.T) {
		f := newRouterFixture()
		f.orders.On("SetOrderStatus", mock.Anything, int64(4), domain.OrderStatusShipping).Return(order, nil).Once()

		rec := f.do(t, http.MethodPut, "/admin/orders/4/status", `{"status":"shipping"}`, "Authorization", "Bearer "+adminToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("SetStatusOnTerminalOrder", func(t *testing.T) {
		f := newRouterFixture()
		f.orders.On("SetOrderStatus", mock.Anything, int64(4), domain.OrderStatusPacking).Return(nil, util.ErrInvalidStatus).Once()

		rec := f.do(t, http.MethodPut, "/admin/orders/4/status", `{"status":"packing"}`, "Authorization", "Bearer "+adminToken)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("ActiveOrdersRequireToken", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodGet, "/admin/orders/active", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("LastOrderMissing", func(t *testing.T) {
		f := newRouterFixture()
		f.orders.On("LastOrder", mock.Anything, int64(42)).Return(nil, util.ErrOrderNotFound).Once()

		rec := f.do(t, http.MethodGet, "/users/42/orders/last", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
