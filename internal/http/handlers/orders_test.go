package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
)

type stubOrderUsecase struct {
	createFn   func(ctx context.Context, p *domain.Principal, in domain.NewOrder) (*domain.Order, error)
	getFn      func(ctx context.Context, p *domain.Principal, id string) (*domain.Order, error)
	listFn     func(ctx context.Context, p *domain.Principal, status *domain.OrderStatus, page domain.Page) ([]domain.Order, domain.Pagination, error)
	listBidsFn func(ctx context.Context, p *domain.Principal, orderID string) ([]domain.Bid, error)
}

func (s *stubOrderUsecase) Create(ctx context.Context, p *domain.Principal, in domain.NewOrder) (*domain.Order, error) {
	if s.createFn == nil {
		panic("Create not expected in this test")
	}
	return s.createFn(ctx, p, in)
}

func (s *stubOrderUsecase) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Order, error) {
	if s.getFn == nil {
		panic("Get not expected in this test")
	}
	return s.getFn(ctx, p, id)
}

func (s *stubOrderUsecase) List(ctx context.Context, p *domain.Principal, status *domain.OrderStatus, page domain.Page) ([]domain.Order, domain.Pagination, error) {
	if s.listFn == nil {
		panic("List not expected in this test")
	}
	return s.listFn(ctx, p, status, page)
}

func (s *stubOrderUsecase) ListBids(ctx context.Context, p *domain.Principal, orderID string) ([]domain.Bid, error) {
	if s.listBidsFn == nil {
		panic("ListBids not expected in this test")
	}
	return s.listBidsFn(ctx, p, orderID)
}

var created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func pendingOrder(in domain.NewOrder) *domain.Order {
	return &domain.Order{
		ID:          "o1",
		CustomerID:  "c1",
		VehicleType: in.VehicleType,
		PickUp:      in.PickUp,
		DropOff:     in.DropOff,
		Parcel:      in.Parcel,
		Fare:        in.Fare,
		Status:      domain.OrderPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

const orderJSON = `{
	"vehicleType":"Sedan","pickUp":"A","dropOff":"B",
	"parcelType":"Box","pieces":2,"recipientName":"Ann","recipientNumber":"+100",
	"baseCharges":5,"distanceCharges":10,"timeCharges":3,"additionalCharges":0,"totalEstimatedFare":18
}`

func TestOrderHandler_Create_JSON(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		createFn: func(_ context.Context, p *domain.Principal, in domain.NewOrder) (*domain.Order, error) {
			require.Same(t, customer, p)
			require.Equal(t, "Sedan", in.VehicleType)
			require.Equal(t, 2, in.Parcel.Pieces)
			require.Equal(t, 18.0, in.Fare.TotalEstimatedFare)
			require.Nil(t, in.Image)
			return pendingOrder(in), nil
		},
	}
	rr := httptest.NewRecorder()
	NewOrderHandler(NewResponder(nil, false), uc).Create(rr, newRequest(http.MethodPost, "/api/v1/orders", orderJSON, customer, nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Order created successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "PENDING", data["status"])
	assert.Nil(t, data["driverId"])
	assert.Equal(t, "Box", data["parcelType"])
}

func TestOrderHandler_Create_RefusesDriverID(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	body := `{"driverId":"d1","vehicleType":"Sedan"}`
	NewOrderHandler(NewResponder(nil, false), &stubOrderUsecase{}).Create(rr, newRequest(http.MethodPost, "/api/v1/orders", body, customer, nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeBody(t, rr)["errors"].(map[string]any)
	require.Contains(t, errs, "driverId")
}

func TestOrderHandler_Create_MapsServiceErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
	}{
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.ErrForbidden, http.StatusUnauthorized},
		{apperr.ErrNoDriversAvailable, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.err.Error(), func(t *testing.T) {
			t.Parallel()
			uc := &stubOrderUsecase{
				createFn: func(context.Context, *domain.Principal, domain.NewOrder) (*domain.Order, error) {
					return nil, tc.err
				},
			}
			rr := httptest.NewRecorder()
			NewOrderHandler(NewResponder(nil, false), uc).Create(rr, newRequest(http.MethodPost, "/api/v1/orders", orderJSON, customer, nil))
			require.Equal(t, tc.status, rr.Code)
		})
	}
}

func multipartOrder(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="parcel.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestOrderHandler_Create_Multipart(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"customerId": "c9", "vehicleType": "Sedan", "pickUp": "A", "dropOff": "B",
		"parcelType": "Box", "pieces": "3", "recipientName": "Ann", "recipientNumber": "+100",
		"baseCharges": "5", "distanceCharges": "10.5", "timeCharges": "3", "totalEstimatedFare": "18.5",
		"priceId": "p1",
	}
	body, ct := multipartOrder(t, fields, []byte("\x89PNG fake"))

	uc := &stubOrderUsecase{
		createFn: func(_ context.Context, _ *domain.Principal, in domain.NewOrder) (*domain.Order, error) {
			require.Equal(t, "c9", in.CustomerID)
			require.Equal(t, 3, in.Parcel.Pieces)
			require.Equal(t, 10.5, in.Fare.DistanceCharges)
			require.NotNil(t, in.PriceID)
			require.Equal(t, "p1", *in.PriceID)
			require.NotNil(t, in.Image)
			require.Equal(t, "parcel.png", in.Image.Name)
			require.Equal(t, "image/png", in.Image.ContentType)
			require.Equal(t, []byte("\x89PNG fake"), in.Image.Data)
			o := pendingOrder(in)
			o.Image = &domain.Image{ID: "orders/x.png", URL: "https://cdn/orders/x.png"}
			return o, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", ct)
	req = req.WithContext(auth.WithPrincipal(req.Context(), admin))

	rr := httptest.NewRecorder()
	NewOrderHandler(NewResponder(nil, false), uc).Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	img := decodeBody(t, rr)["data"].(map[string]any)["image"].(map[string]any)
	require.Equal(t, "https://cdn/orders/x.png", img["url"])
}

func TestOrderHandler_Create_MultipartBadNumbers(t *testing.T) {
	t.Parallel()

	body, ct := multipartOrder(t, map[string]string{"pieces": "two", "baseCharges": "five"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", ct)

	rr := httptest.NewRecorder()
	NewOrderHandler(NewResponder(nil, false), &stubOrderUsecase{}).Create(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeBody(t, rr)["errors"].(map[string]any)
	require.Contains(t, errs, "pieces")
	require.Contains(t, errs, "baseCharges")
}

func TestOrderHandler_List_Pagination(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		listFn: func(_ context.Context, _ *domain.Principal, status *domain.OrderStatus, page domain.Page) ([]domain.Order, domain.Pagination, error) {
			require.NotNil(t, status)
			require.Equal(t, domain.OrderPending, *status)
			require.Equal(t, domain.Page{Page: 1, Limit: 50}, page)
			return []domain.Order{{ID: "o1", Status: domain.OrderPending}}, domain.Paginate(page, 120), nil
		},
	}
	rr := httptest.NewRecorder()
	NewOrderHandler(NewResponder(nil, false), uc).List(rr, newRequest(http.MethodGet, "/api/v1/orders?page=1&limit=50&status=pending", "", customer, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	pg := decodeBody(t, rr)["pagination"].(map[string]any)
	assert.Equal(t, 120.0, pg["totalOrders"])
	assert.Equal(t, 3.0, pg["totalPages"])
	assert.Equal(t, true, pg["hasNextPage"])
	assert.Equal(t, false, pg["hasPrevPage"])
}

func TestOrderHandler_Get(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		getFn: func(_ context.Context, _ *domain.Principal, id string) (*domain.Order, error) {
			if id == "missing" {
				return nil, apperr.ErrNotFound
			}
			return &domain.Order{ID: id, Status: domain.OrderAssigned}, nil
		},
	}
	h := NewOrderHandler(NewResponder(nil, false), uc)

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/v1/orders/o7", "", customer, map[string]string{"id": "o7"}))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "o7", decodeBody(t, rr)["data"].(map[string]any)["id"])

	rr = httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/v1/orders/missing", "", customer, map[string]string{"id": "missing"}))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/v1/orders/", "", customer, map[string]string{"id": " "}))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOrderHandler_ListBids(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{
		listBidsFn: func(_ context.Context, p *domain.Principal, orderID string) ([]domain.Bid, error) {
			require.Same(t, driver, p)
			return []domain.Bid{{ID: "b1", OrderID: orderID, DriverID: "d1", Amount: 50, Status: domain.BidPending}}, nil
		},
	}
	rr := httptest.NewRecorder()
	NewOrderHandler(NewResponder(nil, false), uc).ListBids(rr, newRequest(http.MethodGet, "/api/v1/orders/o1/bids", "", driver, map[string]string{"id": "o1"}))

	require.Equal(t, http.StatusOK, rr.Code)
	bids := decodeBody(t, rr)["data"].([]any)
	require.Len(t, bids, 1)
	require.Equal(t, 50.0, bids[0].(map[string]any)["amount"])
}
