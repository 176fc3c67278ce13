package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
	"service-booking/internal/service/order"
)

// multipart bodies carry the image plus the form fields
const multipartLimit = order.MaxImageSize + bodyLimit

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	*Responder
	usecase orderUsecase
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(rs *Responder, uc orderUsecase) *OrderHandler {
	return &OrderHandler{Responder: rs, usecase: uc}
}

type createOrderRequest struct {
	CustomerID         string  `json:"customerId"`
	DriverID           *string `json:"driverId"`
	PriceID            *string `json:"priceId"`
	VehicleType        string  `json:"vehicleType"`
	PickUp             string  `json:"pickUp"`
	DropOff            string  `json:"dropOff"`
	ParcelType         string  `json:"parcelType"`
	Pieces             int     `json:"pieces"`
	RecipientName      string  `json:"recipientName"`
	RecipientNumber    string  `json:"recipientNumber"`
	AdditionalInfo     string  `json:"additionalInfo"`
	BaseCharges        float64 `json:"baseCharges"`
	DistanceCharges    float64 `json:"distanceCharges"`
	TimeCharges        float64 `json:"timeCharges"`
	AdditionalCharges  float64 `json:"additionalCharges"`
	TotalEstimatedFare float64 `json:"totalEstimatedFare"`
}

func (req createOrderRequest) toDomain() (domain.NewOrder, error) {
	if req.DriverID != nil {
		v := apperr.NewValidation()
		v.Add("driverId", "is assigned through bids")
		return domain.NewOrder{}, v
	}
	return domain.NewOrder{
		CustomerID:  req.CustomerID,
		PriceID:     req.PriceID,
		VehicleType: req.VehicleType,
		PickUp:      req.PickUp,
		DropOff:     req.DropOff,
		Parcel: domain.Parcel{
			Type:            req.ParcelType,
			Pieces:          req.Pieces,
			RecipientName:   req.RecipientName,
			RecipientNumber: req.RecipientNumber,
			AdditionalInfo:  req.AdditionalInfo,
		},
		Fare: domain.Fare{
			BaseCharges:        req.BaseCharges,
			DistanceCharges:    req.DistanceCharges,
			TimeCharges:        req.TimeCharges,
			AdditionalCharges:  req.AdditionalCharges,
			TotalEstimatedFare: req.TotalEstimatedFare,
		},
	}, nil
}

// Create handles POST /api/v1/orders. The body is JSON, or a multipart form
// when an image is attached.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		in  domain.NewOrder
		err error
	)
	if isMultipart(r) {
		in, err = h.readMultipart(w, r)
	} else {
		var req createOrderRequest
		if ok := decodeJSON(h.logger, w, r, &req); !ok {
			return
		}
		in, err = req.toDomain()
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	o, err := h.usecase.Create(r.Context(), auth.PrincipalFrom(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "Order created successfully", orderToResponse(*o))
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func (h *OrderHandler) readMultipart(w http.ResponseWriter, r *http.Request) (domain.NewOrder, error) {
	r.Body = http.MaxBytesReader(w, r.Body, multipartLimit)
	if err := r.ParseMultipartForm(multipartLimit); err != nil {
		return domain.NewOrder{}, fmt.Errorf("%w: malformed multipart body", apperr.ErrInvalid)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f := r.MultipartForm.Value
	get := func(k string) string {
		if vs := f[k]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	v := apperr.NewValidation()
	num := func(k string) float64 {
		raw := get(k)
		if raw == "" {
			return 0
		}
		n, err := strconv.ParseFloat(raw, 64)
		v.Check(err == nil, k, "must be a number")
		return n
	}
	pieces := 0
	if raw := get("pieces"); raw != "" {
		n, err := strconv.Atoi(raw)
		v.Check(err == nil, "pieces", "must be an integer")
		pieces = n
	}
	v.Check(get("driverId") == "", "driverId", "is assigned through bids")

	req := createOrderRequest{
		CustomerID:         get("customerId"),
		VehicleType:        get("vehicleType"),
		PickUp:             get("pickUp"),
		DropOff:            get("dropOff"),
		ParcelType:         get("parcelType"),
		Pieces:             pieces,
		RecipientName:      get("recipientName"),
		RecipientNumber:    get("recipientNumber"),
		AdditionalInfo:     get("additionalInfo"),
		BaseCharges:        num("baseCharges"),
		DistanceCharges:    num("distanceCharges"),
		TimeCharges:        num("timeCharges"),
		AdditionalCharges:  num("additionalCharges"),
		TotalEstimatedFare: num("totalEstimatedFare"),
	}
	if id := get("priceId"); id != "" {
		req.PriceID = &id
	}

	upload, err := imageFromForm(r, order.MaxImageSize)
	if err != nil {
		v.Add("image", err.Error())
	}
	if err := v.Err(); err != nil {
		return domain.NewOrder{}, err
	}

	in, _ := req.toDomain()
	in.Image = upload
	return in, nil
}

func imageFromForm(r *http.Request, limit int64) (*domain.Upload, error) {
	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("unreadable file")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, errors.New("unreadable file")
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return &domain.Upload{
		Name:        hdr.Filename,
		ContentType: ct,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// Get handles GET /api/v1/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	o, err := h.usecase.Get(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Order fetched", orderToResponse(*o))
}

// List handles GET /api/v1/orders?page&limit&status.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var status *domain.OrderStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		s := domain.OrderStatus(strings.ToUpper(raw))
		status = &s
	}

	orders, pg, err := h.usecase.List(r.Context(), auth.PrincipalFrom(r.Context()), status, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, "Orders fetched", ordersToResponse(orders), orderPaginationOf(pg))
}

// ListBids handles GET /api/v1/orders/{id}/bids.
func (h *OrderHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	bids, err := h.usecase.ListBids(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "Bids fetched", bidsToResponse(bids))
}
