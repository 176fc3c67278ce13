package handlers

import (
	"time"

	"service-booking/internal/domain"
)

type orderPagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalOrders int  `json:"totalOrders"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type listPagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func orderPaginationOf(p domain.Pagination) orderPagination {
	return orderPagination{
		Page:        p.Page,
		Limit:       p.Limit,
		TotalOrders: p.Total,
		TotalPages:  p.TotalPages,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
}

func listPaginationOf(p domain.Pagination) listPagination {
	return listPagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
}

type userResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Email     *string                `json:"email,omitempty"`
	Phone     *string                `json:"phone,omitempty"`
	Address   *string                `json:"address,omitempty"`
	Image     *domain.Image          `json:"image,omitempty"`
	Role      domain.Role            `json:"role"`
	Driver    *driverProfileResponse `json:"driverProfile,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type driverProfileResponse struct {
	UserID      string                  `json:"userId"`
	License     *string                 `json:"license"`
	NumberPlate *string                 `json:"numberPlate"`
	VehicleType string                  `json:"vehicleType"`
	KYCStatus   domain.KYCStatus        `json:"kycStatus"`
	IsActive    bool                    `json:"isActive"`
	Documents   map[string]domain.Image `json:"documents,omitempty"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

func userToResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Image:     u.Image,
		Role:      u.Role,
		Driver:    profileToResponse(u.Driver),
		CreatedAt: u.CreatedAt,
	}
}

type kycStatusResponse struct {
	ProfilePicture bool `json:"profilePicture"`
	PhoneNumber    bool `json:"phoneNumber"`
	VehicleType    bool `json:"vehicleType"`
	NumberPlate    bool `json:"numberPlate"`
	License        bool `json:"license"`
	Complete       bool `json:"complete"`
}

func kycStatusToResponse(c domain.KYCChecklist) kycStatusResponse {
	return kycStatusResponse{
		ProfilePicture: c.ProfilePicture,
		PhoneNumber:    c.PhoneNumber,
		VehicleType:    c.VehicleType,
		NumberPlate:    c.NumberPlate,
		License:        c.License,
		Complete:       c.Complete(),
	}
}

func profileToResponse(p *domain.DriverProfile) *driverProfileResponse {
	if p == nil {
		return nil
	}
	return &driverProfileResponse{
		UserID:      p.UserID,
		License:     p.License,
		NumberPlate: p.NumberPlate,
		VehicleType: p.VehicleType,
		KYCStatus:   p.KYCStatus,
		IsActive:    p.IsActive,
		Documents:   p.Documents,
		UpdatedAt:   p.UpdatedAt,
	}
}

type orderResponse struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customerId"`
	DriverID           *string            `json:"driverId"`
	PriceID            *string            `json:"priceId"`
	VehicleType        string             `json:"vehicleType"`
	PickUp             string             `json:"pickUp"`
	DropOff            string             `json:"dropOff"`
	ParcelType         string             `json:"parcelType"`
	Pieces             int                `json:"pieces"`
	RecipientName      string             `json:"recipientName"`
	RecipientNumber    string             `json:"recipientNumber"`
	AdditionalInfo     string             `json:"additionalInfo,omitempty"`
	BaseCharges        float64            `json:"baseCharges"`
	DistanceCharges    float64            `json:"distanceCharges"`
	TimeCharges        float64            `json:"timeCharges"`
	AdditionalCharges  float64            `json:"additionalCharges"`
	TotalEstimatedFare float64            `json:"totalEstimatedFare"`
	Image              *domain.Image      `json:"image"`
	Status             domain.OrderStatus `json:"status"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

func orderToResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		DriverID:           o.DriverID,
		PriceID:            o.PriceID,
		VehicleType:        o.VehicleType,
		PickUp:             o.PickUp,
		DropOff:            o.DropOff,
		ParcelType:         o.Parcel.Type,
		Pieces:             o.Parcel.Pieces,
		RecipientName:      o.Parcel.RecipientName,
		RecipientNumber:    o.Parcel.RecipientNumber,
		AdditionalInfo:     o.Parcel.AdditionalInfo,
		BaseCharges:        o.Fare.BaseCharges,
		DistanceCharges:    o.Fare.DistanceCharges,
		TimeCharges:        o.Fare.TimeCharges,
		AdditionalCharges:  o.Fare.AdditionalCharges,
		TotalEstimatedFare: o.Fare.TotalEstimatedFare,
		Image:              o.Image,
		Status:             o.Status,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func ordersToResponse(in []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(in))
	for _, o := range in {
		out = append(out, orderToResponse(o))
	}
	return out
}

type bidResponse struct {
	ID        string           `json:"id"`
	OrderID   string           `json:"orderId"`
	DriverID  string           `json:"driverId"`
	Amount    float64          `json:"amount"`
	Status    domain.BidStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func bidToResponse(b domain.Bid) bidResponse {
	return bidResponse{
		ID:        b.ID,
		OrderID:   b.OrderID,
		DriverID:  b.DriverID,
		Amount:    b.Amount,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bidsToResponse(in []domain.Bid) []bidResponse {
	out := make([]bidResponse, 0, len(in))
	for _, b := range in {
		out = append(out, bidToResponse(b))
	}
	return out
}

type decisionResponse struct {
	Bid          bidResponse       `json:"bid"`
	Order        orderResponse     `json:"order"`
	Dispatch     *dispatchResponse `json:"dispatch,omitempty"`
	RejectedBids []bidResponse     `json:"rejectedBids"`
}

func decisionToResponse(d domain.DecisionResult) decisionResponse {
	res := decisionResponse{
		Bid:          bidToResponse(d.Bid),
		Order:        orderToResponse(d.Order),
		RejectedBids: bidsToResponse(d.Rejected),
	}
	if d.Dispatch != nil {
		dr := dispatchToResponse(*d.Dispatch)
		res.Dispatch = &dr
	}
	return res
}

type dispatchResponse struct {
	ID        string                `json:"id"`
	OrderID   string                `json:"orderId"`
	DriverID  string                `json:"driverId"`
	Status    domain.DispatchStatus `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func dispatchToResponse(d domain.Dispatch) dispatchResponse {
	return dispatchResponse{
		ID:        d.ID,
		OrderID:   d.OrderID,
		DriverID:  d.DriverID,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type transactionResponse struct {
	ID            string               `json:"id"`
	OrderID       string               `json:"orderId"`
	CustomerID    string               `json:"customerId"`
	Amount        float64              `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Status        domain.PaymentStatus `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func transactionToResponse(t domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		OrderID:       t.OrderID,
		CustomerID:    t.CustomerID,
		Amount:        t.Amount,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
	}
}

type pricingResponse struct {
	ID          string    `json:"id"`
	ServiceType string    `json:"serviceType"`
	BaseFare    float64   `json:"baseFare"`
	PerKmRate   float64   `json:"perKmRate"`
	PerMinRate  float64   `json:"perMinRate"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func pricingToResponse(p domain.Pricing) pricingResponse {
	return pricingResponse{
		ID:          p.ID,
		ServiceType: p.ServiceType,
		BaseFare:    p.BaseFare,
		PerKmRate:   p.PerKmRate,
		PerMinRate:  p.PerMinRate,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

type estimateResponse struct {
	PriceID         string  `json:"priceId"`
	BaseCharges     float64 `json:"baseCharges"`
	DistanceCharges float64 `json:"distanceCharges"`
	TimeCharges     float64 `json:"timeCharges"`
	Total           float64 `json:"totalEstimatedFare"`
}
