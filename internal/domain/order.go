package domain

import "time"

// Image references a binary asset stored out of band.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Parcel describes what is being delivered.
type Parcel struct {
	Type            string
	Pieces          int
	RecipientName   string
	RecipientNumber string
	AdditionalInfo  string
}

// Fare is the computed breakdown of an order price.
type Fare struct {
	BaseCharges        float64
	DistanceCharges    float64
	TimeCharges        float64
	AdditionalCharges  float64
	TotalEstimatedFare float64
}

// Order is a delivery request created by a customer.
type Order struct {
	ID          string
	CustomerID  string
	DriverID    *string
	PriceID     *string
	VehicleType string
	PickUp      string
	DropOff     string
	Parcel      Parcel
	Fare        Fare
	Image       *Image
	Status      OrderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder is the validated input for creating an order.
type NewOrder struct {
	CustomerID  string
	PriceID     *string
	VehicleType string
	PickUp      string
	DropOff     string
	Parcel      Parcel
	Fare        Fare
	Image       *Upload
}

// OrderFilter scopes an order listing.
type OrderFilter struct {
	CustomerID *string
	Status     *OrderStatus
	// Driver, when set, limits the listing to orders the driver may see:
	// pending orders for its vehicle type plus the ones assigned to it.
	Driver *DriverScope
}

// DriverScope identifies the driver whose visibility limits a listing.
type DriverScope struct {
	DriverID    string
	VehicleType string
}
