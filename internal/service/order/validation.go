package order

import (
	"fmt"
	"strings"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
)

// MaxImageSize is the largest accepted order image.
const MaxImageSize = 5 << 20

const imageFolder = "orders"

func normalize(in *domain.NewOrder) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	in.PickUp = strings.TrimSpace(in.PickUp)
	in.DropOff = strings.TrimSpace(in.DropOff)
	in.Parcel.Type = strings.TrimSpace(in.Parcel.Type)
	in.Parcel.RecipientName = strings.TrimSpace(in.Parcel.RecipientName)
	in.Parcel.RecipientNumber = strings.TrimSpace(in.Parcel.RecipientNumber)
	in.Parcel.AdditionalInfo = strings.TrimSpace(in.Parcel.AdditionalInfo)
	if in.PriceID != nil {
		id := strings.TrimSpace(*in.PriceID)
		if id == "" {
			in.PriceID = nil
		} else {
			in.PriceID = &id
		}
	}
}

func validate(in domain.NewOrder) error {
	v := apperr.NewValidation()
	v.Check(in.VehicleType != "", "vehicleType", "required")
	v.Check(in.PickUp != "", "pickUp", "required")
	v.Check(in.DropOff != "", "dropOff", "required")
	v.Check(in.Parcel.Type != "", "parcelType", "required")
	v.Check(in.Parcel.Pieces > 0, "pieces", "must be positive")
	v.Check(in.Parcel.RecipientName != "", "recipientName", "required")
	v.Check(in.Parcel.RecipientNumber != "", "recipientNumber", "required")

	f := in.Fare
	v.Check(f.BaseCharges > 0, "baseCharges", "must be positive")
	v.Check(f.DistanceCharges > 0, "distanceCharges", "must be positive")
	v.Check(f.TimeCharges > 0, "timeCharges", "must be positive")
	// zero is an absent surcharge; the form and JSON bodies cannot omit it otherwise
	v.Check(f.AdditionalCharges >= 0, "additionalCharges", "must not be negative")
	v.Check(f.TotalEstimatedFare > 0, "totalEstimatedFare", "must be positive")

	if img := in.Image; img != nil {
		v.Check(len(img.Data) > 0, "image", "empty file")
		v.Check(int64(len(img.Data)) <= MaxImageSize, "image", fmt.Sprintf("must be at most %d bytes", MaxImageSize))
		v.Check(strings.HasPrefix(img.ContentType, "image/"), "image", "must be an image")
	}
	return v.Err()
}
