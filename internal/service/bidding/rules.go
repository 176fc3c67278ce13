package bidding

import (
	"service-booking/internal/apperr"
	"service-booking/internal/domain"
)

// Rejection reasons. They are logged and counted; the caller only sees the kind.
const (
	reasonKYCNotApproved = "kyc_not_approved"
	reasonDriverInactive = "driver_inactive"
	reasonOrderNotFound  = "order_not_found"
	reasonOrderNotOpen   = "order_not_pending"
	reasonVehicle        = "vehicle_mismatch"
)

func checkDriver(p *domain.DriverProfile) error {
	switch {
	case p == nil || p.KYCStatus != domain.KYCApproved:
		return apperr.Reject(apperr.ErrDriverNotEligible, reasonKYCNotApproved)
	case !p.IsActive:
		return apperr.Reject(apperr.ErrDriverNotEligible, reasonDriverInactive)
	default:
		return nil
	}
}

func checkOrder(o *domain.Order, vehicleType string) error {
	switch {
	case o == nil:
		return apperr.Reject(apperr.ErrOrderNotAvailable, reasonOrderNotFound)
	case o.Status != domain.OrderPending:
		return apperr.Reject(apperr.ErrOrderNotAvailable, reasonOrderNotOpen)
	case o.VehicleType != vehicleType:
		return apperr.Reject(apperr.ErrOrderNotAvailable, reasonVehicle)
	default:
		return nil
	}
}
