package domain

import "time"

// User is an account of any role.
type User struct {
	ID           string
	Name         string
	Email        *string
	Phone        *string
	Address      *string
	Image        *Image
	PasswordHash string
	Role         Role
	Driver       *DriverProfile
	CreatedAt    time.Time
}

// ProfileUpdate carries the self-service account fields. A nil field means
// "do not change"; a non-nil Image replaces the stored picture.
type ProfileUpdate struct {
	UserID  string
	Name    *string
	Address *string
	Image   *Upload
}

// KYCChecklist reports which verification fields a driver has filled in.
type KYCChecklist struct {
	ProfilePicture bool
	PhoneNumber    bool
	VehicleType    bool
	NumberPlate    bool
	License        bool
}

// Complete reports whether every checklist item is present.
func (c KYCChecklist) Complete() bool {
	return c.ProfilePicture && c.PhoneNumber && c.VehicleType && c.NumberPlate && c.License
}

// ChecklistOf builds the KYC checklist of a driver account.
func ChecklistOf(u *User) KYCChecklist {
	c := KYCChecklist{
		ProfilePicture: u.Image != nil && u.Image.ID != "",
		PhoneNumber:    u.Phone != nil && *u.Phone != "",
	}
	if p := u.Driver; p != nil {
		c.VehicleType = p.VehicleType != ""
		c.NumberPlate = p.NumberPlate != nil && *p.NumberPlate != ""
		c.License = p.License != nil && *p.License != ""
	}
	return c
}

// DriverProfile is the one-to-one extension of a DRIVER user.
type DriverProfile struct {
	UserID      string
	License     *string
	NumberPlate *string
	VehicleType string
	KYCStatus   KYCStatus
	IsActive    bool
	Documents   map[string]Image
	UpdatedAt   time.Time
}

// CanBid reports whether the profile passes the marketplace gate:
// KYC approved and the driver active.
func (p *DriverProfile) CanBid() bool {
	return p != nil && p.KYCStatus == KYCApproved && p.IsActive
}

// DriverProfileUpdate carries the fields a driver submits for KYC.
// A nil field means "do not change" that attribute.
type DriverProfileUpdate struct {
	UserID      string
	License     *string
	NumberPlate *string
	VehicleType *string
}

// KYCDecision is an admin decision on a driver profile.
type KYCDecision struct {
	UserID   string
	Status   KYCStatus
	IsActive *bool
}
