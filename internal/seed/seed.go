// Package seed builds the demo dataset loaded by `bookingctl seed`.
package seed

import (
	"fmt"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"service-booking/internal/domain"
	"service-booking/internal/repository"
)

// Password is the password of every seeded account.
const Password = "password123"

type account struct {
	name, email, phone string
	role               domain.Role
}

var accounts = []account{
	{"Admin User", "admin@example.com", "1234567890", domain.RoleAdmin},
	{"John Doe", "customer@example.com", "0987654321", domain.RoleCustomer},
	{"Jane Doe", "jane@example.com", "0987654322", domain.RoleCustomer},
	{"Alice Smith", "alice@example.com", "0987654323", domain.RoleCustomer},
	{"Delivery Driver", "driver@example.com", "1122334455", domain.RoleDriver},
	{"James Bond", "james@example.com", "1122334466", domain.RoleDriver},
	{"Mike Ross", "mike@example.com", "1122334477", domain.RoleDriver},
}

var pricing = []domain.Pricing{
	{ServiceType: "Standard Delivery", BaseFare: 5.0, PerKmRate: 1.2, PerMinRate: 0.5, IsActive: true},
	{ServiceType: "Express Delivery", BaseFare: 8.0, PerKmRate: 1.5, PerMinRate: 0.8, IsActive: true},
	{ServiceType: "Economy Delivery", BaseFare: 3.0, PerKmRate: 1.0, PerMinRate: 0.4, IsActive: true},
}

var vehicleTypes = []string{"Motorbike", "Car"}

var parcelTypes = []string{"Documents", "Electronics", "Groceries", "Clothing"}

// Build returns the demo dataset. passwordHash is stored for every account;
// fake fills addresses, recipients and trip lengths.
//
// Customers alternate between a PENDING order with no driver and a
// COMPLETED order with a DELIVERED dispatch from the drivers in turn.
// Every order has a PENDING transaction for its fare.
func Build(passwordHash string, fake faker.Faker) *repository.Dataset {
	ds := &repository.Dataset{}

	var customers, drivers []domain.User
	for _, a := range accounts {
		email, phone := a.email, a.phone
		u := domain.User{
			ID:           cuid.New(),
			Name:         a.name,
			Email:        &email,
			Phone:        &phone,
			PasswordHash: passwordHash,
			Role:         a.role,
		}
		switch a.role {
		case domain.RoleDriver:
			license := fmt.Sprintf("DRIVER00%d", len(drivers)+1)
			plate := fmt.Sprintf("KDA %03d%c", len(drivers)+1, 'A'+rune(len(drivers)))
			u.Driver = &domain.DriverProfile{
				License:     &license,
				NumberPlate: &plate,
				VehicleType: vehicleTypes[len(drivers)%len(vehicleTypes)],
				KYCStatus:   domain.KYCApproved,
				IsActive:    true,
			}
			drivers = append(drivers, u)
		case domain.RoleCustomer:
			customers = append(customers, u)
		}
		ds.Users = append(ds.Users, u)
	}

	for _, p := range pricing {
		p.ID = cuid.New()
		ds.Pricing = append(ds.Pricing, p)
	}

	for i, c := range customers {
		price := ds.Pricing[i%len(ds.Pricing)]
		est := price.Estimate(float64(fake.IntBetween(2, 25)), float64(fake.IntBetween(10, 60)))
		priceID := price.ID

		o := domain.Order{
			ID:          cuid.New(),
			CustomerID:  c.ID,
			PriceID:     &priceID,
			VehicleType: vehicleTypes[i%len(vehicleTypes)],
			PickUp:      fake.Address().Address(),
			DropOff:     fake.Address().Address(),
			Parcel: domain.Parcel{
				Type:            fake.RandomStringElement(parcelTypes),
				Pieces:          fake.IntBetween(1, 4),
				RecipientName:   fake.Person().Name(),
				RecipientNumber: fake.Phone().Number(),
				AdditionalInfo:  fake.Lorem().Sentence(6),
			},
			Fare: domain.Fare{
				BaseCharges:        est.BaseCharges,
				DistanceCharges:    est.DistanceCharges,
				TimeCharges:        est.TimeCharges,
				TotalEstimatedFare: est.Total,
			},
			Status: domain.OrderPending,
		}

		if i%2 == 1 && len(drivers) > 0 {
			d := drivers[i%len(drivers)]
			driverID := d.ID
			o.DriverID = &driverID
			o.VehicleType = d.Driver.VehicleType
			o.Status = domain.OrderCompleted
			ds.Dispatches = append(ds.Dispatches, domain.Dispatch{
				OrderID:  o.ID,
				DriverID: d.ID,
				Status:   domain.DispatchDelivered,
			})
		}
		ds.Orders = append(ds.Orders, o)

		method := domain.PaymentMobileMoney
		if i%2 == 1 {
			method = domain.PaymentCard
		}
		ds.Transactions = append(ds.Transactions, domain.Transaction{
			OrderID:       o.ID,
			CustomerID:    c.ID,
			Amount:        est.Total,
			PaymentMethod: method,
			Status:        domain.PaymentPending,
		})
	}
	return ds
}
