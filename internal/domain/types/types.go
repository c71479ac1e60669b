package types

type ServiceMode string

// Driver Service - Handles driver accounts and the parking-session lifecycle (start/stop/pay)
// Owner Service - Handles parking-owner accounts, payment policies and payment verification
const (
	DriverService ServiceMode = "driver-service"
	OwnerService  ServiceMode = "owner-service"
)

// Enum for account roles
type AccountRole string

func (r AccountRole) String() string {
	return string(r)
}

const (
	DriverRole AccountRole = "DRIVER"
	OwnerRole  AccountRole = "OWNER"
)

// Enum for session payment status
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)
