package model

import "time"

// The types below describe records owned by the venue, plate-recognition and
// billing systems. This service only shares their shapes.

// Subscription plans and statuses for a Tenant.
const (
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"

	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
)

// Tenant is a venue or organization that owns parking slots.
type Tenant struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Subdomain          string `json:"subdomain"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	SubscriptionPlan   string `json:"subscription_plan"`
	SubscriptionStatus string `json:"subscription_status"`
	TotalSlots         int    `json:"total_slots"`
	IsActive           bool   `json:"is_active"`
}

// Vehicle is a customer car identified by its license plate.
type Vehicle struct {
	ID           int64     `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Make         string    `json:"make,omitempty"`
	Model        string    `json:"model,omitempty"`
	Color        string    `json:"color,omitempty"`
	Year         int       `json:"year,omitempty"`
	OwnerID      int64     `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Parking session statuses.
const (
	ParkingActive    = "active"
	ParkingCompleted = "completed"
	ParkingCancelled = "cancelled"
)

// ParkingSession is one stay of a vehicle in a valet slot.
// Not to be confused with Session, which is a login.
type ParkingSession struct {
	ID                int64      `json:"id"`
	LicensePlate      string     `json:"license_plate"`
	VehicleID         *int64     `json:"vehicle_id,omitempty"`
	CustomerID        int64      `json:"customer_id"`
	ValetStaffID      *int64     `json:"valet_staff_id,omitempty"`
	SlotNumber        string     `json:"slot_number,omitempty"`
	EntryTime         time.Time  `json:"entry_time"`
	ExitTime          *time.Time `json:"exit_time,omitempty"`
	TotalHours        float64    `json:"total_hours"`
	TotalAmount       float64    `json:"total_amount"`
	CleaningRequested bool       `json:"cleaning_requested"`
	CleaningCompleted bool       `json:"cleaning_completed"`
	Status            string     `json:"status"`
	EntryImageURL     string     `json:"entry_image_url,omitempty"`
}

// IsActive reports whether the vehicle is still parked.
func (p *ParkingSession) IsActive() bool {
	return p.Status == ParkingActive && p.ExitTime == nil
}

// BoundingBox locates a detected plate inside an image, in pixels.
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// ANPRResult is the response shape of the plate-recognition engine.
type ANPRResult struct {
	Success       bool         `json:"success"`
	PlateDetected bool         `json:"plate_detected"`
	Confidence    float64      `json:"confidence"`
	PlateText     string       `json:"plate_text"`
	BBox          *BoundingBox `json:"bbox,omitempty"`
}
