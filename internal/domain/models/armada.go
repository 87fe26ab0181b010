package models

// Armada status values.
const (
	ArmadaAvailable   = "available"
	ArmadaOnDuty      = "on_duty"
	ArmadaMaintenance = "maintenance"
)

type Armada struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	PlateNumber string  `json:"plateNumber"`
	Capacity    int     `json:"capacity"`
	RatePerKm   float64 `json:"ratePerKm"`
	Status      string  `json:"status"`
}

func ValidArmadaStatus(s string) bool {
	switch s {
	case ArmadaAvailable, ArmadaOnDuty, ArmadaMaintenance:
		return true
	}
	return false
}
