package models

// Crew roles and statuses.
const (
	CrewDriver    = "driver"
	CrewConductor = "conductor"

	CrewActive   = "active"
	CrewInactive = "inactive"
)

// CrewMember is a driver or conductor. ArmadaID is the informational "home"
// bus; nothing else enforces it.
type CrewMember struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	ArmadaID *int64 `json:"armadaId,omitempty"`
}

func ValidCrewRole(r string) bool {
	return r == CrewDriver || r == CrewConductor
}

func ValidCrewStatus(s string) bool {
	return s == CrewActive || s == CrewInactive
}
