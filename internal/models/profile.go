package models

type Profile struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TurfName string `json:"turfName,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Registration opens a new turf account on the data service.
type Registration struct {
	Name     string `json:"name"`
	TurfName string `json:"turfName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Business holds what gets printed on invoices and reports.
type Business struct {
	TurfName string `yaml:"turf_name" json:"turf_name"`
	Address  string `yaml:"address" json:"address"`
	Phone    string `yaml:"phone" json:"phone"`
	UPIID    string `yaml:"upi_id" json:"upi_id"`
}
