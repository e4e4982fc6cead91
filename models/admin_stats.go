package models

// StatusDistribution counts bookings per dashboard bucket
type StatusDistribution struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// ServiceCount is one row of the top-services table
type ServiceCount struct {
	ServiceName string `json:"serviceName"`
	Count       int    `json:"count"`
}

// MonthlyRevenue is one point of the revenue series
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Year    int     `json:"year"`
	Revenue float64 `json:"revenue"`
}

// AdminSummary is derived from the raw collections
type AdminSummary struct {
	PendingTechnicians int                `json:"pendingTechnicians"`
	TotalBookings      int                `json:"totalBookings"`
	TotalUsers         int                `json:"totalUsers"`
	TotalRevenue       float64            `json:"totalRevenue"`
	StatusDistribution StatusDistribution `json:"statusDistribution"`
	TopServices        []ServiceCount     `json:"topServices"`
	RevenueByMonth     []MonthlyRevenue   `json:"revenueByMonth"`
}

// AdminData is the raw fan-out result
type AdminData struct {
	Bookings    []Booking    `json:"bookings"`
	Technicians []Technician `json:"technicians"`
	Users       []User       `json:"users"`
}

// AdminStats is returned by the admin dashboard
type AdminStats struct {
	Data    AdminData    `json:"data"`
	Summary AdminSummary `json:"summary"`
}
