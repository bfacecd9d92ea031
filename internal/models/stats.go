package models

// CallVolume holds today's phone incident counts in eight 3-hour buckets,
// earliest first.
type CallVolume struct {
	HourlyCounts []int `json:"hourly_counts"`
}

// DashboardStats summarizes a company's incidents.
type DashboardStats struct {
	TotalCalls  int `json:"total_calls"`
	OpenTickets int `json:"open_tickets"`
}

// ManagerDailyStats summarizes a manager's workload. Only IncidentsHandled
// is computed.
type ManagerDailyStats struct {
	IncidentsHandled     int     `json:"incidentsHandled"`
	AvgResolutionTime    string  `json:"avgResolutionTime"`
	CustomerSatisfaction float64 `json:"customerSatisfaction"`
}

// UserIncidents wraps the incidents-user listing.
type UserIncidents struct {
	Incidents []UserIncident `json:"incidents"`
}
