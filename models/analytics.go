package models

// AreaCount is one bar of the "areas with most garbage" chart
type AreaCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TypeCount is one slice of the trash composition chart
type TypeCount struct {
	Name  TrashType `json:"name"`
	Value int       `json:"value"`
}

// DayCount is the number of reports created on one calendar day
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Analytics aggregates the stored reports for the dashboard
type Analytics struct {
	TotalReports        int         `json:"totalReports"`
	CriticalReports     int         `json:"criticalReports"`
	HighOrCriticalCount int         `json:"highOrCriticalReports"`
	UniqueAreas         int         `json:"uniqueAreas"`
	TopArea             string      `json:"topArea"`
	ReportsByArea       []AreaCount `json:"reportsByArea"`
	Composition         []TypeCount `json:"composition"`
	Last7Days           []DayCount  `json:"last7Days"`
	Recent              []Report    `json:"recent"`
}
