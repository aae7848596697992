package services

import (
	"sort"
	"strings"
	"time"

	"prakriti-darpan/models"
)

const (
	topAreaLimit = 10
	recentLimit  = 3
	unknownArea  = "Unknown"
)

type AnalyticsService struct{}

func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

// Generate summarizes reports for the dashboard. Day buckets are calendar
// days in now's location.
func (s *AnalyticsService) Generate(reports []models.Report, now time.Time) models.Analytics {
	out := models.Analytics{
		TotalReports:  len(reports),
		ReportsByArea: []models.AreaCount{},
		Composition:   []models.TypeCount{},
		Recent:        []models.Report{},
	}

	byArea := make(map[string]int)
	byType := make(map[models.TrashType]int)
	for _, r := range reports {
		if r.Severity == models.Critical {
			out.CriticalReports++
		}
		if r.Severity.AtLeastHigh() {
			out.HighOrCriticalCount++
		}
		byArea[AreaName(r.LocationName)]++
		byType[r.TrashType]++
	}

	out.UniqueAreas = len(byArea)
	for name, count := range byArea {
		out.ReportsByArea = append(out.ReportsByArea, models.AreaCount{Name: name, Count: count})
	}
	sort.Slice(out.ReportsByArea, func(i, j int) bool {
		a, b := out.ReportsByArea[i], out.ReportsByArea[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(out.ReportsByArea) > topAreaLimit {
		out.ReportsByArea = out.ReportsByArea[:topAreaLimit]
	}
	if len(out.ReportsByArea) > 0 {
		out.TopArea = out.ReportsByArea[0].Name
	}

	for _, t := range models.TrashTypes {
		if n := byType[t]; n > 0 {
			out.Composition = append(out.Composition, models.TypeCount{Name: t, Value: n})
		}
	}

	out.Last7Days = lastDays(reports, now, 7)

	recent := make([]models.Report, len(reports))
	copy(recent, reports)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp > recent[j].Timestamp })
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	out.Recent = append(out.Recent, recent...)

	return out
}

// AreaName normalizes a location name for grouping.
func AreaName(location string) string {
	if name := strings.TrimSpace(location); name != "" {
		return name
	}
	return unknownArea
}

func lastDays(reports []models.Report, now time.Time, days int) []models.DayCount {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	counts := make([]models.DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(time.DateOnly)
		counts[i] = models.DayCount{Date: date}
		index[date] = i
	}

	for _, r := range reports {
		date := r.CreatedAt().In(loc).Format(time.DateOnly)
		if i, ok := index[date]; ok {
			counts[i].Count++
		}
	}
	return counts
}
