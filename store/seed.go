package store

import (
	"time"

	"prakriti-darpan/models"
)

// DemoReports returns the fixed sample collection shown on first run,
// newest first, with timestamps relative to now.
func DemoReports(now time.Time) []models.Report {
	ms := now.UnixMilli()
	parkLat, parkLng := 25.3176, 83.0062
	marketLat, marketLng := 25.3109, 83.0107

	return []models.Report{
		{
			ID:           "3",
			Timestamp:    ms - 600000,
			ImageURL:     "https://picsum.photos/400/300?random=3",
			LocationName: "Beniya Bagh Park",
			Latitude:     &parkLat,
			Longitude:    &parkLng,
			TrashType:    models.Paper,
			Severity:     models.Low,
			Description:  "Newspapers left on the grass.",
		},
		{
			ID:           "2",
			Timestamp:    ms - 8000000,
			ImageURL:     "https://picsum.photos/400/300?random=2",
			LocationName: "Godowlia Market",
			Latitude:     &marketLat,
			Longitude:    &marketLng,
			TrashType:    models.Mixed,
			Severity:     models.High,
			Description:  "Overflowing dumpster in the alley.",
		},
		{
			ID:           "1",
			Timestamp:    ms - 10000000,
			ImageURL:     "https://picsum.photos/400/300?random=1",
			LocationName: "Beniya Bagh Park",
			Latitude:     &parkLat,
			Longitude:    &parkLng,
			TrashType:    models.Plastic,
			Severity:     models.Medium,
			Description:  "Plastic bottles scattered near the bench.",
		},
	}
}
