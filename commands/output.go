package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"prakriti-darpan/models"

	"github.com/goccy/go-json"
)

func printReports(w io.Writer, format string, reports []models.Report) error {
	if format == "json" {
		return writeJSON(w, reports)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tLOCATION\tTYPE\tSEVERITY")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt().Format(time.DateTime), r.LocationName, r.TrashType, r.Severity)
	}
	fmt.Fprintf(tw, "\n%d report(s)\n", len(reports))
	return tw.Flush()
}

func printReport(w io.Writer, format string, r models.Report) error {
	if format == "json" {
		return writeJSON(w, r)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Created:\t%s\n", r.CreatedAt().Format(time.DateTime))
	fmt.Fprintf(tw, "Location:\t%s\n", r.LocationName)
	if r.HasCoordinates() {
		fmt.Fprintf(tw, "Coordinates:\t%.5f, %.5f\n", *r.Latitude, *r.Longitude)
	}
	fmt.Fprintf(tw, "Type:\t%s\n", r.TrashType)
	fmt.Fprintf(tw, "Severity:\t%s\n", r.Severity)
	fmt.Fprintf(tw, "Description:\t%s\n", r.Description)
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
