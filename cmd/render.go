package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/analysis"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/zrr"
)

// printJSON writes the raw result JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult writes a human-readable summary of an analysis result.
func renderResult(w io.Writer, res *analysis.Result) {
	if res.CompanyName != "" {
		fmt.Fprintf(w, "Company:  %s\n", res.CompanyName)
	}
	fmt.Fprintf(w, "Address:  %s\n", orDash(res.Address))
	fmt.Fprintf(w, "Commune:  %s\n", orDash(res.CityCode))
	fmt.Fprintln(w)

	switch res.ZRR {
	case zrr.StatusMember:
		fmt.Fprintf(w, "ZRR: member (%s)\n", res.ZRRLabel)
	case zrr.StatusNotMember:
		fmt.Fprintln(w, "ZRR: not a member")
	default:
		fmt.Fprintln(w, "ZRR: unknown (commune not resolved)")
	}

	if res.QPV == nil {
		fmt.Fprintln(w, "QPV: unknown (coordinates not resolved)")
		return
	}
	if res.QPV.Contained {
		fmt.Fprintln(w, "QPV: inside a priority district")
		for _, z := range res.QPV.Within {
			fmt.Fprintf(w, "  - %s %s (%s)\n", z.Code, z.Name, z.Commune)
		}
	} else {
		fmt.Fprintln(w, "QPV: outside all priority districts")
	}
	if res.QPV.Nearest != nil {
		fmt.Fprintf(w, "Nearest district: %s %s (%s) at %.3f km\n",
			res.QPV.Nearest.Code, res.QPV.Nearest.Name, res.QPV.Nearest.Commune,
			res.QPV.Nearest.DistanceKM)
		if res.QPV.WithinOneKM && !res.QPV.Contained {
			fmt.Fprintln(w, "Within 1 km of a priority district")
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
