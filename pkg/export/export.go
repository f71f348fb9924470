// Package export writes solved route plans for downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/vrptw/core/vrptw"
)

// WriteJSON writes the result to w as indented JSON.
func WriteJSON(w io.Writer, res *vrptw.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one row per stop: the vehicle, the position of the stop on
// its route, the customer id and the arrival time.
func WriteCSV(w io.Writer, res *vrptw.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"vehicle", "position", "customer", "arrival"}); err != nil {
		return err
	}
	for _, r := range res.Routes {
		for i, stop := range r.Stops {
			arrival := ""
			if i < len(r.Arrivals) {
				arrival = strconv.FormatFloat(r.Arrivals[i], 'f', -1, 64)
			}
			rec := []string{
				strconv.Itoa(r.Vehicle),
				strconv.Itoa(i + 1),
				strconv.Itoa(stop),
				arrival,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
