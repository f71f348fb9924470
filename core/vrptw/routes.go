package vrptw

import (
	"fmt"
	"sort"

	"github.com/kilianp07/vrptw/core/formulation"
	"github.com/kilianp07/vrptw/core/milp"
)

// decodeRoutes follows the arcs chosen for each vehicle from the depot.
// Vehicles that neither leave the depot nor serve anyone are omitted.
func decodeRoutes(f *formulation.Formulation, value func(milp.Var) (float64, error)) ([]Route, error) {
	p := f.Problem()
	n := f.Locations()
	var firstErr error
	val := func(v milp.Var) float64 {
		x, err := value(v)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("read solution: %w", err)
		}
		return x
	}

	var routes []Route
	for v := 0; v < f.Vehicles(); v++ {
		r := Route{Vehicle: v}
		// remaining[i] holds the unused outgoing arcs of i.
		remaining := make([][]int, n)
		touched := make([]bool, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if val(f.Arc(v, i, j)) > 0.5 {
					remaining[i] = append(remaining[i], j)
					r.Distance += p.Distance[i][j]
					touched[i], touched[j] = true, true
				}
			}
		}
		for i := 1; i < n; i++ {
			if y, ok := f.Served(v, i); ok && val(y) > 0.5 {
				touched[i] = true
				r.Service += p.Customers[i].ServiceTime
			}
			if pe, ok := f.EarlyPenalty(v, i); ok {
				r.Penalty += p.Customers[i].PenaltyRate * val(pe)
			}
			if pl, ok := f.LatePenalty(v, i); ok {
				r.Penalty += p.Customers[i].PenaltyRate * val(pl)
			}
		}
		for i := 0; i < n; i++ {
			if w, ok := f.Wait(v, i); ok {
				r.Wait += val(w)
			}
		}
		if firstErr != nil {
			return nil, firstErr
		}

		visited := make([]bool, n)
		// each depot departure starts a trip that ends back at the depot or
		// at a location without unused arcs
		for len(remaining[0]) > 0 {
			cur := 0
			for len(remaining[cur]) > 0 {
				next := remaining[cur][0]
				remaining[cur] = remaining[cur][1:]
				if next == 0 {
					break
				}
				if !visited[next] {
					visited[next] = true
					r.Stops = append(r.Stops, p.Customers[next].ID)
					r.Arrivals = append(r.Arrivals, val(f.Arrival(v, next)))
				}
				cur = next
			}
		}
		for i := 1; i < n; i++ {
			if touched[i] && !visited[i] {
				r.Detached = append(r.Detached, p.Customers[i].ID)
			}
		}
		sort.Ints(r.Detached)
		if firstErr != nil {
			return nil, firstErr
		}
		if len(r.Stops) == 0 && len(r.Detached) == 0 && r.Distance == 0 {
			continue
		}
		routes = append(routes, r)
	}
	return routes, nil
}
