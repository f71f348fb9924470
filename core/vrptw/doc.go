// Package vrptw solves the Vehicle Routing Problem with Time Windows by
// building a mixed integer program and handing it to a milp.Engine.
//
// Every call to Solver.Solve opens its own engine session and model and
// releases both before returning, whatever the outcome. A Solver keeps no
// state between calls and may be shared by goroutines.
package vrptw
