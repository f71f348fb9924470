package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vrptw/core/subtour"
	"github.com/kilianp07/vrptw/infra/problemfile"
)

var subsetsFlags struct {
	problem   string
	customers int
	countOnly bool
}

var subsetsCmd = &cobra.Command{
	Use:   "subsets",
	Short: "List the customer subsets forbidden as sub-tours",
	RunE:  runSubsets,
}

func init() {
	f := subsetsCmd.Flags()
	f.StringVarP(&subsetsFlags.problem, "problem", "p", "", "problem file whose customer ids are enumerated")
	f.IntVarP(&subsetsFlags.customers, "customers", "n", 0, "enumerate over ids 1..n when no problem is given")
	f.BoolVar(&subsetsFlags.countOnly, "count", false, "print only the number of subsets")
	rootCmd.AddCommand(subsetsCmd)
}

func runSubsets(cmd *cobra.Command, args []string) error {
	var ids []int
	switch {
	case subsetsFlags.problem != "":
		p, err := problemfile.Load(subsetsFlags.problem)
		if err != nil {
			return fmt.Errorf("load problem: %w", err)
		}
		ids = p.CustomerIDs()
	case subsetsFlags.customers > 0:
		for i := 1; i <= subsetsFlags.customers; i++ {
			ids = append(ids, i)
		}
	default:
		return fmt.Errorf("either --problem or --customers is required")
	}

	if len(ids) > subtour.MaxCustomers {
		return fmt.Errorf("%w: %d > %d", subtour.ErrTooManyCustomers, len(ids), subtour.MaxCustomers)
	}
	out := cmd.OutOrStdout()
	if subsetsFlags.countOnly {
		_, err := fmt.Fprintln(out, subtour.Count(len(ids)))
		return err
	}
	sets, err := subtour.Exhaustive{}.Subsets(ids)
	if err != nil {
		return err
	}
	for _, s := range sets {
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "%d subsets\n", len(sets))
	return err
}
