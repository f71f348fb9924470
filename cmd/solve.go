package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vrptw/app"
	"github.com/kilianp07/vrptw/config"
	"github.com/kilianp07/vrptw/core/vrptw"
	"github.com/kilianp07/vrptw/infra/logger"
	"github.com/kilianp07/vrptw/pkg/export"
)

var solveFlags struct {
	problem   string
	writeLP   string
	output    string
	format    string
	basic     bool
	timeLimit time.Duration
	verbose   bool
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Build and solve the routing model of a problem file",
	RunE:  runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveFlags.problem, "problem", "p", "", "problem file (yaml or json)")
	f.StringVar(&solveFlags.writeLP, "write-lp", "", "write the built model in LP format to this file")
	f.StringVarP(&solveFlags.output, "output", "o", "", "write the result as JSON to this file instead of stdout")
	f.StringVar(&solveFlags.format, "format", "json", "result format: json, csv or html")
	f.BoolVar(&solveFlags.basic, "basic", false, "solve the basic formulation without time window penalties or wait times")
	f.DurationVar(&solveFlags.timeLimit, "time-limit", 0, "override solver.time_limit_seconds")
	f.BoolVarP(&solveFlags.verbose, "verbose", "v", false, "log engine progress")
	_ = solveCmd.MarkFlagRequired("problem")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	write, err := resultWriter(solveFlags.format)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if solveFlags.basic {
		cfg.Formulation.EnableTimeWindowPenalties = false
		cfg.Formulation.EnableWaitTime = false
	}
	if solveFlags.timeLimit > 0 {
		cfg.Solver.TimeLimitSeconds = solveFlags.timeLimit.Seconds()
	}
	if solveFlags.verbose {
		cfg.Solver.Verbose = true
		cfg.Logging.Level = "debug"
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	req := app.Request{ProblemPath: solveFlags.problem}
	if solveFlags.writeLP != "" {
		lp, err := os.Create(solveFlags.writeLP)
		if err != nil {
			return fmt.Errorf("create lp file: %w", err)
		}
		defer lp.Close()
		req.ModelExport = lp
	}

	res, err := svc.Run(ctx, req)
	if res != nil {
		if werr := writeResult(cmd.OutOrStdout(), solveFlags.output, res, write); werr != nil {
			return werr
		}
	}
	return err
}

func resultWriter(format string) (func(io.Writer, *vrptw.Result) error, error) {
	switch format {
	case "json":
		return export.WriteJSON, nil
	case "csv":
		return export.WriteCSV, nil
	case "html":
		return export.WriteChart, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeResult(stdout io.Writer, path string, res *vrptw.Result, write func(io.Writer, *vrptw.Result) error) error {
	out := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return write(out, res)
}
