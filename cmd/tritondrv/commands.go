package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alexbaden/triton/fixtures"
	"github.com/alexbaden/triton/internal/driver"
	"github.com/alexbaden/triton/internal/kernels"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default config file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "tritondrv.yaml", Usage: "Destination path"},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("out")
			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if c.Bool("force") {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := f.Write(fixtures.ConfigTemplate); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
			return nil
		},
	}
}

func driversCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "drivers",
		Usage: "List registered backends and whether they are active",
		Action: func(c *cli.Context) error {
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tACTIVE")
			for _, name := range driver.Backends() {
				b, err := driver.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%t\n", name, b.IsActive())
			}
			return w.Flush()
		},
	}
}

func targetCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "target",
		Usage: "Show the target and device of the selected backend",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "device", Value: -1, Usage: "Switch to this device first"},
		},
		Action: func(c *cli.Context) error {
			m, err := e.manager()
			if err != nil {
				return err
			}
			d := m.Driver()
			if idx := c.Int("device"); idx >= 0 {
				setter, ok := d.(driver.DeviceSetter)
				if !ok {
					return fmt.Errorf("backend %s cannot switch devices", m.BackendName())
				}
				if err := setter.SetDevice(idx); err != nil {
					return err
				}
			}
			target, err := d.CurrentTarget()
			if err != nil {
				return err
			}
			device, err := d.ActiveDevice()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Backend string        `json:"backend"`
				Target  driver.Target `json:"target"`
				Device  driver.Device `json:"device"`
			}{m.BackendName(), target, device})
		},
	}
}

func mapTypeCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "map-type",
		Usage:     "Map compiler type strings to the backend's native types",
		ArgsUsage: "TYPE...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one type is required")
			}
			m, err := e.manager()
			if err != nil {
				return err
			}
			tys := make([]driver.TypeString, c.NArg())
			for i, arg := range c.Args().Slice() {
				tys[i] = driver.TypeString(arg)
			}
			native, err := m.MapTypes(tys)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for i, ty := range tys {
				fmt.Fprintf(w, "%s\t%s\n", ty, native[i])
			}
			return w.Flush()
		},
	}
}

func benchCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Benchmark a host matmul kernel with the selected backend's benchmarker",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Value: 128, Usage: "Square matrix size"},
			&cli.Float64SliceFlag{Name: "quantile", Usage: "Quantile to report, repeatable"},
			&cli.StringFlag{Name: "return-mode", Usage: "Reduction when no quantile is given"},
		},
		Action: func(c *cli.Context) error {
			m, err := e.manager()
			if err != nil {
				return err
			}
			size := c.Int("size")
			mm, err := kernels.NewMatMul(size, size, size)
			if err != nil {
				return err
			}

			cfg := driver.BenchConfig{
				Quantiles:  c.Float64Slice("quantile"),
				ReturnMode: c.String("return-mode"),
			}
			res, err := m.Benchmarker()(mm.Launch, cfg)
			if err != nil {
				return err
			}
			e.log.Debug("Benchmark finished",
				zap.String("backend", m.BackendName()),
				zap.Int("size", size),
				zap.Float64s("ms", res))

			if len(cfg.Quantiles) == 0 && cfg.ReturnMode == "" {
				cfg.Quantiles = e.cfg.Benchmark.Quantiles
				cfg.ReturnMode = e.cfg.Benchmark.ReturnMode
			}
			labels := benchLabels(cfg, len(res))
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STAT\tMS\tGFLOPS")
			for i, ms := range res {
				fmt.Fprintf(w, "%s\t%.4f\t%.2f\n", labels[i], ms, mm.GFLOPS(ms))
			}
			return w.Flush()
		},
	}
}

func benchLabels(cfg driver.BenchConfig, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		switch {
		case len(cfg.Quantiles) == n:
			labels[i] = fmt.Sprintf("p%g", cfg.Quantiles[i]*100)
		case n == 1 && cfg.ReturnMode != "":
			labels[i] = cfg.ReturnMode
		default:
			labels[i] = fmt.Sprintf("#%d", i)
		}
	}
	return labels
}
