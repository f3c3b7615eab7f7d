package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/server"
	"github.com/san-kum/physlab/internal/viz"
)

var (
	configFile string
	preset     string
	dt         float64
	maxTime    float64
	speed      float64
	// projectile parameters
	mass   float64
	v0     float64
	angle  float64
	drag   float64
	wind   float64
	// output
	emitCSV bool
	// serve
	addr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "physlab",
		Short: "real-time physics demonstrations",
	}

	runCmd := &cobra.Command{
		Use:   "run [variant]",
		Short: "run a simulation to completion and report metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runHeadless,
	}
	addParamFlags(runCmd)
	runCmd.Flags().BoolVar(&emitCSV, "csv", false, "write samples as CSV to stdout")

	liveCmd := &cobra.Command{
		Use:   "live [variant]",
		Short: "run with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addParamFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "expose the engine protocol over a websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.New(log.Default()).ListenAndServe(addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8729", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets [variant]",
		Short: "list available presets for a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(config.Variant(args[0]))
			if len(names) == 0 {
				fmt.Printf("no presets for variant: %s\n", args[0])
				return nil
			}
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 0, "fixed timestep (seconds)")
	cmd.Flags().Float64Var(&maxTime, "time", 0, "maximum simulated duration")
	cmd.Flags().Float64Var(&speed, "speed", 0, "real-to-simulated time multiplier")
	cmd.Flags().Float64Var(&mass, "mass", 0, "projectile mass")
	cmd.Flags().Float64Var(&v0, "v0", 0, "launch speed")
	cmd.Flags().Float64Var(&angle, "angle", -1, "launch angle (degrees)")
	cmd.Flags().Float64Var(&drag, "drag", -1, "drag coefficient")
	cmd.Flags().Float64Var(&wind, "wind", 0, "horizontal wind speed")
}

// buildParams merges preset, config file, and flags, in that order of
// increasing precedence, then clamps.
func buildParams(cmd *cobra.Command, variant config.Variant) (config.Params, error) {
	p := config.Default(variant)

	if preset != "" {
		pp := config.GetPreset(variant, preset)
		if pp == nil {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(variant))
		}
		p = *pp
	}

	if configFile != "" {
		cp, err := config.Load(configFile)
		if err != nil {
			return p, fmt.Errorf("failed to load config: %w", err)
		}
		p = *cp
		p.Variant = variant
	}

	if cmd.Flags().Changed("dt") {
		p.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		p.MaxDuration = maxTime
	}
	if cmd.Flags().Changed("speed") {
		p.TimeScale = speed
	}
	if cmd.Flags().Changed("mass") {
		p.Mass = mass
	}
	if cmd.Flags().Changed("v0") {
		p.LaunchSpeed = v0
	}
	if cmd.Flags().Changed("angle") {
		p.LaunchAngle = angle
	}
	if cmd.Flags().Changed("drag") {
		p.DragCoeff = drag
	}
	if cmd.Flags().Changed("wind") {
		p.Wind = wind
	}

	for _, adj := range p.Clamp() {
		fmt.Fprintf(os.Stderr, "adjusted %s\n", adj)
	}
	return p, nil
}

// runHeadless steps the simulation synchronously, with no wall-clock
// pacing, and reports what happened.
func runHeadless(cmd *cobra.Command, args []string) error {
	variant := config.Variant(args[0])
	p, err := buildParams(cmd, variant)
	if err != nil {
		return err
	}

	sim, err := physics.New(p)
	if err != nil {
		return err
	}

	var observers []metrics.Metric
	if variant == config.VariantTwoBody {
		observers = []metrics.Metric{
			metrics.NewFlightTime(),
			metrics.NewMomentumBalance(),
			metrics.NewEnergyDrift(p.Body1.Mass, p.Body2.Mass),
		}
	} else {
		observers = []metrics.Metric{
			metrics.NewFlightTime(),
			metrics.NewRange(),
			metrics.NewApex(),
		}
	}

	samples := sim.Seed()
	observe(observers, sim.Snapshot())

	for {
		batch, done := sim.Step()
		samples = append(samples, batch...)
		observe(observers, sim.Snapshot())
		if done {
			break
		}
	}

	if emitCSV {
		return writeCSV(samples)
	}

	plotTrajectories(variant, samples)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, m := range observers {
		fmt.Fprintf(w, "%s\t%.6f\n", m.Name(), m.Value())
	}
	fmt.Fprintf(w, "samples\t%d\n", len(samples))
	return w.Flush()
}

func observe(observers []metrics.Metric, st physics.State) {
	for _, m := range observers {
		m.Observe(st)
	}
}

func plotTrajectories(variant config.Variant, samples []physics.Sample) {
	bodies := 1
	if variant == config.VariantTwoBody {
		bodies = 2
	}
	for body := 0; body < bodies; body++ {
		ys := make([]float64, 0, len(samples))
		for _, s := range samples {
			if s.Body == body {
				ys = append(ys, s.Y)
			}
		}
		if len(ys) == 0 {
			continue
		}
		graph := asciigraph.Plot(ys,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d: y vs step", body)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
}

func writeCSV(samples []physics.Sample) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"body", "t", "x", "y", "speed"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Body),
			strconv.FormatFloat(s.T, 'f', 6, 64),
			strconv.FormatFloat(s.X, 'f', 6, 64),
			strconv.FormatFloat(s.Y, 'f', 6, 64),
			strconv.FormatFloat(s.Speed, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	p, err := buildParams(cmd, config.Variant(args[0]))
	if err != nil {
		return err
	}
	prog := tea.NewProgram(viz.NewModel(p, p.TimeScale))
	_, err = prog.Run()
	return err
}
