package main

import (
	"fmt"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grassrenderer/config"
	"grassrenderer/core"
	"grassrenderer/gpu"
	"grassrenderer/simulation"
)

type simulateOptions struct {
	frames int
	dt     float64
	out    string
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	so := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the bending model on the CPU without a window",
		Long: "Runs the same frame sequence as the windowed renderer against the CPU\n" +
			"simulator and optionally writes the final blade buffer as raw records.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := simulate(settings, so, log); err != nil {
				log.Error("Simulation failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&so.frames, "frames", "n", 600, "frames to simulate")
	cmd.Flags().Float64Var(&so.dt, "dt", 1.0/60, "seconds between frames")
	cmd.Flags().StringVarP(&so.out, "out", "o", "", "write the final blade records to this file")
	return cmd
}

// headlessBackend stands in for the GL renderer: there is nothing to draw,
// but it keeps count so the frame sequence can be checked in the summary.
type headlessBackend struct {
	barriers int
	draws    int
	lastDraw int
}

func (h *headlessBackend) SetCamera(core.CameraState) {}

func (h *headlessBackend) MemoryBarrier(bits uint32) {
	h.barriers++
}

func (h *headlessBackend) DrawIndirect(buffer int) {
	h.draws++
	h.lastDraw = buffer
}

// FieldSummary describes how far the field has bent from rest
type FieldSummary struct {
	Blades        int
	MaxTipOffset  float32
	MeanTipOffset float32
	MinTipHeight  float32
}

func summarize(blades []core.BladeRecord) FieldSummary {
	s := FieldSummary{Blades: len(blades), MinTipHeight: math32.Inf(1)}
	if len(blades) == 0 {
		s.MinTipHeight = 0
		return s
	}
	var total float32
	for i := range blades {
		b := &blades[i]
		offset := b.V1.Vec3().Sub(b.RestTip()).Len()
		total += offset
		s.MaxTipOffset = math32.Max(s.MaxTipOffset, offset)
		tipHeight := b.V1.Vec3().Sub(b.Position()).Dot(b.UpVector())
		s.MinTipHeight = math32.Min(s.MinTipHeight, tipHeight)
	}
	s.MeanTipOffset = total / float32(len(blades))
	return s
}

func simulate(settings config.Settings, so *simulateOptions, log *zap.Logger) error {
	if so.frames <= 0 {
		return fmt.Errorf("frames must be > 0, got %d", so.frames)
	}
	if !(so.dt >= 0) {
		return fmt.Errorf("dt must be >= 0, got %g", so.dt)
	}

	blades, err := core.GenerateField(settings.FieldConfig())
	if err != nil {
		return err
	}
	log.Info("Field generated", zap.Int("blades", len(blades)))

	sim := gpu.NewCPUSimulator(blades, settings.PhysicsParams())
	defer sim.Release()
	backend := &headlessBackend{}
	scheduler := gpu.NewFrameScheduler(sim, backend)

	step := simulation.NewTimeStep(settings.MaxDelta())
	driver := simulation.NewDriver(simulation.NewWindControl(settings.Wind), step,
		simulation.NewGusts(settings.Simulation.GustSeed))

	start := time.Now()
	for i := 0; i < so.frames; i++ {
		wind := driver.Next(float64(i) * so.dt)
		scheduler.RunFrame(wind, core.CameraState{})
	}
	elapsed := time.Since(start)

	front := sim.Buffer(scheduler.Front())
	summary := summarize(front)
	log.Info("Simulation finished",
		zap.Uint64("frames", scheduler.Frames()),
		zap.Int("barriers", backend.barriers),
		zap.Int("draws", backend.draws),
		zap.Float32("simTime", driver.Clock()),
		zap.Float32("lastStep", step.CurrentStep),
		zap.Duration("elapsed", elapsed),
		zap.Float32("maxTipOffset", summary.MaxTipOffset),
		zap.Float32("meanTipOffset", summary.MeanTipOffset),
		zap.Float32("minTipHeight", summary.MinTipHeight))

	if so.out != "" {
		if err := os.WriteFile(so.out, core.EncodeBlades(nil, front), 0o644); err != nil {
			return fmt.Errorf("write blades: %w", err)
		}
		log.Info("Blade records written", zap.String("path", so.out), zap.Int("bytes", len(front)*core.BladeRecordSize))
	}
	return nil
}
