package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grassrenderer/config"
	"grassrenderer/core"
	"grassrenderer/gpu"
	"grassrenderer/metrics"
	"grassrenderer/rendering/opengl"
	"grassrenderer/rendering/opengl/overlay"
	"grassrenderer/rendering/opengl/shaders"
	"grassrenderer/server"
	"grassrenderer/simulation"
)

var (
	lightDirection = mgl32.Vec3{-0.4, -1.0, -0.3}
	groundColor    = mgl32.Vec3{0.23, 0.17, 0.09}
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open a window and simulate the field on the GPU",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signalContext()
			defer stop()

			if err := run(ctx, settings, opts.configPath, log); err != nil {
				log.Error("Grass renderer stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

// run starts the background services and drives the GL frame loop on the
// calling goroutine until the window closes or a service fails.
func run(ctx context.Context, settings config.Settings, configPath string, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	frameMetrics := metrics.NewFrame(reg)

	windControl := simulation.NewWindControl(settings.Wind)
	g, gctx := errgroup.WithContext(ctx)

	var control *server.ControlServer
	if settings.Server.Port > 0 {
		control = server.NewControlServer(log.Named("control"), windControl, settings.Server.Port,
			time.Duration(settings.Server.UpdateIntervalMs)*time.Millisecond)
		control.OnWindChange = func(ok bool) { frameMetrics.ObserveReload("control", ok) }
		control.OnClients = func(n int) { frameMetrics.ControlClients.Set(float64(n)) }
		g.Go(func() error { return control.Run(gctx) })
	}

	if settings.Metrics.Addr != "" {
		srv := metrics.NewServer(settings.Metrics.Addr, reg)
		g.Go(func() error {
			log.Info("Metrics endpoint starting", zap.String("addr", settings.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if _, err := os.Stat(configPath); err == nil {
		watcher, err := config.NewWatcher(log.Named("settings"), configPath, windControl)
		if err != nil {
			return err
		}
		watcher.OnReload(func(ok bool) { frameMetrics.ObserveReload("file", ok) })
		g.Go(func() error { return watcher.Run(gctx) })
	}

	loopErr := frameLoop(gctx, settings, windControl, control, frameMetrics, log)
	cancel()
	return errors.Join(loopErr, g.Wait())
}

func tessellationConfig(s config.TessellationSettings) opengl.TessellationConfig {
	return opengl.TessellationConfig{
		PatchVertices: s.PatchVertices,
		MinLevel:      s.MinLevel,
		MaxLevel:      s.MaxLevel,
		LODDistance:   s.LODDistance,
		Adaptive:      s.Adaptive,
	}
}

// groundExtent returns the centre and half size of a quad covering the field
func groundExtent(f core.FieldConfig) (mgl32.Vec3, float32) {
	minX := -float32(f.Columns/2) * f.Spacing
	maxX := float32(f.Columns-1-f.Columns/2) * f.Spacing
	minZ := -float32(f.Rows/2) * f.Spacing
	maxZ := float32(f.Rows-1-f.Rows/2) * f.Spacing
	center := f.Origin.Add(mgl32.Vec3{(minX + maxX) / 2, 0, (minZ + maxZ) / 2})
	half := mgl32.Abs(maxX-minX)/2 + f.Jitter + f.Spacing
	if h := mgl32.Abs(maxZ-minZ)/2 + f.Jitter + f.Spacing; h > half {
		half = h
	}
	return center, half
}

// frameLoop owns every GL object. It must run on the goroutine that created
// the window.
func frameLoop(ctx context.Context, settings config.Settings, windControl *simulation.WindControl,
	control *server.ControlServer, frameMetrics *metrics.Frame, log *zap.Logger,
) error {
	provider := shaders.Embedded()
	if settings.Shaders.Dir != "" {
		provider = shaders.Directory(settings.Shaders.Dir)
		log.Info("Loading shader overrides", zap.String("dir", settings.Shaders.Dir))
	}

	tess := tessellationConfig(settings.Tessellation)
	if err := tess.Validate(); err != nil {
		return err
	}

	renderer, err := opengl.NewRenderer(opengl.WindowConfig{
		Width:  settings.Window.Width,
		Height: settings.Window.Height,
		Title:  settings.Window.Title,
		VSync:  settings.Window.VSync,
	}, opengl.DefaultCamera(), log.Named("renderer"))
	if err != nil {
		return err
	}
	defer renderer.Terminate()

	fieldCfg := settings.FieldConfig()
	blades, err := core.GenerateField(fieldCfg)
	if err != nil {
		return err
	}
	buffers, err := gpu.NewBladeBuffers(blades, tess.PatchVertices)
	if err != nil {
		return err
	}
	defer buffers.Release()
	// the GPU owns the field from here on
	log.Info("Blade field uploaded",
		zap.Int("blades", buffers.Count()),
		zap.Uint32("vertexCount", buffers.Command().VertexCount))

	compute, err := gpu.NewGrassCompute(provider, buffers, gpu.ComputeConfig{
		Params:          settings.PhysicsParams(),
		PatchVertices:   tess.PatchVertices,
		WriteDescriptor: settings.Simulation.WriteDescriptor,
	})
	if err != nil {
		return err
	}
	defer compute.Release()

	grass, err := opengl.NewGrassStage(provider, buffers, tess, lightDirection)
	if err != nil {
		return err
	}
	center, half := groundExtent(fieldCfg)
	ground, err := opengl.NewGround(provider, center, half, groundColor)
	if err != nil {
		grass.Release()
		return err
	}
	stats, err := overlay.NewStatsOverlay(provider, settings.Window.Width, settings.Window.Height)
	if err != nil {
		// the field still renders without the HUD
		log.Warn("Stats overlay disabled", zap.Error(err))
		stats = nil
	}
	renderer.Attach(grass, ground, stats)

	scheduler := gpu.NewFrameScheduler(compute, renderer)
	step := simulation.NewTimeStep(settings.MaxDelta())
	driver := simulation.NewDriver(windControl, step, simulation.NewGusts(settings.Simulation.GustSeed))

	frameMetrics.Blades.Set(float64(buffers.Count()))
	maxWind := settings.Wind.Magnitude * (1 + settings.Wind.Gusts.Strength)

	log.Info("Controls: WASD move, drag to look, scroll to zoom, P pause, F1 stats, R print camera, Esc quit")

	lastFrame := renderer.Time()
	lastFPSTime := lastFrame
	frameCount := 0
	var fps float64
	var clamped uint64

	for !renderer.ShouldClose() {
		if ctx.Err() != nil {
			renderer.Close()
			break
		}
		renderer.PollEvents()

		now := renderer.Time()
		frameTime := now - lastFrame
		lastFrame = now

		if !renderer.BeginFrame(float32(frameTime)) {
			frameMetrics.SkippedFrames.Inc()
			time.Sleep(50 * time.Millisecond)
			continue
		}

		driver.Paused = renderer.Paused
		wind := driver.Next(now)
		info := scheduler.RunFrame(wind, renderer.CameraState())

		if params, _ := windControl.Snapshot(); params.Magnitude*(1+params.Gusts.Strength) > maxWind {
			maxWind = params.Magnitude * (1 + params.Gusts.Strength)
		}
		renderer.EndFrame(overlay.Stats{
			WindMagnitude:    wind.Magnitude,
			MaxWindMagnitude: maxWind,
			FrameTime:        float32(frameTime),
			FrameBudget:      1.0 / 60,
			FPS:              float32(fps),
		})

		frameMetrics.Frames.Inc()
		frameMetrics.FrameSeconds.Observe(frameTime)
		frameMetrics.WindMagnitude.Set(float64(wind.Magnitude))
		frameMetrics.SimTime.Set(float64(wind.Time))
		frameMetrics.SimStep.Set(float64(step.CurrentStep))
		if step.Clamped > clamped {
			frameMetrics.ClampedTicks.Add(float64(step.Clamped - clamped))
			clamped = step.Clamped
		}

		frameCount++
		if elapsed := now - lastFPSTime; elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			if control != nil {
				control.Publish(server.Stats{
					Frames:        info.Frame,
					FPS:           fps,
					FrameTimeMs:   frameTime * 1000,
					SimTime:       wind.Time,
					WindMagnitude: wind.Magnitude,
					Blades:        buffers.Count(),
					Paused:        renderer.Paused,
				})
			}
			log.Debug("Frame stats",
				zap.Float64("fps", fps),
				zap.Uint64("frame", info.Frame),
				zap.Float32("simTime", wind.Time))
			frameCount = 0
			lastFPSTime = now
		}
	}

	log.Info("Shutting down", zap.Uint64("frames", scheduler.Frames()))
	return nil
}
