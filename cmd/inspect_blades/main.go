package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chewxy/math32"

	"grassrenderer/core"
	"grassrenderer/physics"
)

// Reads a blade dump written by `grass simulate --out` and prints what the
// field looks like: invariant violations, bend statistics and a few sample
// blades with their curve midpoints.
func main() {
	samples := flag.Int("samples", 5, "number of blades to print")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect_blades [-samples n] <blades.bin>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	blades, err := core.DecodeBlades(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("=== Blade Dump ===")
	fmt.Printf("Records: %d (%d bytes)\n\n", len(blades), len(data))
	if len(blades) == 0 {
		return
	}

	// Test 1: invariants
	fmt.Println("Test 1: Per-blade invariants")
	invalid := 0
	for i, b := range blades {
		if err := b.Validate(); err != nil {
			if invalid < 10 {
				fmt.Printf("  blade %d: %v\n", i, err)
			}
			invalid++
		}
	}
	fmt.Printf("  %d of %d blades violate an invariant\n\n", invalid, len(blades))

	// Test 2: bending
	fmt.Println("Test 2: Bend from rest pose")
	var maxOffset, total float32
	belowGround := 0
	lengthError := float32(0)
	for _, b := range blades {
		offset := b.V1.Vec3().Sub(b.RestTip()).Len()
		total += offset
		maxOffset = math32.Max(maxOffset, offset)
		if b.V1.Vec3().Sub(b.Position()).Dot(b.UpVector()) < -1e-4 {
			belowGround++
		}
		lengthError = math32.Max(lengthError, math32.Abs(physics.CurveLength(b)-b.Height()))
	}
	fmt.Printf("  Max tip offset:  %.4f\n", maxOffset)
	fmt.Printf("  Mean tip offset: %.4f\n", total/float32(len(blades)))
	fmt.Printf("  Tips below ground: %d\n", belowGround)
	fmt.Printf("  Max curve length error: %.4f\n\n", lengthError)

	// Test 3: samples
	fmt.Println("Test 3: Sample blades")
	if *samples < 1 {
		*samples = 1
	}
	step := len(blades) / *samples
	if step == 0 {
		step = 1
	}
	for i := 0; i < len(blades) && i/step < *samples; i += step {
		b := blades[i]
		mid, _ := physics.CurvePoint(b, 0.5)
		p := b.Position()
		tip := b.V1.Vec3()
		fmt.Printf("Blade %d:\n", i)
		fmt.Printf("  Root:  (%.3f, %.3f, %.3f)  height %.3f  stiffness %.2f\n", p[0], p[1], p[2], b.Height(), b.Stiffness())
		fmt.Printf("  Tip:   (%.3f, %.3f, %.3f)\n", tip[0], tip[1], tip[2])
		fmt.Printf("  Mid:   (%.3f, %.3f, %.3f)\n", mid[0], mid[1], mid[2])
	}
}
