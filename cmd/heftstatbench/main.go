// Command heftstatbench measures internal/sizer's throughput against a real
// directory subtree, so a regression in the worker pool's fan-out or
// saturation handling shows up as a throughput number instead of only in
// unit tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/heftdev/heft/internal/sizer"
)

func main() {
	dir := flag.String("dir", ".", "Directory subtree to size")
	workers := flag.Int("workers", 8, "Sizer worker count")
	runs := flag.Int("runs", 3, "Number of timed runs to average")
	flag.Parse()

	if _, err := os.Stat(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "stat error: %v\n", err)
		os.Exit(1)
	}
	if *runs < 1 {
		*runs = 1
	}

	s := sizer.New(*workers)
	ctx := context.Background()

	var totalElapsed time.Duration
	var lastSize uint64
	var lastDiagCount int
	for i := 0; i < *runs; i++ {
		start := time.Now()
		size, diagnostics := s.Size(ctx, *dir)
		elapsed := time.Since(start)

		totalElapsed += elapsed
		lastSize = size
		lastDiagCount = len(diagnostics)
		fmt.Printf("run=%d size=%d diagnostics=%d elapsed=%v\n", i+1, size, len(diagnostics), elapsed)
	}

	avg := totalElapsed / time.Duration(*runs)
	fmt.Printf("dir=%s workers=%d runs=%d\n", *dir, *workers, *runs)
	fmt.Printf("avg: %v size=%d diagnostics=%d\n", avg, lastSize, lastDiagCount)
	if avg.Seconds() > 0 {
		fmt.Printf("throughput: %.1f MB/sec\n", float64(lastSize)/1e6/avg.Seconds())
	}
}
