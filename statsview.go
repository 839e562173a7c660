//go:build statsview

package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsViewAddr = "localhost:12600"

// launchStatsView starts the runtime statistics server in its own
// goroutine. Graphs are served at /debug/statsview, pprof at /debug/pprof.
func launchStatsView(w io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(statsViewAddr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(w, "stats server available at http://%s/debug/statsview\n", statsViewAddr)
}

func statsViewAvailable() bool { return true }
