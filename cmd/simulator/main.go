// Command simulator generates realistic vital-sign readings for a
// configurable patient population and streams them to one or more
// outputs in the wire format the monitoring service ingests.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/vitalsentry/vitalsentry/internal/simulator"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

func main() {
	patientCount := flag.Int("patients", 10, "number of simulated patients")
	console := flag.Bool("console", false, "print readings to stdout")
	fileDir := flag.String("file-dir", "", "write per-signal files into this directory")
	tcpAddr := flag.String("tcp-addr", "", "serve readings over TCP on this address, e.g. :7070")
	wsAddr := flag.String("ws-addr", "", "serve readings over WebSocket on this address, e.g. :7071")
	manualAlerts := flag.Bool("manual-alerts", false, "also emit rare staff-raised alert lines")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output, err := buildOutput(ctx, *console, *fileDir, *tcpAddr, *wsAddr, log)
	if err != nil {
		os.Stderr.WriteString("failed to build outputs: " + err.Error() + "\n")
		return
	}
	defer output.Close()

	generators := []simulator.Generator{
		simulator.NewSaturationGenerator(),
		simulator.NewBloodPressureGenerator(),
		simulator.NewHeartRateGenerator(),
		simulator.NewECGGenerator(),
	}
	if *manualAlerts {
		generators = append(generators, simulator.NewManualAlertGenerator())
	}

	runner := simulator.NewRunner(*patientCount, output, generators...)

	log.Info(ctx, "simulator started", logger.Int("patients", *patientCount))
	runner.Run(ctx)
	log.Info(ctx, "simulator stopped")
}

// buildOutput assembles the configured outputs into a single fan-out.
// With nothing selected the console output is used so the simulator is
// never silently useless.
func buildOutput(ctx context.Context, console bool, fileDir, tcpAddr, wsAddr string, log logger.Logger) (simulator.Output, error) {
	var outputs []simulator.Output

	if fileDir != "" {
		out, err := simulator.NewFileOutput(fileDir)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "file output enabled", logger.String("dir", fileDir))
		outputs = append(outputs, out)
	}

	if tcpAddr != "" {
		out, err := simulator.NewTCPOutput(tcpAddr)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "tcp output enabled", logger.String("addr", out.Addr().String()))
		outputs = append(outputs, out)
	}

	if wsAddr != "" {
		out, err := simulator.NewWSOutput(wsAddr)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "websocket output enabled", logger.String("addr", out.Addr().String()))
		outputs = append(outputs, out)
	}

	if console || len(outputs) == 0 {
		outputs = append(outputs, simulator.NewConsoleOutput())
	}

	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return simulator.NewMultiOutput(outputs...), nil
}
