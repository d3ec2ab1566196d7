package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FinalReport renders a multi-section human-readable summary, the shape
// shown on normal exit (spec.md §4.9's "final report").
func (a *Aggregator) FinalReport() string {
	r := a.Build()

	var b strings.Builder
	fmt.Fprintf(&b, "=== mudload run summary (%.0fs) ===\n\n", r.DurationSeconds)

	fmt.Fprintf(&b, "Bots:        %d total, %d connected, %d playing\n",
		r.Bots.Total, r.Bots.Connected, r.Bots.Playing)
	fmt.Fprintf(&b, "Connections: %d attempts, %d failures (%.1f%% success)\n",
		r.Connections.Attempts, r.Connections.Failures, r.Connections.SuccessRate)
	fmt.Fprintf(&b, "Throughput:  %d commands sent (%.2f/s), %d bytes sent, %d bytes received\n",
		r.Throughput.CommandsSent, r.Throughput.CommandsPerSecond, r.Throughput.BytesSent, r.Throughput.BytesReceived)
	fmt.Fprintf(&b, "Latency:     %.1fms avg, %.1fms p99\n", r.Latency.AvgMs, r.Latency.P99Ms)
	fmt.Fprintf(&b, "Game:        %d kills, %d deaths, %d xp gained (%.2f kills/min)\n",
		r.Game.Kills, r.Game.Deaths, r.Game.XPGained, r.Game.KillsPerMinute)
	fmt.Fprintf(&b, "Errors:      %d parse, %d timeout\n", r.Errors.Parse, r.Errors.Timeout)

	if len(r.PerBot) > 0 {
		b.WriteString("\nPer-bot:\n")
		for name, pb := range r.PerBot {
			fmt.Fprintf(&b, "  %-20s connected=%-5v commands=%-5d kills=%-4d hp=%.0f%% behavior=%s\n",
				name, pb.Connected, pb.Commands, pb.Kills, pb.HPPercent, pb.Behavior)
		}
	}

	return b.String()
}

// WriteJSON renders the current Report as JSON and writes it to path.
//
// Precondition: path must name a writable location.
// Postcondition: the file at path contains the report shape from spec.md §6.
func (a *Aggregator) WriteJSON(path string) error {
	r := a.Build()
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics.WriteJSON: marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("metrics.WriteJSON: writing %s: %w", path, err)
	}
	return nil
}
