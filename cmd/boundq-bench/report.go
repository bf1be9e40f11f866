package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo describes the machine a session ran on.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	GOMAXPROCS  int     `json:"gomaxprocs"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// Session is one invocation of the benchmark.
type Session struct {
	SessionTime string     `json:"session_time"`
	SystemInfo  SystemInfo `json:"system_info"`
	Results     []Result   `json:"results"`
}

// gatherSystemInfo collects CPU and memory details. Lookups that fail leave
// their fields empty.
func gatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		GOARCH:     runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// printResults writes one human-readable line per result.
func printResults(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scenario\tpolicy\tcap\tP/C\tproduced\tadmitted\tevicted\ttrimmed\trejected\tconsumed\tmsgs/s\t")
	for _, r := range results {
		capacity := "unbounded"
		if r.Scenario.Capacity > 0 {
			capacity = fmt.Sprint(r.Scenario.Capacity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.0f\t\n",
			r.Scenario.Name, r.Scenario.Policy, capacity,
			r.Scenario.Producers, r.Scenario.Consumers,
			r.Produced, r.Admitted, r.Evicted, r.Trimmed, r.Rejected, r.Consumed,
			r.Throughput)
	}
	return tw.Flush()
}

// appendSession adds s to the JSON array stored at path, creating the file
// when it does not exist.
func appendSession(path string, s Session) error {
	var sessions []Session
	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) > 0:
		if err := json.Unmarshal(data, &sessions); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	sessions = append(sessions, s)
	out, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
