// Exports snapshot state as Prometheus metrics in node_exporter's textfile format
package btrmetrics

import (
	"github.com/function61/btrbackup/pkg/layout"
	"github.com/prometheus/client_golang/prometheus"
)

type snapshotMetrics struct {
	registry *prometheus.Registry

	snapshots      *prometheus.GaugeVec
	latestSnapshot *prometheus.GaugeVec
	activePresent  *prometheus.GaugeVec
	readable       *prometheus.GaugeVec
}

func newSnapshotMetrics() *snapshotMetrics {
	reg := prometheus.NewRegistry()

	m := &snapshotMetrics{
		registry: reg,
		snapshots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btrbackup_snapshots",
			Help: "Number of snapshots in logical directory",
		}, []string{"logical_dir"}),
		latestSnapshot: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btrbackup_latest_snapshot_timestamp_seconds",
			Help: "Creation time of the newest snapshot (Unix seconds)",
		}, []string{"logical_dir"}),
		activePresent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btrbackup_active_present",
			Help: "1 if logical directory has its active subvolume",
		}, []string{"logical_dir"}),
		readable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btrbackup_logical_dir_readable",
			Help: "0 if contents of logical directory could not be listed",
		}, []string{"logical_dir"}),
	}

	reg.MustRegister(m.snapshots)
	reg.MustRegister(m.latestSnapshot)
	reg.MustRegister(m.activePresent)
	reg.MustRegister(m.readable)

	return m
}

func (m *snapshotMetrics) observe(dirs []layout.LogicalDir) {
	for _, dir := range dirs {
		m.readable.WithLabelValues(dir.Name).Set(boolToFloat(dir.ReadErr == nil))

		// unknown is not the same as zero
		if dir.ReadErr != nil {
			continue
		}

		snapshots := dir.Snapshots()

		m.snapshots.WithLabelValues(dir.Name).Set(float64(len(snapshots)))

		// no sample at all is better than a zero timestamp
		if len(snapshots) > 0 {
			m.latestSnapshot.WithLabelValues(dir.Name).Set(float64(snapshots[0].Timestamp.Unix()))
		}

		_, hasActive := dir.Active()
		m.activePresent.WithLabelValues(dir.Name).Set(boolToFloat(hasActive))
	}
}

// atomically (re)writes path. node_exporter's textfile collector picks it up from there.
func WriteTextfile(path string, dirs []layout.LogicalDir) error {
	m := newSnapshotMetrics()
	m.observe(dirs)

	return prometheus.WriteToTextfile(path, m.registry)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
