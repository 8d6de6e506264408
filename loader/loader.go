package loader

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edgegate/edgegate"
	"github.com/edgegate/edgegate/metrics"
)

// LoadFile reads a policy document from disk and publishes it to the
// store. On any error the store keeps its current snapshot and the error
// is returned to the caller; a bad reload is never fatal to a running
// gateway.
func LoadFile(path string, store *edgegate.Store) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config
	if err != nil {
		metrics.ConfigReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("read policy file: %w", err)
	}

	snap, err := Parse(data)
	if err != nil {
		metrics.ConfigReloads.WithLabelValues("error").Inc()
		return err
	}

	if err := store.Swap(snap); err != nil {
		metrics.ConfigReloads.WithLabelValues("error").Inc()
		return err
	}

	metrics.ConfigReloads.WithLabelValues("ok").Inc()
	metrics.ConfigVersion.Set(float64(snap.Version()))

	slog.Info("loaded policy file", "path", path, "version", snap.Version(), "policies", snap.Len())
	return nil
}
