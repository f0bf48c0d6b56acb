package golden

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/metrics"
	"github.com/mojoatomic/triton/internal/parser"
	"github.com/mojoatomic/triton/internal/rules"
)

var update = flag.Bool("update", false, "update golden snapshot")

const goldenFile = "expected.json"

const sampleFirmware = `// sensor control loop
#include "hal.h"

static int g_mode;

void sensor_poll(sensor_t *dev) {
    char *buf = malloc(64);
    i2c_read_buf(dev, buf);
    while (dev_busy) {
        spin();
    }
    goto done;
done:
    free(buf);
}

int main(void) {
    while (1) {
        sensor_poll(&g_sensor);
    }
    return 0;
}
`

func TestGolden_FirmwareSnapshot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "firmware.c"), []byte(sampleFirmware), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	run, _ := parser.Parse(dir)
	run.ID = "run-golden" // stable id for snapshot
	run.StartedAt = time.Time{}
	run.Context.MinSeverity = "INFO"

	metrics.Annotate(&run)

	cfg := rules.DefaultConfig()
	run.Violations = rules.Evaluate(&cfg, &run)

	norm := normalize(run)

	got, err := json.MarshalIndent(norm, "", "  ")
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}

	if *update {
		if err := os.WriteFile(goldenFile, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		t.Logf("updated %s", goldenFile)
		return
	}

	want, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("read golden (%s): %v\nRun with: go test ./test/golden -run TestGolden_FirmwareSnapshot -args -update", goldenFile, err)
	}

	if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(want)) {
		tmp := filepath.Join(t.TempDir(), "got.json")
		_ = os.WriteFile(tmp, got, 0o644)
		t.Fatalf("golden mismatch.\n  golden: %s\n  actual: %s\nTip: update with\n  go test ./test/golden -run TestGolden_FirmwareSnapshot -count=1 -args -update", goldenFile, tmp)
	}
}

// normalize rewrites the fields that vary between machines: temp-dir paths
// become bare file names and derived violation ids are dropped.
func normalize(run ir.Run) ir.Run {
	run.Source = "samples/firmware"
	for i := range run.Files {
		run.Files[i].Path = filepath.Base(run.Files[i].Path)
		for j := range run.Files[i].Violations {
			run.Files[i].Violations[j].ID = ""
			run.Files[i].Violations[j].File = filepath.Base(run.Files[i].Violations[j].File)
		}
	}
	for i := range run.Violations {
		run.Violations[i].ID = ""
		run.Violations[i].File = filepath.Base(run.Violations[i].File)
	}
	return run
}
