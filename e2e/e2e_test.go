package e2e

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/lift/core/metrics"
	"github.com/kilianp07/lift/infra/logger"
	"github.com/kilianp07/lift/infra/metrics"
	"github.com/kilianp07/lift/qa/scenarios"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// junitReport is a minimal representation of a JUnit XML report. The E2E
// suite writes such a report so CI systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

// writeJUnit writes the provided report to the given path.
func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container initialised with the E2E org,
// bucket and token, and returns it along with the base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// Test_E2E_InfluxBatches replays a scenario with the Influx sink and reads
// the batch and event points back.
func Test_E2E_InfluxBatches(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(ctx) //nolint:errcheck
	t.Logf("InfluxDB started at %s", influxURL)

	sink := metrics.NewInfluxSinkWithFallback(influxURL, influxToken, influxOrg, influxBucket)
	if _, ok := sink.(coremetrics.NopSink); ok {
		t.Fatalf("influx sink fell back to nop")
	}
	defer sink.(*metrics.InfluxSink).Close()

	start := time.Now()
	sc, err := scenarios.Load("../qa/scenarios/scan_up_then_down.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	res, err := scenarios.Run(ctx, sc, scenarios.Options{Sink: sink, Logger: logger.NopLogger{}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()

	batches, err := cli.CountRecords(ctx, "lift_batch", "distance")
	if err != nil {
		t.Fatalf("query batches: %v", err)
	}
	if batches != 1 {
		t.Fatalf("expected 1 batch point, got %d", batches)
	}
	dist, err := cli.LastValue(ctx, "lift_batch", "distance")
	if err != nil {
		t.Fatalf("query distance: %v", err)
	}
	if fmt.Sprint(dist) != fmt.Sprint(res.Report.Distance) {
		t.Fatalf("distance %v, want %d", dist, res.Report.Distance)
	}
	evs, err := cli.CountRecords(ctx, "lift_event", "seq")
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if evs != len(res.Events) {
		t.Fatalf("expected %d event points, got %d", len(res.Events), evs)
	}

	dir := t.TempDir()
	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: "Test_E2E_InfluxBatches", Time: time.Since(start).Seconds()}}}
	if err := writeJUnit(filepath.Join(dir, "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
