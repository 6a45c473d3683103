package seamaputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/seamap"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

const (
	ts1 = "2025-06-01T12:00:00+00:00"
	ts2 = "2025-06-01T13:00:00+00:00"
)

// Salinity is only forecast for the first hour.
const runSamples = `{"points": [
  {"lat": 2, "lon": 2, "data": [
    {"time": "2025-06-01T12:00:00+00:00", "current": {"u": 0.3, "v": 0.4}, "temperature": 14, "salinity": 8},
    {"time": "2025-06-01T13:00:00+00:00", "current": {"u": 0.1, "v": 0.1}, "temperature": 14.5}]},
  {"lat": 2, "lon": 8, "data": [
    {"time": "2025-06-01T12:00:00+00:00", "current": {"u": 0.2, "v": 0}, "temperature": 15, "salinity": 9},
    {"time": "2025-06-01T13:00:00+00:00", "current": {"u": 0.2, "v": 0.1}, "temperature": 15.5}]},
  {"lat": 8, "lon": 5, "data": [
    {"time": "2025-06-01T12:00:00+00:00", "current": {"u": 0, "v": 0.5}, "temperature": 16, "salinity": 10},
    {"time": "2025-06-01T13:00:00+00:00", "current": {"u": 0, "v": 0.6}, "temperature": 16.5}]},
  {"lat": 5, "lon": 5, "data": [
    {"time": "2025-06-01T12:00:00+00:00", "current": {"u": 0.1, "v": 0.1}, "temperature": 15, "salinity": 9},
    {"time": "2025-06-01T13:00:00+00:00", "current": {"u": 0.1, "v": 0.2}, "temperature": 15.2}]},
  {"lat": 20, "lon": 20, "data": [
    {"time": "2025-06-01T12:00:00+00:00", "temperature": 99, "salinity": 99}]}
],
"metadata": {"timestamps": ["2025-06-01T12:00:00+00:00", "2025-06-01T13:00:00+00:00"]}}`

const runWater = `{"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`

func writeFile(t *testing.T, dir, name, content string) string {
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOut(&buf)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "Seamap v" + seamap.Version; !strings.Contains(buf.String(), want) {
		t.Errorf("want %q, have %q", want, buf.String())
	}
}

func TestColorScalesCommand(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOut(&buf)
	defer Root.SetOut(nil)
	defer colorScalesCmd.Flags().Set("ColorScales", "{}")
	Root.SetArgs([]string{"colorscales", "--EnvFile=", "--ColorScales", `{"salinity": "0:#000000,10:white"}`})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if want := "salinity [0, 10]: 0:#000000,10:#FFFFFF"; !strings.Contains(out, want) {
		t.Errorf("output should contain %q:\n%s", want, out)
	}
	if !strings.Contains(out, "temperature [-1, 25]: ") {
		t.Errorf("output should contain the default temperature scale:\n%s", out)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	samples := writeFile(t, dir, "forecast.json", runSamples)
	water := writeFile(t, dir, "water.geojson", runWater)
	out := filepath.Join(dir, "images")

	var buf bytes.Buffer
	Root.SetOut(&buf)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"run", "--EnvFile=",
		"--SampleFile", samples,
		"--WaterMask", water,
		"--OutputDir", out,
		"--Resolution", "16",
		"--Workers", "2",
	})
	if err := Root.Execute(); err != nil {
		t.Fatalf("%v\n%s", err, buf.String())
	}

	for _, test := range []struct {
		key  string
		want bool
	}{
		{"current-magnitude-images/current_magnitude_2025-06-01T12-00-00plus00-00.png", true},
		{"current-magnitude-images/current_magnitude_2025-06-01T13-00-00plus00-00.png", true},
		{"temperature-images/temperature_2025-06-01T12-00-00plus00-00.png", true},
		{"temperature-images/temperature_2025-06-01T13-00-00plus00-00.png", true},
		{"salinity-images/salinity_2025-06-01T12-00-00plus00-00.png", true},
		{"salinity-images/salinity_2025-06-01T13-00-00plus00-00.png", false},
		{"salinity-images/metadata.json", true},
		{"seamap.log", true},
	} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(test.key)))
		if have := err == nil; have != test.want {
			t.Errorf("%s: exists %v, want %v", test.key, have, test.want)
		}
	}

	b, err := os.ReadFile(filepath.Join(out, "salinity-images", "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if n := cast.ToInt(m["total_images"]); n != 1 {
		t.Errorf("salinity total_images: want 1, have %d", n)
	}
	if bbox := cast.ToSlice(m["bbox"]); len(bbox) != 4 || cast.ToFloat64(bbox[1]) != 10 {
		t.Errorf("bbox should come from the water polygons, have %v", m["bbox"])
	}

	log := buf.String()
	for _, want := range []string{"batch summary", "produced=5", "timestep skipped"} {
		if !strings.Contains(log, want) {
			t.Errorf("log should contain %q", want)
		}
	}
}

func TestRunMissingSamples(t *testing.T) {
	dir := t.TempDir()
	cmd := new(cobra.Command)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	err := Run(cmd, &Options{
		SampleFile: filepath.Join(dir, "missing.json"),
		OutputDir:  filepath.Join(dir, "images"),
		LogFile:    filepath.Join(dir, "seamap.log"),
		Pipeline:   seamap.DefaultConfig(),
	})
	if err == nil {
		t.Error("a missing sample file should fail the run")
	}
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "test.env", "SEAMAP_MAXIMAGES=3\n")
	t.Cleanup(func() {
		os.Unsetenv("SEAMAP_MAXIMAGES")
		Cfg.Set("EnvFile", ".env")
	})
	Cfg.Set("EnvFile", env)
	if err := setConfig(); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv("SEAMAP_MAXIMAGES"); v != "3" {
		t.Errorf("environment: have %q", v)
	}
	if n := cast.ToInt(Cfg.Get("MaxImages")); n != 3 {
		t.Errorf("MaxImages should come from the environment, have %d", n)
	}

	Cfg.Set("EnvFile", filepath.Join(dir, "missing.env"))
	if err := setConfig(); err != nil {
		t.Errorf("a missing environment file should be ignored: %v", err)
	}
}

func TestSummaryError(t *testing.T) {
	sum := &seamap.Summary{Parameters: []*seamap.ParameterSummary{{
		Parameter: seamap.Salinity,
		Units: []*seamap.UnitResult{
			{Written: true},
			{Err: &seamap.EmptyFieldWarning{Parameter: seamap.Salinity, Timestamp: ts2}},
		},
	}}}
	if err := summaryError(sum); err != nil {
		t.Errorf("warnings should not fail the run: %v", err)
	}
	sum.Parameters[0].Units[0] = &seamap.UnitResult{Err: errors.New("disk full")}
	if err := summaryError(sum); err == nil {
		t.Error("a failed unit should fail the run")
	}
}
