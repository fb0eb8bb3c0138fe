package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samaelod/enlil/capture"
)

// setupTest isolates the config search path and restores flag defaults;
// flag values are package state and survive between executions.
func setupTest(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfgFile = ""
	runTicks, runTransmitter, runCapture = 0, "a", ""
	runWait, runSettle, runVerbose = 0, 0, false
	runListen, runPeer, runName = "", "", "node"
	scenarioCapture, scenarioKeep, scenarioVerbose = "", false, false
}

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	setupTest(t)
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "enlil version dev") {
		t.Errorf("expected output to contain 'enlil version dev', got: %s", out)
	}
}

func TestRunLoopback(t *testing.T) {
	setupTest(t)
	out, err := executeCommand("run", "--ticks", "1")
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	for _, want := range []string{
		"node a: role transmit, receipts 0, cycles 1",
		"last cycle: sent 32, failures 0",
		"node b: role receive, receipts 32",
		"ticks: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestRunUnknownNode(t *testing.T) {
	setupTest(t)
	_, err := executeCommand("run", "--ticks", "1", "--transmitter", "c")
	if err == nil || !strings.Contains(err.Error(), "unknown node") {
		t.Errorf("expected unknown node error, got: %v", err)
	}
}

func TestRunVerboseStreamsLog(t *testing.T) {
	setupTest(t)
	out, err := executeCommand("run", "--ticks", "1", "-v")
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if !strings.Contains(out, "switching to transmit role") {
		t.Errorf("expected the role switch log line, got: %s", out)
	}
	if !strings.Contains(out, "time to transmit") {
		t.Errorf("expected the cycle log line, got: %s", out)
	}
}

func TestRunCaptureAndDecode(t *testing.T) {
	setupTest(t)
	out, err := executeCommand("run", "--ticks", "1", "--capture", "cap.pcap")
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if !strings.Contains(out, "captured 64 records to cap.pcap") {
		t.Errorf("expected capture summary, got: %s", out)
	}

	out, err = executeCommand("capture", "cap.pcap")
	if err != nil {
		t.Fatalf("capture command failed: %v", err)
	}
	if !strings.Contains(out, "64 records") {
		t.Errorf("expected 64 records, got: %s", out)
	}
	if !strings.Contains(out, "T  A") {
		t.Errorf("expected the first sent payload row, got: %s", out)
	}
}

func TestScenarioCommand(t *testing.T) {
	setupTest(t)
	writeSmokeScenario(t)

	out, err := executeCommand("scenario", "smoke.lua")
	if err != nil {
		t.Fatalf("scenario command failed: %v", err)
	}

	for _, want := range []string{
		`scenario "smoke": 1 steps, 0 faults`,
		"node a: role transmit, receipts 0, cycles 2",
		"last cycle: sent 8, failures 0",
		"node b: role receive, receipts 16",
		"ticks: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestScenarioKeep(t *testing.T) {
	setupTest(t)
	writeSmokeScenario(t)

	out, err := executeCommand("scenario", "--keep", "smoke.lua")
	if err != nil {
		t.Fatalf("scenario command failed: %v", err)
	}
	if !strings.Contains(out, "kept ") {
		t.Errorf("expected the kept path, got: %s", out)
	}
	if _, err := os.Stat(filepath.Join("recent", "smoke_1.lua")); err != nil {
		t.Errorf("kept copy missing: %v", err)
	}
}

func TestScenarioBadFile(t *testing.T) {
	setupTest(t)
	_, err := executeCommand("scenario", "missing.lua")
	if err == nil || !strings.Contains(err.Error(), "failed to load scenario") {
		t.Errorf("expected load error, got: %v", err)
	}
}

func TestCaptureMissingFile(t *testing.T) {
	setupTest(t)
	_, err := executeCommand("capture", "missing.pcap")
	if err == nil || !strings.Contains(err.Error(), "failed to read capture") {
		t.Errorf("expected read error, got: %v", err)
	}
}

func TestCaptureEmptyFile(t *testing.T) {
	setupTest(t)

	w, err := capture.Create("empty.pcap", 8)
	if err != nil {
		t.Fatalf("creating capture: %v", err)
	}
	w.Close()

	out, err := executeCommand("capture", "empty.pcap")
	if err != nil {
		t.Fatalf("capture command failed: %v", err)
	}
	if !strings.Contains(out, "no records") {
		t.Errorf("expected 'no records', got: %s", out)
	}
}

func writeSmokeScenario(t *testing.T) {
	t.Helper()
	body := `return {
	name = "smoke",
	settings = { payload_size = 8, ticks = 2 },
	script = { { at_tick = 0, node = "a", command = "transmit" } },
}
`
	if err := os.WriteFile("smoke.lua", []byte(body), 0644); err != nil {
		t.Fatalf("writing scenario: %v", err)
	}
}
