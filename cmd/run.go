package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samaelod/enlil/capture"
	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/scenario"
	"github.com/samaelod/enlil/types"
)

var (
	runTicks       int
	runTransmitter string
	runCapture     string
	runWait        int
	runSettle      int
	runVerbose     bool
	runListen      string
	runPeer        string
	runName        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless bench",
	Long: `Run the protocol without the TUI.

The default form builds an in-memory loopback pair, hands the chosen node
the transmitter command on the first tick, and runs a fixed number of
ticks without wall-clock pacing.

With --listen and --peer it instead runs a single node over UDP against a
peer process, pacing ticks in real time and sampling role commands from
stdin ('t', 'r', 'q' to quit).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runListen != "" || runPeer != "" {
			return runUDPNode(cmd)
		}
		return runLoopbackPair(cmd)
	},
}

func runLoopbackPair(cmd *cobra.Command) error {
	if runTransmitter != "a" && runTransmitter != "b" {
		return fmt.Errorf("unknown node %q: want a or b", runTransmitter)
	}

	var cw *capture.Writer
	if runCapture != "" {
		var err error
		cw, err = capture.Create(runCapture, appConfig.PayloadSize)
		if err != nil {
			return fmt.Errorf("failed to create capture: %w", err)
		}
		defer cw.Close()
	}

	sc := &types.Scenario{
		Name:     "run",
		Settings: types.Settings{Ticks: runTicks},
		Script: []types.Step{
			{AtTick: 0, Node: runTransmitter, Command: "transmit"},
		},
	}

	logger := engine.NewLogger("", appConfig.LogLines)
	defer logger.Close()
	if runVerbose {
		logger.SetEcho(cmd.OutOrStdout())
	}

	res, err := scenario.Run(appConfig, sc, logger, cw)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res)
	if cw != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "captured %d records to %s\n", cw.Count(), runCapture)
	}
	return nil
}

func runUDPNode(cmd *cobra.Command) error {
	if runListen == "" || runPeer == "" {
		return errors.New("udp mode needs both --listen and --peer")
	}

	link, err := radio.DialUDP(runListen, runPeer)
	if err != nil {
		return err
	}
	defer link.Close()

	var cw *capture.Writer
	if runCapture != "" {
		cw, err = capture.Create(runCapture, appConfig.PayloadSize)
		if err != nil {
			return fmt.Errorf("failed to create capture: %w", err)
		}
		defer cw.Close()
	}

	wait := appConfig.CommandWaitMs
	if runWait > 0 {
		wait = runWait
	}
	settle := appConfig.SettleMs
	if runSettle > 0 {
		settle = runSettle
	}

	logger := engine.NewLogger("", appConfig.LogLines)
	defer logger.Close()
	logger.SetEcho(cmd.OutOrStdout())

	eng := engine.NewEngine(runName, link, engine.Options{
		PayloadSize: appConfig.PayloadSize,
		CommandWait: time.Duration(wait) * time.Millisecond,
		Settle:      time.Duration(settle) * time.Millisecond,
		FailLimit:   appConfig.FailLimit,
		Log:         logger,
		Capture:     cw,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "node %s listening on %s, peer %s\n",
		runName, link.LocalAddr(), runPeer)

	eng.Start()
	defer eng.Stop()

	quit := make(chan struct{})
	go readCommands(cmd.InOrStdin(), eng, quit)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
	case <-quit:
	}

	snap := eng.Snapshot()
	printNode(cmd.OutOrStdout(), snap, link.Stats())
	return nil
}

// readCommands feeds stdin bytes to the node until 'q' or EOF.
func readCommands(in io.Reader, eng *engine.Engine, quit chan struct{}) {
	defer close(quit)

	reader := bufio.NewReader(in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b == 'q' || b == 'Q' {
			return
		}
		eng.Deliver(types.ParseCommand(b))
	}
}

func printSummary(w io.Writer, res *scenario.Result) {
	printNode(w, res.A, res.StatsA)
	printNode(w, res.B, res.StatsB)
	fmt.Fprintf(w, "ticks: %d\n", res.Ticks)
}

func printNode(w io.Writer, snap types.Snapshot, st radio.Stats) {
	fmt.Fprintf(w, "node %s: role %s, receipts %d, cycles %d\n",
		snap.Name, snap.Mode, snap.Receipts, snap.Cycles)
	if snap.Last != nil {
		outcome := "complete"
		if snap.Last.Aborted {
			outcome = fmt.Sprintf("aborted at payload '%c'", snap.Last.Marker)
		}
		fmt.Fprintf(w, "  last cycle: sent %d, failures %d, %d us, %s\n",
			snap.Last.Position, snap.Last.Failures, snap.Last.Micros(), outcome)
	}
	fmt.Fprintf(w, "  link: delivered %d, refused %d, rearmed %d\n",
		st.Delivered, st.Refused, st.Rearmed)
}

func init() {
	runCmd.Flags().IntVar(&runTicks, "ticks", 0, "loopback ticks to run (0 sizes the run to the script)")
	runCmd.Flags().StringVar(&runTransmitter, "transmitter", "a", "node handed the transmitter command on the first tick (a or b)")
	runCmd.Flags().StringVar(&runCapture, "capture", "", "write sent and drained payloads to this pcap file")
	runCmd.Flags().IntVar(&runWait, "wait", 0, "command wait in ms (udp mode; default from config)")
	runCmd.Flags().IntVar(&runSettle, "settle", 0, "post-cycle settle in ms (udp mode; default from config)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "stream session log lines to stdout")
	runCmd.Flags().StringVar(&runListen, "listen", "", "udp mode: local address to listen on")
	runCmd.Flags().StringVar(&runPeer, "peer", "", "udp mode: peer address to send to")
	runCmd.Flags().StringVar(&runName, "name", "node", "udp mode: node name in log lines")

	rootCmd.AddCommand(runCmd)
}
