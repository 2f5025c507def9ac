package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spyglass-tools/spyglass/internal/command"
	"github.com/spyglass-tools/spyglass/internal/config"
	"github.com/spyglass-tools/spyglass/internal/describe"
	"github.com/spyglass-tools/spyglass/internal/filter"
	"github.com/spyglass-tools/spyglass/internal/log"
	"github.com/spyglass-tools/spyglass/internal/opcode"
	"github.com/spyglass-tools/spyglass/internal/schema"
	"github.com/spyglass-tools/spyglass/internal/sniffer"
	"github.com/spyglass-tools/spyglass/internal/source"
	"github.com/spyglass-tools/spyglass/internal/source/pcapfile"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent",
	Long: `
Start the Spyglass agent: load the opcode table, schemas, descriptions
and blacklist, open the capture source, and process messages until
interrupted or told to shut down over the control socket.

Examples:
  spyglass start                       # use ./spyglass.yaml
  spyglass start -c /etc/spyglass.yaml # explicit config path
`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log.Init(cfg.Logger)
	logger := log.GetLogger()

	if cfg.Control.PIDFile != "" {
		pid := strconv.Itoa(os.Getpid())
		if err := os.WriteFile(cfg.Control.PIDFile, []byte(pid), 0o644); err != nil {
			logger.WithError(err).Warnf("pid file %s not written", cfg.Control.PIDFile)
		} else {
			defer os.Remove(cfg.Control.PIDFile)
		}
	}

	// Data resources. Every loader degrades to empty/default state on
	// failure; a missing file never aborts startup.
	opcodes := opcode.NewTable()
	opcodes.Load(cfg.Paths.Opcodes)

	schemas := schema.NewStore()
	schemas.Load(cfg.Paths.SchemaDir)

	descs := describe.NewStore()
	descs.Load(cfg.Paths.Descriptions)

	blacklist := filter.NewBlacklist()
	blacklist.Load(cfg.Paths.Blacklist)

	filters := filter.NewState(filter.Config{
		BlacklistEnabled: cfg.Filter.BlacklistEnabled,
		Include:          cfg.Filter.Include,
		Exclude:          cfg.Filter.Exclude,
		MinSize:          cfg.Filter.MinSize,
		MaxSize:          cfg.Filter.MaxSize,
	}, blacklist)

	out := log.NewMultiWriter()
	if cfg.Output.Console {
		out.Add(os.Stdout)
	}
	if cfg.Output.File.Enabled {
		out.AddFileAppender(log.FileAppenderOpt{
			Filename:   cfg.Output.File.Filename,
			MaxSize:    cfg.Output.File.MaxSize,
			MaxBackups: cfg.Output.File.MaxBackups,
			MaxAge:     cfg.Output.File.MaxAge,
			Compress:   cfg.Output.File.Compress,
		})
	}

	snf := sniffer.New(opcodes, schemas, descs, filters, sniffer.RenderOptions{
		Timestamp:   cfg.Output.Timestamp,
		Direction:   cfg.Output.Direction,
		OpcodeNames: cfg.Output.OpcodeNames,
		Size:        cfg.Output.Size,
		HexDump:     cfg.Output.HexDump,
		Description: cfg.Output.Description,
	}, out)
	snf.Start()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	handler := command.NewHandler(snf, cfg, configFile)
	handler.SetShutdownFunc(cancel)

	socket := cfg.Control.Socket
	if cmd.Flags().Changed("socket") {
		socket = socketPath
	}
	server := command.NewUDSServer(socket, handler)
	go func() {
		if err := server.Start(ctx); err != nil {
			logger.WithError(err).Error("control socket failed")
		}
	}()

	feedDone := make(chan error, 1)
	if cfg.Capture.Pcap != "" {
		src, err := pcapfile.New(pcapfile.Config{
			Path:       cfg.Capture.Pcap,
			ServerIP:   cfg.Capture.ServerIP,
			ServerPort: cfg.Capture.ServerPort,
		})
		if err != nil {
			return err
		}
		go func() {
			feedDone <- src.Run(ctx, func(msg source.Message) {
				snf.HandleMessage(msg)
			})
		}()
	} else {
		logger.Warn("no capture source configured, agent idles until shutdown")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("received %s, shutting down", sig)
	case err := <-feedDone:
		if err != nil && err != context.Canceled {
			logger.WithError(err).Error("capture source stopped")
		}
		logger.Info("capture source drained, shutting down")
	case <-ctx.Done():
	}

	cancel()
	snf.Stop()

	stats := snf.Stats()
	fmt.Printf("processed %d messages (%d admitted, %d rejected)\n",
		stats.Seen, stats.Admitted, stats.Rejected)
	return nil
}
