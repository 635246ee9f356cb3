// plkdump captures POWERLINK frames on an Ethernet interface and logs
// them decoded, optionally exposing frame counters to Prometheus.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/FabianPetersen/powerlink"
	"github.com/FabianPetersen/powerlink/netconfig"
	"github.com/FabianPetersen/powerlink/transport"
)

var (
	flagInterface string
	flagConfig    string
	flagMetrics   string
	flagLogFile   string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:          "plkdump",
	Short:        "Capture and decode POWERLINK frames on an Ethernet interface",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagInterface, "interface", "i", "", "interface to capture on (required)")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "network configuration file (enables optional SoC fields)")
	rootCmd.Flags().StringVar(&flagMetrics, "metrics", "", "address to expose Prometheus metrics on, e.g. :9464")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "also write logs to this rotated file")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "log at debug level")
	_ = rootCmd.MarkFlagRequired("interface")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagLogFile, flagDebug)
	defer func() { _ = logger.Sync() }()

	opts := []transport.Option{
		transport.WithLogger(logger),
		transport.WithHandler(frameLogger(logger)),
	}
	if flagConfig != "" {
		cfg, err := netconfig.Load(flagConfig)
		if err != nil {
			return err
		}
		opts = append(opts, transport.WithCodec(cfg.Codec()))
		logger.Info("network configuration loaded",
			zap.String("file", flagConfig),
			zap.Uint32("cycleTimeUs", cfg.CycleTimeUs),
			zap.Bool("netTime", cfg.NetTimeIsRealTime),
			zap.Bool("relativeTime", cfg.RelativeTime))
	}

	if flagMetrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(flagMetrics, mux); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
		logger.Info("metrics exposed", zap.String("addr", flagMetrics))
	}

	t, err := transport.New(flagInterface, opts...)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		t.Close()
	}()

	return t.ConnectAndListen()
}

func frameLogger(logger *zap.Logger) func(powerlink.FrameEvent) {
	return func(ev powerlink.FrameEvent) {
		f := ev.Frame
		fields := []zap.Field{
			zap.Stringer("type", f.MessageType),
			zap.Uint8("src", f.SrcNodeID),
			zap.Uint8("dst", f.DstNodeID),
		}
		switch {
		case f.Soc != nil:
			fields = append(fields, zap.Uint64("relativeTimeUs", f.Soc.RelativeTime))
		case f.Preq != nil:
			fields = append(fields, zap.Int("payload", len(f.Preq.Payload)))
		case f.Pres != nil:
			fields = append(fields,
				zap.Stringer("nmtStatus", f.Pres.NMTStatus),
				zap.Uint8("rs", f.Pres.RequestToSend()),
				zap.Int("payload", len(f.Pres.Payload)))
		case f.Soa != nil:
			fields = append(fields,
				zap.Stringer("nmtStatus", f.Soa.NMTStatus),
				zap.Uint8("reqService", uint8(f.Soa.ReqServiceID)),
				zap.Uint8("target", f.Soa.ReqServiceTarget))
		case f.Asnd != nil:
			fields = append(fields,
				zap.Uint8("service", uint8(f.Asnd.ServiceID)),
				zap.Int("payload", len(f.Asnd.Payload)))
		}
		logger.Info("frame", fields...)
	}
}

func newLogger(file string, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	ws := zapcore.AddSync(os.Stdout)
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50,
			MaxBackups: 3,
			Compress:   true,
		}
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.AddSync(lj))
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), ws, level)
	return zap.New(core)
}
