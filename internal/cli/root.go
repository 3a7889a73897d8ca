package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/tcpwave-connector/internal/app"
	"github.com/samvad-hq/tcpwave-connector/internal/config"
	"github.com/samvad-hq/tcpwave-connector/internal/logger"
	"github.com/samvad-hq/tcpwave-connector/pkg/tcpwave"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// errFailureResult marks a command whose TCPWave call completed with a
// Failure envelope. The envelope has already been printed.
var errFailureResult = errors.New("tcpwave returned a failure result")

// cliState is shared by the commands of one root command.
type cliState struct {
	cfg      *config.Config
	log      logger.Logger
	rt       *app.Runtime
	connOpts []tcpwave.Option
}

// runtime builds the connector runtime on first use.
func (s *cliState) runtime(ctx context.Context) (*app.Runtime, error) {
	if s.rt != nil {
		return s.rt, nil
	}
	rt, err := app.NewRuntime(ctx, s.cfg, s.log, s.connOpts...)
	if err != nil {
		return nil, fmt.Errorf("init runtime: %w", err)
	}
	s.rt = rt
	return rt, nil
}

// closeRuntime releases the runtime. Failures are only logged.
func (s *cliState) closeRuntime() {
	if s.rt == nil {
		return
	}
	if err := s.rt.Close(); err != nil {
		s.log.WarnObj("runtime close failed", "error", err.Error())
	}
	s.rt = nil
}

// isSyncNoise reports errors zap returns when syncing a terminal or pipe.
func isSyncNoise(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}

// NewRootCommand assembles the tcpwave command tree. Connector options are
// passed to every runtime the commands create.
func NewRootCommand(connOpts ...tcpwave.Option) *cobra.Command {
	st := &cliState{connOpts: connOpts}

	root := &cobra.Command{
		Use:   "tcpwave",
		Short: "Query a TCPWave IPAM server",
		Long: `tcpwave invokes TCPWave IPAM operations over the TIMS REST API and
prints the normalized Success/Failure envelope as JSON.

Connection settings come from TCPWAVE_* environment variables, configs/.env
or the global flags below.

Get started:
  tcpwave health                                   Check that the server answers
  tcpwave operations                               List available operations
  tcpwave execute get_network_details_by_ipaddress --param ip_address=10.1.1.5
  tcpwave history --limit 5                        Show journaled invocations`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.Init(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			st.cfg = cfg
			st.log = log
			logger.InfoObj("tcpwave command starting", "command_meta", map[string]any{
				"command": cmd.CommandPath(),
				"config":  cfg.Summary(),
			})
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.String("host", "", "TCPWave server host, optionally with http:// or https:// prefix")
	pf.Int("port", 443, "TCPWave server port")
	pf.String("protocol", tcpwave.ProtocolHTTPS, "protocol used when the host has no scheme (http|https)")
	pf.String("token", "", "TIMS session token")
	pf.Bool("verify-ssl", false, "verify the server TLS certificate")
	pf.Int("timeout", 0, "request timeout in seconds (0 means no deadline)")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")

	root.AddCommand(
		newHealthCmd(st),
		newExecuteCmd(st),
		newOperationsCmd(),
		newHistoryCmd(st),
	)
	return root
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errFailureResult) {
		logger.ErrorObj("tcpwave command failed", "error", err.Error())
	}
	if syncErr := logger.Close(); syncErr != nil && !isSyncNoise(syncErr) {
		fmt.Fprintln(os.Stderr, syncErr)
	}
	if err != nil {
		if !errors.Is(err, errFailureResult) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// SetVersion sets the version info.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
