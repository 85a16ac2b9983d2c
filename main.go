package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/qrgen/api"
	"github.com/openclaw/qrgen/config"
	"github.com/openclaw/qrgen/qr"
	"github.com/openclaw/qrgen/status"
)

var version = "v0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// reportedError marks a failure whose status line was already printed.
type reportedError struct {
	error
}

func report(out io.Writer, msg status.Message) error {
	fmt.Fprintln(out, msg.Render())
	if err := msg.Err(); err != nil {
		return reportedError{err}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qrgen",
		Short:         "Turn text into a QR code PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	// --- generate command ----------------------------------------------------
	var (
		outPath  string
		fromFile string
		show     bool
	)
	generateCmd := &cobra.Command{
		Use:   "generate [text...]",
		Short: "Encode text into a QR code and save it as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args, fromFile)
			if err != nil {
				return err
			}
			return runGenerate(cmd.OutOrStdout(), configPath, text, outPath, show)
		},
	}
	generateCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output PNG path (default from config)")
	generateCmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read text from file ('-' for stdin)")
	generateCmd.Flags().BoolVar(&show, "show", false, "Print the QR code to the terminal")
	root.AddCommand(generateCmd)

	// --- serve command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the local web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrgen %s\n", version)
		},
	})

	return root
}

// setupLogger builds the process logger from the configured level.
func setupLogger(level string, out io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	return log
}

// readInput picks the text from args, a file, or piped stdin, in that order.
func readInput(stdin io.Reader, args []string, fromFile string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case fromFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}

	if f, ok := stdin.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// runGenerate drives one generate/export cycle and prints the status line.
func runGenerate(out io.Writer, configPath, text, outPath string, show bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := setupLogger(cfg.LogLevel, os.Stderr)

	if outPath == "" {
		outPath = cfg.OutputPath
	}

	p := qr.New(log)
	img, err := p.Generate(text)
	if err != nil {
		return report(out, status.ForGenerate(err))
	}
	if show {
		fmt.Fprint(out, img.Terminal())
	}

	return report(out, status.ForExport(outPath, p.Export(img, outPath)))
}

// runServe is the web shell entrypoint that wires all components together.
func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := setupLogger(cfg.LogLevel, os.Stdout)

	log.Info("starting qrgen", "version", version, "addr", cfg.Addr())

	shell := api.NewServer(qr.New(log), log, version, cfg.OutputPath, cfg.StylesheetPath())
	shell.Hosts = []string{cfg.Bind}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(shell),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "url", fmt.Sprintf("http://%s/", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("goodbye")
	return nil
}
