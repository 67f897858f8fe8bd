package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"ocrtool/internal/config"
	"ocrtool/internal/logger"
	"ocrtool/internal/ocr"
	"ocrtool/internal/processor"
)

var version = "1.0.0"

const usage = "ocrtool <image_path> <languages>"

// errUsage signals that the usage record was already written and the
// process must exit with status 1.
var errUsage = errors.New("missing arguments")

// cfg is the loaded configuration, set by main before Execute.
var cfg = config.Default()

// openerFor builds the engine opener for a run. Replaced in tests.
var openerFor = ocr.NewOpener

var rootCmd = &cobra.Command{
	Use:   usage,
	Short: "Extract text and per-region confidence scores from an image",
	Long: `Run OCR on a single image file and print the recognized text regions
with their confidence scores.

Progress lines are printed while the engine runs, followed by exactly one
line holding the JSON result. On failure the JSON record carries an "error"
key and the exit status is still 0; only missing arguments exit with 1.

Languages are a comma-separated list of codes such as en,fr. Two-letter
ISO 639-1 codes are mapped to Tesseract traineddata names (en -> eng).

Engines:
  tesseract  - local Tesseract (default, needs traineddata for each language)
  vision     - Google Cloud Vision document text detection
  documentai - Google Cloud Document AI OCR processor

The tesseract engine is compiled in only with "go build -tags tesseract",
which needs cgo and the libtesseract/leptonica headers. Other builds report it
as unavailable in the JSON error record; choose a cloud engine there.

An image whose path is a bare subcommand name ("languages", "help",
"completion") is taken as that subcommand; pass it as ./languages instead.

Environment variables:
  OCR_ENGINE - default engine (tesseract, vision, documentai)
  TESSDATA_PREFIX - directory holding Tesseract traineddata files
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID - documentai only`,
	Example: `  # Recognize English text
  ocrtool receipt.png en

  # Recognize English and French, keeping only the JSON line
  ocrtool poster.jpg en,fr | tail -n 1

  # Use Google Cloud Vision with a two minute timeout
  ocrtool scan.png de --engine vision --timeout 120`,
	Version:       version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOCR,
}

// SetConfig installs the configuration loaded by main.
func SetConfig(c *config.Config) {
	if c != nil {
		cfg = c
	}
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(1)
		}
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("engine", "", "OCR engine: tesseract, vision or documentai (default: $OCR_ENGINE or tesseract)")
	rootCmd.Flags().Int("timeout", 0, "Processing timeout in seconds (0 disables the timeout)")
	rootCmd.Flags().Bool("normalize", false, "Apply Unicode NFC normalization to recognized text")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")
	out := cmd.OutOrStdout()

	if len(args) < 2 {
		log.Warn().Int("args", len(args)).Msg("Missing arguments")
		if err := processor.WriteUsageError(out, usage); err != nil {
			return err
		}
		return errUsage
	}

	engine := engineName(cmd)
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	normalize, _ := cmd.Flags().GetBool("normalize")

	log.Info().
		Str("file", args[0]).
		Str("languages", args[1]).
		Str("engine", engine).
		Int("timeout", timeoutSecs).
		Bool("normalize", normalize).
		Msg("Starting OCR processing")

	ctx, cancel := createContextWithTimeout(cmd.Context(), timeoutSecs, log)
	defer cancel()

	proc := processor.New(openerFor(engine, cfg.EngineConfig()), processor.Config{
		Progress:  out,
		Normalize: normalize,
	})
	result := proc.Run(ctx, args[0], args[1])

	return processor.WriteResult(out, result)
}

// engineName resolves --engine, falling back to the configured default.
func engineName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("engine"); name != "" {
		return name
	}
	return cfg.Engine
}

// createContextWithTimeout creates a context with an optional timeout and
// signal handling. A non-positive timeout means no deadline.
func createContextWithTimeout(parent context.Context, timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(parent, time.Duration(timeoutSecs)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling OCR processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
