package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"ocrtool/internal/logger"
	"ocrtool/internal/ocr"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the language data installed for the OCR engine",
	Long: `Print the languages the selected engine can load, one per line.

Only the tesseract engine can list its languages; it reports every
*.traineddata file found in TESSDATA_PREFIX or Tesseract's default data path.
The cloud engines accept any BCP-47 language hint.`,
	Example: `  # List installed Tesseract languages
  ocrtool languages

  # Use a custom tessdata directory
  TESSDATA_PREFIX=/opt/tessdata ocrtool languages`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("languages")

	engine := engineName(cmd)
	langs, err := ocr.AvailableLanguages(engine, cfg.EngineConfig())
	if err != nil {
		log.Error().Err(err).Str("engine", engine).Msg("Failed to list languages")
		return err
	}

	out := cmd.OutOrStdout()
	for _, lang := range langs {
		fmt.Fprintln(out, lang)
	}
	return nil
}
