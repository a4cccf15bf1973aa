package main

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/pricewatch.yaml
var configTemplate embed.FS

const templatePath = "templates/pricewatch.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a pricewatch configuration file",
		Long: `Init writes a commented .pricewatch file with a starter GPU catalog,
the exchange rates into CNY and the price store address.

The Telegram bot token does not belong in this file. With --env, init
also writes a .env file next to it holding SERVER_URL, TELEGRAM_BOT_TOKEN
and TELEGRAM_CHAT_ID; fill in the last two to receive a summary after
every run. An existing .env is never overwritten.

Examples:
  # Create .pricewatch in current directory
  pricewatch init

  # Create .pricewatch and .env under ./deploy
  pricewatch init -o deploy/.pricewatch --env

  # Replace an existing configuration
  pricewatch init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("env", false,
		"Also write a "+config.DefaultEnvFile+" file for the Telegram credentials")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}
	withEnv, err := flags.GetBool("env")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}
	tmpl, err := config.ParseConfig(content)
	if err != nil {
		return fmt.Errorf("failed to parse config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	printCatalogSummary(out, tmpl)

	if !withEnv {
		fmt.Fprintf(out, "\nSet %s and %s in the environment or in %s to enable the run summary.\n",
			config.EnvNotifyCredential, config.EnvNotifyDestination, config.DefaultEnvFile)
		return nil
	}

	envPath := filepath.Join(dir, config.DefaultEnvFile)
	created, err := writeEnvTemplate(envPath)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "\nCreated %s: fill in %s and %s to enable the run summary.\n",
			envPath, config.EnvNotifyCredential, config.EnvNotifyDestination)
	} else {
		fmt.Fprintf(out, "\nKept existing %s\n", envPath)
	}
	return nil
}

// printCatalogSummary lists the products the written file monitors.
func printCatalogSummary(out io.Writer, f *config.File) {
	ids := make([]string, 0, len(f.Products))
	for _, p := range f.Products {
		ids = append(ids, p.ID)
	}
	fmt.Fprintf(out, "Monitoring %d products: %s\n", len(ids), strings.Join(ids, ", "))
	fmt.Fprintf(out, "Remove the products section to use the built-in catalog of %d GPUs.\n",
		len(config.DefaultCatalog()))
}

// writeEnvTemplate writes the dotenv skeleton unless path already exists.
func writeEnvTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	env, err := config.EnvTemplate()
	if err != nil {
		return false, fmt.Errorf("failed to render env file: %w", err)
	}
	if err := os.WriteFile(path, []byte(env+"\n"), 0600); err != nil {
		return false, fmt.Errorf("failed to write env file: %w", err)
	}
	return true, nil
}
