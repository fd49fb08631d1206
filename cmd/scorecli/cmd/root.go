package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	dbPath       string
	apiKey       string
	baseURL      string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scorecli",
	Short: "CLI for the scope scoring system",
	Long:  `scorecli scores construction drawing scope spreadsheets locally and browses previously stored scoring results.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scope-scoring/config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "results database (default from config or $HOME/.scope-scoring/results.db)")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".scope-scoring")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "AI_INTEGRATIONS_ANTHROPIC_API_KEY")
	viper.BindEnv("base_url", "ANTHROPIC_BASE_URL", "AI_INTEGRATIONS_ANTHROPIC_BASE_URL")
	viper.BindEnv("database", "DATABASE_URL")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetString("database") != "" && dbPath == "" {
			dbPath = viper.GetString("database")
		}
	}

	apiKey = viper.GetString("api_key")
	baseURL = viper.GetString("base_url")
}

// resolveDBPath picks the store location, creating the default
// directory on first use
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	dir := filepath.Join(home, ".scope-scoring")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, "results.db"), nil
}
