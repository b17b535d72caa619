package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/sheetview/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sheetview [file]",
	Short: "Terminal spreadsheet grid viewer and editor",
	Long: `Sheetview shows an S2V spreadsheet document in a scrollable grid that
grows as you move toward its edges. Cells are edited through a formula bar;
values and formulas are computed by a pluggable engine.

Without a file argument the demo sample is shown once per terminal session.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runView,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/sheetview/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("engine", "", "computation engine (default from config)")
	_ = viper.BindPFlag("engine.name", rootCmd.PersistentFlags().Lookup("engine"))

	rootCmd.Flags().String("theme", "", "theme name or path to a YAML theme file")
	_ = viper.BindPFlag("tui.theme", rootCmd.Flags().Lookup("theme"))
	rootCmd.Flags().Bool("no-sample", false, "start with an empty sheet instead of the demo sample")
	rootCmd.Flags().Bool("no-mouse", false, "disable mouse input")
}

func initConfig() {
	// Defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SHEETVIEW")
	// e.g. SHEETVIEW_GRID_ROW_STEP for grid.row_step
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
