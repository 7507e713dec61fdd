/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/scenario-engine/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run protocol scenarios against a simulated or remote chain",
	Long: `scenario reads scripts of protocol events, one per line, and runs them
in order against a chain, recording every call and its outcome.

	VAIController Deploy
	VAIController Mint 1e18
	Assert Success`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./scenario.yaml or $HOME/.scenario.yaml)")
	flags.BoolP("verbose", "v", false, "log every dispatch and call")
	flags.String("transport", config.TransportSim, "transport to use: sim or wsrpc")
	flags.String("endpoint", "", "websocket endpoint of the node (wsrpc transport)")
	flags.Duration("timeout", 30*time.Second, "per-event timeout")
	flags.String("assertions", "", "assertion mode: strict or log")
	flags.String("rules", "", "rejection rules file for the sim transport")
	flags.String("taxonomy", "", "extra error taxonomy file")

	for key, flag := range map[string]string{
		"verbose":       "verbose",
		"transport":     "transport",
		"endpoint":      "endpoint",
		"timeout":       "timeout",
		"assertions":    "assertions",
		"rules_file":    "rules",
		"taxonomy_file": "taxonomy",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName("scenario")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flags, environment and config file.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "scenario: ", log.LstdFlags|log.Lmsgprefix)
}
