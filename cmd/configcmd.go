package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/scenario-engine/internal/value"
)

// configCmd groups commands that edit the config file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the scenario configuration file",
}

// accountCmd registers an account alias usable in From and address arguments.
var accountCmd = &cobra.Command{
	Use:   "account <alias> [address]",
	Short: "Register an account alias",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alias := args[0]
		raw := ""
		if len(args) == 2 {
			raw = args[1]
		} else {
			fmt.Print("address: ")
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				raw = strings.TrimSpace(scanner.Text())
			}
		}

		addr, err := value.ParseAddress(raw)
		if err != nil {
			return err
		}

		viper.Set("accounts."+alias, addr.String())
		if err := writeConfig(); err != nil {
			return fmt.Errorf("error saving configuration: %w", err)
		}
		fmt.Printf("Account %s saved as %s.\n", alias, addr)
		return nil
	},
}

// writeConfig writes to the loaded config file, or creates ./scenario.yaml.
func writeConfig() error {
	err := viper.WriteConfig()
	if err == nil {
		return nil
	}
	if err = viper.SafeWriteConfig(); err == nil {
		return nil
	}
	return viper.WriteConfigAs("scenario.yaml")
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(accountCmd)
}
