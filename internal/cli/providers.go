package cli

import (
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Providers()
	},
}
