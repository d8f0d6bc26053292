// Command marketplace runs the fresh produce marketplace API and its
// operational tasks.
//
//	@title						Fresh Produce Marketplace API
//	@version					1.0
//	@description				Admins, retailers, products and orders for a fresh produce marketplace.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer <token>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "marketplace",
	Short:         "Fresh produce marketplace API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}
