package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freshproduce/marketplace/internal/core/service"
)

var hashCost int

// hashPasswordCmd prints a bcrypt hash, e.g. to seed a fixture.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The signing secret is irrelevant to hashing.
		creds, err := service.NewCredentialService("unused", 0, hashCost)
		if err != nil {
			return err
		}
		hash, err := creds.Hash(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", service.DefaultBcryptCost, "bcrypt cost")
}
