package app

import (
	"fmt"

	"github.com/irisbuild/iris/internal/secrets"
	"github.com/spf13/cobra"
)

// Domain: Credential Management
//
// A download dependency's private registry mirror needs a token. This
// command manages those tokens, namespaced by the dependency (or
// target) name they belong to, so `secret("registry_token")` inside a
// project file and the runner's per-dependency lookup both resolve
// against the same store.

func (a *App) createSecretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage stored credentials for private dependency mirrors",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <dependency> <key> <value>",
			Short: "Store a credential under a dependency namespace",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := secrets.NewManager(secrets.WithFallback())
				if err != nil {
					return err
				}
				if err := mgr.Set(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Printf("stored %s/%s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <dependency> <key>",
			Short: "Print a stored credential",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := secrets.NewManager(secrets.WithFallback())
				if err != nil {
					return err
				}
				value, err := mgr.Get(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Println(value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <dependency> <key>",
			Short: "Remove a stored credential",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := secrets.NewManager(secrets.WithFallback())
				if err != nil {
					return err
				}
				if err := mgr.Delete(args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("deleted %s/%s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list [dependency]",
			Short: "List stored dependency namespaces, or keys within one",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, err := secrets.NewManager(secrets.WithFallback())
				if err != nil {
					return err
				}
				if len(args) == 0 {
					namespaces, err := mgr.ListNamespaces()
					if err != nil {
						return err
					}
					for _, ns := range namespaces {
						fmt.Println(ns)
					}
					return nil
				}
				keys, err := mgr.List(args[0])
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Println(k)
				}
				return nil
			},
		},
	)
	return cmd
}
