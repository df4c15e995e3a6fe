package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mischegoss/docscan/internal/cli"
	"github.com/mischegoss/docscan/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage docscan configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Generate a default .docscan.toml in the docs directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := config.DocsPath()
			if root == "" {
				return userError("No docs directory found",
					"Pass --docs, set DOCSCAN_DOCS_PATH, or run from the docs tree")
			}
			configPath := config.ConfigFilePath(root)
			if _, err := os.Stat(configPath); err == nil {
				return userError("Config file already exists",
					fmt.Sprintf("Edit %s directly or delete it first", cli.ShortenHome(configPath)))
			}
			if err := config.GenerateConfig(root); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", cli.ShortenHome(configPath))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(config.ShowConfig())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print path to the active config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p := config.FindConfigFile(); p != "" {
				fmt.Println(p)
				return nil
			}
			root := config.DocsPath()
			if root == "" {
				return userError("No docs directory found",
					"Pass --docs or set DOCSCAN_DOCS_PATH")
			}
			fmt.Printf("No config file found. Would be created at: %s\n",
				config.ConfigFilePath(root))
			return nil
		},
	})

	return cmd
}
