package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/asananas/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open the config file in your editor",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().Bool("path", false, "only print the config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	onlyPath, _ := cmd.Flags().GetBool("path")

	configPath := flagConfig
	if configPath == "" {
		var err error
		if configPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	if onlyPath {
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	}

	if err := config.WriteDefault(configPath); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
