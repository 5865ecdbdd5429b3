package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/uxperf/internal/assets"
	"github.com/daryltucker/uxperf/internal/output"
)

var functionsDir string

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Manage jq functions for result analysis",
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install jq functions for results.json to ~/.jq-modules/ (or --dir)",
	Example: `  uxperf functions install
  jq -s -L ~/.jq-modules 'include "uxperf"; summary' results/results.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := functionsDir
		if targetDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get user home directory: %w", err)
			}
			targetDir = filepath.Join(home, ".jq-modules")
		}
		n, err := installFunctions(targetDir)
		if err != nil {
			return err
		}
		output.Logger.Info("Installation Complete", "target", targetDir, "total_files", n)
		return nil
	},
}

// installFunctions copies the embedded jq files into targetDir.
func installFunctions(targetDir string) (int, error) {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
	}
	entries, err := fs.ReadDir(assets.Functions, "functions")
	if err != nil {
		return 0, fmt.Errorf("failed to read embedded functions: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := fs.ReadFile(assets.Functions, "functions/"+entry.Name())
		if err != nil {
			output.Logger.Error("Failed to read embedded file", "file", entry.Name(), "error", err)
			continue
		}
		targetPath := filepath.Join(targetDir, entry.Name())
		if err := os.WriteFile(targetPath, content, 0644); err != nil {
			output.Logger.Error("Failed to write to target", "path", targetPath, "error", err)
			continue
		}
		output.Logger.Info("Installed function", "name", entry.Name())
		count++
	}
	return count, nil
}

func init() {
	installCmd.Flags().StringVar(&functionsDir, "dir", "", "Target directory (default ~/.jq-modules)")
	functionsCmd.AddCommand(installCmd)
	rootCmd.AddCommand(functionsCmd)
}
