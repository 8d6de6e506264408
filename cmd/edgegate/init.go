package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a server config and policy document",
	Long: `Interactively create a config.yaml and a policies.yaml in the current
directory. Prompts for the server port, data directory, and an initial
protected prefix with its signing secret.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const (
	initConfigFile = "config.yaml"
	initPolicyFile = "policies.yaml"
)

func runInit(_ *cobra.Command, _ []string) error {
	for _, f := range []string{initConfigFile, initPolicyFile} {
		if _, err := os.Stat(f); err == nil {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("%s already exists. Overwrite it", f),
				IsConfirm: true,
			}
			if _, promptErr := prompt.Run(); promptErr != nil {
				fmt.Println("Cancelled.")
				return nil //nolint:nilerr // User cancelled, not an error
			}
		}
	}

	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: "8093",
		Validate: func(input string) error {
			port, err := strconv.Atoi(input)
			if err != nil || port < 1 || port > 65535 {
				return errors.New("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	port, _ := strconv.Atoi(portStr)

	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: "./data",
		Validate: func(input string) error {
			if input == "" {
				return errors.New("data directory is required")
			}
			return nil
		},
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	prefixPrompt := promptui.Prompt{
		Label:   "Protected path prefix",
		Default: "/restricted",
		Validate: func(input string) error {
			if len(input) == 0 || input[0] != '/' {
				return errors.New("prefix must start with /")
			}
			return nil
		},
	}
	prefix, err := prefixPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	secretPrompt := promptui.Prompt{
		Label: "Signing secret for " + prefix,
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("secret is required")
			}
			return nil
		},
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	serverConfig := map[string]any{
		"env": "dev",
		"server": map[string]any{
			"port":     port,
			"data_dir": dataDir,
		},
		"policy": map[string]any{
			"file": initPolicyFile,
		},
		"metrics": map[string]any{
			"enabled": true,
		},
	}

	policyDoc := map[string]any{
		"version": 1,
		"paths": map[string]any{
			"/": map[string]any{
				"autoindex": true,
				"signature": false,
			},
			prefix: map[string]any{
				"autoindex": false,
				"signature": secret,
			},
		},
	}

	if err := writeYAMLFile(initConfigFile, serverConfig); err != nil {
		return err
	}
	if err := writeYAMLFile(initPolicyFile, policyDoc); err != nil {
		return err
	}

	fmt.Printf("Wrote %s and %s.\n", initConfigFile, initPolicyFile)
	fmt.Println("Start the server with 'edgegate serve'.")
	return nil
}

func writeYAMLFile(path string, doc map[string]any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
