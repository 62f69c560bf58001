package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"expertdb/internal/config"
)

// --- experts ---

var expertsCmd = &cobra.Command{
	Use:   "experts",
	Short: "Manage expert records",
}

var expertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored experts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/experts")
		if err != nil {
			return err
		}

		var experts []struct {
			ID           string `json:"id"`
			PersonalInfo struct {
				FullName string `json:"fullName"`
			} `json:"personalInfo"`
			CurrentRole struct {
				Title        string `json:"title"`
				Organization string `json:"organization"`
			} `json:"currentRole"`
		}
		if err := decodeJSON(resp, &experts); err != nil {
			return err
		}

		if len(experts) == 0 {
			fmt.Println("No experts found.")
			return nil
		}

		for _, e := range experts {
			line := e.PersonalInfo.FullName
			if e.CurrentRole.Title != "" {
				line += ", " + e.CurrentRole.Title
			}
			if e.CurrentRole.Organization != "" {
				line += " (" + e.CurrentRole.Organization + ")"
			}
			fmt.Printf("%s  %s\n", colorize(colorCyan, e.ID), line)
		}
		return nil
	},
}

var expertsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single expert as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/experts/"+args[0])
		if err != nil {
			return err
		}

		var expert any
		if err := decodeJSON(resp, &expert); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(expert)
	},
}

var expertsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add experts from a JSON file or flags",
	Long: `Add experts from a JSON file (single object or array) or from flags.

Examples:
  expertdb experts add --file ./experts.json
  expertdb experts add --name "Dr. Jane Smith" --org "TU München" --email jane@tum.de`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("name")

		if file == "" && name == "" {
			return fmt.Errorf("one of --file or --name is required")
		}

		var body any
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			var doc any
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("invalid JSON in %s: %w", file, err)
			}
			body = doc
		} else {
			org, _ := cmd.Flags().GetString("org")
			email, _ := cmd.Flags().GetString("email")
			position, _ := cmd.Flags().GetString("position")
			doc := map[string]any{"fullName": name}
			if org != "" {
				doc["organization"] = org
			}
			if email != "" {
				doc["email"] = email
			}
			if position != "" {
				doc["position"] = position
			}
			body = doc
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/experts", body)
		if err != nil {
			return err
		}

		var created json.RawMessage
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}

		// Count created records for the summary line.
		var many []json.RawMessage
		if err := json.Unmarshal(created, &many); err == nil {
			printSuccess("Added %d experts", len(many))
			return nil
		}
		var one struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(created, &one); err == nil && one.ID != "" {
			printSuccess("Added expert %s", one.ID)
			return nil
		}
		printSuccess("Added expert")
		return nil
	},
}

var expertsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Merge a JSON fragment into an expert record",
	Long: `Merge a JSON fragment into an expert record.

Fields absent from the fragment are kept, explicitly empty fields are
cleared, and valued fields are set.

Example:
  expertdb experts update --file ./fragment.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		var fragment map[string]any
		if err := json.Unmarshal(data, &fragment); err != nil {
			return fmt.Errorf("invalid JSON in %s: %w", file, err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/experts", fragment)
		if err != nil {
			return err
		}

		var merged struct {
			ID string `json:"id"`
		}
		if err := decodeJSON(resp, &merged); err != nil {
			return err
		}

		printSuccess("Updated expert %s", merged.ID)
		return nil
	},
}

var expertsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expert record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/experts/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted expert %s", args[0])
		return nil
	},
}

func init() {
	expertsAddCmd.Flags().String("file", "", "JSON file with one expert object or an array")
	expertsAddCmd.Flags().String("name", "", "expert full name")
	expertsAddCmd.Flags().String("org", "", "organization")
	expertsAddCmd.Flags().String("email", "", "email address")
	expertsAddCmd.Flags().String("position", "", "position or title")
	expertsUpdateCmd.Flags().String("file", "", "JSON file with the merge fragment (must carry an id)")

	expertsCmd.AddCommand(expertsListCmd)
	expertsCmd.AddCommand(expertsShowCmd)
	expertsCmd.AddCommand(expertsAddCmd)
	expertsCmd.AddCommand(expertsUpdateCmd)
	expertsCmd.AddCommand(expertsDeleteCmd)
}

// --- companies ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Manage company records",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/companies")
		if err != nil {
			return err
		}

		var companies []struct {
			Name     string `json:"name"`
			Domain   string `json:"domain"`
			Industry string `json:"industry"`
		}
		if err := decodeJSON(resp, &companies); err != nil {
			return err
		}

		if len(companies) == 0 {
			fmt.Println("No companies found.")
			return nil
		}

		for _, c := range companies {
			line := c.Name
			if c.Industry != "" {
				line += " (" + c.Industry + ")"
			}
			fmt.Printf("%s  %s\n", colorize(colorCyan, c.Domain), line)
		}
		return nil
	},
}

var companiesDeleteCmd = &cobra.Command{
	Use:   "delete <domain>",
	Short: "Delete a company record by domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/companies?domain="+args[0])
		if err != nil {
			return err
		}

		var result map[string]any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted company %s", args[0])
		return nil
	},
}

func init() {
	companiesCmd.AddCommand(companiesListCmd)
	companiesCmd.AddCommand(companiesDeleteCmd)
}

// --- enrich ---

var enrichCmd = &cobra.Command{
	Use:   "enrich <expert-id>",
	Short: "Enrich a stored expert via the configured AI provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Enriching expert %s...", args[0])

		var body any
		if prompt != "" {
			body = map[string]any{"customPrompt": prompt}
		}
		resp, err := client.post(cmd.Context(), "/experts/"+args[0]+"/enrich", body)
		if err != nil {
			return err
		}

		var enriched map[string]any
		if err := decodeJSON(resp, &enriched); err != nil {
			return err
		}

		printSuccess("Enriched expert %s", args[0])
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(enriched)
	},
}

func init() {
	enrichCmd.Flags().String("prompt", "", "custom research prompt for the AI provider")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all records as CSV files",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/export")
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Exported experts to %s", result["experts"])
		printSuccess("Exported companies to %s", result["companies"])
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			if strings.Contains(err.Error(), "unknown") {
				printWarning("valid keys: %s", strings.Join(config.ValidKeys(), ", "))
			}
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
