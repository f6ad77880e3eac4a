package main

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"brandkit/internal/app"
	"brandkit/internal/brand"
	"brandkit/internal/config"
	"brandkit/internal/encryption"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Create", "Delete").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts for a passphrase without echoing when stdin is a
// terminal, and falls back to a plain line read otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// actor returns the identity used for lock and unlock audit records.
func actor(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("USER")
}

var rootCmd = &cobra.Command{
	Use:   "brandkit",
	Short: "Brand configuration registry",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.Encryption.Enabled = encrypt

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			passphrase, err := readPassphrase("Passphrase for archive encryption key: ")
			if err != nil {
				return err
			}
			enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
			if err != nil {
				return fmt.Errorf("creating encryptor: %w", err)
			}
			if err := enc.Setup(passphrase); err != nil {
				return fmt.Errorf("generating encryption keys: %w", err)
			}
			fmt.Printf("Encryption keys written to %s\n", filepath.Dir(cfg.Encryption.PublicKeyPath))
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Brands Root: %s\n", cfg.BrandsRoot)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Brands Root:    %s\n", cfg.BrandsRoot)
		fmt.Printf("Templates Root: %s\n", cfg.TemplatesRoot)
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		fmt.Printf("Vault:          %s (%s)\n", cfg.Vault.Name, cfg.Vault.Type)
		fmt.Printf("Audit:          %s\n", cfg.Audit.Type)
		fmt.Printf("Encryption:     enabled=%v (%s)\n", cfg.Encryption.Enabled, cfg.Encryption.Type)
		return nil
	},
}

var configVaultCheckCmd = &cobra.Command{
	Use:   "vault-check",
	Short: "Verify the archive vault is accessible",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("VaultCheck")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ValidateVault(); err != nil {
			return fmt.Errorf("vault check failed: %w", err)
		}
		fmt.Println("Vault is accessible and writable.")
		return nil
	},
}

// create command
var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")
		copyFrom, _ := cmd.Flags().GetString("copy-from")
		configFile, _ := cmd.Flags().GetString("config")
		overridesFile, _ := cmd.Flags().GetString("overrides")

		a, err := newApp("Create")
		if err != nil {
			return err
		}
		defer a.Close()

		opts := brand.CreateOptions{Template: template, CopyFrom: copyFrom}
		if configFile != "" {
			opts.Config, err = app.ReadDocumentFile(configFile)
			if err != nil {
				return err
			}
		}
		if overridesFile != "" {
			opts.Overrides, err = app.ReadDocumentFile(overridesFile)
			if err != nil {
				return err
			}
		}

		result, err := a.Registry().Create(args[0], opts)
		if err != nil {
			return err
		}

		fmt.Printf("Created brand %s at %s\n", result.BrandName, result.Path)
		if result.TemplateUsed != "" {
			fmt.Printf("Template: %s\n", result.TemplateUsed)
		}
		printWarnings(result.Warnings)
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "View a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showCSS, _ := cmd.Flags().GetBool("css")

		a, err := newApp("Load")
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.Registry().Load(args[0])
		if err != nil {
			return err
		}

		if showCSS {
			fmt.Print(b.CSSVariables)
			return nil
		}

		fmt.Printf("%s (%s)\n", b.DisplayName, b.Name)
		if b.Tagline != "" {
			fmt.Printf("  %s\n", b.Tagline)
		}
		fmt.Printf("Version:  %s\n", b.Version)
		fmt.Printf("Status:   %s\n", b.Status)
		if b.TemplateSource != "" {
			fmt.Printf("Template: %s\n", b.TemplateSource)
		}
		if !b.CreatedAt.IsZero() {
			fmt.Printf("Created:  %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if !b.UpdatedAt.IsZero() {
			fmt.Printf("Updated:  %s\n", b.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		if b.Protection.Protected {
			fmt.Printf("Protection: %s (by %s: %s)\n", b.Protection.Level, b.Protection.By, b.Protection.Reason)
		}
		if len(b.Colors) > 0 {
			fmt.Printf("Colors:   %d defined\n", len(b.Colors))
		}
		for section, assets := range b.Assets {
			for _, asset := range assets {
				marker := ""
				if !asset.Resolved {
					marker = "  [missing]"
				}
				fmt.Printf("Asset %s: %s%s\n", section, asset.Path, marker)
			}
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List brands",
	RunE: func(cmd *cobra.Command, args []string) error {
		detailed, _ := cmd.Flags().GetBool("detailed")
		status, _ := cmd.Flags().GetString("status")

		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.Registry().List(brand.ListOptions{Detailed: detailed, StatusFilter: status})
		if err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Println("No brands found.")
			return nil
		}

		for _, s := range summaries {
			line := fmt.Sprintf("%-20s  %-8s  v%-8s  %s", s.Name, s.Status, s.Version, s.DisplayName)
			if detailed {
				line += fmt.Sprintf("  (%d assets, %d bytes)", s.TotalAssets, s.TotalSize)
			}
			fmt.Println(line)
		}
		return nil
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Update a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		noBackup, _ := cmd.Flags().GetBool("no-backup")
		force, _ := cmd.Flags().GetBool("force")

		if configFile == "" {
			return fmt.Errorf("--config is required")
		}

		updates, err := app.ReadDocumentFile(configFile)
		if err != nil {
			return err
		}

		a, err := newApp("Update")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Registry().Update(args[0], updates, brand.UpdateOptions{
			CreateBackup: !noBackup,
			Force:        force,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Updated %s to version %s (%d fields)\n",
			result.BrandName, result.Version, len(result.UpdatedFields))
		if result.BackupPath != "" {
			fmt.Printf("Backup: %s\n", result.BackupPath)
		}
		printWarnings(result.Warnings)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		force, _ := cmd.Flags().GetBool("force")
		noBackup, _ := cmd.Flags().GetBool("no-backup")

		if !yes && !force {
			if !confirm(fmt.Sprintf("Delete brand %q and all its files?", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			yes = true
		}

		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Registry().Delete(args[0], brand.DeleteOptions{
			Confirm:      yes,
			Force:        force,
			CreateBackup: !noBackup,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %s (%d files, %d bytes)\n",
			result.BrandName, result.FilesDeleted, result.BytesDeleted)
		if result.ArchivePath != "" {
			fmt.Printf("Archive: %s\n", result.ArchivePath)
		}
		return nil
	},
}

// lock / unlock / protection commands
var lockCmd = &cobra.Command{
	Use:   "lock NAME",
	Short: "Protect a brand against modification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		reason, _ := cmd.Flags().GetString("reason")
		by, _ := cmd.Flags().GetString("by")

		a, err := newApp("Lock")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Registry().Lock(args[0], brand.ProtectionLevel(level), reason, actor(by))
		if err != nil {
			return err
		}

		fmt.Printf("Locked %s at %s level (by %s)\n", result.BrandName, result.Level, result.By)
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock NAME",
	Short: "Remove a brand's protection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")

		a, err := newApp("Unlock")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Registry().Unlock(args[0], actor(by))
		if err != nil {
			return err
		}

		fmt.Printf("Unlocked %s (by %s)\n", result.BrandName, result.By)
		return nil
	},
}

var protectionCmd = &cobra.Command{
	Use:   "protection NAME",
	Short: "View a brand's protection status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CheckProtection")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.Registry().CheckProtection(args[0])
		if err != nil {
			return err
		}

		p := status.Protection
		fmt.Printf("Brand:      %s\n", status.BrandName)
		fmt.Printf("Protected:  %v\n", p.Protected)
		fmt.Printf("Level:      %s\n", p.Level)
		if p.By != "" {
			fmt.Printf("By:         %s\n", p.By)
		}
		if !p.At.IsZero() {
			fmt.Printf("Since:      %s\n", p.At.Format("2006-01-02 15:04:05"))
		}
		if p.Reason != "" {
			fmt.Printf("Reason:     %s\n", p.Reason)
		}
		fmt.Printf("Can update: %v\n", status.CanUpdate)
		fmt.Printf("Can delete: %v\n", status.CanDelete)
		return nil
	},
}

// compliance command
var complianceCmd = &cobra.Command{
	Use:   "compliance NAME",
	Short: "Check a brand against its compliance rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ValidateCompliance")
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.Registry().Load(args[0])
		if err != nil {
			return err
		}

		issues := a.Registry().ValidateCompliance(b)
		if len(issues) == 0 {
			fmt.Printf("%s passes all compliance rules.\n", b.Name)
			return nil
		}
		for _, issue := range issues {
			fmt.Printf("FAIL: %s\n", issue)
		}
		return fmt.Errorf("%d compliance issue(s)", len(issues))
	},
}

// template command
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage brand templates",
}

var templateCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		features, _ := cmd.Flags().GetStringSlice("feature")

		if configFile == "" {
			return fmt.Errorf("--config is required")
		}
		doc, err := app.ReadDocumentFile(configFile)
		if err != nil {
			return err
		}

		a, err := newApp("TemplateCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Templates().Create(args[0], doc, description, category, features)
		if err != nil {
			return err
		}

		fmt.Printf("Created template %s (%s) at %s\n", result.TemplateName, result.Category, result.Path)
		printWarnings(result.Warnings)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		a, err := newApp("TemplateList")
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.Templates().List(category)
		if err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Println("No templates found.")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("%-20s  %-10s  v%-8s  %s\n", s.Name, s.Category, s.Version, s.Description)
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "View a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("TemplateLoad")
		if err != nil {
			return err
		}
		defer a.Close()

		tpl, err := a.Templates().Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s) v%s\n", tpl.Name, tpl.Category, tpl.Version)
		if tpl.Description != "" {
			fmt.Printf("  %s\n", tpl.Description)
		}
		if len(tpl.Features) > 0 {
			fmt.Printf("Features: %s\n", strings.Join(tpl.Features, ", "))
		}
		if len(tpl.RequiredAssets) > 0 {
			fmt.Printf("Required assets: %s\n", strings.Join(tpl.RequiredAssets, ", "))
		}
		if len(tpl.OptionalAssets) > 0 {
			fmt.Printf("Optional assets: %s\n", strings.Join(tpl.OptionalAssets, ", "))
		}
		return nil
	},
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Update a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if configFile == "" {
			return fmt.Errorf("--config is required")
		}
		updates, err := app.ReadDocumentFile(configFile)
		if err != nil {
			return err
		}

		a, err := newApp("TemplateUpdate")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Templates().Update(args[0], updates)
		if err != nil {
			return err
		}

		fmt.Printf("Updated template %s to version %s\n", result.TemplateName, result.Version)
		printWarnings(result.Warnings)
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			if !confirm(fmt.Sprintf("Delete template %q?", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp("TemplateDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Templates().Delete(args[0], true); err != nil {
			return err
		}
		fmt.Printf("Deleted template %s\n", args[0])
		return nil
	},
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate NAME",
	Short: "Validate a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("TemplateValidate")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Templates().Validate(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Template %s: %s\n", report.TemplateName, report.Status)
		for _, issue := range report.Structure {
			fmt.Printf("  structure: %s\n", issue)
		}
		for _, issue := range report.Assets {
			fmt.Printf("  assets: %s\n", issue)
		}
		return nil
	},
}

// asset command
var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage brand assets",
}

var assetUploadCmd = &cobra.Command{
	Use:   "upload BRAND FILE",
	Short: "Upload an asset from a local file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		assetType, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		var metadata map[string]any
		if len(metaPairs) > 0 {
			metadata = make(map[string]any, len(metaPairs))
			for _, pair := range metaPairs {
				key, value, ok := strings.Cut(pair, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid --meta %q: expected key=value", pair)
				}
				metadata[key] = value
			}
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading asset file: %w", err)
		}
		if name == "" {
			name = filepath.Base(args[1])
		}

		a, err := newApp("UploadAsset")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Registry().UploadAsset(args[0], name, assetType, base64.StdEncoding.EncodeToString(data), metadata)
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded %s (%d bytes) to %s\n", result.Filename, result.Size, result.Path)
		if result.Renamed {
			fmt.Printf("Note: renamed from %s to avoid collision\n", name)
		}
		return nil
	},
}

var assetListCmd = &cobra.Command{
	Use:   "list BRAND",
	Short: "List a brand's assets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListAssets")
		if err != nil {
			return err
		}
		defer a.Close()

		typeFilter, _ := cmd.Flags().GetString("type")
		assets, err := a.Registry().ListAssets(args[0], typeFilter)
		if err != nil {
			return err
		}

		if len(assets) == 0 {
			fmt.Println("No assets found.")
			return nil
		}
		for _, asset := range assets {
			fmt.Printf("%-30s  %-8s  %8d  %s\n", asset.Filename, asset.AssetType, asset.Size, asset.Path)
		}
		return nil
	},
}

var assetValidateCmd = &cobra.Command{
	Use:   "validate BRAND",
	Short: "Cross-check the asset index against the filesystem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ValidateAssets")
		if err != nil {
			return err
		}
		defer a.Close()

		checks, err := a.Registry().ValidateAssets(args[0])
		if err != nil {
			return err
		}

		if len(checks) == 0 {
			fmt.Println("No indexed assets.")
			return nil
		}
		for _, check := range checks {
			if check.Detail != "" {
				fmt.Printf("%-12s  %s  (%s)\n", check.Status, check.Filename, check.Detail)
			} else {
				fmt.Printf("%-12s  %s\n", check.Status, check.Filename)
			}
		}
		return nil
	},
}

var assetDeleteCmd = &cobra.Command{
	Use:   "delete BRAND FILE",
	Short: "Delete an asset (a backup copy is kept)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteAsset")
		if err != nil {
			return err
		}
		defer a.Close()

		noBackup, _ := cmd.Flags().GetBool("no-backup")
		if err := a.Registry().DeleteAsset(args[0], args[1], !noBackup); err != nil {
			return err
		}
		fmt.Printf("Deleted asset %s\n", args[1])
		return nil
	},
}

var assetCleanupCmd = &cobra.Command{
	Use:   "cleanup BRAND",
	Short: "Report assets the brand no longer references, optionally removing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removeUnused, _ := cmd.Flags().GetBool("remove-unused")

		a, err := newApp("CleanupAssets")
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Registry().CleanupAssets(args[0], removeUnused)
		if err != nil {
			return err
		}

		if removeUnused {
			fmt.Printf("Removed %d asset(s), freed %d bytes, kept %d\n",
				len(summary.Removed), summary.BytesFreed, summary.Kept)
			for _, name := range summary.Removed {
				fmt.Printf("  removed %s\n", name)
			}
			return nil
		}

		fmt.Printf("Found %d unused asset(s) (%d bytes), kept %d\n",
			len(summary.Unused), summary.BytesFreed, summary.Kept)
		for _, name := range summary.Unused {
			fmt.Printf("  unused %s\n", name)
		}
		if len(summary.Unused) > 0 {
			fmt.Println("Pass --remove-unused to delete them.")
		}
		return nil
	},
}

// audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View recent registry events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("Audit")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.RecentEvents(limit)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}
		for _, e := range events {
			fmt.Printf("%s  %-5s  %-15s  %-20s  %s  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Level, e.Operation, e.Brand, e.Actor, e.Reason)
		}
		return nil
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Work with deletion archives",
}

var archiveDecryptCmd = &cobra.Command{
	Use:   "decrypt ARCHIVE OUTPUT",
	Short: "Decrypt an encrypted deletion archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DecryptArchive")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := a.DecryptArchive(args[0], args[1], passphrase); err != nil {
			return err
		}
		fmt.Printf("Decrypted to %s\n", args[1])
		return nil
	},
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Generate archive encryption keys")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configVaultCheckCmd)

	// create flags
	createCmd.Flags().String("template", "", "Template to seed the brand from")
	createCmd.Flags().String("copy-from", "", "Existing brand to copy")
	createCmd.Flags().String("config", "", "YAML document to use as the brand config ('-' for stdin)")
	createCmd.Flags().String("overrides", "", "YAML document merged over the base config")

	// show flags
	showCmd.Flags().Bool("css", false, "Print only the generated CSS variables")

	// list flags
	listCmd.Flags().Bool("detailed", false, "Include asset counts and sizes")
	listCmd.Flags().String("status", "", "Only list brands with this status")

	// update flags
	updateCmd.Flags().String("config", "", "YAML document with the fields to update ('-' for stdin)")
	updateCmd.Flags().Bool("no-backup", false, "Skip the pre-update snapshot")
	updateCmd.Flags().Bool("force", false, "Skip the protection guard")

	// delete flags
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	deleteCmd.Flags().Bool("force", false, "Skip the protection guard and the archive")
	deleteCmd.Flags().Bool("no-backup", false, "Skip the deletion archive")

	// lock/unlock flags
	lockCmd.Flags().String("level", "strict", "Protection level: none, warn, or strict")
	lockCmd.Flags().String("reason", "", "Why the brand is being locked")
	lockCmd.Flags().String("by", "", "Actor identity (defaults to $USER)")
	unlockCmd.Flags().String("by", "", "Actor identity (defaults to $USER)")

	// template subcommands
	templateCmd.AddCommand(templateCreateCmd)
	templateCreateCmd.Flags().String("config", "", "YAML document for the template ('-' for stdin)")
	templateCreateCmd.Flags().String("description", "", "Template description")
	templateCreateCmd.Flags().String("category", "", "Template category")
	templateCreateCmd.Flags().StringSlice("feature", nil, "Feature tag (repeatable)")
	templateCmd.AddCommand(templateListCmd)
	templateListCmd.Flags().String("category", "", "Only list templates in this category")
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateUpdateCmd)
	templateUpdateCmd.Flags().String("config", "", "YAML document with the fields to update ('-' for stdin)")
	templateCmd.AddCommand(templateDeleteCmd)
	templateDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	templateCmd.AddCommand(templateValidateCmd)

	// asset subcommands
	assetCmd.AddCommand(assetUploadCmd)
	assetUploadCmd.Flags().String("type", "image", "Asset type: logo, image, font, css, template, or other")
	assetUploadCmd.Flags().String("name", "", "Stored filename (defaults to the source file's name)")
	assetUploadCmd.Flags().StringArray("meta", nil, "Attach key=value metadata to the upload (repeatable)")
	assetCmd.AddCommand(assetListCmd)
	assetListCmd.Flags().String("type", "", "Only list assets of this type")
	assetCmd.AddCommand(assetValidateCmd)
	assetCmd.AddCommand(assetDeleteCmd)
	assetDeleteCmd.Flags().Bool("no-backup", false, "Skip the backup copy before deleting")
	assetCmd.AddCommand(assetCleanupCmd)
	assetCleanupCmd.Flags().Bool("remove-unused", false, "Delete unreferenced assets instead of only reporting them")

	// audit flags
	auditCmd.Flags().IntP("limit", "n", 50, "Maximum number of events to show")

	// archive subcommands
	archiveCmd.AddCommand(archiveDecryptCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(protectionCmd)
	rootCmd.AddCommand(complianceCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(assetCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(archiveCmd)
}
