package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lakesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lakesync/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dataset settings",
	Long: `View and change the settings stored in the config file.

Keys: ` + strings.Join(file.Keys, ", "),
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting. Boolean keys accept true or false; types takes a
comma-separated list, and an empty value clears it.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup",
	Long:  `Prompt for the project, dataset and token and save them.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cmd.Printf("Settings (%s)\n\n", store.Path())
	for _, key := range file.Keys {
		cmd.Printf("  %-15s %s\n", key, formatSetting(key, store))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !file.IsKnownKey(key) {
		return fmt.Errorf("unknown key %q (valid keys: %s)", key, strings.Join(file.Keys, ", "))
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if _, ok := store.Get(key); !ok {
		return nil
	}
	if key == file.KeyToken {
		cmd.Println(store.GetString(key))
		return nil
	}
	cmd.Println(formatSetting(key, store))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if !file.IsKnownKey(key) {
		return fmt.Errorf("unknown key %q (valid keys: %s)", key, strings.Join(file.Keys, ", "))
	}

	value, err := parseSetting(key, raw)
	if err != nil {
		return err
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !file.IsKnownKey(key) {
		return fmt.Errorf("unknown key %q (valid keys: %s)", key, strings.Join(file.Keys, ", "))
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := store.Unset(key); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Unset %s\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cmd.Println(store.Path())
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	src := file.SourceConfig(store)
	cmd.Printf("Project ID [%s]: ", src.ProjectID)
	src.ProjectID = withDefault(readLine(reader), src.ProjectID)

	cmd.Printf("Dataset [%s]: ", withDefault(src.Dataset, "production"))
	src.Dataset = withDefault(readLine(reader), withDefault(src.Dataset, "production"))

	cmd.Print("Token (leave empty for published documents only): ")
	if token := readSecret(cmd, reader); token != "" {
		src.Token = token
	}
	cmd.Println()

	if src.Token != "" {
		cmd.Print("Overlay drafts? [y/N]: ")
		src.OverlayDrafts = strings.EqualFold(readLine(reader), "y")
	}

	if err := src.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	values := map[string]any{
		file.KeyProjectID:     src.ProjectID,
		file.KeyDataset:       src.Dataset,
		file.KeyToken:         src.Token,
		file.KeyOverlayDrafts: src.OverlayDrafts,
	}
	if err := store.SetAll(values); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Saved to %s\n", store.Path())
	return nil
}

// parseSetting converts a command line value to the type stored for key.
func parseSetting(key, raw string) (any, error) {
	switch key {
	case file.KeyOverlayDrafts, file.KeyWatchMode:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case file.KeyTypes:
		types := []string{}
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		return types, nil
	case file.KeyStore:
		if raw != "memory" && raw != "sqlite" {
			return nil, fmt.Errorf("%w: store must be one of: memory, sqlite", domain.ErrInvalidInput)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// formatSetting renders a stored value for display. Tokens are masked.
func formatSetting(key string, store *file.ConfigStore) string {
	if _, ok := store.Get(key); !ok {
		return "(not set)"
	}
	switch key {
	case file.KeyToken:
		return maskToken(store.GetString(key))
	case file.KeyOverlayDrafts, file.KeyWatchMode:
		return strconv.FormatBool(store.GetBool(key))
	case file.KeyTypes:
		return strings.Join(store.GetStringSlice(key), ",")
	default:
		return store.GetString(key)
	}
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readSecret reads without echo when input is a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
