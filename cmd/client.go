package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/pkg/auth"
)

const defaultConfigFile = ".config.json"

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage gateway clients",
	Long:  `Manage the HMAC clients allowed to call the gateway with a JWT`,
}

var (
	clientName        string
	clientPermissions string
	tokenTTL          time.Duration
)

var (
	clientCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a client with a generated secret",
		Args:  cobra.NoArgs,
		RunE:  runClientCreate,
	}

	clientListCmd = &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE:  runClientList,
	}

	clientRevokeCmd = &cobra.Command{
		Use:   "revoke <client_id>",
		Short: "Revoke client access (set active=false)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setClientActive(cmd, args[0], false)
		},
	}

	clientActivateCmd = &cobra.Command{
		Use:   "activate <client_id>",
		Short: "Activate client access (set active=true)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setClientActive(cmd, args[0], true)
		},
	}

	clientTokenCmd = &cobra.Command{
		Use:   "token <client_id>",
		Short: "Issue a JWT for a client",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientToken,
	}
)

func init() {
	clientCreateCmd.Flags().StringVarP(&clientName, "name", "n", "", "client name (required)")
	clientCreateCmd.Flags().StringVarP(&clientPermissions, "permissions", "p", auth.PermReadLogs, "comma-separated permissions")
	_ = clientCreateCmd.MarkFlagRequired("name")

	clientTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default auth.token_ttl)")

	clientCmd.AddCommand(clientCreateCmd, clientListCmd, clientRevokeCmd, clientActivateCmd, clientTokenCmd)
	rootCmd.AddCommand(clientCmd)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// secretSize matches the key length to the HMAC digest size
func secretSize(algorithm string) int {
	switch algorithm {
	case "HS384":
		return 48
	case "HS512":
		return 64
	}
	return 32
}

// saveConfig writes the configuration back to the file it came from
func saveConfig(cfg *config.Config) error {
	path := configPath
	if path == "" {
		path = defaultConfigFile
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runClientCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	permissions := strings.Split(clientPermissions, ",")
	for i, perm := range permissions {
		permissions[i] = strings.TrimSpace(perm)
	}

	client := config.ClientConfig{
		ClientID:    randomHex(16),
		ClientName:  clientName,
		SecretKey:   randomHex(secretSize(cfg.Auth.Algorithm)),
		Permissions: permissions,
		Active:      true,
	}
	cfg.Auth.Clients = append(cfg.Auth.Clients, client)
	if err := saveConfig(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Client ID:    %s\n", client.ClientID)
	fmt.Fprintf(out, "Client Name:  %s\n", client.ClientName)
	fmt.Fprintf(out, "Permissions:  %s\n", strings.Join(permissions, ", "))
	fmt.Fprintf(out, "Secret Key:   %s\n", client.SecretKey)
	return nil
}

func runClientList(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{"Client ID", "Name", "Permissions", "Active"})
	for _, c := range config.Get().Auth.Clients {
		if err := table.Append([]string{
			c.ClientID,
			c.ClientName,
			strings.Join(c.Permissions, ", "),
			strconv.FormatBool(c.Active),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func setClientActive(cmd *cobra.Command, clientID string, active bool) error {
	cfg := config.Get()
	for i := range cfg.Auth.Clients {
		if cfg.Auth.Clients[i].ClientID != clientID {
			continue
		}
		cfg.Auth.Clients[i].Active = active
		if err := saveConfig(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "client %s active=%t\n", clientID, active)
		return nil
	}
	return fmt.Errorf("client %s not found", clientID)
}

func runClientToken(cmd *cobra.Command, args []string) error {
	if err := auth.Load(config.Get().Auth); err != nil {
		return err
	}
	token, err := auth.IssueToken(args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
