package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
)

const apiPrefix = "/api/v1"

var errInconsistent = errors.New("ledger is inconsistent")

type options struct {
	baseURL string
	timeout time.Duration
	token   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "walletledger-cli",
		Short:         "WalletLedger CLI tool",
		Long:          `A command line interface for interacting with the WalletLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the WalletLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("WALLETLEDGER_TOKEN"), "Bearer token (defaults to $WALLETLEDGER_TOKEN)")

	rootCmd.AddCommand(
		newLedgerCmd(opts),
		newWalletCmd(opts),
		newReportCmd(opts),
		newTokenCmd(),
		newMigrateCmd(),
	)

	return rootCmd
}

func newLedgerCmd(opts *options) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.Context(), newAPIClient(opts), cmd.OutOrStdout())
		},
	})

	return ledgerCmd
}

func newWalletCmd(opts *options) *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	var (
		typeID      string
		target      int64
		description string
	)
	adjustCmd := &cobra.Command{
		Use:   "adjust <wallet-id>",
		Short: "Bring a wallet balance to a target amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.AdjustBalanceRequest{TypeID: typeID, TargetAmount: target}
			if description != "" {
				req.Description = &description
			}
			return adjustWallet(cmd.Context(), newAPIClient(opts), args[0], req, cmd.OutOrStdout())
		},
	}
	adjustCmd.Flags().StringVar(&typeID, "type", "", "Operation type id for the corrective operation")
	adjustCmd.Flags().Int64Var(&target, "target", 0, "Target balance in minor units")
	adjustCmd.Flags().StringVar(&description, "description", "", "Optional operation description")
	_ = adjustCmd.MarkFlagRequired("type")
	_ = adjustCmd.MarkFlagRequired("target")

	walletCmd.AddCommand(adjustCmd)
	return walletCmd
}

func newReportCmd(opts *options) *cobra.Command {
	var (
		out      string
		types    []string
		from     string
		to       string
		category string
	)

	reportCmd := &cobra.Command{
		Use:       "report <general|conversion|closing>",
		Short:     "Download a spreadsheet report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ReportKindGeneral), string(domain.ReportKindConversion), string(domain.ReportKindClosing)},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for _, t := range types {
				query.Add("type_id", t)
			}
			if from != "" {
				query.Set("from", from)
			}
			if to != "" {
				query.Set("to", to)
			}
			if category != "" {
				query.Set("category", category)
			}
			return downloadReport(cmd.Context(), newAPIClient(opts), args[0], query, out, cmd.OutOrStdout())
		},
	}
	reportCmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory (defaults to the server-provided name)")
	reportCmd.Flags().StringSliceVar(&types, "type", nil, "Operation type ids to include")
	reportCmd.Flags().StringVar(&from, "from", "", "Lower bound (RFC3339 or YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&to, "to", "", "Upper bound (RFC3339 or YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&category, "category", "", "Wallet category filter")

	return reportCmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		name   string
		role   string
		secret string
		ttl    time.Duration
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("jwt secret is required (--secret or $JWT_SECRET)")
			}
			manager := auth.NewJWTManager(secret, ttl)
			token, err := manager.Generate(&domain.User{
				ID:    userID,
				Email: email,
				Name:  name,
				Role:  domain.Role(role),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	tokenCmd.Flags().StringVar(&userID, "user", "cli", "User id placed in the token subject")
	tokenCmd.Flags().StringVar(&email, "email", "", "User email")
	tokenCmd.Flags().StringVar(&name, "name", "", "User display name")
	tokenCmd.Flags().StringVar(&role, "role", string(domain.RoleOperator), "Role: admin, operator or viewer")
	tokenCmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret (defaults to $JWT_SECRET)")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return tokenCmd
}

// migrations run directly against DATABASE_URL, not through the API.
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func newMigrateCmd() *cobra.Command {
	var path string

	migrateCmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.MigrationsPath
			}

			run := migrateUp
			if args[0] == "down" {
				run = migrateDown
			}
			if err := run(cfg.DatabaseURL, path); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return err
		},
	}
	migrateCmd.Flags().StringVar(&path, "path", "", "Migrations directory (defaults to $MIGRATIONS_PATH)")

	return migrateCmd
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		token:   opts.token,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.http.Do(req)
}

func checkConsistency(ctx context.Context, c *apiClient, out io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, "/ledger/consistency", nil, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return apiError(resp)
	}

	var report dto.ConsistencyResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintf(out, "Wallets checked: %d\n", report.TotalWallets)
	if report.Consistent {
		fmt.Fprintln(out, "Consistency check PASSED")
		return nil
	}

	fmt.Fprintf(out, "Consistency check FAILED: %d discrepancies\n", len(report.Discrepancies))
	if err := printJSON(out, report.Discrepancies); err != nil {
		return err
	}
	return errInconsistent
}

func adjustWallet(ctx context.Context, c *apiClient, walletID string, req dto.AdjustBalanceRequest, out io.Writer) error {
	headers := map[string]string{"Idempotency-Key": ulid.Make().String()}
	resp, err := c.do(ctx, http.MethodPost, "/wallets/"+url.PathEscape(walletID)+"/adjustments", req, headers)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}

	var result dto.AdjustmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintln(out, result.Message)
	return printJSON(out, result)
}

func downloadReport(ctx context.Context, c *apiClient, kind string, query url.Values, dest string, out io.Writer) error {
	path := "/reports/" + url.PathEscape(kind)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	target := reportPath(dest, attachmentName(resp.Header.Get("Content-Disposition"), kind))
	f, err := os.Create(target)
	if err != nil {
		return err
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Saved %s (%d bytes)\n", target, n)
	return nil
}

// attachmentName extracts the filename from a Content-Disposition header.
func attachmentName(disposition, kind string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "" && name != "." && name != string(filepath.Separator) {
			return name
		}
	}
	return kind + ".xlsx"
}

func reportPath(dest, filename string) string {
	if dest == "" {
		return filename
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, filename)
	}
	return dest
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp dto.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		if errResp.Message != "" {
			return fmt.Errorf("api error (status %d): %s: %s", resp.StatusCode, errResp.Error, errResp.Message)
		}
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("api error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
