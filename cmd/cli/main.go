package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/jointledger/internal/adapter/http/dto"
	"github.com/iho/jointledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	partyID string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jointledger-cli",
		Short:         "JointLedger CLI tool",
		Long:          `A command line interface for interacting with the JointLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the JointLedger API")
	rootCmd.PersistentFlags().StringVar(&partyID, "party", "", "Party ID sent as X-Party-ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(),
		transferCmd(),
		syncCmd(),
		ledgerCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var req dto.CreateAccountRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a bank account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			if err := newAPIClient().do(http.MethodPost, "/api/v1/accounts", "", req, &account); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), account)
			return nil
		},
	}
	createCmd.Flags().StringVar(&req.Kind, "kind", "personal", "Account kind (personal or joint)")
	createCmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owning party ID")
	createCmd.Flags().StringVar(&req.HolderName, "holder", "", "Holder name")
	createCmd.Flags().StringVar(&req.AccountNumber, "number", "", "Bank account number")
	createCmd.Flags().StringVar(&req.BankCode, "bank", "", "Bank code")
	createCmd.Flags().StringVar(&req.OwnerSeqNo, "seq", "", "Owner sequence number at the bank")
	createCmd.Flags().StringSliceVar(&req.Members, "member", nil, "Joint account member (repeatable)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var accounts []dto.AccountResponse
			if err := newAPIClient().do(http.MethodGet, "/api/v1/accounts", "", nil, &accounts); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), accounts)
			return nil
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Read the live bank balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balance dto.BalanceResponse
			if err := newAPIClient().do(http.MethodGet, "/api/v1/accounts/"+args[0]+"/balance", "", nil, &balance); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", balance.AccountID, balance.Balance.StringFixed(2))
			return nil
		},
	}

	cmd.AddCommand(createCmd, listCmd, balanceCmd)
	return cmd
}

func transferCmd() *cobra.Command {
	var (
		req    dto.TransferRequest
		amount string
		key    string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between the joint account and a personal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			req.Amount = parsed

			if key == "" {
				key = uuid.NewString()
			}

			var result dto.TransferResponse
			if err := newAPIClient().do(http.MethodPost, "/api/v1/transfers", key, req, &result); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.SourceAccountID, "from", "", "Source account ID")
	cmd.Flags().StringVar(&req.DestinationAccountID, "to", "", "Destination account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to move")
	cmd.Flags().StringVar(&req.DebitMemo, "debit-memo", "", "Memo on the source statement")
	cmd.Flags().StringVar(&req.CreditMemo, "credit-memo", "", "Memo on the destination statement")
	cmd.Flags().StringVar(&req.RequesterName, "requester", "", "Requester name shown on the debit")
	cmd.Flags().StringVar(&req.HolderName, "holder", "", "Destination holder name")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <account-id>",
		Short: "Import settled bank transactions into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.SyncResponse
			if err := newAPIClient().do(http.MethodPost, "/api/v1/accounts/"+args[0]+"/sync", uuid.NewString(), nil, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", result.Imported, result.AccountID)
			return nil
		},
	}
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var page, size int
	listCmd := &cobra.Command{
		Use:   "list <account-id>",
		Short: "List ledger entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/accounts/%s/ledger?page=%d&size=%d", args[0], page, size)
			var result dto.LedgerPageResponse
			if err := newAPIClient().do(http.MethodGet, path, "", nil, &result); err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), &result)
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&size, "size", 20, "Page size")

	var category, memo string
	reviewCmd := &cobra.Command{
		Use:   "review <entry-id>",
		Short: "Mark a ledger entry reviewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.ReviewRequest{}
			if cmd.Flags().Changed("category") {
				req.CategoryID = &category
			}
			if cmd.Flags().Changed("memo") {
				req.Memo = &memo
			}

			var entry dto.LedgerEntryResponse
			if err := newAPIClient().do(http.MethodPatch, "/api/v1/ledger/entries/"+args[0]+"/review", "", req, &entry); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), entry)
			return nil
		},
	}
	reviewCmd.Flags().StringVar(&category, "category", "", "Category ID")
	reviewCmd.Flags().StringVar(&memo, "memo", "", "Replacement memo")

	historyCmd := &cobra.Command{
		Use:   "history <entry-id>",
		Short: "Show the review history of a ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var logs []dto.AuditLogResponse
			if err := newAPIClient().do(http.MethodGet, "/api/v1/ledger/entries/"+args[0]+"/history", "", nil, &logs); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), logs)
			return nil
		},
	}

	cmd.AddCommand(listCmd, reviewCmd, historyCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.NewMigrator(databaseURL, path, logger).Up()
		},
	}
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.NewMigrator(databaseURL, path, logger).Down()
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

type apiClient struct {
	baseURL string
	partyID string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: baseURL,
		partyID: partyID,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends body as JSON and decodes a 2xx reply into out.
func (c *apiClient) do(method, path, idempotencyKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.partyID != "" {
		req.Header.Set("X-Party-ID", c.partyID)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Code != "" {
				return fmt.Errorf("%s [%s, correlation %s] (status %d): %s", apiErr.Error, apiErr.Code, apiErr.CorrelationID, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printEntries(w io.Writer, page *dto.LedgerPageResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSETTLED\tDIRECTION\tAMOUNT\tBALANCE\tREVIEW\tMEMO")
	for _, e := range page.Entries {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.SettledDate, e.SettledTime, e.Direction,
			e.Amount.StringFixed(2), e.BalanceAfter.StringFixed(2),
			e.ReviewStatus, truncate(e.Memo, 30))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "page %d, %d of %d entries\n", page.Page, len(page.Entries), page.Total)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "failed to encode output: %v\n", err)
	}
}
