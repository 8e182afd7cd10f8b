package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	baseURL string
	timeout time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "partyledger-cli",
		Short:         "PartyLedger CLI tool",
		Long:          `A command line interface for reading statements and balance checks from the PartyLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the PartyLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		statementCmd(opts),
		consistencyCmd(opts),
	)

	return rootCmd
}

func accountsCmd(opts *options) *cobra.Command {
	var (
		party  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts of a party type",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("party_type", party)
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			return fetchAndPrint(cmd, opts, "/api/v1/accounts", q)
		},
	}

	cmd.Flags().StringVar(&party, "party", "", "Party type (customer or supplier)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of accounts")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of accounts to skip")
	_ = cmd.MarkFlagRequired("party")

	return cmd
}

func statementCmd(opts *options) *cobra.Command {
	var account, party, from, to, asOf string

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Print the running-balance statement of an account or party",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := scopedPath(account, party, "statement")
			if err != nil {
				return err
			}

			q := url.Values{}
			setIfNotEmpty(q, "from", from)
			setIfNotEmpty(q, "to", to)
			setIfNotEmpty(q, "as_of", asOf)
			return fetchAndPrint(cmd, opts, path, q)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account ID")
	cmd.Flags().StringVar(&party, "party", "", "Party type (customer or supplier)")
	cmd.Flags().StringVar(&from, "from", "", "Include entries on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Include entries on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Ignore transactions dated after this date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("account", "party")

	return cmd
}

func consistencyCmd(opts *options) *cobra.Command {
	var account, party string

	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Compare stored balances with replayed statements",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := scopedPath(account, party, "consistency")
			if err != nil {
				return err
			}
			return fetchAndPrint(cmd, opts, path, nil)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account ID")
	cmd.Flags().StringVar(&party, "party", "", "Party type (customer or supplier)")
	cmd.MarkFlagsMutuallyExclusive("account", "party")

	return cmd
}

func scopedPath(account, party, resource string) (string, error) {
	switch {
	case account != "":
		return "/api/v1/accounts/" + url.PathEscape(account) + "/" + resource, nil
	case party != "":
		return "/api/v1/parties/" + url.PathEscape(party) + "/" + resource, nil
	default:
		return "", errors.New("one of --account or --party is required")
	}
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func fetchAndPrint(cmd *cobra.Command, opts *options, path string, query url.Values) error {
	body, err := getJSON(cmd.Context(), opts, path, query)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), body)
}

func getJSON(ctx context.Context, opts *options, path string, query url.Values) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := opts.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return body, nil
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	buf.WriteByte('\n')

	_, err := buf.WriteTo(w)
	return err
}
