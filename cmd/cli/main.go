package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pennyledger-cli",
		Short: "PennyLedger CLI tool",
		Long:  `A command line interface for interacting with the PennyLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PennyLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(catchUpCmd())
	rootCmd.AddCommand(exportCmd())

	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Exchange rate operations",
	}
	ratesCmd.AddCommand(refreshRatesCmd())
	ratesCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(ratesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func catchUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catch-up",
		Short: "Execute scheduled transactions that are past due",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodPost, "/api/v1/catch-up", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("catch-up failed (status %d): %s", status, body)
			}

			var summary struct {
				AutomaticCount int `json:"automaticCount"`
				PendingCount   int `json:"pendingCount"`
				FailedCount    int `json:"failedCount"`
			}
			if err := json.Unmarshal(body, &summary); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("Catch-up complete\n")
			fmt.Printf("Executed:              %d\n", summary.AutomaticCount)
			fmt.Printf("Awaiting confirmation: %d\n", summary.PendingCount)
			fmt.Printf("Failed:                %d\n", summary.FailedCount)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all ledger data to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodGet, "/api/v1/export", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("export failed (status %d): %s", status, body)
			}

			if err := os.WriteFile(outFile, body, 0o644); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}

			fmt.Printf("Export written to %s (%d bytes)\n", outFile, len(body))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "pennyledger-export.json", "Output file path")
	return cmd
}

func refreshRatesCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh exchange rates from the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _ := json.Marshal(map[string]string{"baseCurrency": base})
			body, status, err := doRequest(http.MethodPost, "/api/v1/rates/refresh", payload)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("refresh failed (status %d): %s", status, body)
			}

			var result struct {
				BaseCurrency string `json:"baseCurrency"`
				Updated      int    `json:"updated"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("Refreshed %d rates against %s\n", result.Updated, result.BaseCurrency)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "USD", "Base currency for the refresh")
	return cmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between currencies using stored rates",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/rates/convert?amount=%s&from=%s&to=%s", args[0], args[1], args[2])
			body, status, err := doRequest(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("conversion failed (status %d): %s", status, body)
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printJSON(result)
			return nil
		},
	}
}

func doRequest(method, path string, payload []byte) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	return body, resp.StatusCode, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
