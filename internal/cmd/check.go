package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shineum/bulk-mailer/internal/recipients"
)

var (
	checkCSVPath string
	checkToList  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse the recipient list and show what would be sent to",
	Long: `Check parses the recipient source exactly as send would, then prints
the recipient count and a preview without connecting to any server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := resolveRecipients(checkCSVPath, checkToList)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d recipients\n", len(list))
		preview := list
		if len(preview) > 5 {
			preview = preview[:5]
		}
		for _, addr := range preview {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", addr)
		}
		if len(list) > len(preview) {
			fmt.Fprintf(cmd.OutOrStdout(), "  ... and %d more\n", len(list)-len(preview))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkCSVPath, "csv", "", "CSV file with recipient emails (first column or 'email' column)")
	checkCmd.Flags().StringVar(&checkToList, "to", "", "recipients as a comma, semicolon, or newline separated list")

	rootCmd.AddCommand(checkCmd)
}

// resolveRecipients loads the recipient list from the CSV file when given,
// otherwise from the inline list. The CSV takes precedence when both are
// provided.
func resolveRecipients(csvPath, toList string) ([]string, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open recipient file: %w", err)
		}
		defer f.Close()
		return recipients.ParseCSV(f)
	}

	if toList != "" {
		list := recipients.ParseText(toList)
		if len(list) == 0 {
			return nil, recipients.ErrNoRecipients
		}
		return list, nil
	}

	return nil, fmt.Errorf("no recipients provided (use --csv or --to)")
}
