package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mediguard/internal/client"
	"mediguard/internal/domain"
)

var extensionTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

func analyzeCmd(newClient func() *client.Client) *cobra.Command {
	var (
		file, text, question, insurance string
		asJSON                          bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a bill image, PDF or text",
		Example: `  mediguard analyze --file bill.pdf --insurance Aetna
  mediguard analyze --text "CT scan $860 x2" --question "Was I double billed?"
  pbpaste | mediguard analyze --text -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (text == "") {
				return errors.New("exactly one of --file or --text is required")
			}
			c := newClient()

			var (
				res *client.Result
				err error
			)
			if file != "" {
				var req client.FileRequest
				req, err = fileRequest(file)
				if err != nil {
					return err
				}
				req.UserQuestion, req.InsuranceProvider = question, insurance
				res, err = c.AnalyzeFile(cmd.Context(), req)
			} else {
				if text == "-" {
					raw, readErr := io.ReadAll(cmd.InOrStdin())
					if readErr != nil {
						return fmt.Errorf("reading stdin: %w", readErr)
					}
					text = string(raw)
				}
				res, err = c.AnalyzeText(cmd.Context(), client.TextRequest{
					BillText:          text,
					UserQuestion:      question,
					InsuranceProvider: insurance,
				})
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printAnalysis(cmd.OutOrStdout(), res)
			if id := c.GuestID(); id != "" && res.Guest != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nGuest session %s: %d of %d free analyses left. Pass --guest-id to keep it.\n",
					id, res.Guest.Remaining, res.Guest.Limit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "bill image or PDF")
	cmd.Flags().StringVar(&text, "text", "", `bill text ("-" reads stdin)`)
	cmd.Flags().StringVar(&question, "question", "", "question about the bill")
	cmd.Flags().StringVar(&insurance, "insurance", "", "insurance provider")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw analysis as JSON")
	return cmd
}

func fileRequest(path string) (client.FileRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.FileRequest{}, fmt.Errorf("reading bill: %w", err)
	}
	mimeType := extensionTypes[strings.ToLower(filepath.Ext(path))]
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return client.FileRequest{FileName: filepath.Base(path), MIMEType: mimeType, Data: data}, nil
}

func printAnalysis(w io.Writer, res *client.Result) {
	a := res.Analysis
	if a == nil {
		fmt.Fprintln(w, "No analysis returned.")
		return
	}

	fmt.Fprintf(w, "Summary: %s\n\n", a.Summary)
	if a.InsurancePlan != nil {
		fmt.Fprintf(w, "Insurance plan: %s\n", *a.InsurancePlan)
	}
	fmt.Fprintf(w, "Total billed:      $%.2f\n", a.TotalBilled)
	fmt.Fprintf(w, "Potential savings: $%.2f\n", a.PotentialSavings)
	fmt.Fprintf(w, "Issues found:      %d\n\n", a.IssuesFound)

	for i := range a.Items {
		it := &a.Items[i]
		mark := " "
		if it.Status == domain.LineItemIncorrect {
			mark = "!"
		}
		fmt.Fprintf(w, "%s %-8s %-40s $%10.2f", mark, it.CPTCode, it.Description, it.Amount)
		if it.EstimatedReasonableAmount != nil {
			fmt.Fprintf(w, "  (fair: $%.2f)", *it.EstimatedReasonableAmount)
		}
		fmt.Fprintln(w)
		if it.Why != "" {
			fmt.Fprintf(w, "    %s\n", it.Why)
		}
	}

	if a.QuestionAnswer != nil && *a.QuestionAnswer != "" {
		fmt.Fprintf(w, "\nAnswer: %s\n", *a.QuestionAnswer)
	}
	if a.DisputeLetter != "" {
		fmt.Fprintf(w, "\nDispute letter:\n%s\n", a.DisputeLetter)
	}
	if res.HistoryID != nil {
		fmt.Fprintf(w, "\nSaved to history as %s\n", res.HistoryID)
	}
}
