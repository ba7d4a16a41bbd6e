// Package email renders the messages sent by the EmailSender implementations.
package email

import (
	"fmt"
	"html"
	"strings"

	"mediguard/internal/domain"
)

// Message is a rendered email.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// AnalysisReady renders the notification sent after an analysis is saved.
// The dispute letter is included verbatim when the model produced one.
func AnalysisReady(toName, billTitle, historyURL string, a *domain.BillAnalysis) Message {
	if toName == "" {
		toName = "there"
	}
	if billTitle == "" {
		billTitle = "your bill"
	}
	subject := fmt.Sprintf("Your MediGuard analysis of %s is ready", billTitle)
	findings := fmt.Sprintf("We found %d potential issue(s) worth an estimated $%.2f out of $%.2f billed.",
		a.IssuesFound, a.PotentialSavings, a.TotalBilled)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s\n\n%s\n", toName, a.Summary, findings)
	if a.DisputeLetter != "" {
		fmt.Fprintf(&text, "\nDraft dispute letter:\n\n%s\n", a.DisputeLetter)
	}
	fmt.Fprintf(&text, "\nView the full analysis: %s\n\nMediGuard AI", historyURL)

	letter := ""
	if a.DisputeLetter != "" {
		letter = fmt.Sprintf(`
  <h3 style="color: #333;">Draft dispute letter</h3>
  <pre style="white-space: pre-wrap; font-family: Georgia, serif; background: #f7f7f7; padding: 16px; border-radius: 6px;">%s</pre>`,
			html.EscapeString(a.DisputeLetter))
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your bill analysis is ready</h2>
  <p>Hi %s,</p>
  <p>%s</p>
  <p><strong>%s</strong></p>%s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0F766E; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Analysis</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">MediGuard AI does not give legal advice.</p>
</body>
</html>`, html.EscapeString(toName), html.EscapeString(a.Summary), findings, letter, html.EscapeString(historyURL))

	return Message{Subject: subject, HTML: body, Text: text.String()}
}
