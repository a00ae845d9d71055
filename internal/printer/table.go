package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

// TablePrinter prints account and task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintAccountList prints accounts in a table format.
func (t *TablePrinter) PrintAccountList(accounts []model.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "USERNAME\tSTATUS\tCATEGORY\tRISK\tLAST ACTIVITY")

	// Print rows
	for _, a := range accounts {
		lastActivity := "never"
		if !a.LastActivity.IsZero() {
			lastActivity = TimeAgo(a.LastActivity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", a.Username, a.Status, a.Category, a.RiskScore, lastActivity)
	}

	return nil
}

// PrintAccount prints detailed account information.
func (t *TablePrinter) PrintAccount(account model.Account) error {
	fmt.Fprintf(t.writer, "Username:   %s\n", account.Username)
	fmt.Fprintf(t.writer, "ID:         %s\n", account.ID)
	fmt.Fprintf(t.writer, "Email:      %s\n", account.Email)
	fmt.Fprintf(t.writer, "Status:     %s\n", account.Status)
	fmt.Fprintf(t.writer, "Risk:       %d\n", account.RiskScore)

	if account.Category != "" {
		fmt.Fprintf(t.writer, "Category:   %s\n", account.Category)
	}
	if account.Proxy != nil {
		fmt.Fprintf(t.writer, "Proxy:      %s\n", account.Proxy.Addr())
	}

	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(account.CreatedAt))
	if !account.LastActivity.IsZero() {
		fmt.Fprintf(t.writer, "Activity:   %s\n", FormatTimestamp(account.LastActivity))
	}

	return nil
}

// PrintTaskList prints tasks in a table format.
func (t *TablePrinter) PrintTaskList(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tACCOUNT\tTYPE\tSTATUS\tATTEMPTS\tCREATED")

	// Print rows.
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			task.ID,
			task.AccountID,
			task.Type,
			task.Status,
			task.Attempts,
			TimeAgo(task.CreatedAt),
		)
	}

	return nil
}

// PrintTask prints detailed task information.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", task.ID)
	fmt.Fprintf(t.writer, "Account:    %s\n", task.AccountID)
	fmt.Fprintf(t.writer, "Type:       %s\n", task.Type)
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Attempts:   %d\n", task.Attempts)

	if task.Reason != "" {
		fmt.Fprintf(t.writer, "Reason:     %s\n", task.Reason)
	}
	if !task.NotBefore.IsZero() {
		fmt.Fprintf(t.writer, "Not before: %s\n", FormatTimestamp(task.NotBefore))
	}

	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(task.CreatedAt))
	if task.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:  %s\n", FormatTimestamp(*task.CompletedAt))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
