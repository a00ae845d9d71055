package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

// JSONPrinter prints account and task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// accountOutput represents an account in the output. Password and proxy
// credentials are left out on purpose.
type accountOutput struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Category     string     `json:"category,omitempty"`
	Status       string     `json:"status"`
	RiskScore    int        `json:"risk_score"`
	ProxyAddr    string     `json:"proxy_addr,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// taskOutput represents a task in the output.
type taskOutput struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	NotBefore   *time.Time `json:"not_before,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func newAccountOutput(a model.Account) accountOutput {
	out := accountOutput{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Category:  a.Category,
		Status:    string(a.Status),
		RiskScore: a.RiskScore,
		CreatedAt: a.CreatedAt.UTC(),
	}
	if a.Proxy != nil {
		out.ProxyAddr = a.Proxy.Addr()
	}
	if !a.LastActivity.IsZero() {
		utcTime := a.LastActivity.UTC()
		out.LastActivity = &utcTime
	}
	return out
}

func newTaskOutput(t model.Task) taskOutput {
	out := taskOutput{
		ID:        t.ID,
		AccountID: t.AccountID,
		Type:      string(t.Type),
		Status:    string(t.Status),
		Attempts:  t.Attempts,
		Reason:    t.Reason,
		CreatedAt: t.CreatedAt.UTC(),
	}
	if !t.NotBefore.IsZero() {
		utcTime := t.NotBefore.UTC()
		out.NotBefore = &utcTime
	}
	if t.CompletedAt != nil {
		utcTime := t.CompletedAt.UTC()
		out.CompletedAt = &utcTime
	}
	return out
}

// PrintAccountList prints accounts in JSON format.
func (j *JSONPrinter) PrintAccountList(accounts []model.Account) error {
	items := make([]accountOutput, len(accounts))
	for i, a := range accounts {
		items[i] = newAccountOutput(a)
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintAccount prints detailed account information in JSON format.
func (j *JSONPrinter) PrintAccount(account model.Account) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(newAccountOutput(account))
}

// PrintTaskList prints tasks in JSON format.
func (j *JSONPrinter) PrintTaskList(tasks []model.Task) error {
	items := make([]taskOutput, len(tasks))
	for i, t := range tasks {
		items[i] = newTaskOutput(t)
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintTask prints detailed task information in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(newTaskOutput(task))
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
