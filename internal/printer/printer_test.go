package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/printer"
)

func testAccount() model.Account {
	return model.Account{
		ID:        "acc1",
		Username:  "creator01",
		Email:     "creator01@example.com",
		Password:  "s3cret",
		Category:  "fitness",
		Status:    model.AccountStatusActive,
		RiskScore: 10,
		Proxy:     &model.Proxy{Host: "10.0.0.1", Port: 8080, Password: "proxysecret"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestTablePrinterAccountList(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(t, p.PrintAccountList([]model.Account{testAccount()}))

	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "creator01")
	assert.Contains(t, out, "active")
	// Credentials never reach the output.
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "proxysecret")
}

func TestTablePrinterEmptyList(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(t, p.PrintAccountList(nil))
	require.NoError(t, p.PrintTaskList(nil))
	assert.Empty(t, buf.String())
}

func TestJSONPrinterAccount(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(t, p.PrintAccount(testAccount()))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "creator01", out["username"])
	assert.Equal(t, "10.0.0.1:8080", out["proxy_addr"])
	// Credentials never reach the output.
	assert.NotContains(t, buf.String(), "s3cret")
	assert.NotContains(t, buf.String(), "proxysecret")
}

func TestJSONPrinterTaskList(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	completedAt := time.Now().UTC()
	tasks := []model.Task{
		{ID: "task1", AccountID: "acc1", Type: model.TaskTypeLogin, Status: model.TaskStatusCompleted, CompletedAt: &completedAt, CreatedAt: time.Now().UTC()},
		{ID: "task2", AccountID: "acc1", Type: model.TaskTypePost, Status: model.TaskStatusPending, CreatedAt: time.Now().UTC()},
	}

	require.NoError(t, p.PrintTaskList(tasks))

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "login", out[0]["type"])
	assert.Equal(t, "completed", out[0]["status"])
	_, hasCompleted := out[1]["completed_at"]
	assert.False(t, hasCompleted)
}

func TestTimeAgo(t *testing.T) {
	tests := map[string]struct {
		t   time.Time
		exp string
	}{
		"Seconds": {t: time.Now().UTC().Add(-5 * time.Second), exp: "5 seconds ago (UTC)"},
		"Minutes": {t: time.Now().UTC().Add(-2 * time.Minute), exp: "2 minutes ago (UTC)"},
		"Hour":    {t: time.Now().UTC().Add(-1 * time.Hour), exp: "1 hour ago (UTC)"},
		"Days":    {t: time.Now().UTC().Add(-48 * time.Hour), exp: "2 days ago (UTC)"},
		"Future":  {t: time.Now().UTC().Add(time.Hour), exp: "in the future (UTC)"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, printer.TimeAgo(tt.t))
		})
	}
}
