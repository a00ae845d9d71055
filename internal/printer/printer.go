package printer

import "github.com/sezyil/tiktok-otonom/internal/model"

// Printer knows how to print account and task information in different
// formats. Credentials never reach any output.
type Printer interface {
	PrintAccountList(accounts []model.Account) error
	PrintAccount(account model.Account) error
	PrintTaskList(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintMessage(msg string) error
}
