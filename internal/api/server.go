package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sezyil/tiktok-otonom/internal/app/accountcreate"
	"github.com/sezyil/tiktok-otonom/internal/app/accountlist"
	"github.com/sezyil/tiktok-otonom/internal/app/enqueue"
	"github.com/sezyil/tiktok-otonom/internal/app/tasklist"
	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage"
)

// ServerConfig is the configuration for the HTTP API server.
type ServerConfig struct {
	AccountCreate *accountcreate.Service
	AccountList   *accountlist.Service
	Enqueue       *enqueue.Service
	TaskList      *tasklist.Service
	Accounts      storage.AccountRepository
	Tasks         storage.TaskRepository
	Logger        log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.AccountCreate == nil {
		return fmt.Errorf("account create service is required")
	}
	if c.AccountList == nil {
		return fmt.Errorf("account list service is required")
	}
	if c.Enqueue == nil {
		return fmt.Errorf("enqueue service is required")
	}
	if c.TaskList == nil {
		return fmt.Errorf("task list service is required")
	}
	if c.Accounts == nil {
		return fmt.Errorf("account repository is required")
	}
	if c.Tasks == nil {
		return fmt.Errorf("task repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.Server"})
	return nil
}

// Server is the management HTTP API. Task enqueueing is asynchronous: the
// automation endpoints accept the work and return the task id, the dispatcher
// runs it later.
type Server struct {
	accountCreate *accountcreate.Service
	accountList   *accountlist.Service
	enqueue       *enqueue.Service
	taskList      *tasklist.Service
	accounts      storage.AccountRepository
	tasks         storage.TaskRepository
	logger        log.Logger
	router        chi.Router
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{
		accountCreate: cfg.AccountCreate,
		accountList:   cfg.AccountList,
		enqueue:       cfg.Enqueue,
		taskList:      cfg.TaskList,
		accounts:      cfg.Accounts,
		tasks:         cfg.Tasks,
		logger:        cfg.Logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts", s.handleAccountList)
		r.Post("/accounts", s.handleAccountCreate)
		r.Delete("/accounts/{id}", s.handleAccountDelete)

		r.Get("/tasks", s.handleTaskList)
		r.Get("/tasks/{id}", s.handleTaskGet)

		r.Post("/automation/login", s.handleAutomation(model.TaskTypeLogin))
		r.Post("/automation/post", s.handleAutomation(model.TaskTypePost))
		r.Post("/automation/warm-up", s.handleAutomation(model.TaskTypeWarmUp))
		r.Post("/automation/signup", s.handleAutomation(model.TaskTypeSignup))
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type proxyRequest struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountCreateRequest struct {
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Category string        `json:"category"`
	Proxy    *proxyRequest `json:"proxy"`
	Active   bool          `json:"active"`
}

// accountResponse deliberately omits password and proxy credentials.
type accountResponse struct {
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

func mapAccount(a model.Account) accountResponse {
	resp := accountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Category:  a.Category,
		Status:    string(a.Status),
		RiskScore: a.RiskScore,
		CreatedAt: a.CreatedAt,
	}
	if a.Proxy != nil {
		resp.ProxyAddr = a.Proxy.Addr()
	}
	if !a.LastActivity.IsZero() {
		t := a.LastActivity
		resp.LastActivity = &t
	}
	return resp
}

func (s *Server) handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	var req accountCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("invalid request body: %w", model.ErrNotValid))
		return
	}

	svcReq := accountcreate.Request{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Category: req.Category,
		Active:   req.Active,
	}
	if req.Proxy != nil {
		svcReq.Proxy = &model.Proxy{
			Host:     req.Proxy.Host,
			Port:     req.Proxy.Port,
			Username: req.Proxy.Username,
			Password: req.Proxy.Password,
		}
	}

	account, err := s.accountCreate.Run(r.Context(), svcReq)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, mapAccount(*account))
}

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	req := accountlist.Request{CategoryFilter: r.URL.Query().Get("category")}
	if v := r.URL.Query().Get("status"); v != "" {
		status := model.AccountStatus(v)
		req.StatusFilter = &status
	}

	accounts, err := s.accountList.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, mapAccount(a))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.accounts.DeleteAccount(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type taskResponse struct {
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

func mapTask(t model.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Attempts:    t.Attempts,
		Reason:      t.Reason,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
	if !t.NotBefore.IsZero() {
		nb := t.NotBefore
		resp.NotBefore = &nb
	}
	return resp
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	req := tasklist.Request{AccountID: r.URL.Query().Get("account_id")}
	if v := r.URL.Query().Get("status"); v != "" {
		status := model.TaskStatus(v)
		req.StatusFilter = &status
	}

	tasks, err := s.taskList.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, mapTask(t))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := s.tasks.GetTask(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapTask(*task))
}

type automationRequest struct {
	AccountID        string `json:"account_id"`
	VideoPath        string `json:"video_path"`
	Caption          string `json:"caption"`
	Hashtags         string `json:"hashtags"`
	WarmUpIterations int    `json:"warmup_iterations"`
	NotBefore        *int64 `json:"not_before_ms"`
}

func (s *Server) handleAutomation(taskType model.TaskType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req automationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, fmt.Errorf("invalid request body: %w", model.ErrNotValid))
			return
		}

		svcReq := enqueue.Request{
			AccountID: req.AccountID,
			Type:      taskType,
			Payload: model.TaskPayload{
				VideoPath:        req.VideoPath,
				Caption:          req.Caption,
				Hashtags:         req.Hashtags,
				WarmUpIterations: req.WarmUpIterations,
			},
		}
		if req.NotBefore != nil {
			svcReq.NotBefore = time.UnixMilli(*req.NotBefore)
		}

		task, err := s.enqueue.Run(r.Context(), svcReq)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusAccepted, map[string]string{"task_id": task.ID})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("Could not encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNotValid):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrAlreadyExists), errors.Is(err, model.ErrAccountLocked):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Errorf("Request failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
