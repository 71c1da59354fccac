package service

import (
	"encoding/json"
	"net/http"
	"time"
)

// features advertised by /info.
var features = []string{
	"Go microservice",
	"Docker containerization",
	"AWS ECS deployment",
	"CI/CD pipeline",
	"Health monitoring",
	"Version management",
}

type rootResponse struct {
	Message    string `json:"message"`
	Version    string `json:"version"`
	BuildDate  string `json:"build_date"`
	VCSRef     string `json:"vcs_ref"`
	Status     string `json:"status"`
	Deployment string `json:"deployment"`
	Timestamp  string `json:"timestamp"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type infoResponse struct {
	Application string   `json:"application"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	BuildDate   string   `json:"build_date"`
	VCSRef      string   `json:"vcs_ref"`
	Environment string   `json:"environment"`
	Region      string   `json:"region"`
	Host        string   `json:"host"`
	UserAgent   string   `json:"user_agent"`
	Features    []string `json:"features"`
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message:    "Hello from CI/CD!",
		Version:    s.cfg.Version,
		BuildDate:  s.cfg.BuildDate,
		VCSRef:     s.cfg.VCSRef,
		Status:     "running",
		Deployment: "v" + s.cfg.Version,
		Timestamp:  s.now().Format(time.RFC3339),
	})
}

// handleHealth always reports healthy; the process answering is the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Service:   ServiceName,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Application: ServiceName,
		Name:        ServiceName,
		Version:     s.cfg.Version,
		BuildDate:   s.cfg.BuildDate,
		VCSRef:      s.cfg.VCSRef,
		Environment: s.cfg.Environment,
		Region:      s.cfg.Region,
		Host:        r.Host,
		UserAgent:   r.UserAgent(),
		Features:    features,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Status:  http.StatusNotFound,
		Message: "resource not found: " + r.URL.Path,
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Status:  http.StatusMethodNotAllowed,
		Message: "method " + r.Method + " not allowed",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
