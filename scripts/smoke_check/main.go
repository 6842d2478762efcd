package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// probe is one route and the status it must answer with.
type probe struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Auth     bool   `json:"auth"`
	Critical bool   `json:"critical"`
}

type result struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Err      error
}

func (r result) ok() bool {
	return r.Err == nil && r.Status == r.Probe.Status
}

// defaultProbes covers the public surface and the gates in front of protected routes.
var defaultProbes = []probe{
	{Method: http.MethodGet, Path: "/health", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/ready", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/api/auth/login", Status: http.StatusOK, Critical: true},
	{Method: http.MethodPost, Path: "/api/auth/profile", Status: http.StatusBadRequest},
	{Method: http.MethodGet, Path: "/api/users/me", Status: http.StatusUnauthorized, Critical: true},
	{Method: http.MethodGet, Path: "/api/quiz/questions", Status: http.StatusUnauthorized, Critical: true},
	{Method: http.MethodGet, Path: "/api/admin/analytics", Status: http.StatusUnauthorized, Critical: true},
	{Method: http.MethodGet, Path: "/api/users/me", Status: http.StatusOK, Auth: true},
}

func main() {
	var (
		base       string
		token      string
		probesPath string
		timeout    time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8001", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("SMOKE_SESSION_TOKEN"), "Session token for authenticated probes")
	flag.StringVar(&probesPath, "probes", "", "Optional JSON file with a probe list")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := defaultProbes
	if probesPath != "" {
		loaded, err := loadProbes(probesPath)
		if err != nil {
			log.Fatalf("failed to load probes: %v", err)
		}
		probes = loaded
	}

	client := resty.New().SetBaseURL(strings.TrimRight(base, "/")).SetTimeout(timeout)
	results := run(client, token, probes)
	printReport(results)

	failed := 0
	for _, res := range results {
		if !res.ok() && res.Probe.Critical {
			failed++
		}
	}
	fmt.Printf("Critical failures: %d\n", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probes []probe
	if err := json.Unmarshal(data, &probes); err != nil {
		return nil, err
	}
	if len(probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return probes, nil
}

// run skips authenticated probes when no token is supplied.
func run(client *resty.Client, token string, probes []probe) []result {
	results := make([]result, 0, len(probes))
	for _, p := range probes {
		if p.Auth && token == "" {
			continue
		}
		results = append(results, check(client, token, p))
	}
	return results
}

func check(client *resty.Client, token string, p probe) result {
	res := result{Probe: p}
	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := p.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req := client.R()
	if p.Auth {
		req.SetAuthToken(token)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Status = resp.StatusCode()
	res.Duration = resp.Time()
	return res
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if !res.ok() {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Probe.Method, res.Probe.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  Status: %d want %d (%s) | Critical: %t\n", res.Status, res.Probe.Status, res.Duration, res.Probe.Critical)
	}
}
