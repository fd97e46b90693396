package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BerylCAtieno/avatar-analyzer/internal/a2a"
	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

type TestClient struct {
	baseURL string
	client  *http.Client
	nicho   string

	// analysisID is set by the analyze test and reused by report/export.
	analysisID int64
}

func NewTestClient(baseURL, nicho string) *TestClient {
	return &TestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		nicho:   nicho,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	testType := flag.String("test", "all", "Test type: all, health, agent-card, nichos, analyze, report, a2a")
	nicho := flag.String("nicho", "Fitness para iniciantes", "Niche used by the analyze and a2a tests")
	id := flag.Int64("id", 0, "Stored analysis id for the report test")
	flag.Parse()

	client := NewTestClient(*baseURL, *nicho)
	client.analysisID = *id

	printHeader("Avatar Analyzer - Test Suite")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, client.baseURL, colorReset)

	tests := map[string]func() bool{
		"health":     client.testHealthCheck,
		"agent-card": client.testAgentCard,
		"nichos":     client.testNichoSearch,
		"analyze":    client.testAnalyze,
		"report":     client.testReportAndExport,
		"a2a":        client.testA2ATask,
	}

	if *testType == "all" {
		client.runAllTests()
		return
	}
	fn, ok := tests[*testType]
	if !ok {
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, agent-card, nichos, analyze, report, a2a")
		os.Exit(1)
	}
	if !fn() {
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests() {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Agent Card", tc.testAgentCard},
		{"Niche Search", tc.testNichoSearch},
		{"Analyze", tc.testAnalyze},
		{"Report and Export", tc.testReportAndExport},
		{"A2A Task", tc.testA2ATask},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func (tc *TestClient) get(path string) (*http.Response, []byte, bool) {
	url := tc.baseURL + path
	fmt.Printf("GET %s\n", url)
	resp, err := tc.client.Get(url)
	return tc.read(resp, err)
}

func (tc *TestClient) post(path string, payload any) (*http.Response, []byte, bool) {
	url := tc.baseURL + path
	fmt.Printf("POST %s\n", url)
	data, _ := json.Marshal(payload)
	resp, err := tc.client.Post(url, "application/json", bytes.NewReader(data))
	return tc.read(resp, err)
}

func (tc *TestClient) read(resp *http.Response, err error) (*http.Response, []byte, bool) {
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return nil, nil, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return resp, body, false
	}
	return resp, body, true
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	_, body, ok := tc.get("/health")
	if !ok {
		return false
	}

	var health models.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if health.Status == "" {
		printError("Missing status field")
		return false
	}

	printSuccess(fmt.Sprintf("Health check passed (gemini: %s, database: %s)", health.GeminiStatus, health.DatabaseStatus))
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	_, body, ok := tc.get(a2a.CardPath)
	if !ok {
		return false
	}

	var agentCard map[string]interface{}
	if err := json.Unmarshal(body, &agentCard); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	requiredFields := []string{"name", "description", "url", "version", "capabilities", "skills"}
	for _, field := range requiredFields {
		if _, ok := agentCard[field]; !ok {
			printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	printSuccess("Agent card is valid")
	printJSON(body)
	return true
}

func (tc *TestClient) testNichoSearch() bool {
	printTestHeader("Testing Niche Search")

	search := tc.nicho
	if r := []rune(search); len(r) > 3 {
		search = string(r[:3])
	}
	_, body, ok := tc.post("/api/nichos", models.NichoSearchRequest{Search: search})
	if !ok {
		return false
	}

	var resp models.NichoSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	printSuccess(fmt.Sprintf("%d suggestion(s) for %q", len(resp.Nichos), search))
	for _, n := range resp.Nichos {
		fmt.Printf("  - %s\n", n)
	}
	return true
}

func (tc *TestClient) testAnalyze() bool {
	printTestHeader("Testing Analysis Generation")
	fmt.Printf("%sNicho:%s %s\n\n", colorCyan, colorReset, tc.nicho)

	_, body, ok := tc.post("/api/analyze", models.AnalysisRequest{
		Nicho:   tc.nicho,
		Produto: "Curso online",
		Preco:   models.Float(197),
	})
	if !ok {
		return false
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(body, &result); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if _, ok := result["escopo"]; !ok {
		printError("Analysis has no escopo section")
		return false
	}
	if raw, ok := result["analysis_id"]; ok {
		_ = json.Unmarshal(raw, &tc.analysisID)
	}

	printSuccess(fmt.Sprintf("Analysis generated with %d section(s)", len(result)))
	if tc.analysisID != 0 {
		fmt.Printf("%sAnalysis ID:%s %d\n", colorPurple, colorReset, tc.analysisID)
	}
	return true
}

func (tc *TestClient) testReportAndExport() bool {
	printTestHeader("Testing Report and Export")

	if tc.analysisID == 0 {
		printError("No stored analysis id (run the analyze test with a database, or pass -id)")
		return false
	}

	base := fmt.Sprintf("/api/analyses/%d", tc.analysisID)

	_, body, ok := tc.get(base + "/report?tab=psicografia")
	if !ok {
		return false
	}
	if !bytes.Contains(body, []byte("<html")) {
		printError("Report is not an HTML document")
		return false
	}
	printSuccess(fmt.Sprintf("HTML report rendered (%d bytes)", len(body)))

	resp, body, ok := tc.get(base + "/export")
	if !ok {
		return false
	}
	disposition := resp.Header.Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "attachment;") {
		printError(fmt.Sprintf("Unexpected Content-Disposition: %q", disposition))
		return false
	}

	printSuccess("Plain-text export downloaded")
	fmt.Printf("\n%sExport:%s\n", colorGreen, colorReset)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(string(body))
	fmt.Println(strings.Repeat("=", 80))
	return true
}

func (tc *TestClient) testA2ATask() bool {
	printTestHeader("Testing A2A Task")

	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("test-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]interface{}{
			"message": map[string]interface{}{
				"kind": "message",
				"role": "user",
				"parts": []map[string]interface{}{
					{"kind": "text", "text": tc.nicho},
				},
			},
			"configuration": map[string]interface{}{
				"blocking":            true,
				"acceptedOutputModes": []string{"text/plain"},
			},
		},
	}

	jsonData, _ := json.MarshalIndent(request, "", "  ")
	fmt.Printf("%sRequest:%s\n", colorYellow, colorReset)
	fmt.Println(string(jsonData))
	fmt.Println()

	_, body, ok := tc.post(a2a.AgentPath, request)
	if !ok {
		return false
	}

	var response struct {
		Error  *a2a.RPCError   `json:"error"`
		Result *a2a.TaskResult `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if response.Error != nil {
		printError(fmt.Sprintf("Request returned an error: %d %s", response.Error.Code, response.Error.Message))
		return false
	}
	if response.Result == nil {
		printError("Invalid result format")
		return false
	}

	state := response.Result.Status.State
	if state != a2a.StateCompleted {
		printError(fmt.Sprintf("Expected state 'completed', got '%s'", state))
		if msg := response.Result.Status.Message; msg != nil && len(msg.Parts) > 0 {
			fmt.Println(msg.Parts[0].Text)
		}
		return false
	}

	printSuccess("Task completed successfully")
	for _, artifact := range response.Result.Artifacts {
		fmt.Printf("\n%sArtifact:%s %s\n", colorPurple, colorReset, artifact.Name)
		for _, part := range artifact.Parts {
			if part.Text != "" {
				fmt.Println(part.Text)
			}
		}
	}
	return true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
