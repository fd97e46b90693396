// Package a2a serves the avatar analyst as an A2A agent over JSON-RPC.
package a2a

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
)

const (
	AgentPath = "/a2a/analyst"
	CardPath  = "/.well-known/agent.json"

	ArtifactReport = "Relatório de Avatar"
	ArtifactRecord = "Análise (JSON)"

	MsgNichoMissing = "Informe o nicho do seu produto para gerar a análise de avatar."
)

type A2AHandler struct {
	svc  *service.Service
	log  logrus.FieldLogger
	card AgentCard
}

// NewA2AHandler builds the handler; baseURL is the public server address
// advertised in the agent card.
func NewA2AHandler(svc *service.Service, baseURL string, log logrus.FieldLogger) *A2AHandler {
	return &A2AHandler{
		svc:  svc,
		log:  log.WithField("component", "a2a"),
		card: NewAgentCard(baseURL),
	}
}

func NewAgentCard(baseURL string) AgentCard {
	return AgentCard{
		Name:        "Avatar Analyzer",
		Description: "Gera a análise completa do cliente ideal (avatar) para um nicho de mercado e devolve o relatório em texto.",
		URL:         strings.TrimRight(baseURL, "/") + AgentPath,
		Version:     "1.0.0",
		Capabilities: Capabilities{
			Streaming:         false,
			PushNotifications: false,
		},
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain", "application/json"},
		Skills: []Skill{{
			ID:          "avatar-analysis",
			Name:        "Análise de Avatar",
			Description: "Escopo, avatar, dores e desejos, concorrência, mercado, palavras-chave, métricas, voz do mercado, projeções e plano de ação para um nicho.",
			Tags:        []string{"marketing", "avatar", "nicho"},
			Examples:    []string{"Fitness para mulheres acima de 40 anos", "Finanças pessoais"},
		}},
	}
}

func (h *A2AHandler) Register(r gin.IRoutes) {
	r.GET(CardPath, h.ServeAgentCard)
	r.POST(AgentPath, h.HandleAnalyst)
}

func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, h.card)
}

// HandleAnalyst processes A2A messages. Bodies that are not a JSON-RPC
// envelope are tried as bare message params.
func (h *A2AHandler) HandleAnalyst(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.log.WithError(err).Error("Failed to read request body")
		h.sendErrorResponse(c, "", "Failed to read request body", CodeParseError)
		return
	}

	var rpcReq JSONRPCRequest
	if err := json.Unmarshal(body, &rpcReq); err != nil || rpcReq.Method == "" {
		h.log.Debug("Body is not a JSON-RPC request, trying direct message")
		h.handleDirectMessage(c, body)
		return
	}

	log := h.log.WithFields(logrus.Fields{"rpc_id": rpcReq.ID, "method": rpcReq.Method})
	if rpcReq.JSONRPC != "2.0" {
		log.Warnf("Invalid JSON-RPC version: %s", rpcReq.JSONRPC)
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "agent/task", "message/send":
		h.handleTask(c, rpcReq)
	default:
		log.Warn("Unknown method")
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

func (h *A2AHandler) handleDirectMessage(c *gin.Context, body []byte) {
	var params MessageParams
	if err := json.Unmarshal(body, &params); err != nil {
		h.log.WithError(err).Warn("Failed to parse direct message")
		h.sendErrorResponse(c, "", "Invalid request format", CodeParseError)
		return
	}
	h.sendSuccessResponse(c, "direct-message", h.analyze(c, "direct-message", params.Message))
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	var params MessageParams
	if err := json.Unmarshal(rpcReq.Params, &params); err != nil {
		h.log.WithError(err).Warn("Invalid task parameters")
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}
	h.sendSuccessResponse(c, rpcReq.ID, h.analyze(c, rpcReq.ID, params.Message))
}

// analyze runs one analysis for the niche named in msg. Every outcome is
// a task; failures are reported as failed tasks, not RPC errors.
func (h *A2AHandler) analyze(c *gin.Context, taskID string, msg A2AMessage) TaskResult {
	nicho := h.extractNicho(msg)
	log := h.log.WithFields(logrus.Fields{"task_id": taskID, "nicho": nicho})
	if nicho == "" {
		log.Warn("No niche found in message")
		return h.createErrorTaskResult(taskID, msg.ContextID, MsgNichoMissing)
	}

	res, err := h.svc.Analyze(c.Request.Context(), models.AnalysisRequest{Nicho: nicho})
	if err != nil {
		log.WithError(err).Error("Analysis failed")
		if errors.Is(err, service.ErrAnalyzerUnavailable) {
			return h.createErrorTaskResult(taskID, msg.ContextID, "O serviço de análise não está configurado.")
		}
		return h.createErrorTaskResult(taskID, msg.ContextID, fmt.Sprintf("Falha ao gerar a análise: %v", err))
	}

	log.WithField("analysis_id", res.ID).Info("Analysis completed, sending task result")
	return h.createSuccessTaskResult(taskID, msg.ContextID, res)
}

// extractNicho joins the message's text parts. Data parts carrying a
// conversation history contribute their most recent user text.
func (h *A2AHandler) extractNicho(msg A2AMessage) string {
	var texts []string
	for _, part := range msg.Parts {
		switch part.Kind {
		case "text":
			if t := cleanText(part.Text); t != "" {
				texts = append(texts, t)
			}
		case "data":
			if t := h.lastHistoryText(part.Data); t != "" {
				texts = append(texts, t)
			}
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}

func (h *A2AHandler) lastHistoryText(data []byte) string {
	var last string
	_, err := jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		kind, _ := jsonparser.GetString(value, "kind")
		if kind != "text" {
			return
		}
		text, _ := jsonparser.GetString(value, "text")
		if t := cleanText(text); t != "" && !agentChatter(t) {
			last = t
		}
	})
	if err != nil {
		h.log.WithError(err).Debug("Ignoring data part that is not a message list")
		return ""
	}
	return last
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "<p>", "")
	s = strings.ReplaceAll(s, "</p>", "")
	return strings.TrimSpace(s)
}

// agentChatter matches progress messages echoed back in the history.
func agentChatter(s string) bool {
	lower := strings.ToLower(s)
	if strings.Trim(lower, ".") == "" {
		return true
	}
	for _, p := range []string{"gerando", "analisando", "generating", "creating"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func (h *A2AHandler) createSuccessTaskResult(taskID, contextID string, res service.Result) TaskResult {
	text := h.svc.ExportText(res.Record, "a2a")

	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateCompleted,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				ContextID: contextID,
				Parts:     []MessagePart{TextPart(text)},
			},
		},
		Artifacts: []Artifact{
			{
				ArtifactID: uuid.New().String(),
				Name:       ArtifactReport,
				Parts:      []MessagePart{TextPart(text)},
			},
			{
				ArtifactID: uuid.New().String(),
				Name:       ArtifactRecord,
				Parts:      []MessagePart{DataPart(res.Record.Bytes())},
			},
		},
	}
}

func (h *A2AHandler) createErrorTaskResult(taskID, contextID, errorMsg string) TaskResult {
	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateFailed,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				ContextID: contextID,
				Parts:     []MessagePart{TextPart(errorMsg)},
			},
		},
	}
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id string, result TaskResult) {
	h.log.WithFields(logrus.Fields{"rpc_id": id, "state": result.Status.State}).Debug("Sending task result")
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// sendErrorResponse answers with a JSON-RPC error. These go out with
// 200 OK.
func (h *A2AHandler) sendErrorResponse(c *gin.Context, id string, message string, code int) {
	h.log.WithFields(logrus.Fields{"rpc_id": id, "code": code}).Warn(message)
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	})
}
