package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
)

// Messages returned to clients in the {error} payload.
const (
	MsgNichoRequired      = "Nicho é obrigatório"
	MsgAnalysisNotFound   = "Análise não encontrada"
	MsgTemplateNotFound   = "Modelo não encontrado para este nicho"
	MsgStorageDisabled    = "Banco de dados não configurado"
	MsgAnalyzerDisabled   = "Serviço de análise não configurado"
	MsgAnalysisFailed     = "Falha ao gerar a análise"
	MsgAnalysisIncomplete = "Análise ainda não concluída"
	MsgInvalidBody        = "Corpo da requisição inválido"
	MsgInvalidID          = "ID de análise inválido"
	MsgNotFound           = "Recurso não encontrado"
	MsgInternal           = "Erro interno do servidor"
)

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorPayload{Error: msg})
}

// failErr maps service errors onto status codes and messages. Anything
// unrecognised is a 500 and is attached to the context for the logger.
func failErr(c *gin.Context, err error) {
	var malformed *record.MalformedInputError
	switch {
	case errors.Is(err, service.ErrNichoRequired):
		fail(c, http.StatusBadRequest, MsgNichoRequired)
	case errors.As(err, &malformed):
		fail(c, http.StatusBadRequest, MsgInvalidBody)
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, MsgAnalysisNotFound)
	case errors.Is(err, service.ErrStorageDisabled):
		fail(c, http.StatusServiceUnavailable, MsgStorageDisabled)
	case errors.Is(err, service.ErrAnalyzerUnavailable):
		fail(c, http.StatusServiceUnavailable, MsgAnalyzerDisabled)
	case errors.Is(err, service.ErrAnalysisFailed):
		_ = c.Error(err)
		fail(c, http.StatusBadGateway, MsgAnalysisFailed)
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, MsgInternal)
	}
}
