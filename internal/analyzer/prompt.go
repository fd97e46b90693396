package analyzer

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
)

const systemPrompt = `Você é um consultor sênior especializado em psicologia do consumidor, análise de mercado e estratégia de lançamento de produtos digitais no Brasil.
Crie análises de avatar detalhadas, precisas e acionáveis, baseadas em padrões reais do mercado brasileiro.`

const recordShape = `{
  "escopo": {"nicho_principal": "string", "subnichos": ["string"], "produto_ideal": "string", "proposta_valor": "string"},
  "avatar": {
    "demografia": {"faixa_etaria": "string", "genero": "string", "localizacao": "string", "renda": "string", "escolaridade": "string", "profissoes": ["string"]},
    "psicografia": {"valores": ["string"], "estilo_vida": "string", "aspiracoes": ["string"], "medos": ["string"], "frustracoes": ["string"]},
    "comportamento_digital": {"plataformas": ["string"], "horarios_pico": "string", "conteudo_preferido": ["string"], "influenciadores": ["string"]}
  },
  "dores_desejos": {
    "principais_dores": [{"descricao": "string", "impacto": "string", "urgencia": "alta|média|baixa"}],
    "estado_atual": "string", "estado_desejado": "string", "obstaculos": ["string"], "sonho_secreto": "string"
  },
  "concorrencia": {
    "diretos": [{"nome": "string", "preco": "string", "usp": "string", "forcas": ["string"], "fraquezas": ["string"]}],
    "indiretos": [{"nome": "string", "tipo": "string"}],
    "gaps_mercado": ["string"]
  },
  "mercado": {
    "tam": "string", "sam": "string", "som": "string", "volume_busca": "string",
    "tendencias_alta": ["string"], "tendencias_baixa": ["string"],
    "sazonalidade": {"melhores_meses": ["string"], "piores_meses": ["string"]}
  },
  "palavras_chave": {
    "principais": [{"termo": "string", "volume": "string", "cpc": "string", "dificuldade": "string", "intencao": "string"}],
    "custos_plataforma": {
      "facebook": {"cpm": "string", "cpc": "string", "cpl": "string", "conversao": "string"},
      "google": {"cpm": "string", "cpc": "string", "cpl": "string", "conversao": "string"},
      "youtube": {"cpm": "string", "cpc": "string", "cpl": "string", "conversao": "string"},
      "tiktok": {"cpm": "string", "cpc": "string", "cpl": "string", "conversao": "string"}
    }
  },
  "metricas": {
    "cac_medio": "string", "funil_conversao": ["string"], "ltv_medio": "string", "ltv_cac_ratio": "string",
    "roi_canais": {"facebook": "string", "google": "string", "youtube": "string", "tiktok": "string"}
  },
  "voz_mercado": {
    "objecoes": [{"objecao": "string", "contorno": "string"}],
    "linguagem": {"termos": ["string"], "girias": ["string"], "gatilhos": ["string"]},
    "crencas_limitantes": ["string"]
  },
  "projecoes": {
    "conservador": {"conversao": "string", "faturamento": "string", "roi": "string"},
    "realista": {"conversao": "string", "faturamento": "string", "roi": "string"},
    "otimista": {"conversao": "string", "faturamento": "string", "roi": "string"}
  },
  "plano_acao": [{"passo": 1, "acao": "string", "prazo": "string"}]
}`

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// BuildPrompt renders the analysis prompt for req.
func BuildPrompt(req models.AnalysisRequest) string {
	var b strings.Builder

	b.WriteString(systemPrompt)
	b.WriteString("\n\nDADOS DO PRODUTO/SERVIÇO:\n")
	fmt.Fprintf(&b, "- Nicho: %s\n", req.Nicho)
	fmt.Fprintf(&b, "- Produto: %s\n", orDefault(req.Produto, "Não especificado"))
	fmt.Fprintf(&b, "- Descrição: %s\n", orDefault(req.Descricao, "Não fornecida"))
	fmt.Fprintf(&b, "- Preço: R$ %s\n", orDefault(req.Preco.String(), "Não definido"))
	fmt.Fprintf(&b, "- Público-Alvo: %s\n", orDefault(req.Publico, "Não especificado"))
	fmt.Fprintf(&b, "- Concorrentes: %s\n", orDefault(req.Concorrentes, "Não informados"))
	fmt.Fprintf(&b, "- Objetivo de Receita: R$ %s\n", orDefault(string(req.ObjetivoReceita), "Não definido"))
	fmt.Fprintf(&b, "- Orçamento de Marketing: R$ %s\n", orDefault(string(req.OrcamentoMarketing), "Não definido"))
	fmt.Fprintf(&b, "- Prazo de Lançamento: %s\n", orDefault(req.PrazoLancamento, "Não definido"))
	fmt.Fprintf(&b, "- Dados Adicionais: %s\n", orDefault(req.DadosAdicionais, "Nenhum"))

	b.WriteString(`
ESTRUTURA DA ANÁLISE:
1. Definição do escopo: nicho principal, subnichos, produto ideal e proposta de valor.
2. Avatar: demografia, psicografia e comportamento digital.
3. Dores e desejos: 5 principais dores com impacto e urgência (alta, média ou baixa), estado atual, estado desejado, obstáculos e sonho secreto.
4. Concorrência: 2 concorrentes diretos (preço, USP, forças, fraquezas), 2 indiretos e 3 gaps de mercado.
5. Mercado: TAM, SAM, SOM, volume de busca, tendências e sazonalidade.
6. Palavras-chave: 5 principais termos e custos por plataforma.
7. Métricas: CAC, funil de conversão, LTV, razão LTV/CAC e ROI por canal.
8. Voz do mercado: 3 objeções com contorno, linguagem e crenças limitantes.
9. Projeções: cenários conservador, realista e otimista.
10. Plano de ação: 7 passos prioritários com prazo.

Retorne APENAS um JSON válido, sem texto adicional, seguindo exatamente esta estrutura:
`)
	b.WriteString(recordShape)
	b.WriteString("\n")
	return b.String()
}
