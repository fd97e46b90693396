package report

import "github.com/BerylCAtieno/avatar-analyzer/internal/record"

// FieldKind selects how a field's value is read and laid out.
type FieldKind int

const (
	KindText FieldKind = iota
	KindList
	KindPains
	KindCompetitors
	KindIndirect
	KindKeywords
	KindPlatformCosts
	KindChannelROI
	KindObjections
	KindScenario
	KindSteps
)

// Structured reports whether the kind renders one card per element.
func (k FieldKind) Structured() bool {
	switch k {
	case KindText, KindList, KindScenario:
		return false
	}
	return true
}

// Field is one entry of the shared field table. Path is relative to the
// section node; an empty path addresses the section itself.
type Field struct {
	Path  string
	Label string
	Kind  FieldKind
	Tab   TabName
}

// SectionSpec describes one top-level section of the report.
type SectionSpec struct {
	Key    string
	Title  string
	Icon   string
	Fields []Field
}

// FieldsForTab returns the fields shown under the given avatar tab.
func (s SectionSpec) FieldsForTab(tab TabName) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Tab == tab {
			out = append(out, f)
		}
	}
	return out
}

var escopoSection = SectionSpec{
	Key:   record.Escopo,
	Title: "Definição do Escopo",
	Icon:  "🎯",
	Fields: []Field{
		{Path: "nicho_principal", Label: "Nicho Principal", Kind: KindText},
		{Path: "subnichos", Label: "Subnichos", Kind: KindList},
		{Path: "produto_ideal", Label: "Produto Ideal", Kind: KindText},
		{Path: "proposta_valor", Label: "Proposta de Valor", Kind: KindText},
	},
}

var avatarSection = SectionSpec{
	Key:   record.Avatar,
	Title: "Análise do Avatar",
	Icon:  "👥",
	Fields: []Field{
		{Path: "demografia.faixa_etaria", Label: "Faixa Etária", Kind: KindText, Tab: TabDemografia},
		{Path: "demografia.genero", Label: "Gênero", Kind: KindText, Tab: TabDemografia},
		{Path: "demografia.localizacao", Label: "Localização", Kind: KindText, Tab: TabDemografia},
		{Path: "demografia.renda", Label: "Renda", Kind: KindText, Tab: TabDemografia},
		{Path: "demografia.escolaridade", Label: "Escolaridade", Kind: KindText, Tab: TabDemografia},
		{Path: "demografia.profissoes", Label: "Profissões", Kind: KindList, Tab: TabDemografia},

		{Path: "psicografia.valores", Label: "Valores", Kind: KindList, Tab: TabPsicografia},
		{Path: "psicografia.aspiracoes", Label: "Aspirações", Kind: KindList, Tab: TabPsicografia},
		{Path: "psicografia.medos", Label: "Medos", Kind: KindList, Tab: TabPsicografia},
		{Path: "psicografia.frustracoes", Label: "Frustrações", Kind: KindList, Tab: TabPsicografia},
		{Path: "psicografia.estilo_vida", Label: "Estilo de Vida", Kind: KindText, Tab: TabPsicografia},

		{Path: "comportamento_digital.plataformas", Label: "Plataformas", Kind: KindList, Tab: TabComportamento},
		{Path: "comportamento_digital.conteudo_preferido", Label: "Conteúdo Preferido", Kind: KindList, Tab: TabComportamento},
		{Path: "comportamento_digital.influenciadores", Label: "Influenciadores", Kind: KindList, Tab: TabComportamento},
		{Path: "comportamento_digital.horarios_pico", Label: "Horários de Pico", Kind: KindText, Tab: TabComportamento},
	},
}

var doresDesejosSection = SectionSpec{
	Key:   record.DoresDesejos,
	Title: "Dores e Desejos",
	Icon:  "💔",
	Fields: []Field{
		{Path: "principais_dores", Label: "Principais Dores", Kind: KindPains},
		{Path: "estado_atual", Label: "Estado Atual", Kind: KindText},
		{Path: "estado_desejado", Label: "Estado Desejado", Kind: KindText},
		{Path: "sonho_secreto", Label: "Sonho Secreto", Kind: KindText},
		{Path: "obstaculos", Label: "Obstáculos", Kind: KindList},
	},
}

var concorrenciaSection = SectionSpec{
	Key:   record.Concorrencia,
	Title: "Análise da Concorrência",
	Icon:  "⚔️",
	Fields: []Field{
		{Path: "diretos", Label: "Concorrentes Diretos", Kind: KindCompetitors},
		{Path: "indiretos", Label: "Concorrentes Indiretos", Kind: KindIndirect},
		{Path: "gaps_mercado", Label: "Gaps de Mercado", Kind: KindList},
	},
}

var mercadoSection = SectionSpec{
	Key:   record.Mercado,
	Title: "Análise de Mercado",
	Icon:  "📊",
	Fields: []Field{
		{Path: "tam", Label: "TAM", Kind: KindText},
		{Path: "sam", Label: "SAM", Kind: KindText},
		{Path: "som", Label: "SOM", Kind: KindText},
		{Path: "volume_busca", Label: "Volume de Busca", Kind: KindText},
		{Path: "tendencias_alta", Label: "Tendências em Alta", Kind: KindList},
		{Path: "tendencias_baixa", Label: "Tendências em Baixa", Kind: KindList},
		{Path: "sazonalidade.melhores_meses", Label: "Melhores Meses", Kind: KindList},
		{Path: "sazonalidade.piores_meses", Label: "Piores Meses", Kind: KindList},
	},
}

var palavrasChaveSection = SectionSpec{
	Key:   record.PalavrasChave,
	Title: "Palavras-Chave",
	Icon:  "🔍",
	Fields: []Field{
		{Path: "principais", Label: "Principais Palavras-Chave", Kind: KindKeywords},
		{Path: "custos_plataforma", Label: "Custos por Plataforma", Kind: KindPlatformCosts},
	},
}

var metricasSection = SectionSpec{
	Key:   record.Metricas,
	Title: "Métricas de Performance",
	Icon:  "📈",
	Fields: []Field{
		{Path: "cac_medio", Label: "CAC Médio", Kind: KindText},
		{Path: "ltv_medio", Label: "LTV Médio", Kind: KindText},
		{Path: "ltv_cac_ratio", Label: "Razão LTV/CAC", Kind: KindText},
		{Path: "funil_conversao", Label: "Funil de Conversão", Kind: KindList},
		{Path: "roi_canais", Label: "ROI por Canal", Kind: KindChannelROI},
	},
}

var vozMercadoSection = SectionSpec{
	Key:   record.VozMercado,
	Title: "Voz do Mercado",
	Icon:  "🗣️",
	Fields: []Field{
		{Path: "objecoes", Label: "Principais Objeções", Kind: KindObjections},
		{Path: "linguagem.termos", Label: "Termos", Kind: KindList},
		{Path: "linguagem.girias", Label: "Gírias", Kind: KindList},
		{Path: "linguagem.gatilhos", Label: "Gatilhos Mentais", Kind: KindList},
		{Path: "crencas_limitantes", Label: "Crenças Limitantes", Kind: KindList},
	},
}

var projecoesSection = SectionSpec{
	Key:   record.Projecoes,
	Title: "Projeções de Resultados",
	Icon:  "🚀",
	Fields: []Field{
		{Path: "conservador", Label: "Cenário Conservador", Kind: KindScenario},
		{Path: "realista", Label: "Cenário Realista", Kind: KindScenario},
		{Path: "otimista", Label: "Cenário Otimista", Kind: KindScenario},
	},
}

var planoAcaoSection = SectionSpec{
	Key:   record.PlanoAcao,
	Title: "Plano de Ação",
	Icon:  "📋",
	Fields: []Field{
		{Path: "", Label: "Passos", Kind: KindSteps},
	},
}

// Sections is the field enumeration shared by the structured view and
// the plain-text export, in report order.
var Sections = []SectionSpec{
	escopoSection,
	avatarSection,
	doresDesejosSection,
	concorrenciaSection,
	mercadoSection,
	palavrasChaveSection,
	metricasSection,
	vozMercadoSection,
	projecoesSection,
	planoAcaoSection,
}
