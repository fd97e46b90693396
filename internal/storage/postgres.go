package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

type Postgres struct {
	db  *sql.DB
	log logrus.FieldLogger
}

func NewPostgres(ctx context.Context, url string, log logrus.FieldLogger) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Postgres{db: db, log: log}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func sectionColumns() []string {
	cols := make([]string, len(record.SectionKeys))
	for i, key := range record.SectionKeys {
		cols[i] = pq.QuoteIdentifier(key)
	}
	return cols
}

func schemaQueries() []string {
	var sections strings.Builder
	for _, col := range sectionColumns() {
		fmt.Fprintf(&sections, "\t\t\t%s JSON,\n", col)
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id BIGSERIAL PRIMARY KEY,
			nicho TEXT NOT NULL,
			produto TEXT NOT NULL DEFAULT '',
			descricao TEXT NOT NULL DEFAULT '',
			preco DOUBLE PRECISION,
			publico TEXT NOT NULL DEFAULT '',
			concorrentes TEXT NOT NULL DEFAULT '',
			dados_adicionais TEXT NOT NULL DEFAULT '',
			objetivo_receita TEXT NOT NULL DEFAULT '',
			orcamento_marketing TEXT NOT NULL DEFAULT '',
			prazo_lancamento TEXT NOT NULL DEFAULT '',
` + sections.String() + `			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS analyses_nicho_idx ON analyses (nicho)`,
		`CREATE TABLE IF NOT EXISTS analysis_templates (
			id SERIAL PRIMARY KEY,
			nicho TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			data JSON NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
}

func (s *Postgres) initSchema(ctx context.Context) error {
	for _, query := range schemaQueries() {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

func (s *Postgres) CreatePending(ctx context.Context, req models.AnalysisRequest) (int64, error) {
	var preco sql.NullFloat64
	if req.Preco.Valid {
		preco = sql.NullFloat64{Float64: req.Preco.Value, Valid: true}
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO analyses (nicho, produto, descricao, preco, publico, concorrentes,
			dados_adicionais, objetivo_receita, orcamento_marketing, prazo_lancamento, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		req.Nicho, req.Produto, req.Descricao, preco, req.Publico, req.Concorrentes,
		req.DadosAdicionais, string(req.ObjetivoReceita), string(req.OrcamentoMarketing),
		req.PrazoLancamento, models.StatusProcessing).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}
	return id, nil
}

// completeQuery sets every section column and marks the row completed.
func completeQuery() string {
	cols := sectionColumns()
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return fmt.Sprintf("UPDATE analyses SET %s, status = $%d, error = '', updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(cols)+1, len(cols)+2)
}

func (s *Postgres) Complete(ctx context.Context, id int64, rec record.AnalysisRecord) error {
	blobs := sectionBlobs(rec)
	args := make([]any, 0, len(record.SectionKeys)+2)
	for _, key := range record.SectionKeys {
		if blob := blobs[key]; blob != nil {
			args = append(args, string(blob))
		} else {
			args = append(args, nil)
		}
	}
	args = append(args, models.StatusCompleted, id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, completeQuery(), args...)
	if err != nil {
		return fmt.Errorf("failed to update analysis %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *Postgres) Fail(ctx context.Context, id int64, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = $1, error = $2, updated_at = NOW() WHERE id = $3`,
		models.StatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark analysis %d failed: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id int64) (models.StoredAnalysis, error) {
	query := `SELECT id, nicho, produto, descricao, preco, publico, concorrentes, dados_adicionais,
		objetivo_receita, orcamento_marketing, prazo_lancamento, status, error, created_at, updated_at, ` +
		strings.Join(sectionColumns(), ", ") + ` FROM analyses WHERE id = $1`

	var (
		a         models.StoredAnalysis
		preco     sql.NullFloat64
		objetivo  string
		orcamento string
		blobs     = make([][]byte, len(record.SectionKeys))
	)
	dest := []any{
		&a.ID, &a.Request.Nicho, &a.Request.Produto, &a.Request.Descricao, &preco,
		&a.Request.Publico, &a.Request.Concorrentes, &a.Request.DadosAdicionais,
		&objetivo, &orcamento, &a.Request.PrazoLancamento,
		&a.Status, &a.Error, &a.CreatedAt, &a.UpdatedAt,
	}
	for i := range blobs {
		dest = append(dest, &blobs[i])
	}

	err := s.db.QueryRowContext(ctx, query, id).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredAnalysis{}, ErrNotFound
	}
	if err != nil {
		return models.StoredAnalysis{}, fmt.Errorf("failed to load analysis %d: %w", id, err)
	}

	if preco.Valid {
		a.Request.Preco = models.Float(preco.Float64)
	}
	a.Request.ObjetivoReceita = models.FlexString(objetivo)
	a.Request.OrcamentoMarketing = models.FlexString(orcamento)

	if a.Status == models.StatusCompleted {
		sections := make(map[string][]byte, len(blobs))
		for i, key := range record.SectionKeys {
			sections[key] = blobs[i]
		}
		rec, err := record.Assemble(sections)
		if err != nil {
			return models.StoredAnalysis{}, fmt.Errorf("analysis %d: %w", id, err)
		}
		a.Record = rec
	}
	return a, nil
}

func (s *Postgres) List(ctx context.Context, limit int, nicho string) ([]models.AnalysisSummary, error) {
	query := `SELECT id, nicho, produto, status, created_at FROM analyses`
	args := []any{}
	if nicho != "" {
		query += ` WHERE nicho = $1`
		args = append(args, nicho)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	out := []models.AnalysisSummary{}
	for rows.Next() {
		var a models.AnalysisSummary
		if err := rows.Scan(&a.ID, &a.Nicho, &a.Produto, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) Nichos(ctx context.Context) ([]models.NichoCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT nicho, COUNT(*) FROM analyses
		WHERE nicho <> ''
		GROUP BY nicho ORDER BY nicho`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nichos: %w", err)
	}
	defer rows.Close()

	out := []models.NichoCount{}
	for rows.Next() {
		var n models.NichoCount
		if err := rows.Scan(&n.Nicho, &n.Count); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring
// match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

func (s *Postgres) SearchNichos(ctx context.Context, search string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT nicho FROM (
			SELECT nicho FROM analyses
			UNION
			SELECT nicho FROM analysis_templates
		) n
		WHERE nicho <> '' AND nicho ILIKE $1
		ORDER BY nicho
		LIMIT $2`, likePattern(search), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search nichos: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Postgres) Template(ctx context.Context, nicho string) (models.Template, error) {
	var (
		t    models.Template
		data []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT nicho, name, data FROM analysis_templates WHERE LOWER(nicho) = LOWER($1)`,
		strings.TrimSpace(nicho)).Scan(&t.Nicho, &t.Name, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, ErrNotFound
	}
	if err != nil {
		return models.Template{}, fmt.Errorf("failed to load template: %w", err)
	}
	if t.Record, err = record.Parse(data); err != nil {
		return models.Template{}, fmt.Errorf("template %q: %w", t.Nicho, err)
	}
	return t, nil
}

// SeedTemplates inserts templates whose niche is not stored yet.
func (s *Postgres) SeedTemplates(ctx context.Context, templates []models.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_templates (nicho, name, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (nicho) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare template insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range templates {
		if _, err := stmt.ExecContext(ctx, t.Nicho, t.Name, string(t.Record.Bytes())); err != nil {
			return fmt.Errorf("failed to insert template %q: %w", t.Nicho, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.WithField("count", len(templates)).Info("templates seeded")
	return nil
}
