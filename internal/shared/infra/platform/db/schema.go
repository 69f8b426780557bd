package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// El esquema real vive en la base de datos alojada; esto lo replica para desarrollo y tests.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pessoas (
		id {{UUID}} PRIMARY KEY,
		nome TEXT NOT NULL,
		email TEXT UNIQUE,
		telefone TEXT NOT NULL DEFAULT '',
		data_nascimento DATE,
		status TEXT NOT NULL DEFAULT 'ativo',
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS celulas (
		id {{UUID}} PRIMARY KEY,
		nome TEXT NOT NULL,
		descricao TEXT NOT NULL DEFAULT '',
		lider_id {{UUID}},
		supervisor_id {{UUID}},
		coordenador_id {{UUID}},
		dia_semana TEXT NOT NULL DEFAULT '',
		horario TEXT NOT NULL DEFAULT '',
		endereco TEXT NOT NULL DEFAULT '',
		ativa BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS celula_membros (
		id {{UUID}} PRIMARY KEY,
		celula_id {{UUID}} NOT NULL,
		pessoa_id {{UUID}} NOT NULL,
		ativo BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL,
		UNIQUE (celula_id, pessoa_id)
	)`,
	`CREATE TABLE IF NOT EXISTS celula_reunioes (
		id {{UUID}} PRIMARY KEY,
		celula_id {{UUID}} NOT NULL,
		data_reuniao {{TS}} NOT NULL,
		tema TEXT NOT NULL DEFAULT '',
		local TEXT NOT NULL DEFAULT '',
		observacoes TEXT NOT NULL DEFAULT '',
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS celula_relatorios (
		id {{UUID}} PRIMARY KEY,
		celula_id {{UUID}} NOT NULL,
		data_reuniao {{TS}} NOT NULL,
		tema TEXT NOT NULL DEFAULT '',
		visitantes INTEGER NOT NULL DEFAULT 0,
		observacoes TEXT NOT NULL DEFAULT '',
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS celula_presencas (
		id {{UUID}} PRIMARY KEY,
		relatorio_id {{UUID}} NOT NULL,
		pessoa_id {{UUID}} NOT NULL,
		presente BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notificacoes (
		id {{UUID}} PRIMARY KEY,
		pessoa_id {{UUID}} NOT NULL,
		titulo TEXT NOT NULL,
		mensagem TEXT NOT NULL DEFAULT '',
		tipo TEXT NOT NULL DEFAULT '',
		referencia_id TEXT NOT NULL DEFAULT '',
		lida BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cursos (
		id {{UUID}} PRIMARY KEY,
		titulo TEXT NOT NULL,
		descricao TEXT NOT NULL DEFAULT '',
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS licoes (
		id {{UUID}} PRIMARY KEY,
		curso_id {{UUID}} NOT NULL,
		titulo TEXT NOT NULL,
		ordem INTEGER NOT NULL DEFAULT 0,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS progresso_licoes (
		id {{UUID}} PRIMARY KEY,
		pessoa_id {{UUID}} NOT NULL,
		licao_id {{UUID}} NOT NULL,
		progresso_percent INTEGER NOT NULL DEFAULT 0,
		concluida BOOLEAN NOT NULL DEFAULT FALSE,
		data_conclusao {{TS}},
		updated_at {{TS}} NOT NULL,
		UNIQUE (pessoa_id, licao_id)
	)`,
	`CREATE TABLE IF NOT EXISTS progresso_cursos (
		id {{UUID}} PRIMARY KEY,
		pessoa_id {{UUID}} NOT NULL,
		curso_id {{UUID}} NOT NULL,
		progresso_percent INTEGER NOT NULL DEFAULT 0,
		licoes_concluidas INTEGER NOT NULL DEFAULT 0,
		total_licoes INTEGER NOT NULL DEFAULT 0,
		concluido BOOLEAN NOT NULL DEFAULT FALSE,
		data_conclusao {{TS}},
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL,
		UNIQUE (pessoa_id, curso_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lancamentos_financeiros (
		id {{UUID}} PRIMARY KEY,
		tipo TEXT NOT NULL,
		categoria TEXT NOT NULL DEFAULT '',
		descricao TEXT NOT NULL DEFAULT '',
		valor NUMERIC(14,2) NOT NULL,
		data_lancamento DATE NOT NULL,
		pessoa_id {{UUID}},
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS eventos (
		id {{UUID}} PRIMARY KEY,
		titulo TEXT NOT NULL,
		descricao TEXT NOT NULL DEFAULT '',
		data_inicio {{TS}} NOT NULL,
		data_fim {{TS}},
		local TEXT NOT NULL DEFAULT '',
		capacidade INTEGER,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS evento_inscricoes (
		id {{UUID}} PRIMARY KEY,
		evento_id {{UUID}} NOT NULL,
		pessoa_id {{UUID}} NOT NULL,
		created_at {{TS}} NOT NULL,
		UNIQUE (evento_id, pessoa_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id {{UUID}} PRIMARY KEY,
		tabela TEXT NOT NULL,
		acao TEXT NOT NULL,
		registro_id TEXT NOT NULL,
		dados {{JSON}} NOT NULL,
		ip_address TEXT NOT NULL,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id {{UUID}} PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload {{JSON}} NOT NULL,
		created_at {{TS}} NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

// InitSchema crea las tablas si no existen (AUTO_MIGRATE=1 o tests).
func InitSchema(ctx context.Context, conn *sql.DB, driver Driver) error {
	types := strings.NewReplacer("{{UUID}}", "TEXT", "{{TS}}", "DATETIME", "{{JSON}}", "TEXT")
	if driver == DriverPostgres {
		types = strings.NewReplacer("{{UUID}}", "UUID", "{{TS}}", "TIMESTAMPTZ", "{{JSON}}", "JSONB")
	}

	for _, stmt := range schemaStatements {
		if _, err := conn.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
