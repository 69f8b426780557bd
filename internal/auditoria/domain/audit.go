package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AcaoInsert = "INSERT"
	AcaoUpdate = "UPDATE"
	AcaoDelete = "DELETE"
)

// AuditEntry es una fila del registro de auditoría.
type AuditEntry struct {
	ID         uuid.UUID       `json:"id"`
	Tabela     string          `json:"tabela"`
	Acao       string          `json:"acao"`
	RegistroID string          `json:"registro_id"`
	Dados      json.RawMessage `json:"dados"`
	IPAddress  string          `json:"ip_address"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewAuditEntry(tabela, acao, registroID string, dados interface{}, ip string) (AuditEntry, error) {
	if tabela == "" || acao == "" || registroID == "" {
		return AuditEntry{}, sharedDomain.InvalidInput(errors.New("tabela, acao and registro_id are required"))
	}
	raw, err := json.Marshal(dados)
	if err != nil {
		return AuditEntry{}, fmt.Errorf("marshal audit data: %w", err)
	}
	return AuditEntry{
		ID:         uuid.New(),
		Tabela:     tabela,
		Acao:       acao,
		RegistroID: registroID,
		Dados:      raw,
		IPAddress:  ip,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// AuditStore persiste entradas; hay versiones SQL, MongoDB y fichero JSON.
type AuditStore interface {
	Log(ctx context.Context, e AuditEntry) error
	// ListByRegistro devuelve el historial de un registro, del más antiguo al más reciente.
	ListByRegistro(ctx context.Context, tabela, registroID string) ([]AuditEntry, error)
}
