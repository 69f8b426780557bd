package filesystem

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
)

// JSONAuditStorage añade cada entrada como una línea JSON al final del fichero.
type JSONAuditStorage struct {
	filePath string
	mu       sync.Mutex
}

var _ auditDomain.AuditStore = (*JSONAuditStorage)(nil)

func NewJSONAuditStorage(filePath string) *JSONAuditStorage {
	return &JSONAuditStorage{filePath: filePath}
}

// Log abre el fichero en modo append; si no existe lo crea.
func (s *JSONAuditStorage) Log(ctx context.Context, e auditDomain.AuditEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *JSONAuditStorage) ListByRegistro(ctx context.Context, tabela, registroID string) ([]auditDomain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []auditDomain.AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e auditDomain.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.filePath, n, err)
		}
		if e.Tabela == tabela && e.RegistroID == registroID {
			out = append(out, e)
		}
	}
	return out, scanner.Err()
}
