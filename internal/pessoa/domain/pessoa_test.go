package domain

import (
	"testing"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPessoa(t *testing.T) {
	p, err := NewPessoa("  Maria  ", "Maria@Igreja.org", "1199", nil, "")

	require.NoError(t, err)
	assert.Equal(t, "Maria", p.Nome)
	assert.Equal(t, "maria@igreja.org", p.Email)
	assert.Equal(t, StatusAtivo, p.Status)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestNewPessoa_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		nome   string
		email  string
		status Status
	}{
		{"sem nome", "", "a@b.c", StatusAtivo},
		{"email inválido", "Ana", "ana", StatusAtivo},
		{"status inválido", "Ana", "", Status("banido")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPessoa(tt.nome, tt.email, "", nil, tt.status)
			assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
		})
	}
}
