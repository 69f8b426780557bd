package application

import (
	"context"
	"errors"
	"strings"
	"time"

	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedCache "github.com/davicafu/igrejalab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreatePessoaInput struct {
	Nome           string
	Email          string
	Telefone       string
	DataNascimento *time.Time
	Status         pessoaDomain.Status
}

// UpdatePessoaInput solo aplica los campos no nil.
type UpdatePessoaInput struct {
	Nome           *string
	Email          *string
	Telefone       *string
	DataNascimento *time.Time
	Status         *pessoaDomain.Status
}

// PessoaService define los casos de uso del módulo pessoas.
type PessoaService struct {
	repo  pessoaDomain.PessoaRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewPessoaService(repo pessoaDomain.PessoaRepository, cache sharedCache.Cache, log *zap.Logger) *PessoaService {
	return &PessoaService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *PessoaService) CreatePessoa(ctx context.Context, in CreatePessoaInput) (*pessoaDomain.Pessoa, error) {
	pessoa, err := pessoaDomain.NewPessoa(in.Nome, in.Email, in.Telefone, in.DataNascimento, in.Status)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(pessoaDomain.AggregateType, pessoa.ID.String(), pessoaDomain.PessoaCreated, pessoa)
	if err := s.repo.Create(ctx, pessoa, evt); err != nil {
		s.log.Error("Failed to create pessoa", zap.Error(err))
		return nil, err
	}

	sharedCache.SetWithTimeout(ctx, s.cache, pessoaDomain.CacheKeyByID(pessoa.ID), pessoa, s.log)
	return pessoa, nil
}

// GetPessoa usa cache-aside con reintentos sobre el repositorio.
func (s *PessoaService) GetPessoa(ctx context.Context, id uuid.UUID) (*pessoaDomain.Pessoa, error) {
	if s.cache != nil {
		var p pessoaDomain.Pessoa
		if hit, _ := s.cache.Get(ctx, pessoaDomain.CacheKeyByID(id), &p); hit {
			return &p, nil
		}
	}

	var pessoa *pessoaDomain.Pessoa
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		pessoa, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, pessoaDomain.ErrPessoaNotFound) {
			return nil
		}
		return errRetry
	})
	if err != nil {
		s.log.Error("Failed to fetch pessoa", zap.String("pessoa_id", id.String()), zap.Error(err))
		return nil, err
	}
	if pessoa == nil {
		return nil, pessoaDomain.ErrPessoaNotFound
	}

	sharedCache.SetWithTimeout(ctx, s.cache, pessoaDomain.CacheKeyByID(pessoa.ID), pessoa, s.log)
	return pessoa, nil
}

func (s *PessoaService) UpdatePessoa(ctx context.Context, id uuid.UUID, in UpdatePessoaInput) (*pessoaDomain.Pessoa, error) {
	pessoa, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Nome != nil {
		pessoa.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.Email != nil {
		pessoa.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Telefone != nil {
		pessoa.Telefone = *in.Telefone
	}
	if in.DataNascimento != nil {
		pessoa.DataNascimento = in.DataNascimento
	}
	if in.Status != nil {
		pessoa.Status = *in.Status
	}
	if err := pessoa.Validate(); err != nil {
		return nil, err
	}
	pessoa.UpdatedAt = time.Now().UTC()

	evt := sharedDomain.NewOutboxEvent(pessoaDomain.AggregateType, pessoa.ID.String(), pessoaDomain.PessoaUpdated, pessoa)
	if err := s.repo.Update(ctx, pessoa, evt); err != nil {
		return nil, err
	}

	sharedCache.Invalidate(ctx, s.cache, s.log, pessoaDomain.CacheKeyByID(pessoa.ID))
	return pessoa, nil
}

func (s *PessoaService) DeletePessoa(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.NewOutboxEvent(pessoaDomain.AggregateType, id.String(), pessoaDomain.PessoaDeleted,
		pessoaDomain.PessoaDeletedPayload{ID: id})

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.Invalidate(ctx, s.cache, s.log, pessoaDomain.CacheKeyByID(id))
	return nil
}

// ListPessoas aplica búsqueda (nome, email), filtro de status y paginación.
func (s *PessoaService) ListPessoas(ctx context.Context, p sharedQuery.PaginationParams, status string) (sharedQuery.Page[*pessoaDomain.Pessoa], error) {
	var statusCriteria sharedDomain.Criteria
	if status != "" {
		statusCriteria = sharedDomain.EqCriteria{Field: "status", Value: status}
	}
	criteria := sharedDomain.And(
		sharedDomain.SearchCriteria{Fields: pessoaDomain.SearchFields, Term: p.Search},
		statusCriteria,
	)

	pessoas, total, err := s.repo.List(ctx, criteria, p)
	if err != nil {
		return sharedQuery.Page[*pessoaDomain.Pessoa]{}, err
	}
	return sharedQuery.NewPage(pessoas, p, total), nil
}
