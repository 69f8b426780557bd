package application

import (
	"context"
	"errors"
	"time"

	ensinoDomain "github.com/davicafu/igrejalab/internal/ensino/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedCache "github.com/davicafu/igrejalab/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/igrejalab/internal/shared/infra/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateCursoInput struct {
	Titulo    string
	Descricao string
	Licoes    []string
}

// EnsinoService define los casos de uso de cursos y progreso.
type EnsinoService struct {
	repo  ensinoDomain.EnsinoRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewEnsinoService(repo ensinoDomain.EnsinoRepository, cache sharedCache.Cache, log *zap.Logger) *EnsinoService {
	return &EnsinoService{repo: repo, cache: cache, log: log}
}

// CreateCurso crea el curso con sus lições; el orden de la lista es el orden de las lições.
func (s *EnsinoService) CreateCurso(ctx context.Context, in CreateCursoInput) (*ensinoDomain.CursoDetalhe, error) {
	curso, err := ensinoDomain.NewCurso(in.Titulo, in.Descricao)
	if err != nil {
		return nil, err
	}

	licoes := make([]ensinoDomain.Licao, 0, len(in.Licoes))
	for i, titulo := range in.Licoes {
		l, err := ensinoDomain.NewLicao(curso.ID, titulo, i+1)
		if err != nil {
			return nil, err
		}
		licoes = append(licoes, *l)
	}

	evt := sharedDomain.NewOutboxEvent(ensinoDomain.AggregateType, curso.ID.String(), ensinoDomain.CursoCreated, curso)
	if err := s.repo.CreateCurso(ctx, curso, licoes, evt); err != nil {
		s.log.Error("Failed to create curso", zap.Error(err))
		return nil, err
	}
	return &ensinoDomain.CursoDetalhe{Curso: *curso, Licoes: licoes}, nil
}

func (s *EnsinoService) ListCursos(ctx context.Context, p sharedQuery.PaginationParams) (sharedQuery.Page[*ensinoDomain.CursoResumo], error) {
	criteria := sharedDomain.And(sharedDomain.SearchCriteria{Fields: ensinoDomain.CursoSearchFields, Term: p.Search})

	cursos, total, err := s.repo.ListCursos(ctx, criteria, p)
	if err != nil {
		return sharedQuery.Page[*ensinoDomain.CursoResumo]{}, err
	}
	return sharedQuery.NewPage(cursos, p, total), nil
}

// GetCurso devuelve el curso con lições; cache-aside.
func (s *EnsinoService) GetCurso(ctx context.Context, id uuid.UUID) (*ensinoDomain.CursoDetalhe, error) {
	key := ensinoDomain.CacheKeyCurso(id)
	if s.cache != nil {
		var c ensinoDomain.CursoDetalhe
		if hit, _ := s.cache.Get(ctx, key, &c); hit {
			return &c, nil
		}
	}

	var curso *ensinoDomain.CursoDetalhe
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		curso, errRetry = s.repo.GetCurso(ctx, id)
		if errors.Is(errRetry, sharedDomain.ErrNotFound) {
			return nil
		}
		return errRetry
	})
	if err != nil {
		s.log.Error("Failed to fetch curso", zap.String("curso_id", id.String()), zap.Error(err))
		return nil, err
	}
	if curso == nil {
		return nil, ensinoDomain.ErrCursoNotFound
	}

	sharedCache.SetWithTimeout(ctx, s.cache, key, curso, s.log)
	return curso, nil
}

func (s *EnsinoService) Matricular(ctx context.Context, pessoaID, cursoID uuid.UUID) (*ensinoDomain.ProgressoCurso, error) {
	if pessoaID == uuid.Nil || cursoID == uuid.Nil {
		return nil, sharedDomain.InvalidInput(errors.New("pessoa_id and curso_id are required"))
	}

	matricula := ensinoDomain.CalcularProgresso(pessoaID, cursoID, 0, 0, time.Now().UTC())
	evt := sharedDomain.NewOutboxEvent(ensinoDomain.AggregateType, pessoaID.String(), ensinoDomain.MatriculaCriada, matricula)
	if err := s.repo.Matricular(ctx, matricula, evt); err != nil {
		return nil, err
	}
	return matricula, nil
}

// LicaoMarcada es la fila de progreso escrita y el curso ya recalculado.
type LicaoMarcada struct {
	Licao *ensinoDomain.ProgressoLicao `json:"licao"`
	Curso *ensinoDomain.ProgressoCurso `json:"curso"`
}

// MarcarLicao registra el avance en una lição y recalcula el curso.
func (s *EnsinoService) MarcarLicao(ctx context.Context, pessoaID, licaoID uuid.UUID, percent int) (*LicaoMarcada, error) {
	progresso, err := ensinoDomain.NewProgressoLicao(pessoaID, licaoID, percent, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	licao, err := s.repo.GetLicao(ctx, licaoID)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.NewOutboxEvent(ensinoDomain.AggregateType, pessoaID.String(), ensinoDomain.LicaoMarcada,
		ensinoDomain.LicaoMarcadaPayload{
			PessoaID:         pessoaID,
			LicaoID:          licaoID,
			CursoID:          licao.CursoID,
			ProgressoPercent: percent,
			Concluida:        progresso.Concluida,
		})

	curso, err := s.repo.MarcarLicao(ctx, progresso, licao.CursoID, evt)
	if err != nil {
		s.log.Error("Failed to mark licao",
			zap.String("pessoa_id", pessoaID.String()),
			zap.String("licao_id", licaoID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &LicaoMarcada{Licao: progresso, Curso: curso}, nil
}

// RecalcularProgresso repara la fila de progreso de un curso; se puede repetir sin efectos.
func (s *EnsinoService) RecalcularProgresso(ctx context.Context, pessoaID, cursoID uuid.UUID) (*ensinoDomain.ProgressoCurso, error) {
	if pessoaID == uuid.Nil || cursoID == uuid.Nil {
		return nil, sharedDomain.InvalidInput(errors.New("pessoa_id and curso_id are required"))
	}
	return s.repo.RecalcularProgresso(ctx, pessoaID, cursoID)
}

func (s *EnsinoService) ListProgresso(ctx context.Context, pessoaID uuid.UUID, p sharedQuery.PaginationParams) (sharedQuery.Page[*ensinoDomain.ProgressoCurso], error) {
	progresso, total, err := s.repo.ListProgresso(ctx, pessoaID, p)
	if err != nil {
		return sharedQuery.Page[*ensinoDomain.ProgressoCurso]{}, err
	}
	return sharedQuery.NewPage(progresso, p, total), nil
}
