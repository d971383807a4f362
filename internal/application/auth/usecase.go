package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/logistica-api/internal/application/authority"
	"github.com/jhoicas/logistica-api/internal/application/dto"
	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
	"github.com/jhoicas/logistica-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de partes y login.
type AuthUseCase struct {
	partyRepo repository.PartyRepository
	gate      *authority.Gate
	jwtCfg    JWTConfig
	log       zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(partyRepo repository.PartyRepository, gate *authority.Gate, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{partyRepo: partyRepo, gate: gate, jwtCfg: jwtCfg, log: log}
}

// SeedAuthority crea o reemplaza la credencial de la autoridad configurada. Se llama al arrancar.
func (uc *AuthUseCase) SeedAuthority(ctx context.Context, secret string) error {
	if secret == "" {
		return domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	id := uc.gate.AuthorityID()
	if err := uc.partyRepo.Upsert(ctx, &entity.Party{
		ID:         id,
		Name:       id,
		SecretHash: string(hash),
		Role:       entity.RoleAuthority,
		CreatedAt:  entity.Now(),
	}); err != nil {
		return err
	}
	uc.log.Info().Str("party_id", id).Msg("credencial de la autoridad sembrada")
	return nil
}

// RegisterParty da de alta un cliente. Solo la autoridad registra partes.
func (uc *AuthUseCase) RegisterParty(ctx context.Context, caller string, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	if err := uc.gate.CheckAuthority(caller); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" || len(in.Secret) < 8 || id == uc.gate.AuthorityID() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateParty
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = id
	}
	party := &entity.Party{
		ID:         id,
		Name:       name,
		SecretHash: string(hash),
		Role:       entity.RoleCustomer,
		CreatedAt:  entity.Now(),
	}
	if err := uc.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}
	return toPartyResponse(party), nil
}

// Login verifica party_id/secret, genera JWT y retorna token + parte.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	party, err := uc.partyRepo.GetByID(ctx, strings.TrimSpace(in.PartyID))
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(party.SecretHash), []byte(in.Secret)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, party.ID, party.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Party: *toPartyResponse(party),
	}, nil
}

func toPartyResponse(p *entity.Party) *dto.PartyResponse {
	if p == nil {
		return nil
	}
	return &dto.PartyResponse{
		ID:        p.ID,
		Name:      p.Name,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
}
