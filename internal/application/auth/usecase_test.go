package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ksilverstone/b2b/internal/application/auth"
	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct{ users map[string]*entity.User }

func (r *fakeUserRepo) Create(u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email && existing.CompanyID == u.CompanyID {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.users[u.ID] = u
	return nil
}
func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) { return r.users[id], nil }
func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (r *fakeUserRepo) GetByEmailAndCompany(email, companyID string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.CompanyID == companyID {
			return u, nil
		}
	}
	return nil, nil
}

type fakeCompanyRepo struct{ companies map[string]*entity.Company }

func (r *fakeCompanyRepo) Create(c *entity.Company) error { r.companies[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.companies[id], nil
}
func (r *fakeCompanyRepo) List(int, int) ([]*entity.Company, error) { return nil, nil }
func (r *fakeCompanyRepo) Update(*entity.Company) error             { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	sellerCo = "s1"
	buyerCo  = "b1"
	secret   = "test-secret"
)

func setup(t *testing.T) (*auth.AuthUseCase, *fakeUserRepo) {
	t.Helper()
	users := &fakeUserRepo{users: map[string]*entity.User{}}
	companies := &fakeCompanyRepo{companies: map[string]*entity.Company{
		sellerCo: {ID: sellerCo, Name: "Ventas SAS", IsSeller: true},
		buyerCo:  {ID: buyerCo, Name: "Compras SAS", IsBuyer: true},
	}}
	uc := auth.NewAuthUseCase(users, companies, auth.JWTConfig{
		Secret: secret, ExpMinutes: 60, Issuer: "b2b-test",
	})
	return uc, users
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterUser_RolPorDefectoSegunEmpresa(t *testing.T) {
	uc, _ := setup(t)

	vendedor, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "supersecreta", CompanyID: sellerCo,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, vendedor.Role, "empresa vendedora → seller")
	assert.Equal(t, "active", vendedor.Status)

	comprador, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "c@compras.co", Password: "supersecreta", CompanyID: buyerCo,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuyer, comprador.Role, "empresa compradora → buyer")
}

func TestRegisterUser_EmailDuplicadoEnLaEmpresa(t *testing.T) {
	uc, _ := setup(t)

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "supersecreta", CompanyID: sellerCo,
	})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "otraclave123", CompanyID: sellerCo,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_EmpresaInexistente(t *testing.T) {
	uc, _ := setup(t)

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "x@x.co", Password: "supersecreta", CompanyID: "no-existe",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterUser_NoGuardaPasswordEnClaro(t *testing.T) {
	uc, users := setup(t)

	resp, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "supersecreta", CompanyID: sellerCo,
	})
	require.NoError(t, err)

	stored := users.users[resp.ID]
	assert.NotEqual(t, "supersecreta", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash), []byte("supersecreta")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_TokenConClaimsDelUsuario(t *testing.T) {
	uc, _ := setup(t)
	reg, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "supersecreta", CompanyID: sellerCo,
	})
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "v@ventas.co", Password: "supersecreta"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, companyID, role, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, userID)
	assert.Equal(t, sellerCo, companyID)
	assert.Equal(t, entity.RoleSeller, role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "supersecreta", CompanyID: sellerCo,
	})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "v@ventas.co", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@x.co", Password: "supersecreta"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, users := setup(t)
	reg, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "v@ventas.co", Password: "supersecreta", CompanyID: sellerCo,
	})
	require.NoError(t, err)
	users.users[reg.ID].Status = "disabled"

	_, err = uc.Login(dto.LoginRequest{Email: "v@ventas.co", Password: "supersecreta"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
