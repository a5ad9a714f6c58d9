package usecase

import (
	"crypto/subtle"

	authdomain "notify-backend/internal/auth/domain"
	"notify-backend/internal/auth/repository"
	"notify-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthUsecase answers "who is this caller" for the API. Tokens are issued
// by the surrounding identity service; this side only validates them.
type AuthUsecase interface {
	// Authorize classifies a bearer credential into a verdict. The user
	// is non-nil for user and staff verdicts. An error is returned only
	// for store failures; bad credentials yield VerdictAnonymous.
	Authorize(bearer string) (authdomain.Verdict, *authdomain.User, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
	}
}

func (u *authUsecase) Authorize(bearer string) (authdomain.Verdict, *authdomain.User, error) {
	if bearer == "" {
		return authdomain.VerdictAnonymous, nil, nil
	}

	if u.config.ServiceToken != "" &&
		subtle.ConstantTimeCompare([]byte(bearer), []byte(u.config.ServiceToken)) == 1 {
		return authdomain.VerdictService, nil, nil
	}

	token, err := jwt.Parse(bearer, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return authdomain.VerdictAnonymous, nil, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authdomain.VerdictAnonymous, nil, nil
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return authdomain.VerdictAnonymous, nil, nil
	}

	// The role comes from the store, not the token, so role changes take
	// effect without re-issuing tokens.
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return authdomain.VerdictAnonymous, nil, err
	}
	if user == nil {
		return authdomain.VerdictAnonymous, nil, nil
	}

	if user.IsStaff() {
		return authdomain.VerdictStaff, user, nil
	}
	return authdomain.VerdictUser, user, nil
}
