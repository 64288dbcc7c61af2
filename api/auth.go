package api

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"taskboard-api/domain"
)

const tokenTTL = time.Hour

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

// Auth issues and validates the bearer tokens carrying a principal. The
// default mode signs and verifies HS256 with a shared secret; when a JWKS
// is configured, externally issued RS256 tokens are accepted as well.
type Auth struct {
	secret []byte
	jwks   *keyfunc.JWKS

	hsParser *jwt.Parser
	rsParser *jwt.Parser
}

// NewAuth creates an Auth with the required signing secret and an
// optional JWKS for externally issued tokens.
func NewAuth(secret []byte, jwks *keyfunc.JWKS) *Auth {
	if len(secret) == 0 {
		panic("api.NewAuth: signing secret must not be empty")
	}
	a := &Auth{
		secret:   secret,
		jwks:     jwks,
		hsParser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
	if jwks != nil {
		a.rsParser = jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	}
	return a
}

// IssueToken signs a token carrying the user's id, username and role.
func (a *Auth) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// PrincipalFromAuthHeader extracts the principal from an Authorization
// header value.
func (a *Auth) PrincipalFromAuthHeader(h string) (domain.Principal, error) {
	token, err := bearerToken(h)
	if err != nil {
		return domain.Principal{}, err
	}
	return a.PrincipalFromToken(token)
}

// PrincipalFromToken parses and validates a raw token string.
func (a *Auth) PrincipalFromToken(raw string) (domain.Principal, error) {
	parsed, err := a.hsParser.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil && a.rsParser != nil {
		parsed, err = a.rsParser.Parse(raw, a.jwks.Keyfunc)
	}
	if err != nil {
		return domain.Principal{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, errors.New("invalid claims")
	}
	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return domain.Principal{}, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return domain.Principal{}, errors.New("token not valid yet")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return domain.Principal{}, errors.New("missing user_id")
	}
	role := domain.RoleMember
	if r, ok := claims["role"].(string); ok && r != "" {
		role = domain.Role(r)
	}
	return domain.Principal{UserID: uint(userID), Role: role}, nil
}

func bearerToken(h string) (string, error) {
	h = strings.TrimSpace(h)
	if h == "" {
		return "", errMissingAuthorization
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errBadAuthorization
	}
	return parts[1], nil
}
