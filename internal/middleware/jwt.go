package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

// Locals written by JWTProtected.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
)

var errNoSubject = errors.New("token subject missing")

// Identity is the caller described by a verified token.
type Identity struct {
	UserID uint
	Role   string
}

// JWTProtected verifies HMAC signed bearer tokens. The token must name a user
// and one of the platform roles; both are stored as request locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Access token required")
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(LocalUserID, identity.UserID)
		c.Locals(LocalUserRole, identity.Role)
		return c.Next()
	}
}

// CurrentIdentity returns the caller stored by JWTProtected. ok is false for
// anonymous requests.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	id, _ := c.Locals(LocalUserID).(uint)
	if id == 0 {
		return Identity{}, false
	}
	role, _ := c.Locals(LocalUserRole).(string)
	return Identity{UserID: id, Role: strings.ToLower(strings.TrimSpace(role))}, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	var identity Identity
	for _, key := range []string{"sub", "user_id", "id"} {
		if id, ok := claimUserID(claims[key]); ok {
			identity.UserID = id
			break
		}
	}
	if identity.UserID == 0 {
		return Identity{}, errNoSubject
	}

	for _, key := range []string{"role", "roles"} {
		if role := claimRole(claims[key]); role != "" {
			identity.Role = role
			break
		}
	}
	switch identity.Role {
	case models.RoleAdmin, models.RoleEmployer, models.RoleCandidate:
		return identity, nil
	default:
		return Identity{}, errors.New("token role not recognised")
	}
}

func claimUserID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 || v != float64(uint(v)) {
			return 0, false
		}
		return uint(v), true
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || parsed == 0 {
			return 0, false
		}
		return uint(parsed), true
	default:
		return 0, false
	}
}

func claimRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if role := claimRole(item); role != "" {
				return role
			}
		}
	}
	return ""
}
