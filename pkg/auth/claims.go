package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only privileged role the ledger knows about.
const RoleAdmin = "admin"

// AdminTokenClaims is the JWT payload minted after a successful admin login.
type AdminTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokenPayload carries the inputs for minting an admin token.
type AdminTokenPayload struct {
	JTI string
}
