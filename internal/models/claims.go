package models

import "strconv"

// ClaimName enumerates the user attributes recognised by the token issuer and
// authorization middleware. Anything else is rejected by the credential store.
type ClaimName string

const (
	ClaimIsAdmin ClaimName = "isAdmin"
)

var recognizedClaims = map[ClaimName]struct{}{
	ClaimIsAdmin: {},
}

// Recognized reports whether the claim name belongs to the fixed set.
func (n ClaimName) Recognized() bool {
	_, ok := recognizedClaims[n]
	return ok
}

// Claim is a persisted named attribute of a user.
type Claim struct {
	UserID string    `db:"user_id"`
	Name   ClaimName `db:"name"`
	Value  string    `db:"value"`
}

// UserClaims is the typed view of a user's recognised claims.
type UserClaims struct {
	IsAdmin bool
}

// ClaimsFromRecords folds persisted claims into the typed view, ignoring unknown names.
func ClaimsFromRecords(records []Claim) UserClaims {
	var out UserClaims
	for _, rec := range records {
		switch rec.Name {
		case ClaimIsAdmin:
			out.IsAdmin, _ = strconv.ParseBool(rec.Value)
		}
	}
	return out
}
