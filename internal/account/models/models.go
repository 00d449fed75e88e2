// Package models holds the account domain records and the wire shapes of the
// two account endpoints.
package models

import "time"

// PremiumTokenField is the balance key inside a UserRecord's token map.
const PremiumTokenField = "premiumToken"

// UserRecord is the live, identifiable account record holding token
// balances. It is mutated only through the store's atomic increment, or
// deleted wholesale during account erasure.
type UserRecord struct {
	UID    string           `json:"uid"`
	Tokens map[string]int64 `json:"tokens"`
}

// PremiumTokens returns the premium balance, defaulting to 0 when absent.
func (u *UserRecord) PremiumTokens() int64 {
	if u == nil || u.Tokens == nil {
		return 0
	}
	return u.Tokens[PremiumTokenField]
}

// HashRecord is the pseudonymized snapshot created on account deletion. It
// is a terminal, detached copy of the balance keyed by a value derived from,
// but not reversible to, the email. Duplicate deletions overwrite it.
type HashRecord struct {
	ID        string    `json:"id"`
	Tokens    int64     `json:"tokens"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeleteAccountRequest is the body of POST /deleteAccount.
type DeleteAccountRequest struct {
	Email                string `json:"email"`
	Tokens               int64  `json:"tokens,omitempty"`
	UID                  string `json:"uid,omitempty"`
	ClientEncryptedEmail string `json:"clientEncryptedEmail,omitempty"`
}

// AddTokensRequest is the body of POST /addTokens.
type AddTokensRequest struct {
	UserID string `json:"userId"`
	Tokens int64  `json:"tokens"`
}

// DeleteAccountResponse is the success envelope of POST /deleteAccount.
type DeleteAccountResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ServerHashedEmail string `json:"serverHashedEmail"`
}

// AddTokensResponse is the success envelope of POST /addTokens.
type AddTokensResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
