package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignParseToken(t *testing.T) {
	secret := []byte("secret")
	issuer := "Opel Dashboard"

	now := time.Now().UTC()
	sess := Session{ID: "sess-1", UserID: "1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	validToken, err := signToken(sess, issuer, secret)
	if err != nil {
		t.Fatalf("signToken() error = %v", err)
	}

	// generate an expired token
	nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired := Session{ID: "sess-2", UserID: "1", CreatedAt: nowFunc(), ExpiresAt: nowFunc().Add(time.Hour)}
	expiredToken, _ := signToken(expired, issuer, secret)
	nowFunc = time.Now // reset

	otherKeyToken, _ := signToken(sess, issuer, []byte("other-secret"))
	otherIssuerToken, _ := signToken(sess, "someone else", secret)
	noIDToken, _ := signToken(Session{UserID: "1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}, issuer, secret)
	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "sess-1",
		Subject:   "1",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr error
	}{
		{name: "no token", wantErr: ErrInvalidToken},
		{name: "garbage", token: "token-1", wantErr: ErrInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: ErrInvalidToken},
		{name: "wrong key", token: otherKeyToken, wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: otherIssuerToken, wantErr: ErrInvalidToken},
		{name: "missing session id", token: noIDToken, wantErr: ErrInvalidToken},
		{name: "unsigned token", token: noneToken, wantErr: ErrInvalidToken},
		{name: "valid token", token: validToken, wantID: "sess-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := parseToken(tt.token, issuer, secret)
			if err != tt.wantErr {
				t.Errorf("parseToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if claims.ID != tt.wantID {
				t.Errorf("parseToken() ID = %q, want %q", claims.ID, tt.wantID)
			}
		})
	}

	t.Run("expired token without claims validation", func(t *testing.T) {
		claims, err := parseToken(expiredToken, issuer, secret, jwt.WithoutClaimsValidation())
		if err != nil || claims.ID != "sess-2" {
			t.Errorf("parseToken() = %q, %v; want sess-2, <nil>", claims.ID, err)
		}
	})
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	sess := Session{ExpiresAt: now}
	if !sess.Expired(now) {
		t.Error("Expired() at ExpiresAt = false, want true")
	}
	if sess.Expired(now.Add(-time.Second)) {
		t.Error("Expired() before ExpiresAt = true, want false")
	}
}
