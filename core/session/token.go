package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var nowFunc = time.Now // mockable

// signToken returns the HS256 token carrying the session id (jti) and the user id (sub).
func signToken(sess Session, issuer string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   sess.UserID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken validates the token signature, expiry and issuer.
// Extra options are appended to the parser options.
func parseToken(token, issuer string, secret []byte, opts ...jwt.ParserOption) (jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(nowFunc),
	}, opts...)
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		opts...,
	)
	if err != nil || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return jwt.RegisteredClaims{}, ErrInvalidToken
	}
	return claims, nil
}
