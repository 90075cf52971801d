// Package jwt signs and verifies the self-contained access and refresh
// credentials issued by the accessgate token authority. Both credential kinds
// share one signing scheme and carry a type discriminator claim so that a
// refresh token can never be replayed as an access token.
package jwt
