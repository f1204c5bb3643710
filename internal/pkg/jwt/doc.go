// Package jwt issues and verifies HS512 access tokens for API clients.
//
// A client is either the operator console or a door terminal; its role claim
// drives authorization in the router. Verified claims travel in the request
// context via SetAuth/GetAuth.
package jwt
