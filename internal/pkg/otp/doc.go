// Package otp generates shared secrets, renders authenticator provisioning
// URIs and computes/validates time-based one-time passwords (RFC 6238).
//
// Codes are always 6 digits over a 30 second period with HMAC-SHA1, which is
// what every mainstream authenticator app expects. Validation accepts a small
// window of neighbouring time steps to tolerate clock drift between the door
// terminal and the phone.
package otp
