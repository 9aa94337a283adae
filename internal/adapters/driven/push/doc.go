// Package push implements driven.PushClient against the Coveo Push API.
//
// Push API calls authenticate with the source API key as a bearer token
// (golang.org/x/oauth2) and are paced by a token bucket
// (golang.org/x/time/rate). Blob uploads go straight to the pre-signed
// container URI without credentials.
package push
