// Package domain contains the core business entities of the identity
// service: the User account, its outward-facing UserView projection, and the
// validation errors for them. It is independent of any storage engine or
// delivery mechanism.
package domain
