// Package twitch wraps the Helix endpoints clipforge needs: app access tokens,
// login to broadcaster id resolution, and clip listings.
//
// Credentials are passed in explicitly; the package never reads the
// environment. Authentication failures carry services.ErrAuthentication and
// unknown logins carry services.ErrNotFound so the CLI can classify them.
package twitch
