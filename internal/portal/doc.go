// Package portal provides the single authenticated channel to the WIS portal.
//
// A Session owns one HTTP client and its connection pool for the whole run.
// All network I/O of wisdl goes through it:
//   - Probe validates credentials against the studies page
//   - FetchPage fetches and decodes portal pages (ISO-8859-2)
//   - DownloadFile streams submission files to disk in fixed-size chunks
//
// # Link resolution
//
// The portal emits links in three inconsistent forms depending on the page
// type. ResolveURL turns any of them into an absolute URL:
//
//	https://host/whatever   -> unchanged
//	/FIT/st/course-l.php    -> https://host/FIT/st/course-l.php
//	/st/course-l.php        -> https://host/FIT/st/course-l.php
//	course-l.php            -> https://host/FIT/st/course-l.php
//
// # Errors
//
// Probe reports rejected credentials as *AuthError so callers can ask for
// new ones. Every other failure is a *TransportError and is fatal.
//
// # Usage
//
//	session, err := portal.NewSession(creds, portal.WithTimeout(time.Minute))
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	if err := session.Probe(ctx); err != nil {
//		return err
//	}
//	page, err := session.FetchStudy(ctx, 1)
package portal
