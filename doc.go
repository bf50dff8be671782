// Package ytcookies extracts YouTube session cookies from locally installed
// browsers (Edge, Chrome, Firefox) and writes them as a Netscape-format cookie
// file for yt-dlp style download tools.
//
// This is intended for local tooling. It reads local browser state, may trigger
// keychain/keyring prompts, and should not be used in server contexts.
package ytcookies
