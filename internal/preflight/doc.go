// Package preflight provides readiness checks for the filesystem paths,
// credentials, and external binaries clipforge depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before touching the network; any failure
//     aborts the run before a clip is downloaded.
//   - The CLI "clipforge doctor" command renders every result, including
//     the binary checks from CheckSystemDeps and an optional live Twitch login.
//
// Credential checks are gated by the features that need them.
package preflight
