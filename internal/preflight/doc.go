// Package preflight provides readiness checks for the services and
// filesystem paths podopt depends on.
//
// These checks run in two contexts:
//   - "podopt serve" runs RunAll at startup and logs a warning for every
//     failed check before accepting requests.
//   - "podopt doctor" prints each Result so operators can fix the
//     environment before the first optimization.
package preflight
