// Package check contains the individual validation stages of the
// deliverability pipeline: syntax, MX resolution, disposable-domain
// matching, and the SMTP mailbox probe. Each stage can be used directly,
// but the recommended approach is the pipeline in the
// github.com/optimode/deliverkit package.
package check
