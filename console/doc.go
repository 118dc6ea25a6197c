// Package console renders the end-of-run report and exports run artifacts.
//
// A Report is built from the finished session record (and, optionally, the
// SEO-polished copy). Render writes the human readable summary with lipgloss;
// Export stores the best draft as Markdown and HTML plus a JSON report in an
// artifact store.
package console
