package csvimport

// LineVisitor is invoked once per data row of a discovered CSV file, in
// file order, by a single worker — never concurrently for the same file,
// though a different worker may visit a different file at the same time
// (spec.md's CSV import data model).
type LineVisitor func(lineNumber int, record []string) error
