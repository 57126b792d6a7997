// Package builtin contains the column transformations a pipeline can chain.
//
// Every transformer works on a whole records.Table in place and reports a
// column it references but cannot find as an error. Constructors named
// NewX read the step's options from the pipeline file.
package builtin
