package answers

// InsertLinked exposes insertLinked to the external tests.
var InsertLinked = (*Handler).insertLinked
