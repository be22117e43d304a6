// Package schemas holds the JSON Schema contracts for the produced result shapes.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	Roster   = "roster.schema.json"
	Students = "students.schema.json"
	Student  = "student.schema.json"
)

// All lists every schema file.
var All = []string{Roster, Students, Student}
