package ast

import "flume/internal/source"

// Include is one INCLUDE 'path' directive.
type Include struct {
	Path string
	Span source.Span
}

// Script is the parsed content of one input file.
type Script struct {
	File     source.FileID
	Path     string
	Span     source.Span
	Includes []Include
	Stmts    []StmtID
}

type Scripts struct {
	Arena *Arena[Script]
}

func NewScripts(capHint uint) *Scripts {
	return &Scripts{Arena: NewArena[Script](capHint)}
}

func (s *Scripts) New(file source.FileID, path string, sp source.Span) ScriptID {
	return ScriptID(s.Arena.Allocate(Script{File: file, Path: path, Span: sp}))
}

func (s *Scripts) Get(id ScriptID) *Script {
	return s.Arena.Get(uint32(id))
}
