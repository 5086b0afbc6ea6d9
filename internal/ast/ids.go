package ast

type (
	// главные сущности
	ScriptID   uint32
	DeclID     uint32
	StmtID     uint32
	ExprID     uint32
	TypeNodeID uint32
	// подсущности
	PayloadID  uint32
	MemberID   uint32
	FragmentID uint32
)

const (
	NoScriptID   ScriptID   = 0
	NoDeclID     DeclID     = 0
	NoStmtID     StmtID     = 0
	NoExprID     ExprID     = 0
	NoTypeNodeID TypeNodeID = 0
	NoPayloadID  PayloadID  = 0
	NoMemberID   MemberID   = 0
	NoFragmentID FragmentID = 0
)

func (id ScriptID) IsValid() bool   { return id != NoScriptID }
func (id DeclID) IsValid() bool     { return id != NoDeclID }
func (id StmtID) IsValid() bool     { return id != NoStmtID }
func (id ExprID) IsValid() bool     { return id != NoExprID }
func (id TypeNodeID) IsValid() bool { return id != NoTypeNodeID }
func (id PayloadID) IsValid() bool  { return id != NoPayloadID }
func (id MemberID) IsValid() bool   { return id != NoMemberID }
func (id FragmentID) IsValid() bool { return id != NoFragmentID }
