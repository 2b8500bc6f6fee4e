package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Перестановка операторов (shuffle)
	SynInfo                     Code = 2000
	SynUnexpectedBinaryOperator Code = 2001
	SynMissingOperand           Code = 2002
	SynNotAnOperator            Code = 2003
	SynEmptyMessage             Code = 2004
	SynBadPatternHead           Code = 2005
	SynUnexpectedPrefixOperator Code = 2006

	// Семантические
	SemaInfo                  Code = 3000
	SemaError                 Code = 3001
	SemaDuplicateSymbol       Code = 3002
	SemaUnresolvedSymbol      Code = 3003
	SemaUnresolvedType        Code = 3004
	SemaOperatorRedeclared    Code = 3005
	SemaInvalidPrecedence     Code = 3006
	SemaCyclicDependency      Code = 3007
	SemaTypeMismatch          Code = 3008
	SemaContextMismatch       Code = 3009
	SemaCircularType          Code = 3010
	SemaSignatureTooGeneral   Code = 3011
	SemaArityMismatch         Code = 3012
	SemaSignatureWithoutValue Code = 3013
	SemaConstructorArity      Code = 3014

	// classes & instances
	SemaInstanceNotFound      Code = 3100
	SemaAmbiguousInstance     Code = 3101
	SemaAmbiguousTypeVariable Code = 3102
	SemaNotAClass             Code = 3103
	SemaDuplicateInstance     Code = 3104
	SemaMissingInstanceMember Code = 3105
	SemaUnknownInstanceMember Code = 3106

	// I/O
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002

	// units & interfaces
	ProjInfo             Code = 5000
	ProjDuplicateModule  Code = 5001
	ProjMissingModule    Code = 5002
	ProjSelfImport       Code = 5003
	ProjImportCycle      Code = 5004
	ProjDependencyFailed Code = 5005

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		SynInfo:                     "Operator shuffle information",
		SynUnexpectedBinaryOperator: "Unexpected binary operator at this position",
		SynMissingOperand:           "Operator is missing an operand",
		SynNotAnOperator:            "Identifier is not a declared operator",
		SynEmptyMessage:             "Empty expression",
		SynBadPatternHead:           "Clause head is not a name applied to patterns",
		SynUnexpectedPrefixOperator: "Prefix operator cannot follow an operand",
		SemaInfo:                    "Semantic information",
		SemaError:                   "Semantic error",
		SemaDuplicateSymbol:         "Duplicate symbol",
		SemaUnresolvedSymbol:        "Symbol not found",
		SemaUnresolvedType:          "Type not found",
		SemaOperatorRedeclared:      "Operator redeclared",
		SemaInvalidPrecedence:       "Invalid operator precedence",
		SemaCyclicDependency:        "Cyclic dependency",
		SemaTypeMismatch:            "Type mismatch",
		SemaContextMismatch:         "Type class context mismatch",
		SemaCircularType:            "Circular type reference",
		SemaSignatureTooGeneral:     "Signature is more general than the inferred type",
		SemaArityMismatch:           "Clauses have different numbers of arguments",
		SemaSignatureWithoutValue:   "Signature without a definition",
		SemaConstructorArity:        "Wrong number of constructor arguments",
		SemaInstanceNotFound:        "Type instance not found",
		SemaAmbiguousInstance:       "Ambiguous type instance",
		SemaAmbiguousTypeVariable:   "Ambiguous type variable",
		SemaNotAClass:               "Not a type class",
		SemaDuplicateInstance:       "Duplicate instance",
		SemaMissingInstanceMember:   "Missing instance member",
		SemaUnknownInstanceMember:   "Instance member is not part of the class",
		IOLoadFileError:             "I/O load file error",
		IODecodeError:               "Malformed unit document",
		ProjInfo:                    "Unit information",
		ProjDuplicateModule:         "Duplicate module definition",
		ProjMissingModule:           "Missing module",
		ProjSelfImport:              "Module imports itself",
		ProjImportCycle:             "Import cycle detected",
		ProjDependencyFailed:        "Dependency module has errors",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
