package diag

import (
	"fmt"
	"strings"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Граф типов и входной документ
	GraphInfo             Code = 1000
	UnknownSuperclass     Code = 1001
	InheritanceCycle      Code = 1002
	SuperclassUnusable    Code = 1003
	SuperclassOnValueType Code = 1004
	DocumentInvalid       Code = 1005

	// Синтез инициализаторов
	InitInfo                     Code = 2000
	NoDefaultInitializerEligible Code = 2001
	NoDesignatedInitializer      Code = 2002
	ConvenienceInValueType       Code = 2003

	// Делегирование
	DelegationInfo                    Code = 3000
	UnresolvedDelegationTarget        Code = 3001
	DelegationCycle                   Code = 3002
	ConvenienceDoesNotReachDesignated Code = 3003
	SuperInitTargetNotDesignated      Code = 3004
	SuperInitUnresolved               Code = 3005
	MissingOverrideMarker             Code = 3006
	SpuriousOverrideMarker            Code = 3007
	SuperInitInValueType              Code = 3008
	SuperInitInRootClass              Code = 3009
	ConvenienceDelegatesUp            Code = 3010
	DesignatedDelegatesAcross         Code = 3011
	MissingSuperInitCall              Code = 3012

	// Definite initialization
	DefInitInfo                      Code = 4000
	PropertyNotInitializedOnPath     Code = 4001
	IllegalEarlyExitForNonFailing    Code = 4002
	MultipleSuperInitCalls           Code = 4003
	SelfInitNotFirstStatement        Code = 4004
	MultipleSelfInitCalls            Code = 4005
	MismatchedEarlyExit              Code = 4006
	SelfUsedBeforeInitialization     Code = 4007
	InheritedPropertyBeforeSuperInit Code = 4008
	ImmutableInheritedProperty       Code = 4009
	UnknownProperty                  Code = 4010
	UnreachableStatement             Code = 4011
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                       "Unknown error",
		GraphInfo:                         "Type graph information",
		UnknownSuperclass:                 "superclass is not declared",
		InheritanceCycle:                  "superclass chain forms a cycle",
		SuperclassUnusable:                "superclass chain is broken, type skipped",
		SuperclassOnValueType:             "value types cannot have a superclass",
		DocumentInvalid:                   "type graph document is invalid",
		InitInfo:                          "Initializer synthesis information",
		NoDefaultInitializerEligible:      "type is not eligible for a default initializer",
		NoDesignatedInitializer:           "class has no designated initializer",
		ConvenienceInValueType:            "convenience initializers are only allowed in classes",
		DelegationInfo:                    "Delegation information",
		UnresolvedDelegationTarget:        "self.init call matches no initializer",
		DelegationCycle:                   "initializer delegation cycle",
		ConvenienceDoesNotReachDesignated: "convenience initializer never reaches a designated initializer",
		SuperInitTargetNotDesignated:      "super.init must call a designated initializer",
		SuperInitUnresolved:               "super.init call matches no superclass initializer",
		MissingOverrideMarker:             "initializer overrides a designated initializer without 'override'",
		SpuriousOverrideMarker:            "'override' does not override a designated initializer",
		SuperInitInValueType:              "value types cannot delegate to a supertype",
		SuperInitInRootClass:              "root class initializer calls super.init",
		ConvenienceDelegatesUp:            "convenience initializer must delegate across, not up",
		DesignatedDelegatesAcross:         "designated initializer must delegate up, not across",
		MissingSuperInitCall:              "designated initializer does not call super.init",
		DefInitInfo:                       "Definite initialization information",
		PropertyNotInitializedOnPath:      "stored property not initialized on every path",
		IllegalEarlyExitForNonFailing:     "early exit from an initializer that cannot fail",
		MultipleSuperInitCalls:            "super.init called more than once",
		SelfInitNotFirstStatement:         "self.init must be the first statement",
		MultipleSelfInitCalls:             "self.init called more than once",
		MismatchedEarlyExit:               "early exit does not match the initializer's failure kind",
		SelfUsedBeforeInitialization:      "self used before all stored properties are initialized",
		InheritedPropertyBeforeSuperInit:  "inherited property assigned before super.init",
		ImmutableInheritedProperty:        "cannot assign to an inherited 'let' property",
		UnknownProperty:                   "assignment to an undeclared property",
		UnreachableStatement:              "statement is never executed",
	}

	codeName = map[Code]string{
		UnknownSuperclass:                 "UnknownSuperclass",
		InheritanceCycle:                  "InheritanceCycle",
		SuperclassUnusable:                "SuperclassUnusable",
		SuperclassOnValueType:             "SuperclassOnValueType",
		DocumentInvalid:                   "DocumentInvalid",
		NoDefaultInitializerEligible:      "NoDefaultInitializerEligible",
		NoDesignatedInitializer:           "NoDesignatedInitializer",
		ConvenienceInValueType:            "ConvenienceInValueType",
		UnresolvedDelegationTarget:        "UnresolvedDelegationTarget",
		DelegationCycle:                   "DelegationCycle",
		ConvenienceDoesNotReachDesignated: "ConvenienceDoesNotReachDesignated",
		SuperInitTargetNotDesignated:      "SuperInitTargetNotDesignated",
		SuperInitUnresolved:               "SuperInitUnresolved",
		MissingOverrideMarker:             "MissingOverrideMarker",
		SpuriousOverrideMarker:            "SpuriousOverrideMarker",
		SuperInitInValueType:              "SuperInitInValueType",
		SuperInitInRootClass:              "SuperInitInRootClass",
		ConvenienceDelegatesUp:            "ConvenienceDelegatesUp",
		DesignatedDelegatesAcross:         "DesignatedDelegatesAcross",
		MissingSuperInitCall:              "MissingSuperInitCall",
		PropertyNotInitializedOnPath:      "PropertyNotInitializedOnPath",
		IllegalEarlyExitForNonFailing:     "IllegalEarlyExitForNonFailing",
		MultipleSuperInitCalls:            "MultipleSuperInitCalls",
		SelfInitNotFirstStatement:         "SelfInitNotFirstStatement",
		MultipleSelfInitCalls:             "MultipleSelfInitCalls",
		MismatchedEarlyExit:               "MismatchedEarlyExit",
		SelfUsedBeforeInitialization:      "SelfUsedBeforeInitialization",
		InheritedPropertyBeforeSuperInit:  "InheritedPropertyBeforeSuperInit",
		ImmutableInheritedProperty:        "ImmutableInheritedProperty",
		UnknownProperty:                   "UnknownProperty",
		UnreachableStatement:              "UnreachableStatement",
	}

	codeByName = func() map[string]Code {
		out := make(map[string]Code, len(codeName))
		for c, n := range codeName {
			out[strings.ToLower(n)] = c
		}
		return out
	}()
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("GRF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("INI%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DLG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("DEF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

// Name is the taxonomy tag, e.g. "DelegationCycle". Info codes have none.
func (c Code) Name() string {
	return codeName[c]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode accepts a taxonomy tag (case-insensitive) or a code ID such as
// "DLG3002".
func ParseCode(s string) (Code, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := codeByName[key]; ok {
		return c, true
	}
	for c := range codeName {
		if strings.EqualFold(c.ID(), key) {
			return c, true
		}
	}
	return UnknownCode, false
}
