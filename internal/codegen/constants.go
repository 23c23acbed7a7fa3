// Package codegen provides code generation helpers and constants.
package codegen

import (
	"fmt"
	"strings"
	"unicode"
)

// Variable names used in generated code
const (
	InputName       = "input"
	InputLenName    = "l"
	StartName       = "startIndex"
	PositionName    = "pos"
	GroupsName      = "groups"
	ExpectedName    = "expectations"
	StackName       = "stack"
	LocalsName      = "locals"
	SavedName       = "saved"
	FallbackVarName = "fb"
	StepSelectName  = "StepSelect"
	TryFallbackName = "TryFallback"
)

// InstructionName returns the label name for entering an instruction.
func InstructionName(id uint32) string {
	return fmt.Sprintf("Ins%d", id)
}

// DoneName returns the label name for continuing after an instruction
// succeeded.
func DoneName(id uint32) string {
	return fmt.Sprintf("Ins%dDone", id)
}

// FailName returns the label name for continuing after an instruction failed.
func FailName(id uint32) string {
	return fmt.Sprintf("Ins%dFail", id)
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}

// ExportedName turns a group name into an exported Go identifier.
// "user-id" becomes "UserId"; names not starting with a letter get a "G"
// prefix.
func ExportedName(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if sb.Len() == 0 && !unicode.IsLetter(r) {
			sb.WriteByte('G')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "G"
	}
	return sb.String()
}
