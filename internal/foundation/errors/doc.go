// Package errors provides the classified error type used across blogbuilder.
//
// Every failure that can reach the operator is a ClassifiedError carrying a
// category (what went wrong), a severity (whether the build may continue) and a
// context map naming the offending file, image or tag. Errors are built with
// the fluent ErrorBuilder:
//
//	err := errors.WrapError(cause, errors.CategorySource, "malformed front matter").
//		WithContext("path", path).
//		Build()
//
// The CLIErrorAdapter turns a classified error into a human message and an
// exit code.
package errors
