package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Format Errors (FMT001-FMT099)
//
// Errors raised while recognizing and normalizing the input file:
//
//	FMT001 - Unsupported format: The columns match no known export layout
//	         Action: Export the file again with the standard column headers
//	         Patterns: "unsupported file format"
//
//	FMT002 - Missing column: A row is missing a required column
//	         Action: Check that every row has a value for each required column
//	         Patterns: "missing required column"
//
//	FMT003 - Empty company: A row has no company name
//	         Action: Fill in the company name or remove the row
//	         Patterns: "empty company name"
//
//	FMT004 - Invalid CSV: File is not a valid CSV
//	         Action: Ensure file is comma-separated with balanced quotes
//	         Patterns: "parse csv"
//
//	FMT005 - Invalid workbook: File is not a readable XLSX workbook
//	         Action: Save the workbook again or export it as CSV
//	         Patterns: "parse xlsx"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large"
//
//	FILE002 - Empty file: The file has no header row
//	          Action: Provide a file with a header row and data rows
//	          Patterns: "empty file"
//
//	FILE003 - No file: No file was provided
//	          Action: Attach a CSV or XLSX file
//	          Patterns: "no file provided"
//
//	FILE004 - Unreadable file: The input file could not be opened
//	          Action: Check the path and file permissions
//	          Patterns: "open input"
//
// # Tracker Errors (TRK001-TRK099)
//
// Fatal errors that abort a run before any company is processed:
//
//	TRK001 - Team not found: No team is visible to this API key
//	         Action: Check that the API key belongs to a workspace with a team
//	         Patterns: "team resolution failed"
//
//	TRK002 - Label unavailable: The contact label could not be found or created
//	         Action: Check that the API key may create labels on the team
//	         Patterns: "label resolution failed"
//
// # API Errors (API001-API099)
//
// Errors returned by the tracker API:
//
//	API001 - Unauthorized: The API key was rejected
//	         Action: Create a new personal API key and try again
//	         Patterns: "unauthorized"
//
//	API002 - Missing key: No API key was supplied
//	         Action: Pass --api-key, set LINEAR_API_KEY or send X-Tracker-Key
//	         Patterns: "api key is required"
//
//	API003 - Write failed: The tracker rejected a create request
//	         Action: Review the errors listed for the run
//	         Patterns: "remote mutation failed"
//
//	API004 - Read failed: The tracker rejected a lookup request
//	         Action: Please try again
//	         Patterns: "remote query failed"
//
//	API005 - Unreachable: Unable to reach the tracker
//	         Action: Check your network connection and the endpoint setting
//	         Patterns: "connection refused", "no such host"
//
//	API006 - Rate limited: Too many requests
//	         Action: Please wait a moment before trying again
//	         Patterns: "rate limit", "ratelimited"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many sync runs in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many sync runs"
//
//	RUN002 - Cancelled: The run was cancelled
//	         Action: Start a new run when ready
//	         Patterns: "context canceled"
//
//	RUN003 - Timeout: The run or a request timed out
//	         Action: Try again or sync a smaller file
//	         Patterns: "context deadline exceeded", "timeout"
//
//	RUN004 - Invalid mode: Unknown hierarchy mode
//	         Action: Use "projects" or "issues"
//	         Patterns: "invalid hierarchy mode"
//
// # History Errors (DB001-DB099)
//
//	DB001 - History unavailable: Run history could not be read or written
//	        Action: Check DATABASE_URL; syncs still work without history
//	        Patterns: "history store"
//
//	DB002 - History disabled: No database is configured
//	        Action: Set DATABASE_URL to keep a run history
//	        Patterns: "history is not configured"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Multiple patterns can map to the same code
// (e.g., API005 matches both "connection refused" and "no such host").

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters:
//   - Credential problems come first; they also surface wrapped in team errors
//   - More specific patterns should come before general ones
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Credentials (API001-API002)
	// =========================================================================
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "The tracker rejected the API key",
			Action:  "Create a new personal API key and try again",
			Code:    "API001",
		},
	},
	{
		pattern: "api key is required",
		msg: UserMessage{
			Message: "No API key was supplied",
			Action:  "Pass --api-key, set LINEAR_API_KEY or send X-Tracker-Key",
			Code:    "API002",
		},
	},

	// =========================================================================
	// Run setup (TRK001-TRK002)
	// =========================================================================
	{
		pattern: "team resolution failed",
		msg: UserMessage{
			Message: "No team is available for this API key",
			Action:  "Check that the API key belongs to a workspace with a team",
			Code:    "TRK001",
		},
	},
	{
		pattern: "label resolution failed",
		msg: UserMessage{
			Message: "The contact label could not be found or created",
			Action:  "Check that the API key may create labels on the team",
			Code:    "TRK002",
		},
	},

	// =========================================================================
	// Input format (FMT001-FMT005)
	// =========================================================================
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "The file columns match no known export layout",
			Action:  "Export the file again with the standard column headers",
			Code:    "FMT001",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A row is missing a required column",
			Action:  "Check that every row has a value for each required column",
			Code:    "FMT002",
		},
	},
	{
		pattern: "empty company name",
		msg: UserMessage{
			Message: "A row has no company name",
			Action:  "Fill in the company name or remove the row",
			Code:    "FMT003",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with balanced quotes",
			Code:    "FMT004",
		},
	},
	{
		pattern: "parse xlsx",
		msg: UserMessage{
			Message: "File is not a readable XLSX workbook",
			Action:  "Save the workbook again or export it as CSV",
			Code:    "FMT005",
		},
	},

	// =========================================================================
	// Files (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Provide a file with a header row and data rows",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Attach a CSV or XLSX file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "open input",
		msg: UserMessage{
			Message: "The input file could not be opened",
			Action:  "Check the path and file permissions",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Runs (RUN001-RUN004)
	// =========================================================================
	{
		pattern: "too many sync runs",
		msg: UserMessage{
			Message: "Too many sync runs in progress",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was cancelled",
			Action:  "Start a new run when ready",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The run timed out",
			Action:  "Try again or sync a smaller file",
			Code:    "RUN003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "A tracker request timed out",
			Action:  "Try again or sync a smaller file",
			Code:    "RUN003",
		},
	},
	{
		pattern: "invalid hierarchy mode",
		msg: UserMessage{
			Message: "Unknown hierarchy mode",
			Action:  `Use "projects" or "issues"`,
			Code:    "RUN004",
		},
	},

	// =========================================================================
	// Tracker API (API003-API006)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests to the tracker",
			Action:  "Please wait a moment before trying again",
			Code:    "API006",
		},
	},
	{
		pattern: "ratelimited",
		msg: UserMessage{
			Message: "Too many requests to the tracker",
			Action:  "Please wait a moment before trying again",
			Code:    "API006",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the tracker",
			Action:  "Check your network connection and the endpoint setting",
			Code:    "API005",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to reach the tracker",
			Action:  "Check your network connection and the endpoint setting",
			Code:    "API005",
		},
	},
	{
		pattern: "remote mutation failed",
		msg: UserMessage{
			Message: "The tracker rejected a create request",
			Action:  "Review the errors listed for the run",
			Code:    "API003",
		},
	},
	{
		pattern: "remote query failed",
		msg: UserMessage{
			Message: "The tracker rejected a lookup request",
			Action:  "Please try again",
			Code:    "API004",
		},
	},

	// =========================================================================
	// History (DB001-DB002)
	// =========================================================================
	{
		pattern: "history store",
		msg: UserMessage{
			Message: "Run history could not be read or written",
			Action:  "Check DATABASE_URL; syncs still work without history",
			Code:    "DB001",
		},
	},
	{
		pattern: "history is not configured",
		msg: UserMessage{
			Message: "Run history is turned off",
			Action:  "Set DATABASE_URL to keep a run history",
			Code:    "DB002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("%w: no teams returned", ErrTeamResolution)
//	msg := MapError(err)
//	// msg.Code == "TRK001"
//	// msg.Message == "No team is available for this API key"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The tracker rejected the API key (Code: API001). Create a new personal API key and try again"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(err)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "No team is available for this API key"
//	fmt.Println(ue.User.Code)         // Show "TRK001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
