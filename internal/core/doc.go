// Package core provides the business logic for syncing contact exports into
// an issue tracker.
//
// The package holds all domain logic independent of any transport. It is
// used by the CLI, the HTTP API and tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Format Definitions: Registered via the registry, each input layout has
//     required and optional columns and a record builder.
//   - Dataset: A loaded CSV or XLSX file with its header index and the source
//     line of every row.
//   - Syncer: Runs one sync against a [Tracker], creating missing companies
//     and contacts and counting what already existed.
//   - RunLimiter: Bounds the number of runs in flight.
//
// # Format Registry
//
// Formats are registered at init time using [Register]. Each
// [FormatDefinition] contains everything needed to read one export layout:
//
//	core.Register(FormatDefinition{
//	    Format:   FormatOriginal,
//	    Label:    "Prospect export",
//	    Order:    10,
//	    Required: []string{"Company Name", "First Name", "Last Name", "Prospect Job Title"},
//	    Build:    buildOriginal,
//	})
//
// [Detect] tries the registered formats in Order and picks the first whose
// required columns are all present.
//
// # Sync Runs
//
// A run moves through init, team_resolved, label_resolved and processing
// before it ends as done or failed:
//
//  1. The caller loads a file with [LoadFile] or [Load]
//  2. [Syncer.RunDataset] detects the format and normalizes every row
//  3. Records are grouped by company in first-seen order
//  4. Each company is looked up or created, then each of its contacts
//  5. Progress is reported through [SyncOptions.Progress]
//
// Failures on a single company or contact are collected in
// [RunResult.Errors] and the run continues. Failing to resolve the team or
// label ends the run.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FMT001-FMT005: Format errors (unknown layout, missing columns, bad CSV)
//   - FILE001-FILE004: File errors (size, empty, missing, unreadable)
//   - TRK001-TRK002: Workspace errors (team, label)
//   - API001-API006: Tracker API errors (key, rejected requests, rate limit)
//   - RUN001-RUN004: Run errors (busy, cancelled, timeout, mode)
//   - DB001-DB002: Run history errors
package core
