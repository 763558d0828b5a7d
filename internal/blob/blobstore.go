// Package blob re-exports the blob storage abstraction and selects a
// concrete backend from the environment.
package blob

import "seedcore/internal/blob/core"

// Aliases keep call sites on a single import while implementations live in
// internal/infra/blob.
type (
	Store      = core.Store
	Driver     = core.Driver
	Info       = core.Info
	PutOptions = core.PutOptions
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)
