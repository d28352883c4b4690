// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Descriptor constants
const (
	// DefaultDescriptorDim is the length of a facial descriptor vector
	// produced by the default extractor model
	DefaultDescriptorDim = 128

	// DescriptorValueBound is the maximum absolute value of a descriptor
	// element; every element must fall within [-Bound, +Bound]
	DescriptorValueBound = 1.0
)

// Matching constants
const (
	// DefaultMatchThreshold is the default maximum Euclidean distance for
	// accepting two descriptors as the same person. Lower values = stricter
	// matching. The value is an operating point for the default extractor
	// model and does not transfer to differently trained extractors.
	DefaultMatchThreshold = 0.6
)

// Session constants
const (
	// DefaultTokenLifetime is how long an issued session token stays valid
	DefaultTokenLifetime = time.Hour
)

// Identification constants
const (
	// DefaultIdentifyLimit is the default number of nearest identities
	// returned by a 1:N identification query
	DefaultIdentifyLimit = 5
)

// HNSW index constants
const (
	// HNSWMaxNeighbors is the M parameter for the identification index
	HNSWMaxNeighbors = 16
)
