package core

import "errors"

// ErrMalformedArchive indicates the zip central directory could not be read.
// Callers should log the archive and skip it; it is never fatal for a batch.
var ErrMalformedArchive = errors.New("malformed archive")

// ErrDestinationExists is returned by Move under CollisionAbort when a file
// with the same name is already present in the destination directory.
var ErrDestinationExists = errors.New("destination file already exists")
