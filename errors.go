package dccfs

import "errors"

// ErrInvalidArgument is returned when a caller-supplied argument
// violates a documented constraint, such as a block size below
// MinBlockSize or not a power of two.
var ErrInvalidArgument = errors.New("dccfs: invalid argument")

// ErrNoSpace is returned when the free-block list cannot satisfy an
// allocation, or an image is too small to format.
var ErrNoSpace = errors.New("dccfs: no space left on image")

// ErrBusy is returned when the exclusive mount lock is already held.
var ErrBusy = errors.New("dccfs: image busy")

// ErrBadImage is returned when the superblock magic does not match.
var ErrBadImage = errors.New("dccfs: bad image")

// ErrNotFound is returned when a path component cannot be resolved.
var ErrNotFound = errors.New("dccfs: not found")

// ErrExists is returned when a create operation's target already
// exists.
var ErrExists = errors.New("dccfs: already exists")

// ErrIsDirectory is returned when a file operation targets a
// directory.
var ErrIsDirectory = errors.New("dccfs: is a directory")

// ErrNotDirectory is returned when a directory operation targets a
// non-directory.
var ErrNotDirectory = errors.New("dccfs: not a directory")

// ErrNotEmpty is returned by Rmdir when the target directory still
// has entries.
var ErrNotEmpty = errors.New("dccfs: directory not empty")

// ErrIO is returned when a block read or write is short or fails, or
// when an overflow chain ends before the expected data does.
var ErrIO = errors.New("dccfs: i/o error")
