package gloas

import "errors"

var ErrNilNode = errors.New("invalid nil or unknown node")
var errInvalidParentRoot = errors.New("unknown parent root")
var errUnknownJustifiedRoot = errors.New("unknown justified root")
var errUnknownFinalizedRoot = errors.New("unknown finalized root")
var errUnknownPayloadHash = errors.New("envelope payload hash does not match committed bid")
var errDuplicateRoot = errors.New("block root already exists in fork choice")
