package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

// Is reports whether any error in err's chain carries this code.
func (c Code[MT]) Is(err error) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code() == c.Code
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) Unwrap() error {
	return e.cause
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type HeightMetadata struct {
	SpokeID string `json:"spoke_id"`
	Height  uint64 `json:"height"`
}

type RelayerMetadata struct {
	Relayer string `json:"relayer"`
	Status  string `json:"status"`
}

type CallerMetadata struct {
	Caller   string `json:"caller"`
	Expected string `json:"expected,omitempty"`
}

type TimingMetadata struct {
	Height   uint64 `json:"height,omitempty"`
	Now      int64  `json:"now"`
	Deadline int64  `json:"deadline"`
}

type ProofMetadata struct {
	Height uint64 `json:"height"`
	Index  uint32 `json:"index"`
	Root   string `json:"root"`
}

type ClaimMetadata struct {
	Height uint64 `json:"height"`
	Index  uint32 `json:"index"`
}

type AccountMetadata struct {
	Account string `json:"account"`
}

type AmountMetadata struct {
	Account  string `json:"account,omitempty"`
	Amount   uint64 `json:"amount"`
	Required uint64 `json:"required"`
}

type SpokeStatusMetadata struct {
	SpokeID string `json:"spoke_id"`
	Status  string `json:"status"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}
var INVALID_ARGUMENT = Code[map[string]any]{1, "INVALID_ARGUMENT", grpccodes.InvalidArgument}

var PRECONDITION_FAILED = Code[CallerMetadata]{
	2,
	"PRECONDITION_FAILED",
	grpccodes.FailedPrecondition,
}
var TOO_EARLY = Code[TimingMetadata]{3, "TOO_EARLY", grpccodes.FailedPrecondition}
var TOO_LATE = Code[TimingMetadata]{4, "TOO_LATE", grpccodes.DeadlineExceeded}
var INVALID_PROOF = Code[ProofMetadata]{5, "INVALID_PROOF", grpccodes.InvalidArgument}
var ALREADY_CLAIMED = Code[ClaimMetadata]{6, "ALREADY_CLAIMED", grpccodes.AlreadyExists}
var NO_REWARD = Code[AccountMetadata]{7, "NO_REWARD", grpccodes.NotFound}
var NOT_FOUND = Code[HeightMetadata]{8, "NOT_FOUND", grpccodes.NotFound}
var UNAUTHENTICATED = Code[AccountMetadata]{9, "UNAUTHENTICATED", grpccodes.Unauthenticated}

var INSUFFICIENT_FUNDS = Code[AmountMetadata]{
	10,
	"INSUFFICIENT_FUNDS",
	grpccodes.FailedPrecondition,
}

var RELAYER_NOT_ALLOWED = Code[RelayerMetadata]{
	11,
	"RELAYER_NOT_ALLOWED",
	grpccodes.PermissionDenied,
}

var SPOKE_NOT_ACTIVE = Code[SpokeStatusMetadata]{
	12,
	"SPOKE_NOT_ACTIVE",
	grpccodes.Unavailable,
}
var ALREADY_EXISTS = Code[map[string]any]{13, "ALREADY_EXISTS", grpccodes.AlreadyExists}
var PERMISSION_DENIED = Code[AccountMetadata]{14, "PERMISSION_DENIED", grpccodes.PermissionDenied}
