package domain

import "errors"

var (
	// ErrValidation is returned when a required field is missing or a
	// submitted answer does not match the presented question set.
	ErrValidation = errors.New("validation failed")
	// ErrBankUnavailable indicates the question bank storage is unreachable.
	ErrBankUnavailable = errors.New("question bank unavailable")
	// ErrWriteFailed indicates the result store rejected an append.
	ErrWriteFailed = errors.New("result store write failed")
	// ErrInvalidCredentials is returned on a failed teacher login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound is returned when no session exists for an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoStudentSession is returned when a quiz action runs before registration.
	ErrNoStudentSession = errors.New("no student registered in session")
	// ErrNoTeacherSession is returned when a report is requested without a teacher login.
	ErrNoTeacherSession = errors.New("no teacher logged in")
	// ErrNoSample is returned when no question set has been presented yet.
	ErrNoSample = errors.New("no question sample in session")
	// ErrNoResult is returned when no quiz has been submitted yet.
	ErrNoResult = errors.New("no quiz result in session")
)
