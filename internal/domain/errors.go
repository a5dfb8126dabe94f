package domain

import "errors"

var (
	// ErrEmptyCredentials is returned when pseudonym or passphrase is blank.
	ErrEmptyCredentials = errors.New("pseudonym and passphrase are required")
	// ErrWrongPassphrase is returned when the passphrase does not match.
	ErrWrongPassphrase = errors.New("incorrect passphrase")
	// ErrNotAuthenticated is returned when a study operation runs without a logged-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotebookNotFound indicates the notebook is absent or holds no questions.
	ErrNotebookNotFound = errors.New("notebook not found or empty")
	// ErrInvalidBlockSize is returned when a random block request is outside 1..200.
	ErrInvalidBlockSize = errors.New("block size must be between 1 and 200")
	// ErrNoQuestions is returned when a random block draw matches no questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrUnknownOption is returned when a selection is not one of the question's options.
	ErrUnknownOption = errors.New("option not offered by this question")
	// ErrNoActiveSession is returned when navigation or answering happens outside a session.
	ErrNoActiveSession = errors.New("no active study session")
	// ErrNoSelection is returned when an answer is confirmed without a selected option.
	ErrNoSelection = errors.New("no option selected")
	// ErrAlreadyAnswered is returned when the current question is confirmed twice.
	ErrAlreadyAnswered = errors.New("question already answered")
)
