package model

import "errors"

// ErrQuestionIndex is returned by registry mutations whose target index no
// longer exists; the list is left untouched.
var ErrQuestionIndex = errors.New("question index out of range")
