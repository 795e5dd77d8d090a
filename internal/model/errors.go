package model

import "errors"

// ErrListFetch marks a list lookup that answered with a non-success status.
// Its message is the one shown to users.
var ErrListFetch = errors.New("error fetching list data")
