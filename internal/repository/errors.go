package repository

import "errors"

// ErrNotDraft is returned when a write expects a draft response but the
// stored one has already been submitted.
var ErrNotDraft = errors.New("response is not a draft")
