package model

// Principal is the already-authenticated caller identity attached by the
// auth middleware.
type Principal struct {
	UserID      int64
	Designation string
}

const DesignationITHead = "IT_HEAD"

// IsReviewer reports whether the caller holds the reviewer designation that
// gates approval and per-row edit-count decoration.
func (p Principal) IsReviewer() bool {
	return p.Designation == DesignationITHead
}
