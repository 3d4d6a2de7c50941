package vendor

import "errors"

var ErrNotFound = errors.New("vendor not found")

type Vendor struct {
	ID       int64
	Name     string
	IsActive bool
}
