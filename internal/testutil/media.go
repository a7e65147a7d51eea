package testutil

import (
	"errors"
	"time"
)

// MediaWalker is the part of mediastore.Store Stored needs.
type MediaWalker interface {
	Walk(fn func(publicPath string, modTime time.Time) error) error
}

var errFound = errors.New("found")

// Stored reports whether media holds a file at publicPath.
func Stored(media MediaWalker, publicPath string) bool {
	err := media.Walk(func(p string, _ time.Time) error {
		if p == publicPath {
			return errFound
		}
		return nil
	})
	return errors.Is(err, errFound)
}
