// Package cache provides a generic, thread-safe LRU cache with a soft
// entry limit.
//
// It keeps decoded source images and convolution kernels alive between
// evaluations so repeated renders do not decode or recompute them.
//
//	c := cache.New[string, *image.RGBA](16)
//	img, err := c.GetOrLoad(path, func() (*image.RGBA, error) { return decode(path) })
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
